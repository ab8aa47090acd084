package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/domain"
	"github.com/thezig/be-sow-service/internal/service"
)

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	documents *service.DocumentService
	staffing  *service.StaffingService
	log       zerolog.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(documents *service.DocumentService, staffing *service.StaffingService, log zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		documents: documents,
		staffing:  staffing,
		log:       log,
	}
}

// ── Document lifecycle ────────────────────────────────────────────────────────

// CreateDocument handles create SOW document HTTP requests
func (h *HTTPHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req service.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, doc)
}

// GetDocument handles get SOW document HTTP requests
func (h *HTTPHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Document ID is required", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// ListDocuments handles list SOW documents HTTP requests
func (h *HTTPHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var statusPtr *domain.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.Status(raw)
		statusPtr = &status
	}

	page, pageSize := pagination(r)

	docs, total, err := h.documents.List(r.Context(), statusPtr, page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"total":     total,
		"page":      page,
		"pageSize":  pageSize,
	})
}

// SubmitDocument handles submit for approval HTTP requests
func (h *HTTPHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Submit(r.Context(), req.ID, req.UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// ApproveDocument handles approve HTTP requests
func (h *HTTPHandler) ApproveDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID      string  `json:"id"`
		UserID  string  `json:"user_id"`
		Comment *string `json:"comment,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Approve(r.Context(), req.ID, req.UserID, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// RejectDocument handles reject HTTP requests
func (h *HTTPHandler) RejectDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID      string  `json:"id"`
		UserID  string  `json:"user_id"`
		Comment *string `json:"comment,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Reject(r.Context(), req.ID, req.UserID, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// OverrideStatus handles administrative status override HTTP requests
func (h *HTTPHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.documents.OverrideStatus(r.Context(), req.ID, req.UserID, domain.Status(req.Status))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

// DocumentHistory handles document audit trail HTTP requests
func (h *HTTPHandler) DocumentHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Document ID is required", http.StatusBadRequest)
		return
	}

	entries, err := h.documents.History(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"history": entries})
}

// RecentActivity handles cross-document activity feed HTTP requests
func (h *HTTPHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := h.documents.RecentActivity(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"activity": entries})
}

// ── Approval step configuration ───────────────────────────────────────────────

// ApprovalSteps handles approval step configuration HTTP requests
func (h *HTTPHandler) ApprovalSteps(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		steps, err := h.documents.ListSteps(r.Context())
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"steps": steps})

	case http.MethodPost:
		var step domain.ApprovalStep
		if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := h.documents.CreateStep(r.Context(), &step); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusCreated, step)

	case http.MethodPut:
		var step domain.ApprovalStep
		if err := json.NewDecoder(r.Body).Decode(&step); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if step.ID == "" {
			http.Error(w, "Step ID is required", http.StatusBadRequest)
			return
		}
		if err := h.documents.UpdateStep(r.Context(), &step); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.writeJSON(w, http.StatusOK, step)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "Step ID is required", http.StatusBadRequest)
			return
		}
		if err := h.documents.DeleteStep(r.Context(), id); err != nil {
			h.writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// ── Staffing ──────────────────────────────────────────────────────────────────

// RoleRequirements handles role requirement HTTP requests
func (h *HTTPHandler) RoleRequirements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sowID := r.URL.Query().Get("sow_id")
	if sowID == "" {
		http.Error(w, "SOW ID is required", http.StatusBadRequest)
		return
	}

	reqs, err := h.staffing.Requirements(r.Context(), sowID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"requirements": reqs})
}

// ListTeam handles team directory HTTP requests
func (h *HTTPHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	members, err := h.staffing.Team(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// EligibleMembers handles eligibility matching HTTP requests
func (h *HTTPHandler) EligibleMembers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sowID := r.URL.Query().Get("sow_id")
	role := r.URL.Query().Get("role")
	if sowID == "" || role == "" {
		http.Error(w, "SOW ID and role are required", http.StatusBadRequest)
		return
	}

	members, err := h.staffing.Eligible(r.Context(), sowID, role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// OpenAssignmentSession handles assignment session creation HTTP requests
func (h *HTTPHandler) OpenAssignmentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SOWID string `json:"sow_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.SOWID == "" {
		http.Error(w, "SOW ID is required", http.StatusBadRequest)
		return
	}

	id, err := h.staffing.OpenSession(r.Context(), req.SOWID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]string{"session_id": id})
}

// SetAssignment handles assignment decision HTTP requests. A null member_id
// records an explicit skip for the role.
func (h *HTTPHandler) SetAssignment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string  `json:"session_id"`
		Role      string  `json:"role"`
		MemberID  *string `json:"member_id"`
		Hours     int     `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.staffing.SetAssignment(r.Context(), req.SessionID, req.Role, req.MemberID, req.Hours); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// ValidateAssignments handles assignment validation HTTP requests
func (h *HTTPHandler) ValidateAssignments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	problems, err := h.staffing.Validate(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":    len(problems) == 0,
		"problems": problems,
	})
}

// CancelAssignmentSession handles session cancellation HTTP requests
func (h *HTTPHandler) CancelAssignmentSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.staffing.CancelSession(req.SessionID)
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmProject handles session confirmation HTTP requests: it finalizes the
// assignments into a project.
func (h *HTTPHandler) ConfirmProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		CreatedBy string `json:"created_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.staffing.ConfirmProject(r.Context(), req.SessionID, req.CreatedBy)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, project)
}

// ── Projects ──────────────────────────────────────────────────────────────────

// GetProject handles get project HTTP requests
func (h *HTTPHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Project ID is required", http.StatusBadRequest)
		return
	}

	project, err := h.staffing.GetProject(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

// ListProjects handles list projects HTTP requests
func (h *HTTPHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, pageSize := pagination(r)

	projects, total, err := h.staffing.ListProjects(r.Context(), page, pageSize)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": projects,
		"total":    total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// ── helpers ───────────────────────────────────────────────────────────────────

func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 50
	}
	return page, pageSize
}

func (h *HTTPHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode response body")
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
