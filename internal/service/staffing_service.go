package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/domain"
	"github.com/thezig/be-sow-service/internal/metrics"
)

// TeamDirectory supplies the team-member pool.
type TeamDirectory interface {
	ListMembers(ctx context.Context) ([]domain.TeamMember, error)
	GetMember(ctx context.Context, id string) (*domain.TeamMember, error)
}

// ProjectStore persists projects.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Project, int64, error)
	GetBySOWID(ctx context.Context, sowID string) (*domain.Project, error)
}

// eventProjectCreated is published when staffing confirms a project.
const eventProjectCreated = "project_created"

// StaffingService runs the post-approval staffing flow: derive role
// requirements, match eligible members, collect assignment decisions in an
// ephemeral session, and confirm them into a project.
type StaffingService struct {
	docs     DocumentStore
	team     TeamDirectory
	projects ProjectStore
	policy   domain.RoleRequirementPolicy
	match    domain.SkillMatchPolicy
	events   EventSink
	log      zerolog.Logger

	mu         sync.Mutex
	sessions   map[string]*staffingSession
	sessionTTL time.Duration
}

// staffingSession ties an assignment session to its document. The inner
// mutex serializes decisions within one session; the service mutex only
// guards the session map.
type staffingSession struct {
	mu        sync.Mutex
	sowID     string
	session   *domain.AssignmentSession
	createdAt time.Time
}

// NewStaffingService creates a new StaffingService. A nil policy uses the
// static three-role default; a nil match policy uses substring skill matching.
func NewStaffingService(
	docs DocumentStore,
	team TeamDirectory,
	projects ProjectStore,
	policy domain.RoleRequirementPolicy,
	match domain.SkillMatchPolicy,
	sessionTTL time.Duration,
	events EventSink,
	log zerolog.Logger,
) *StaffingService {
	if policy == nil {
		policy = domain.StaticRolePolicy{}
	}
	return &StaffingService{
		docs:       docs,
		team:       team,
		projects:   projects,
		policy:     policy,
		match:      match,
		events:     events,
		log:        log,
		sessions:   make(map[string]*staffingSession),
		sessionTTL: sessionTTL,
	}
}

// Requirements derives the role requirements for a document.
func (s *StaffingService) Requirements(ctx context.Context, sowID string) ([]domain.RoleRequirement, error) {
	doc, err := s.docs.GetByID(ctx, sowID)
	if err != nil {
		return nil, err
	}
	return s.policy.Derive(doc), nil
}

// Team returns the full team-member pool.
func (s *StaffingService) Team(ctx context.Context) ([]domain.TeamMember, error) {
	return s.team.ListMembers(ctx)
}

// Eligible returns the pool members qualifying for one of the document's
// required roles.
func (s *StaffingService) Eligible(ctx context.Context, sowID, roleTitle string) ([]domain.TeamMember, error) {
	reqs, err := s.Requirements(ctx, sowID)
	if err != nil {
		return nil, err
	}

	var role *domain.RoleRequirement
	for i := range reqs {
		if strings.EqualFold(reqs[i].Title, roleTitle) {
			role = &reqs[i]
			break
		}
	}
	if role == nil {
		return nil, apperr.NotFound("role_requirement", roleTitle)
	}

	pool, err := s.team.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return domain.EligibleMembers(*role, pool, s.match), nil
}

// OpenSession starts an assignment session for an approved document and
// returns its id. Staffing follows approval: a document that has not reached
// approved (or a later signed state) cannot be staffed.
func (s *StaffingService) OpenSession(ctx context.Context, sowID string) (string, error) {
	doc, err := s.docs.GetByID(ctx, sowID)
	if err != nil {
		return "", err
	}

	switch doc.Status {
	case domain.StatusApproved, domain.StatusTheZigSigned, domain.StatusClientSigned, domain.StatusFullyExecuted:
	default:
		return "", apperr.Conflict("document must be approved before staffing (status: " + string(doc.Status) + ")")
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.purgeExpiredLocked()
	s.sessions[id] = &staffingSession{
		sowID:     sowID,
		session:   domain.NewAssignmentSession(),
		createdAt: time.Now(),
	}
	s.mu.Unlock()

	s.log.Info().
		Str("session_id", id).
		Str("document_id", sowID).
		Msg("Assignment session opened")

	return id, nil
}

// SetAssignment records a decision for a role: a member id, or nil for an
// explicit skip.
func (s *StaffingService) SetAssignment(ctx context.Context, sessionID, role string, memberID *string, hours int) error {
	if role == "" {
		return apperr.InvalidInput("role", "role is required")
	}
	if hours < 0 {
		return apperr.InvalidInput("hours", "hours cannot be negative")
	}
	if memberID != nil {
		if _, err := s.team.GetMember(ctx, *memberID); err != nil {
			return err
		}
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	sess.session.Set(role, memberID, hours)
	sess.mu.Unlock()
	return nil
}

// Validate checks the session against the document's requirements and returns
// user-facing problems, empty when valid. Problems are data, not errors: the
// caller decides whether they block.
func (s *StaffingService) Validate(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	reqs, err := s.Requirements(ctx, sess.sowID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	problems := sess.session.Validate(reqs)
	sess.mu.Unlock()
	metrics.AssignmentValidationErrors.Add(float64(len(problems)))
	return problems, nil
}

// CancelSession discards a session and all its decisions.
func (s *StaffingService) CancelSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// ConfirmProject finalizes the session into a project derived from the SOW.
// Skipped roles are allowed through — that is the partial-team path — and the
// session is consumed on success.
func (s *StaffingService) ConfirmProject(ctx context.Context, sessionID, createdBy string) (*domain.Project, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.GetByID(ctx, sess.sowID)
	if err != nil {
		return nil, err
	}

	pool, err := s.team.ListMembers(ctx)
	if err != nil {
		return nil, err
	}

	// One project per SOW is the expectation but is not enforced; a duplicate
	// gets a warning in the log and proceeds.
	if existing, err := s.projects.GetBySOWID(ctx, sess.sowID); err == nil && existing != nil {
		s.log.Warn().
			Str("document_id", sess.sowID).
			Str("existing_project_id", existing.ID).
			Msg("SOW already has a project; creating another")
	}

	sess.mu.Lock()
	assignments := sess.session.Finalize()
	sess.mu.Unlock()

	project := domain.NewProjectFromSOW(doc, assignments, pool)
	if createdBy != "" {
		project.CreatedBy = &createdBy
	}

	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	s.CancelSession(sessionID)

	s.events.PublishDocumentEvent(eventProjectCreated, doc.ID, createdBy, map[string]any{
		"project_id":       project.ID,
		"budget_allocated": project.Budget.Allocated,
		"team_size":        len(project.Team),
	})
	s.log.Info().
		Str("project_id", project.ID).
		Str("document_id", doc.ID).
		Int("team_size", len(project.Team)).
		Int64("budget_allocated", project.Budget.Allocated).
		Msg("Project created from SOW")

	return project, nil
}

// GetProject retrieves a project by id.
func (s *StaffingService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

// ListProjects returns projects newest-first.
func (s *StaffingService) ListProjects(ctx context.Context, page, pageSize int) ([]*domain.Project, int64, error) {
	offset := (page - 1) * pageSize
	return s.projects.List(ctx, pageSize, offset)
}

// ── session bookkeeping ──────────────────────────────────────────────────────

func (s *StaffingService) session(id string) (*staffingSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, apperr.NotFound("assignment_session", id)
	}
	return sess, nil
}

func (s *StaffingService) purgeExpiredLocked() {
	if s.sessionTTL <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.sessionTTL)
	for id, sess := range s.sessions {
		if sess.createdAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
