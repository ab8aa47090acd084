package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/thezig/be-sow-service/internal/apperr"
	"github.com/thezig/be-sow-service/internal/domain"
)

var errNotFound = apperr.New(apperr.CodeNotFound, "not found")

// ---------------------------------------------------------------------------
// Manual mocks (func fields, with sensible defaults)
// ---------------------------------------------------------------------------

type mockDocStore struct {
	CreateFunc         func(ctx context.Context, doc *domain.SOWDocument) error
	GetByIDFunc        func(ctx context.Context, id string) (*domain.SOWDocument, error)
	ListFunc           func(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.SOWDocument, int64, error)
	SaveTransitionFunc func(ctx context.Context, doc *domain.SOWDocument, newApprovals []domain.Approval, newHistory []domain.HistoryEntry) error

	savedApprovals []domain.Approval
	savedHistory   []domain.HistoryEntry
	saveCalls      int
}

func (m *mockDocStore) Create(ctx context.Context, doc *domain.SOWDocument) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, doc)
	}
	doc.ID = uuid.NewString()
	return nil
}

func (m *mockDocStore) GetByID(ctx context.Context, id string) (*domain.SOWDocument, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockDocStore) List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.SOWDocument, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return nil, 0, nil
}

func (m *mockDocStore) SaveTransition(ctx context.Context, doc *domain.SOWDocument, newApprovals []domain.Approval, newHistory []domain.HistoryEntry) error {
	m.saveCalls++
	m.savedApprovals = append(m.savedApprovals, newApprovals...)
	m.savedHistory = append(m.savedHistory, newHistory...)
	if m.SaveTransitionFunc != nil {
		return m.SaveTransitionFunc(ctx, doc, newApprovals, newHistory)
	}
	return nil
}

type mockStepStore struct {
	steps []domain.ApprovalStep
}

func (m *mockStepStore) List(context.Context) ([]domain.ApprovalStep, error) { return m.steps, nil }

func (m *mockStepStore) GetByID(_ context.Context, id string) (*domain.ApprovalStep, error) {
	for i := range m.steps {
		if m.steps[i].ID == id {
			return &m.steps[i], nil
		}
	}
	return nil, errNotFound
}

func (m *mockStepStore) Create(_ context.Context, step *domain.ApprovalStep) error {
	step.ID = uuid.NewString()
	m.steps = append(m.steps, *step)
	return nil
}

func (m *mockStepStore) Update(_ context.Context, step *domain.ApprovalStep) error {
	for i := range m.steps {
		if m.steps[i].ID == step.ID {
			m.steps[i] = *step
			return nil
		}
	}
	return errNotFound
}

func (m *mockStepStore) Delete(_ context.Context, id string) error {
	for i := range m.steps {
		if m.steps[i].ID == id {
			m.steps = append(m.steps[:i], m.steps[i+1:]...)
			return nil
		}
	}
	return errNotFound
}

type mockHistoryStore struct {
	entries []domain.HistoryEntry
}

func (m *mockHistoryStore) GetByDocumentID(context.Context, string) ([]domain.HistoryEntry, error) {
	return m.entries, nil
}

func (m *mockHistoryStore) ListRecent(_ context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit < len(m.entries) {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

type mockDirectory struct {
	approvers map[string]domain.Approver
}

func (m *mockDirectory) GetApprover(_ context.Context, userID string) (domain.Approver, bool) {
	a, ok := m.approvers[userID]
	return a, ok
}

type recordedEvent struct {
	eventType  string
	documentID string
	actorID    string
	payload    map[string]any
}

type mockEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (m *mockEvents) PublishDocumentEvent(eventType, documentID, actorID string, payload map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, recordedEvent{eventType, documentID, actorID, payload})
}

func (m *mockEvents) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.events))
	for i, e := range m.events {
		out[i] = e.eventType
	}
	return out
}

type mockTeam struct {
	pool []domain.TeamMember
}

func (m *mockTeam) ListMembers(context.Context) ([]domain.TeamMember, error) { return m.pool, nil }

func (m *mockTeam) GetMember(_ context.Context, id string) (*domain.TeamMember, error) {
	for i := range m.pool {
		if m.pool[i].ID == id {
			return &m.pool[i], nil
		}
	}
	return nil, errNotFound
}

type mockProjects struct {
	created []*domain.Project
}

func (m *mockProjects) Create(_ context.Context, p *domain.Project) error {
	p.ID = uuid.NewString()
	m.created = append(m.created, p)
	return nil
}

func (m *mockProjects) GetByID(_ context.Context, id string) (*domain.Project, error) {
	for _, p := range m.created {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errNotFound
}

func (m *mockProjects) List(context.Context, int, int) ([]*domain.Project, int64, error) {
	return m.created, int64(len(m.created)), nil
}

func (m *mockProjects) GetBySOWID(_ context.Context, sowID string) (*domain.Project, error) {
	for _, p := range m.created {
		if p.SOWID == sowID {
			return p, nil
		}
	}
	return nil, nil
}
