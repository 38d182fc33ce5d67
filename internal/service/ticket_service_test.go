package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	"github.com/helpdesk-central/ticket-hub/internal/policy"
	"github.com/helpdesk-central/ticket-hub/internal/repository"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

// memTicketRepo is an in-memory TicketRepository honoring the same
// compare-and-set contract as the SQL implementation.
type memTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]domain.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{nextID: 1, tickets: map[int64]domain.Ticket{}}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	r.nextID++
	r.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := cloneTicket(stored)
	return &copied, nil
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.VisibleToAgent != nil && stored.AgentID != nil && *stored.AgentID != *filter.VisibleToAgent {
			continue
		}
		result = append(result, cloneTicket(stored))
	}
	return result, nil
}

func (r *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket, expectedAgent *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return repository.ErrStaleAgent
	}
	if !sameAgent(stored.AgentID, expectedAgent) {
		return repository.ErrStaleAgent
	}
	stored.FirstName = ticket.FirstName
	stored.LastName = ticket.LastName
	stored.Email = ticket.Email
	stored.Subject = ticket.Subject
	stored.Message = ticket.Message
	stored.Status = ticket.Status
	stored.AgentID = copyAgent(ticket.AgentID)
	r.tickets[ticket.ID] = stored
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.AgentID = copyAgent(t.AgentID)
	return t
}

func copyAgent(agentID *int64) *int64 {
	if agentID == nil {
		return nil
	}
	v := *agentID
	return &v
}

func sameAgent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type memAgentRepo struct {
	mu     sync.Mutex
	agents map[int64]domain.Agent
}

func newMemAgentRepo(agents ...domain.Agent) *memAgentRepo {
	repo := &memAgentRepo{agents: map[int64]domain.Agent{}}
	for _, a := range agents {
		repo.agents[a.ID] = a
	}
	return repo
}

func (r *memAgentRepo) Create(_ context.Context, agent *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.ID] = *agent
	return nil
}

func (r *memAgentRepo) Update(_ context.Context, agent *domain.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[agent.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.agents[agent.ID] = *agent
	return nil
}

func (r *memAgentRepo) GetByID(_ context.Context, id int64) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agent, ok := r.agents[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &agent, nil
}

func (r *memAgentRepo) GetByUsername(_ context.Context, username string) (*domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, agent := range r.agents {
		if agent.Username == username {
			a := agent
			return &a, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memAgentRepo) List(_ context.Context, _ repository.AgentFilter) ([]domain.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Agent
	for _, agent := range r.agents {
		result = append(result, agent)
	}
	return result, nil
}

func (r *memAgentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.agents, id)
	return nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
}

func (r *memHistoryRepo) Create(_ context.Context, history *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	history.ID = int64(len(r.entries) + 1)
	r.entries = append(r.entries, *history)
	return nil
}

func (r *memHistoryRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketHistory
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

var (
	testAgentA = domain.Principal{ID: 1, Username: "alice"}
	testAgentB = domain.Principal{ID: 2, Username: "bob"}
	testAdmin  = domain.Principal{ID: 9, Username: "root", Privileged: true}
)

func newTestTicketService(tickets *memTicketRepo) (*TicketService, *memHistoryRepo) {
	history := &memHistoryRepo{}
	agents := newMemAgentRepo(
		domain.Agent{ID: 1, Username: "alice", Active: true},
		domain.Agent{ID: 2, Username: "bob", Active: true},
		domain.Agent{ID: 9, Username: "root", Privileged: true, Active: true},
	)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		AgentRepo:   agents,
		HistoryRepo: history,
	})
	return svc, history
}

func seedTicket(t *testing.T, repo *memTicketRepo, status domain.TicketStatus, agentID *int64) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		FirstName:    "Jean",
		LastName:     "Dupont",
		Email:        "jean@example.com",
		Subject:      "Site inaccessible",
		Message:      "Rien ne fonctionne",
		PlatformName: "shop-fr",
		Status:       status,
		Priority:     domain.TicketPriorityCritical,
		AgentID:      copyAgent(agentID),
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	return ticket
}

func statusPtr(s domain.TicketStatus) *domain.TicketStatus { return &s }

func int64Ptr(v int64) *int64 { return &v }

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestUpdateTicketClaimOnTouch(t *testing.T) {
	repo := newMemTicketRepo()
	svc, history := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	updated, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AgentID)
	assert.Equal(t, testAgentA.ID, *updated.AgentID)

	entries, err := history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestUpdateTicketClaimOverridesPatchAgent(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	// Claim-on-touch wins over a stray agent value in the same patch.
	updated, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
		Agent:  policy.AgentPatch{Set: true, AgentID: int64Ptr(testAgentB.ID)},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AgentID)
	assert.Equal(t, testAgentA.ID, *updated.AgentID)
}

func TestUpdateTicketIdempotentResave(t *testing.T) {
	repo := newMemTicketRepo()
	svc, history := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))
	submitted := ticket.SubmissionDate

	updated, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
	require.NotNil(t, updated.AgentID)
	assert.Equal(t, testAgentA.ID, *updated.AgentID)
	assert.Equal(t, submitted, updated.SubmissionDate)

	entries, err := history.ListByTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateTicketIllegalTransition(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	_, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusResolved),
	})
	require.Error(t, err)
	assert.Equal(t, "ILLEGAL_TRANSITION", domainCode(t, err))
}

func TestUpdateTicketTerminalLockedForAgents(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusResolved, int64Ptr(testAgentA.ID))

	_, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
	})
	require.Error(t, err)
	assert.Equal(t, "ILLEGAL_TRANSITION", domainCode(t, err))

	// Administrators may reopen.
	updated, err := svc.UpdateTicket(context.Background(), testAdmin, ticket.ID, TicketPatch{
		Status: statusPtr(domain.TicketStatusInProgress),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
}

func TestUpdateTicketReassignmentDenied(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))

	_, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{
		Agent: policy.AgentPatch{Set: true, AgentID: int64Ptr(testAgentB.ID)},
	})
	require.Error(t, err)
	assert.Equal(t, "REASSIGNMENT_DENIED", domainCode(t, err))
}

func TestUpdateTicketAdminReassignAndClear(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))

	updated, err := svc.UpdateTicket(context.Background(), testAdmin, ticket.ID, TicketPatch{
		Agent: policy.AgentPatch{Set: true, AgentID: int64Ptr(testAgentB.ID)},
	})
	require.NoError(t, err)
	require.NotNil(t, updated.AgentID)
	assert.Equal(t, testAgentB.ID, *updated.AgentID)

	cleared, err := svc.UpdateTicket(context.Background(), testAdmin, ticket.ID, TicketPatch{
		Agent: policy.AgentPatch{Set: true, AgentID: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.AgentID)
}

func TestUpdateTicketUnknownAssigneeRejected(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	_, err := svc.UpdateTicket(context.Background(), testAdmin, ticket.ID, TicketPatch{
		Agent: policy.AgentPatch{Set: true, AgentID: int64Ptr(404)},
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestUpdateTicketRestrictedFieldsForbidden(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))

	email := "edited@example.com"
	_, err := svc.UpdateTicket(context.Background(), testAgentA, ticket.ID, TicketPatch{Email: &email})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	updated, err := svc.UpdateTicket(context.Background(), testAdmin, ticket.ID, TicketPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
}

func TestGetTicketVisibility(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))

	// Another agent's claimed ticket looks exactly like a missing one.
	_, err := svc.GetTicket(context.Background(), testAgentB, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	_, err = svc.GetTicket(context.Background(), testAgentB, 12345)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))

	got, err := svc.GetTicket(context.Background(), testAdmin, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)
}

func TestConcurrentClaimExactlyOneWins(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	patch := TicketPatch{Status: statusPtr(domain.TicketStatusInProgress)}
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, principal := range []domain.Principal{testAgentA, testAgentB} {
		wg.Add(1)
		go func(p domain.Principal) {
			defer wg.Done()
			_, err := svc.UpdateTicket(context.Background(), p, ticket.ID, patch)
			results <- err
		}(principal)
	}
	wg.Wait()
	close(results)

	var failures []error
	for err := range results {
		if err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1, "exactly one of two concurrent claims must fail")

	code := domainCode(t, failures[0])
	assert.Contains(t, []string{"REASSIGNMENT_DENIED", "NOT_FOUND", "CONFLICT"}, code)

	stored, err := repo.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AgentID)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
}

func TestDeleteTicketAdminOnly(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	err := svc.DeleteTicket(context.Background(), testAgentA, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))

	require.NoError(t, svc.DeleteTicket(context.Background(), testAdmin, ticket.ID))

	_, err = svc.GetTicket(context.Background(), testAdmin, ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", domainCode(t, err))
}

func TestStatusOptions(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	ticket := seedTicket(t, repo, domain.TicketStatusNew, nil)

	options, err := svc.StatusOptions(context.Background(), testAgentA, ticket.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.TicketStatus{
		domain.TicketStatusNew,
		domain.TicketStatusInProgress,
		domain.TicketStatusIgnored,
	}, options)

	adminOptions, err := svc.StatusOptions(context.Background(), testAdmin, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, adminOptions, 4)
}

func TestListTicketsScopedForAgents(t *testing.T) {
	repo := newMemTicketRepo()
	svc, _ := newTestTicketService(repo)
	seedTicket(t, repo, domain.TicketStatusNew, nil)
	seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentA.ID))
	seedTicket(t, repo, domain.TicketStatusInProgress, int64Ptr(testAgentB.ID))

	mine, err := svc.ListTickets(context.Background(), testAgentA, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListTickets(context.Background(), testAdmin, TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
