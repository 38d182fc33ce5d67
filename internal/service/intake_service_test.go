package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

func newTestIntakeService(repo *memTicketRepo) *IntakeService {
	return NewIntakeService(IntakeDependencies{TicketRepo: repo})
}

func validIntake() IntakeInput {
	return IntakeInput{
		FirstName: "Marie",
		LastName:  "Curie",
		Email:     "marie@example.com",
		Subject:   "Question générale",
		Message:   "Bonjour, comment modifier ma commande ?",
	}
}

func TestSubmitCreatesNewUnassignedTicket(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newTestIntakeService(repo)

	input := validIntake()
	input.Subject = "Paiement non reçu, urgent"

	ticket, err := svc.Submit(context.Background(), "shop-fr", input)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
	assert.Equal(t, "shop-fr", ticket.PlatformName)
	assert.Nil(t, ticket.AgentID)
	assert.NotZero(t, ticket.ID)
}

func TestSubmitClassifiesFromSubject(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newTestIntakeService(repo)

	cases := []struct {
		subject string
		want    domain.TicketPriority
	}{
		{"Site totalement inaccessible", domain.TicketPriorityCritical},
		{"Lenteur sur la page produit", domain.TicketPriorityMedium},
		{"Question générale", domain.TicketPriorityLow},
	}
	for _, tc := range cases {
		t.Run(tc.subject, func(t *testing.T) {
			input := validIntake()
			input.Subject = tc.subject
			ticket, err := svc.Submit(context.Background(), "shop-fr", input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ticket.Priority)
		})
	}
}

func TestSubmitValidatesFields(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newTestIntakeService(repo)

	input := validIntake()
	input.FirstName = ""
	input.Email = "not-an-email"

	_, err := svc.Submit(context.Background(), "shop-fr", input)
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Contains(t, de.Details, "first_name")
	assert.Contains(t, de.Details, "email")
}

func TestSubmitRequiresPlatformIdentity(t *testing.T) {
	repo := newMemTicketRepo()
	svc := newTestIntakeService(repo)

	_, err := svc.Submit(context.Background(), "", validIntake())
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "UNAUTHORIZED", de.Code)
}
