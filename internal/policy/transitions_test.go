package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
	apperrors "github.com/helpdesk-central/ticket-hub/pkg/util"
)

func TestValidateTransitionAgent(t *testing.T) {
	cases := []struct {
		name      string
		current   domain.TicketStatus
		requested domain.TicketStatus
		allowed   bool
	}{
		{"new to in_progress", domain.TicketStatusNew, domain.TicketStatusInProgress, true},
		{"new to ignored", domain.TicketStatusNew, domain.TicketStatusIgnored, true},
		{"new to resolved is disallowed", domain.TicketStatusNew, domain.TicketStatusResolved, false},
		{"in_progress to resolved", domain.TicketStatusInProgress, domain.TicketStatusResolved, true},
		{"in_progress to ignored", domain.TicketStatusInProgress, domain.TicketStatusIgnored, true},
		{"in_progress back to new", domain.TicketStatusInProgress, domain.TicketStatusNew, false},
		{"resolved is terminal", domain.TicketStatusResolved, domain.TicketStatusInProgress, false},
		{"ignored is terminal", domain.TicketStatusIgnored, domain.TicketStatusNew, false},
		{"same status is idempotent", domain.TicketStatusResolved, domain.TicketStatusResolved, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTransition(tc.current, tc.requested, false)
			if tc.allowed {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, "ILLEGAL_TRANSITION", apperrors.ToDomainError(err).Code)
		})
	}
}

func TestValidateTransitionPrivilegedBypass(t *testing.T) {
	// Administrators may set any status, including reopening terminal tickets.
	assert.NoError(t, ValidateTransition(domain.TicketStatusResolved, domain.TicketStatusInProgress, true))
	assert.NoError(t, ValidateTransition(domain.TicketStatusIgnored, domain.TicketStatusNew, true))
	assert.NoError(t, ValidateTransition(domain.TicketStatusNew, domain.TicketStatusResolved, true))
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition(domain.TicketStatusNew, domain.TicketStatus("archived"), true)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestValidateTransitionErrorDetails(t *testing.T) {
	err := ValidateTransition(domain.TicketStatusResolved, domain.TicketStatusInProgress, false)
	require.Error(t, err)
	details := apperrors.ToDomainError(err).Details
	assert.Equal(t, "resolved", details["current_status"])
	assert.Equal(t, "in_progress", details["requested_status"])
}

func TestAllowedStatuses(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusIgnored},
		AllowedStatuses(domain.TicketStatusNew, false))

	assert.ElementsMatch(t,
		[]domain.TicketStatus{domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusIgnored},
		AllowedStatuses(domain.TicketStatusInProgress, false))

	assert.Equal(t,
		[]domain.TicketStatus{domain.TicketStatusResolved},
		AllowedStatuses(domain.TicketStatusResolved, false))

	assert.Len(t, AllowedStatuses(domain.TicketStatusIgnored, true), 4)
}
