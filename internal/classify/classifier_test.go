package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		want    domain.TicketPriority
	}{
		{"outage wording", "Site totalement inaccessible", domain.TicketPriorityCritical},
		{"payment failure with urgency", "Paiement non reçu, urgent", domain.TicketPriorityCritical},
		{"uppercase subject", "PANNE GÉNÉRALE DEPUIS CE MATIN", domain.TicketPriorityCritical},
		{"degraded behavior", "Lenteur sur la page d'accueil", domain.TicketPriorityMedium},
		{"cosmetic issue", "Mauvais alignement du menu", domain.TicketPriorityMedium},
		{"no keyword", "Question générale", domain.TicketPriorityLow},
		{"empty subject", "", domain.TicketPriorityLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.subject))
		})
	}
}

func TestClassifyCriticalWinsOverMedium(t *testing.T) {
	// Subject matches both sets; the critical set is checked first.
	got := Classify("Plantage après une grosse lenteur")
	assert.Equal(t, domain.TicketPriorityCritical, got)
}

func TestClassifyMatchesInsideWords(t *testing.T) {
	// Substring containment without tokenization is deliberate: "lent"
	// inside "lente" still classifies as medium.
	got := Classify("Connexion lente")
	assert.Equal(t, domain.TicketPriorityMedium, got)
}
