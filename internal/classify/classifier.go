package classify

import (
	"strings"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// Keyword sets mirror the vocabulary of the submitting storefronts. Matching
// is plain substring containment on the lower-cased subject, no tokenization:
// a keyword embedded inside an unrelated word still matches. The critical set
// is checked first and wins over any medium match.
var criticalKeywords = []string{
	"erreur serveur", "inaccessible", "impossible de se connecter",
	"page blanche", "plantage", "panne", "données perdues", "piratage",
	"fuite de données", "problème de sécurité", "transaction échouée",
	"paiement non reçu", "compte bloqué", "urgent", "bloqué", "crash",
	"downtime", "plus rien ne fonctionne", "non fonctionnel", "brisé", "cassé",
}

var mediumKeywords = []string{
	"lent", "lenteur", "fonctionne mal", "bug mineur", "erreur d’affichage",
	"incohérence", "mauvais alignement", "champ manquant", "bouton ne répond pas",
	"pas à jour", "problème d’interface", "traduction incorrecte", "police illisible",
	"message d’erreur", "navigabilité difficile", "formulaire incomplet",
	"déconnexion aléatoire", "image non chargée",
}

// Classify maps a free-text ticket subject to a priority. The priority is
// computed once at intake and never recomputed.
func Classify(subject string) domain.TicketPriority {
	lowered := strings.ToLower(subject)
	if containsAny(lowered, criticalKeywords) {
		return domain.TicketPriorityCritical
	}
	if containsAny(lowered, mediumKeywords) {
		return domain.TicketPriorityMedium
	}
	return domain.TicketPriorityLow
}

func containsAny(subject string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(subject, keyword) {
			return true
		}
	}
	return false
}
