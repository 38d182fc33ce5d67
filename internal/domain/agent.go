package domain

import "time"

// Agent is a staff account able to triage and resolve tickets. Privileged
// agents (administrators) bypass transition and assignment restrictions.
type Agent struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Privileged   bool
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal projects the agent into the identity consumed by the policy
// layer. All role-dependent behavior keys off this one value.
func (a *Agent) Principal() Principal {
	return Principal{
		ID:         a.ID,
		Username:   a.Username,
		Privileged: a.Privileged,
	}
}
