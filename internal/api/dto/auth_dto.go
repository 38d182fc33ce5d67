package dto

import (
	"time"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Agent     AgentResponse `json:"agent"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// CreateAgentRequest registers a staff account.
type CreateAgentRequest struct {
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Privileged bool   `json:"privileged"`
}

// AgentResponse is the staff account representation. The password hash is
// never exposed.
type AgentResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Privileged bool      `json:"privileged"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAgentResponse maps a domain agent.
func NewAgentResponse(a *domain.Agent) AgentResponse {
	return AgentResponse{
		ID:         a.ID,
		Username:   a.Username,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Email:      a.Email,
		Privileged: a.Privileged,
		Active:     a.Active,
		CreatedAt:  a.CreatedAt,
	}
}
