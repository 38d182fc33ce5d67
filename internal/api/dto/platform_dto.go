package dto

import (
	"time"

	"github.com/helpdesk-central/ticket-hub/internal/domain"
)

// CreatePlatformRequest registers an intake platform.
type CreatePlatformRequest struct {
	Name string `json:"name"`
}

// PlatformResponse describes a platform without its credential.
type PlatformResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// PlatformCreatedResponse includes the API key. Returned exactly once, at
// registration.
type PlatformCreatedResponse struct {
	PlatformResponse
	APIKey string `json:"api_key"`
}

// NewPlatformResponse maps a domain platform.
func NewPlatformResponse(p *domain.Platform) PlatformResponse {
	return PlatformResponse{
		ID:        p.ID,
		Name:      p.Name,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
	}
}
