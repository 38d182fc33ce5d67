package domain

import "time"

// Platform is an external system allowed to submit tickets. The API key is
// minted server-side at registration; the platform name recorded on tickets
// always comes from the key lookup, never from the request payload.
type Platform struct {
	ID        int64
	Name      string
	APIKey    string
	Active    bool
	CreatedAt time.Time
}
