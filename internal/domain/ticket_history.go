package domain

import "time"

// ChangeType categorizes audited ticket mutations.
type ChangeType string

const (
	ChangeTypeStatus ChangeType = "status"
	ChangeTypeAgent  ChangeType = "agent"
	ChangeTypeFields ChangeType = "fields"
)

// TicketHistory is an audit entry recorded for every applied mutation.
type TicketHistory struct {
	ID         int64
	TicketID   int64
	ChangedBy  *int64
	ChangeType ChangeType
	OldValue   map[string]any
	NewValue   map[string]any
	CreatedAt  time.Time
}
