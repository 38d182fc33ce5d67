package domain

// Principal is the authenticated staff identity evaluated by the status
// machine, the assignment policy and the visibility policy.
type Principal struct {
	ID         int64
	Username   string
	Privileged bool
}
