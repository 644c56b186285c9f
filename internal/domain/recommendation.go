package domain

import "time"

// FollowStatus is the decision recorded for a recommendation.
type FollowStatus string

const (
	FollowPending  FollowStatus = "pending"
	FollowFollowed FollowStatus = "followed"
	FollowSkipped  FollowStatus = "skipped"
)

// Valid reports whether s is a known follow status.
func (s FollowStatus) Valid() bool {
	switch s {
	case FollowPending, FollowFollowed, FollowSkipped:
		return true
	default:
		return false
	}
}

// Terminal reports whether s can no longer change.
func (s FollowStatus) Terminal() bool {
	return s == FollowFollowed || s == FollowSkipped
}

// CanTransitionTo reports whether a recommendation may move from s to next.
// Only pending recommendations move, and only to followed or skipped.
func (s FollowStatus) CanTransitionTo(next FollowStatus) bool {
	return s == FollowPending && next.Terminal()
}

// Recommendation is a suggested account to follow, owned by one Account.
type Recommendation struct {
	ID        int64        `json:"id"`
	AccountID int64        `json:"account_id"`
	Handle    string       `json:"recommended_user"`
	Reason    string       `json:"reason"`
	Status    FollowStatus `json:"follow_status"`
	CreatedAt time.Time    `json:"created_at"`
}
