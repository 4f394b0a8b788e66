package models

import "time"

// ConversationState is the step a chat is at in the guided setup.
type ConversationState string

const (
	StateIdle         ConversationState = "idle"
	StateAwaitAdID    ConversationState = "await_ad_id"
	StateChooseRegion ConversationState = "choose_region"
	StateAwaitQueries ConversationState = "await_queries"
)

// Session is the bookkeeping of one chat: what it tracks and where it is in
// the conversation. It belongs to that chat only.
type Session struct {
	ChatID    int64
	TargetID  string
	Regions   []RegionCode
	State     ConversationState
	UpdatedAt time.Time
}

// Ready reports whether the session has everything a sweep needs except the
// queries.
func (s *Session) Ready() bool {
	return s.TargetID != "" && len(s.Regions) > 0
}
