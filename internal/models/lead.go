package models

import "time"

// Interest levels assigned by the lead extraction engine.
const (
	InterestLow  = "low"
	InterestHigh = "high"
)

// Chat message roles.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of a chat-bot conversation. Only user-authored
// messages feed lead extraction.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LeadRecord is a best-effort contact extraction from a chat transcript,
// keyed by the originating chat session. Fields may be partially populated;
// it is a triage signal for staff, not authoritative personal data.
type LeadRecord struct {
	SessionID     string    `json:"sessionId"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Name          string    `json:"name,omitempty"`
	BusinessName  string    `json:"businessName,omitempty"`
	InterestLevel string    `json:"interestLevel"`
	CreatedAt     time.Time `json:"createdAt"`
}
