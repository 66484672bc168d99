package core

import "time"

// Role identifies the speaker of a dialogue entry.
type Role string

const (
	// RoleUser marks an entry authored by the human side of the exchange.
	RoleUser Role = "user"
	// RoleAssistant marks an entry authored by the model side of the exchange.
	RoleAssistant Role = "assistant"
)

// DialogueEntry is one conversation turn as it is persisted in a collection.
// Entries are immutable once stored and are identified by a generated UUID
// assigned at write time, never by any externally supplied identifier.
type DialogueEntry struct {
	Timestamp string `json:"timestamp"` // RFC 3339 / ISO-8601
	Role      Role   `json:"role"`
	Content   string `json:"content"`
}

// NewDialogueEntry stamps a turn with the given timestamp.
func NewDialogueEntry(ts time.Time, role Role, content string) DialogueEntry {
	return DialogueEntry{Timestamp: ts.UTC().Format(time.RFC3339), Role: role, Content: content}
}

// Properties returns the entry as a store property map. The map is freshly
// allocated on every call so callers may mutate it freely.
func (e DialogueEntry) Properties() map[string]any {
	return map[string]any{
		"timestamp": e.Timestamp,
		"role":      string(e.Role),
		"content":   e.Content,
	}
}
