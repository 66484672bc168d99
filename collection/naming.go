// Package collection owns the lifecycle of one named vector store collection:
// deterministic naming, schema presets per source kind and the lazy
// Unopened → Open / Failed state machine guarding access to the handle.
package collection

import (
	"strings"
	"unicode"
)

// SourceKind selects which memory family a collection belongs to and with it
// the schema the collection is created with.
type SourceKind string

const (
	// SourceHistory is generic dialogue memory (one conversation turn per entry).
	SourceHistory SourceKind = "history"
	// SourceChannel is transport-specific memory (one structured message per entry).
	SourceChannel SourceKind = "channel"
)

// Name derives the deterministic collection name for a source kind and
// logical name: title-cased kind, underscore, logical name, with all
// whitespace stripped from the result. Two logical names that normalize to
// the same string collide; that is accepted behavior, not silently renamed
// around. Example: ("history", "Test Room") -> "History_TestRoom".
func Name(kind SourceKind, logicalName string) string {
	return stripWhitespace(titleCase(string(kind)) + "_" + logicalName)
}

func titleCase(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
