package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name    string
		kind    SourceKind
		logical string
		want    string
	}{
		{name: "history with inner space", kind: SourceHistory, logical: "Test Room", want: "History_TestRoom"},
		{name: "channel plain", kind: SourceChannel, logical: "general", want: "Channel_general"},
		{name: "no whitespace untouched", kind: SourceHistory, logical: "Standup", want: "History_Standup"},
		{name: "tabs and newlines stripped", kind: SourceHistory, logical: "a\tb\nc", want: "History_abc"},
		{name: "leading and trailing space", kind: SourceChannel, logical: "  dev talk  ", want: "Channel_devtalk"},
		{name: "unicode space stripped", kind: SourceHistory, logical: "a b", want: "History_ab"},
		{name: "empty logical name", kind: SourceHistory, logical: "", want: "History_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(tt.kind, tt.logical))
		})
	}
}

func TestNameIsDeterministic(t *testing.T) {
	first := Name(SourceHistory, "Test Room")
	second := Name(SourceHistory, "Test Room")
	assert.Equal(t, first, second)
}

func TestSchemaFor(t *testing.T) {
	schema := SchemaFor(SourceHistory, "History_TestRoom", "mistral")
	assert.Equal(t, "History_TestRoom", schema.Class)
	assert.Equal(t, []string{"timestamp", "role", "content"}, schema.PropertyNames())
	assert.Equal(t, "text2vec-mistral", schema.Vectorizer)
	assert.Equal(t, "generative-mistral", schema.Generative)

	schema = SchemaFor(SourceChannel, "Channel_general", "openai")
	assert.Equal(t, []string{"sourceId", "channelId", "author", "role", "content", "timestamp"}, schema.PropertyNames())
	assert.Equal(t, "text2vec-openai", schema.Vectorizer)
	assert.Equal(t, "generative-openai", schema.Generative)
}

func TestSchemaForReturnsCopies(t *testing.T) {
	first := SchemaFor(SourceHistory, "History_TestRoom", "mistral")
	first.Properties[0].Name = "mutated"

	second := SchemaFor(SourceHistory, "History_TestRoom", "mistral")
	assert.Equal(t, "timestamp", second.Properties[0].Name)
}
