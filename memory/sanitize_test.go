package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeDropsNullsAtEveryDepth(t *testing.T) {
	payload := map[string]any{
		"content": "hello",
		"edited":  nil,
		"nested": map[string]any{
			"kept":    "yes",
			"dropped": nil,
			"deeper": map[string]any{
				"alsoDropped": nil,
			},
		},
		"list": []any{"a", nil, map[string]any{"x": nil, "y": 1}},
	}

	out := Sanitize(payload)

	assert.Equal(t, "hello", out["content"])
	assert.NotContains(t, out, "edited")

	nested := out["nested"].(map[string]any)
	assert.Equal(t, "yes", nested["kept"])
	assert.NotContains(t, nested, "dropped")
	assert.Empty(t, nested["deeper"].(map[string]any))

	list := out["list"].([]any)
	assert.Len(t, list, 2)
	assert.Equal(t, "a", list[0])
	assert.Equal(t, map[string]any{"y": 1}, list[1])
}

func TestSanitizeRemapsReservedID(t *testing.T) {
	out := Sanitize(map[string]any{"id": "msg-1", "content": "x"})

	assert.Equal(t, "msg-1", out["sourceId"])
	assert.NotContains(t, out, "id")
}

func TestSanitizeDropsReservedIDWhenSourceIDTaken(t *testing.T) {
	out := Sanitize(map[string]any{"id": "msg-1", "sourceId": "original", "content": "x"})

	assert.Equal(t, "original", out["sourceId"])
	assert.NotContains(t, out, "id")
}

func TestSanitizeLeavesInputUntouched(t *testing.T) {
	payload := map[string]any{"id": "msg-1", "gone": nil}

	_ = Sanitize(payload)

	assert.Contains(t, payload, "id")
	assert.Contains(t, payload, "gone")
}

func TestSanitizeEmptyPayload(t *testing.T) {
	out := Sanitize(map[string]any{})
	assert.Empty(t, out)
}
