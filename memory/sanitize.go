package memory

const (
	reservedIDField = "id"
	sourceIDField   = "sourceId"
)

// Sanitize returns a deep copy of the payload that is safe for the store's
// write path. The store reserves the "id" property name for object
// identifiers, so a top-level "id" field is remapped to "sourceId" and
// dropped entirely when "sourceId" is already taken. Null values are removed
// at every nesting depth, in maps and inside slices, because the store
// rejects explicit nulls but accepts absent fields.
func Sanitize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload))

	for k, v := range payload {
		key := k

		if k == reservedIDField {
			if _, taken := payload[sourceIDField]; taken {
				continue
			}

			key = sourceIDField
		}

		if cleaned, ok := sanitizeValue(v); ok {
			out[key] = cleaned
		}
	}

	return out
}

// sanitizeValue reports whether the value survives sanitization and returns
// its cleaned form. Nulls never survive; containers are rebuilt with their
// surviving elements only.
func sanitizeValue(v any) (any, bool) {
	switch tv := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		out := make(map[string]any, len(tv))

		for k, item := range tv {
			if cleaned, ok := sanitizeValue(item); ok {
				out[k] = cleaned
			}
		}

		return out, true
	case []any:
		out := make([]any, 0, len(tv))

		for _, item := range tv {
			if cleaned, ok := sanitizeValue(item); ok {
				out = append(out, cleaned)
			}
		}

		return out, true
	default:
		return v, true
	}
}
