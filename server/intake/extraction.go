package intake

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Extraction is the parsed result of one model response: the conversational
// reply to show the user and the validated field delta.
type Extraction struct {
	Reply string
	Delta CollectedData
}

// ParseExtraction splits a raw model response into reply text and a field
// delta. The model is instructed to end its reply with a fenced ```json
// block; a bare trailing JSON object is accepted as a fallback. A malformed
// or missing block is not an error: the turn still commits with an empty
// delta so the conversation keeps flowing.
func ParseExtraction(schema *Schema, raw string) *Extraction {
	reply, blob := splitStructuredBlock(raw)

	ext := &Extraction{
		Reply: strings.TrimSpace(reply),
		Delta: CollectedData{},
	}
	if blob == "" {
		return ext
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(blob), &decoded); err != nil {
		slog.Debug("malformed extraction block, committing turn with empty delta",
			slog.String("error", err.Error()))
		return ext
	}

	ext.Delta = validateDelta(schema, decoded)
	return ext
}

// splitStructuredBlock returns the visible reply and the raw JSON payload.
func splitStructuredBlock(raw string) (reply string, blob string) {
	// Preferred form: a trailing fenced block.
	if idx := strings.LastIndex(raw, "```json"); idx >= 0 {
		rest := raw[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return raw[:idx] + rest[end+3:], strings.TrimSpace(rest[:end])
		}
		// Unterminated fence: take everything after it.
		return raw[:idx], strings.TrimSpace(rest)
	}

	// Fallback: a bare JSON object at the end of the response.
	trimmed := strings.TrimSpace(raw)
	if strings.HasSuffix(trimmed, "}") {
		if start := strings.LastIndex(trimmed, "\n{"); start >= 0 {
			return trimmed[:start], trimmed[start+1:]
		}
		// The whole response is a JSON object with no prose before it.
		if strings.HasPrefix(trimmed, "{") {
			return "", trimmed
		}
	}

	return raw, ""
}

// validateDelta filters an untrusted decoded payload field-by-field against
// the schema. Unknown keys and mistyped values are dropped, never propagated.
func validateDelta(schema *Schema, decoded map[string]any) CollectedData {
	delta := CollectedData{}
	for key, value := range decoded {
		field, ok := schema.Field(key)
		if !ok {
			slog.Debug("dropping unknown extraction field", slog.String("field", key))
			continue
		}

		switch field.Kind {
		case ScalarField:
			if s, ok := coerceScalar(value); ok {
				delta[key] = s
			}
		case ListField:
			if items, ok := coerceList(value); ok {
				delta[key] = items
			}
		}
	}
	return delta
}

func coerceScalar(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		s := strings.TrimSpace(v)
		return s, s != ""
	case float64:
		// Models frequently emit numbers for fields like yearsOfExperience.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v)), true
		}
		return fmt.Sprintf("%g", v), true
	}
	return "", false
}

func coerceList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				items = append(items, strings.TrimSpace(s))
			}
		}
		return items, len(items) > 0
	case string:
		// A lone string for a list field counts as a single-item list.
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}, true
		}
	}
	return nil, false
}
