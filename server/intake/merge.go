package intake

import (
	"encoding/json"
	"math"
	"strings"
)

// CollectedData maps field names to extracted values: strings for scalar
// fields, []string for list fields.
type CollectedData map[string]any

// ParseCollectedData decodes the persisted JSON form. List values arrive as
// []any from encoding/json and are normalized to []string.
func ParseCollectedData(raw string) (CollectedData, error) {
	if raw == "" {
		return CollectedData{}, nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, err
	}

	data := make(CollectedData, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case string:
			data[key] = v
		case []any:
			items := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					items = append(items, s)
				}
			}
			data[key] = items
		}
	}
	return data, nil
}

// Encode serializes the data back to its persisted JSON form.
func (d CollectedData) Encode() (string, error) {
	buf, err := json.Marshal(map[string]any(d))
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// Merge combines a delta into existing data under the schema's merge rules
// and returns a new map; neither input is mutated. Scalars are overwritten
// only by non-empty values. Lists are unioned with insertion order preserved
// and case-insensitive dedupe, so extraction can only ever add data.
func Merge(schema *Schema, data CollectedData, delta CollectedData) CollectedData {
	merged := make(CollectedData, len(data)+len(delta))
	for key, value := range data {
		merged[key] = value
	}

	for key, value := range delta {
		field, ok := schema.Field(key)
		if !ok {
			continue
		}

		switch field.Kind {
		case ScalarField:
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				merged[key] = strings.TrimSpace(s)
			}
		case ListField:
			incoming, ok := value.([]string)
			if !ok {
				continue
			}
			existing, _ := merged[key].([]string)
			merged[key] = unionLists(existing, incoming)
		}
	}

	return merged
}

func unionLists(existing, incoming []string) []string {
	out := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))
	add := func(item string) {
		item = strings.TrimSpace(item)
		if item == "" {
			return
		}
		key := strings.ToLower(item)
		if !seen[key] {
			seen[key] = true
			out = append(out, item)
		}
	}
	for _, item := range existing {
		add(item)
	}
	for _, item := range incoming {
		add(item)
	}
	return out
}

// fieldSatisfied reports whether a field holds usable data.
func fieldSatisfied(field *Field, data CollectedData) bool {
	value, ok := data[field.Name]
	if !ok {
		return false
	}
	switch field.Kind {
	case ScalarField:
		s, ok := value.(string)
		return ok && strings.TrimSpace(s) != ""
	case ListField:
		items, ok := value.([]string)
		return ok && len(items) > 0
	}
	return false
}

// Progress computes the weighted completion percentage, clamped to [0, 100].
// It is a pure function of the collected data, never stored independently.
func Progress(schema *Schema, data CollectedData) int32 {
	total := schema.TotalWeight()
	if total == 0 {
		return 0
	}

	satisfied := 0
	for i := range schema.Fields() {
		field := &schema.Fields()[i]
		if fieldSatisfied(field, data) {
			satisfied += field.Weight
		}
	}

	progress := int32(math.Round(100 * float64(satisfied) / float64(total)))
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	return progress
}

// IsComplete reports whether every required field is satisfied. Completion is
// gated on the required subset only, so optional detail never blocks a user.
func IsComplete(schema *Schema, data CollectedData) bool {
	for i := range schema.Fields() {
		field := &schema.Fields()[i]
		if field.Required && !fieldSatisfied(field, data) {
			return false
		}
	}
	return true
}
