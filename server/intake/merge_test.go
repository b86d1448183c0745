package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeScalar(t *testing.T) {
	schema := DefaultSchema()

	tests := []struct {
		name  string
		data  CollectedData
		delta CollectedData
		want  any
	}{
		{
			name:  "fills empty field",
			data:  CollectedData{},
			delta: CollectedData{"name": "Jordan Lee"},
			want:  "Jordan Lee",
		},
		{
			name:  "overwrites existing value",
			data:  CollectedData{"name": "Jordan"},
			delta: CollectedData{"name": "Jordan Lee"},
			want:  "Jordan Lee",
		},
		{
			name:  "empty value never erases",
			data:  CollectedData{"name": "Jordan Lee"},
			delta: CollectedData{"name": ""},
			want:  "Jordan Lee",
		},
		{
			name:  "whitespace-only value never erases",
			data:  CollectedData{"name": "Jordan Lee"},
			delta: CollectedData{"name": "   "},
			want:  "Jordan Lee",
		},
		{
			name:  "value is trimmed",
			data:  CollectedData{},
			delta: CollectedData{"name": "  Jordan Lee  "},
			want:  "Jordan Lee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(schema, tt.data, tt.delta)
			assert.Equal(t, tt.want, merged["name"])
		})
	}
}

func TestMergeList(t *testing.T) {
	schema := DefaultSchema()

	tests := []struct {
		name  string
		data  CollectedData
		delta CollectedData
		want  []string
	}{
		{
			name:  "starts a list",
			data:  CollectedData{},
			delta: CollectedData{"services": []string{"tax prep"}},
			want:  []string{"tax prep"},
		},
		{
			name:  "union preserves insertion order",
			data:  CollectedData{"services": []string{"tax prep", "audits"}},
			delta: CollectedData{"services": []string{"payroll", "tax prep"}},
			want:  []string{"tax prep", "audits", "payroll"},
		},
		{
			name:  "dedupe is case-insensitive, first casing wins",
			data:  CollectedData{"services": []string{"Tax Prep"}},
			delta: CollectedData{"services": []string{"tax prep", "TAX PREP"}},
			want:  []string{"Tax Prep"},
		},
		{
			name:  "empty delta list changes nothing",
			data:  CollectedData{"services": []string{"audits"}},
			delta: CollectedData{"services": []string{}},
			want:  []string{"audits"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := Merge(schema, tt.data, tt.delta)
			assert.Equal(t, tt.want, merged["services"])
		})
	}
}

func TestMergeIgnoresUnknownAndMistyped(t *testing.T) {
	schema := DefaultSchema()
	data := CollectedData{"name": "Jordan Lee"}

	merged := Merge(schema, data, CollectedData{
		"favoriteColor": "blue",                    // unknown field
		"services":      "not a list",              // mistyped for a list field
		"name":          []string{"not", "scalar"}, // mistyped for a scalar field
	})

	assert.Equal(t, "Jordan Lee", merged["name"])
	assert.NotContains(t, merged, "favoriteColor")
	assert.NotContains(t, merged, "services")
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	schema := DefaultSchema()
	data := CollectedData{"services": []string{"audits"}}
	delta := CollectedData{"services": []string{"payroll"}}

	_ = Merge(schema, data, delta)

	assert.Equal(t, []string{"audits"}, data["services"])
	assert.Equal(t, []string{"payroll"}, delta["services"])
}

func TestProgress(t *testing.T) {
	schema := DefaultSchema()

	tests := []struct {
		name string
		data CollectedData
		want int32
	}{
		{
			name: "empty data",
			data: CollectedData{},
			want: 0,
		},
		{
			name: "one required field",
			data: CollectedData{"name": "Jordan Lee"},
			want: 15,
		},
		{
			name: "one optional field",
			data: CollectedData{"tagline": "Numbers done right"},
			want: 5,
		},
		{
			name: "all required fields only",
			data: CollectedData{
				"name":       "Jordan Lee",
				"profession": "accountant",
				"bio":        "20 years of practice.",
				"services":   []string{"tax prep"},
			},
			want: 60,
		},
		{
			name: "everything",
			data: CollectedData{
				"name":              "Jordan Lee",
				"profession":        "accountant",
				"bio":               "20 years of practice.",
				"services":          []string{"tax prep"},
				"specializations":   []string{"small business"},
				"serviceAreas":      []string{"Denver"},
				"languages":         []string{"English"},
				"companyName":       "Lee & Co",
				"tagline":           "Numbers done right",
				"phone":             "555-0100",
				"location":          "Denver",
				"yearsOfExperience": "20",
			},
			want: 100,
		},
		{
			name: "empty string does not count",
			data: CollectedData{"name": "   "},
			want: 0,
		},
		{
			name: "empty list does not count",
			data: CollectedData{"services": []string{}},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Progress(schema, tt.data))
		})
	}
}

func TestProgressMonotoneUnderMerge(t *testing.T) {
	schema := DefaultSchema()
	data := CollectedData{}

	deltas := []CollectedData{
		{"name": "Jordan Lee"},
		{"profession": "accountant", "services": []string{"tax prep"}},
		{"name": ""}, // attempted erase
		{"services": []string{"payroll"}},
		{"bio": "20 years of practice."},
	}

	last := Progress(schema, data)
	for _, delta := range deltas {
		data = Merge(schema, data, delta)
		p := Progress(schema, data)
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
}

func TestIsComplete(t *testing.T) {
	schema := DefaultSchema()

	complete := CollectedData{
		"name":       "Jordan Lee",
		"profession": "accountant",
		"bio":        "20 years of practice.",
		"services":   []string{"tax prep"},
	}
	assert.True(t, IsComplete(schema, complete))

	// Optional fields never gate completion.
	assert.True(t, IsComplete(schema, Merge(schema, complete, CollectedData{"tagline": "x"})))

	missingBio := CollectedData{
		"name":       "Jordan Lee",
		"profession": "accountant",
		"services":   []string{"tax prep"},
	}
	assert.False(t, IsComplete(schema, missingBio))

	// All optional fields filled still incomplete without required ones.
	optionalOnly := CollectedData{
		"tagline":  "Numbers done right",
		"phone":    "555-0100",
		"location": "Denver",
	}
	assert.False(t, IsComplete(schema, optionalOnly))
}

func TestCollectedDataRoundTrip(t *testing.T) {
	data := CollectedData{
		"name":     "Jordan Lee",
		"services": []string{"tax prep", "audits"},
	}

	encoded, err := data.Encode()
	require.NoError(t, err)

	decoded, err := ParseCollectedData(encoded)
	require.NoError(t, err)
	assert.Equal(t, "Jordan Lee", decoded["name"])
	assert.Equal(t, []string{"tax prep", "audits"}, decoded["services"])
}

func TestParseCollectedDataEmpty(t *testing.T) {
	decoded, err := ParseCollectedData("")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	decoded, err = ParseCollectedData("{}")
	require.NoError(t, err)
	assert.Empty(t, decoded)

	_, err = ParseCollectedData("{not json")
	assert.Error(t, err)
}

func TestDefaultSchemaWeights(t *testing.T) {
	schema := DefaultSchema()
	assert.Equal(t, 100, schema.TotalWeight())

	for _, f := range schema.Fields() {
		assert.Positive(t, f.Weight, "field %s", f.Name)
		if f.Required {
			assert.Equal(t, 15, f.Weight, "field %s", f.Name)
		} else {
			assert.Equal(t, 5, f.Weight, "field %s", f.Name)
		}
	}
}
