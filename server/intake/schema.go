// Package intake implements the conversational profile extraction engine:
// multi-turn dialogue sessions that incrementally pull structured profile
// fields out of free-text user messages via a language-model gateway.
package intake

// FieldKind distinguishes single-valued fields from accumulating lists.
type FieldKind string

const (
	ScalarField FieldKind = "scalar"
	ListField   FieldKind = "list"
)

// Field describes one entry of the profile schema.
type Field struct {
	Name        string
	Kind        FieldKind
	Required    bool
	Weight      int
	Description string // shown to the model in the extraction instructions
}

// Schema is the fixed set of profile fields the engine extracts, with the
// weight table driving progress computation. The weights are configuration:
// callers may supply their own schema as long as weights stay positive.
type Schema struct {
	fields []Field
	byName map[string]*Field
}

// NewSchema builds a schema from a field list.
func NewSchema(fields []Field) *Schema {
	s := &Schema{
		fields: fields,
		byName: make(map[string]*Field, len(fields)),
	}
	for i := range s.fields {
		s.byName[s.fields[i].Name] = &s.fields[i]
	}
	return s
}

// DefaultSchema returns the profile schema for professional websites.
// Required fields carry weight 15 and gate completion; optional fields carry
// weight 5 and only contribute to progress. Weights sum to 100.
func DefaultSchema() *Schema {
	return NewSchema([]Field{
		{Name: "name", Kind: ScalarField, Required: true, Weight: 15, Description: "the professional's full name"},
		{Name: "profession", Kind: ScalarField, Required: true, Weight: 15, Description: "their profession or occupation"},
		{Name: "bio", Kind: ScalarField, Required: true, Weight: 15, Description: "a short professional biography"},
		{Name: "services", Kind: ListField, Required: true, Weight: 15, Description: "services they offer to clients"},
		{Name: "specializations", Kind: ListField, Weight: 5, Description: "areas of specialization"},
		{Name: "serviceAreas", Kind: ListField, Weight: 5, Description: "geographic areas they serve"},
		{Name: "languages", Kind: ListField, Weight: 5, Description: "languages they work in"},
		{Name: "companyName", Kind: ScalarField, Weight: 5, Description: "their company or practice name"},
		{Name: "tagline", Kind: ScalarField, Weight: 5, Description: "a short tagline or slogan"},
		{Name: "phone", Kind: ScalarField, Weight: 5, Description: "contact phone number"},
		{Name: "location", Kind: ScalarField, Weight: 5, Description: "city or region where they are based"},
		{Name: "yearsOfExperience", Kind: ScalarField, Weight: 5, Description: "years of professional experience"},
	})
}

// Field looks up a schema field by name.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Fields returns the schema fields in declaration order.
func (s *Schema) Fields() []Field {
	return s.fields
}

// TotalWeight returns the sum of all field weights.
func (s *Schema) TotalWeight() int {
	total := 0
	for _, f := range s.fields {
		total += f.Weight
	}
	return total
}
