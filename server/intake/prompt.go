package intake

import (
	"fmt"
	"strings"
)

// openingMessage is the assistant turn every session starts with. It is
// static: no provider call is needed to open a session.
const openingMessage = "Hi! I'll help you set up your professional website. " +
	"Let's start simple: what's your name, and what do you do?"

// systemPrompt renders the extraction instructions for the model. The
// conversational reply comes first; the structured update rides in a trailing
// fenced JSON block the engine strips before showing the reply to the user.
func systemPrompt(schema *Schema) string {
	var b strings.Builder
	b.WriteString("You are a friendly onboarding assistant for a website builder. ")
	b.WriteString("You interview a professional to collect the information their website needs. ")
	b.WriteString("Keep replies short and conversational, and ask about missing details one or two at a time.\n\n")
	b.WriteString("After every reply, append a fenced ```json block containing only the fields ")
	b.WriteString("you newly learned or that changed in this message. Known fields:\n")

	for _, field := range schema.Fields() {
		kind := "string"
		if field.Kind == ListField {
			kind = "array of strings"
		}
		required := ""
		if field.Required {
			required = ", required"
		}
		fmt.Fprintf(&b, "- %s (%s%s): %s\n", field.Name, kind, required, field.Description)
	}

	b.WriteString("\nNever invent values the user did not state. ")
	b.WriteString("If a message contains no new information, emit an empty object: {}.")
	return b.String()
}
