package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyPersona indicates the persona was built without a name or
// instruction body.
var ErrEmptyPersona = errors.New("persona name and instructions are required")

// Persona is the identity framing injected as the system message: who the
// assistant is, which language it answers in, and the task instructions.
// Immutable value object, built once per request.
type Persona struct {
	name         string
	language     string
	instructions string
}

// NewPersona builds a Persona. Name and instructions must be non-empty;
// language falls back to Italian, matching the journal's audience.
func NewPersona(name, language, instructions string) (Persona, error) {
	name = strings.TrimSpace(name)
	if name == "" || instructions == "" {
		return Persona{}, ErrEmptyPersona
	}
	if language == "" {
		language = "italiano"
	}
	return Persona{name: name, language: language, instructions: instructions}, nil
}

// Content renders the composed instruction block: identity, the directive to
// never self-introduce, the language directive, and the instruction body.
func (p Persona) Content() string {
	return fmt.Sprintf("<Context>Sei un assistente e ti chiami %s.\nNon presentarti mai, limitati a dare la risposta.\nRispondi sempre in %s.\n%s</Context>",
		p.name, p.language, p.instructions)
}

// SystemMessage renders the persona as a system message.
func (p Persona) SystemMessage() Message {
	return System(p.Content())
}
