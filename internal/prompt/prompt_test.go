package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMessage_ValidRoles(t *testing.T) {
	t.Parallel()

	for _, role := range []string{RoleSystem, RoleUser} {
		msg, err := NewMessage(role, "content")
		require.NoError(t, err)
		assert.Equal(t, role, msg.Role)
		assert.Equal(t, "content", msg.Content)
	}
}

func TestNewMessage_RejectsUnknownRoles(t *testing.T) {
	t.Parallel()

	for _, role := range []string{"assistant", "tool", "", "System"} {
		_, err := NewMessage(role, "content")
		assert.ErrorIs(t, err, ErrInvalidRole, "role %q should be rejected", role)
	}
}

func TestPersona_Content(t *testing.T) {
	t.Parallel()

	p, err := NewPersona("Marco", "italiano", "Aiuta con il diario di allenamento.")
	require.NoError(t, err)

	content := p.Content()
	assert.True(t, strings.HasPrefix(content, "<Context>"), "got %q", content)
	assert.True(t, strings.HasSuffix(content, "</Context>"), "got %q", content)
	assert.Contains(t, content, "Sei un assistente e ti chiami Marco.")
	assert.Contains(t, content, "Non presentarti mai, limitati a dare la risposta.")
	assert.Contains(t, content, "Rispondi sempre in italiano.")
	assert.Contains(t, content, "Aiuta con il diario di allenamento.")
}

func TestPersona_DefaultLanguage(t *testing.T) {
	t.Parallel()

	p, err := NewPersona("Marco", "", "istruzioni")
	require.NoError(t, err)
	assert.Contains(t, p.Content(), "Rispondi sempre in italiano.")
}

func TestNewPersona_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewPersona("", "italiano", "istruzioni")
	assert.ErrorIs(t, err, ErrEmptyPersona)

	_, err = NewPersona("   ", "italiano", "istruzioni")
	assert.ErrorIs(t, err, ErrEmptyPersona)

	_, err = NewPersona("Marco", "italiano", "")
	assert.ErrorIs(t, err, ErrEmptyPersona)
}

func TestPersona_SystemMessage(t *testing.T) {
	t.Parallel()

	p, err := NewPersona("Marco", "italiano", "istruzioni")
	require.NoError(t, err)

	msg := p.SystemMessage()
	assert.Equal(t, RoleSystem, msg.Role)
	assert.Equal(t, p.Content(), msg.Content)
}

func TestHistory_EmptyRendersEmpty(t *testing.T) {
	t.Parallel()

	var h History
	assert.Equal(t, "", h.RenderText())
	assert.Equal(t, 0, h.Len())
}

func TestHistory_RenderText(t *testing.T) {
	t.Parallel()

	var h History
	h.Append(User("hello"))

	rendered := h.RenderText()
	assert.Contains(t, rendered, "hello")
	assert.True(t, strings.HasPrefix(rendered, "<Chat_history> {"), "got %q", rendered)
	assert.True(t, strings.HasSuffix(rendered, "}</Chat_history>"), "got %q", rendered)
}

func TestHistory_PreservesOrder(t *testing.T) {
	t.Parallel()

	var h History
	h.Append(User("first"))
	h.Append(User("second"))
	h.Append(User("third"))

	rendered := h.RenderText()
	assert.Equal(t, "<Chat_history> {first;\n second;\n third;\n}</Chat_history>", rendered)
	assert.Equal(t, 3, h.Len())
}
