package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput wraps bubbles/textinput with app defaults.
type TextInput struct {
	Model textinput.Model
}

// NewTextInput creates a blurred text input. A charLimit of 0 means no limit.
func NewTextInput(placeholder string, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti}
}

// NewPasswordInput creates a masked text input.
func NewPasswordInput(placeholder string) TextInput {
	t := NewTextInput(placeholder, 128)
	t.SetMasked(true)
	return t
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t TextInput) View() string {
	return t.Model.View()
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input text.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes keyboard focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
}

// Masked reports whether the input hides its characters.
func (t TextInput) Masked() bool {
	return t.Model.EchoMode == textinput.EchoPassword
}

// SetMasked shows or hides the typed characters.
func (t *TextInput) SetMasked(masked bool) {
	if masked {
		t.Model.EchoMode = textinput.EchoPassword
		t.Model.EchoCharacter = '•'
		return
	}
	t.Model.EchoMode = textinput.EchoNormal
}
