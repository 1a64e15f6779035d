package components

import (
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// TextInput wraps bubbles/textinput for one form field. Keystrokes the
// field kind can never accept are dropped before they reach the model.
type TextInput struct {
	Model textinput.Model
	Field form.Field
}

// NewTextInput creates an unfocused input for f.
func NewTextInput(f form.Field) TextInput {
	ti := textinput.New()
	ti.Placeholder = f.Placeholder
	ti.Prompt = "› "
	if f.MaxLength > 0 {
		ti.CharLimit = f.MaxLength
	}
	if f.Kind == form.KindPassword {
		ti.EchoMode = textinput.EchoPassword
	}
	if f.Default != nil && f.Kind != form.KindSelect && f.Kind != form.KindCheckbox {
		ti.SetValue(form.Stringify(f.Default))
	}
	return TextInput{Model: ti, Field: f}
}

// Update handles messages.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		key := kmsg.String()
		if len([]rune(key)) == 1 && !t.accepts([]rune(key)[0]) {
			return t, nil
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextInput) accepts(r rune) bool {
	isDigit := r >= '0' && r <= '9'
	switch {
	case t.Field.DigitsOnly:
		return isDigit
	case t.Field.Kind == form.KindNumber:
		return isDigit || r == '.' || r == ',' || r == '-'
	case t.Field.Kind == form.KindTel:
		return isDigit || r == '+'
	}
	return true
}

// Focus focuses the input.
func (t *TextInput) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes focus.
func (t *TextInput) Blur() {
	t.Model.Blur()
}

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool {
	return t.Model.Focused()
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
func (t *TextInput) SetValue(v string) {
	t.Model.SetValue(v)
}

// FieldView renders a labelled field with its inline error underneath.
func FieldView(label, control, errMsg string, focused, required bool) string {
	style := theme.Label
	if focused {
		style = theme.Selected
	}
	head := style.Render(label)
	if required {
		head += lipgloss.NewStyle().Foreground(theme.Primary).Render(" *")
	}
	out := head + "\n  " + control
	if errMsg != "" {
		out += "\n  " + theme.FieldError.Render(errMsg)
	}
	return out
}
