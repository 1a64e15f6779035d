// Package formview renders a form.Session as Bubble Tea inputs and turns
// submission attempts into commands.
package formview

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// ResultMsg carries the outcome of one submission attempt back into the
// update loop, where the owning screen resolves it against its session.
type ResultMsg struct {
	Attempt form.Attempt
	Result  json.RawMessage
	Err     error
}

// Submit performs one request for attempt a off the update loop.
func Submit(ctx context.Context, r form.Requester, a form.Attempt, method, path string, body any) tea.Cmd {
	return func() tea.Msg {
		result, err := form.Call(ctx, r, method, path, body)
		return ResultMsg{Attempt: a, Result: result, Err: err}
	}
}

type input struct {
	field  form.Field
	text   components.TextInput
	picker components.Picker
}

func (in *input) textual() bool {
	return in.field.Kind != form.KindSelect && in.field.Kind != form.KindCheckbox
}

// Model is the editable view of a session. It owns focus and the widgets;
// values, errors and the lifecycle stay in the session.
type Model struct {
	session *form.Session
	inputs  []*input
	focus   int
}

// New builds inputs for every field of s.
func New(s *form.Session) *Model {
	m := &Model{session: s}
	for _, f := range s.Schema().Fields() {
		in := &input{field: f}
		switch f.Kind {
		case form.KindSelect:
			in.picker = components.NewPicker(f.Options, form.Stringify(s.Value(f.Key)))
		case form.KindCheckbox:
		default:
			in.text = components.NewTextInput(f)
		}
		m.inputs = append(m.inputs, in)
	}
	return m
}

// Session returns the underlying session.
func (m *Model) Session() *form.Session { return m.session }

// Focused returns the key of the focused field.
func (m *Model) Focused() string {
	if len(m.inputs) == 0 {
		return ""
	}
	return m.inputs[m.focus].field.Key
}

// Init focuses the first field.
func (m *Model) Init() tea.Cmd {
	return m.setFocus(0)
}

func (m *Model) setFocus(i int) tea.Cmd {
	if len(m.inputs) == 0 {
		return nil
	}
	cur := m.inputs[m.focus]
	if cur.textual() {
		cur.text.Blur()
	}
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	next := m.inputs[m.focus]
	if next.textual() {
		return next.text.Focus()
	}
	return nil
}

// Update routes key presses to the focused widget and writes changes into
// the session. It reports whether the user asked to submit.
func (m *Model) Update(msg tea.Msg) (tea.Cmd, bool) {
	if len(m.inputs) == 0 {
		return nil, false
	}
	kmsg, isKey := msg.(tea.KeyMsg)
	if isKey {
		switch kmsg.String() {
		case "tab", "down":
			return m.setFocus(m.focus + 1), false
		case "shift+tab", "up":
			return m.setFocus(m.focus - 1), false
		case "enter", "ctrl+s":
			return nil, true
		}
	}

	in := m.inputs[m.focus]
	switch in.field.Kind {
	case form.KindSelect:
		var changed bool
		in.picker, changed = in.picker.Update(msg)
		if changed {
			m.set(in.field.Key, in.picker.Value())
		}
		return nil, false
	case form.KindCheckbox:
		if isKey && kmsg.String() == "space" {
			checked, _ := m.session.Value(in.field.Key).(bool)
			m.set(in.field.Key, !checked)
		}
		return nil, false
	}

	before := in.text.Value()
	var cmd tea.Cmd
	in.text, cmd = in.text.Update(msg)
	if after := in.text.Value(); after != before {
		m.set(in.field.Key, after)
		// Coercion may have stripped characters; keep the widget in sync.
		// Numbers stay as typed so "1." can become "1.5".
		if shown, ok := m.session.Value(in.field.Key).(string); ok && shown != after && in.field.Kind != form.KindNumber {
			in.text.SetValue(shown)
		}
	}
	return cmd, false
}

func (m *Model) set(key string, v any) {
	// Errors here mean the session is closed; the screen is leaving.
	_ = m.session.SetValue(key, v)
}

// SetValue fills a field programmatically, keeping the widget in sync.
func (m *Model) SetValue(key string, v any) error {
	if err := m.session.SetValue(key, v); err != nil {
		return err
	}
	m.Sync()
	return nil
}

// Sync copies session values into the widgets, after Clear for instance.
func (m *Model) Sync() {
	for _, in := range m.inputs {
		v := m.session.Value(in.field.Key)
		switch in.field.Kind {
		case form.KindSelect:
			in.picker.Select(form.Stringify(v))
		case form.KindCheckbox:
		default:
			in.text.SetValue(form.Stringify(v))
		}
	}
}

// View renders every field, the completion bar and the submit button.
func (m *Model) View(width int, submitLabel string) string {
	var b strings.Builder
	for i, in := range m.inputs {
		focused := i == m.focus
		var control string
		switch in.field.Kind {
		case form.KindSelect:
			control = in.picker.View(focused)
		case form.KindCheckbox:
			checked, _ := m.session.Value(in.field.Key).(bool)
			control = components.Checkbox(checked, focused)
		default:
			control = in.text.View()
		}
		b.WriteString(components.FieldView(in.field.Label, control, m.session.VisibleError(in.field.Key), focused, in.field.Required))
		b.WriteString("\n\n")
	}

	barWidth := width - 8
	if barWidth > 50 {
		barWidth = 50
	}
	label := fmt.Sprintf("%d/%d", m.session.Filled(), m.session.Total())
	b.WriteString(components.NewProgressBar(label, m.session.Progress(), true, barWidth).View())
	b.WriteString("\n\n")

	btn := components.NewButton(submitLabel, true, nil)
	btn.Disabled = !m.session.Submittable()
	b.WriteString(btn.View())
	if btn.Disabled && m.session.State() != form.Submitting {
		b.WriteString("  " + theme.Hint.Render("заполните обязательные поля"))
	}
	return b.String()
}
