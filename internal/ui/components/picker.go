package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

// Picker cycles through a fixed option list with left/right. It backs
// select fields and list filters.
type Picker struct {
	Options  []form.Option
	Selected int
}

// NewPicker creates a picker positioned on value. When value is not among
// the options nothing is selected until the user moves.
func NewPicker(options []form.Option, value string) Picker {
	p := Picker{Options: options, Selected: -1}
	p.Select(value)
	return p
}

// Select moves to the option with the given value and reports whether it
// exists. An unknown value clears the selection.
func (p *Picker) Select(value string) bool {
	for i, o := range p.Options {
		if o.Value == value {
			p.Selected = i
			return true
		}
	}
	p.Selected = -1
	return false
}

// Value returns the selected option value, or "" when nothing is selected.
func (p Picker) Value() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	return p.Options[p.Selected].Value
}

// Label returns the selected option label.
func (p Picker) Label() string {
	if p.Selected < 0 || p.Selected >= len(p.Options) {
		return ""
	}
	o := p.Options[p.Selected]
	if o.Label == "" {
		return o.Value
	}
	return o.Label
}

// Next advances with wrap-around.
func (p *Picker) Next() {
	if len(p.Options) > 0 {
		p.Selected = (p.Selected + 1) % len(p.Options)
	}
}

// Prev steps back with wrap-around.
func (p *Picker) Prev() {
	switch {
	case len(p.Options) == 0:
	case p.Selected <= 0:
		p.Selected = len(p.Options) - 1
	default:
		p.Selected--
	}
}

// Update reports whether the selection changed.
func (p Picker) Update(msg tea.Msg) (Picker, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, false
	}
	before := p.Selected
	switch kmsg.String() {
	case "left", "h":
		p.Prev()
	case "right", "l", "space":
		p.Next()
	}
	return p, p.Selected != before
}

// View renders the options inline with the selected one highlighted.
func (p Picker) View(focused bool) string {
	parts := make([]string, 0, len(p.Options))
	for i, o := range p.Options {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		switch {
		case i == p.Selected && focused:
			parts = append(parts, theme.Selected.Render("["+label+"]"))
		case i == p.Selected:
			parts = append(parts, theme.Label.Render("["+label+"]"))
		default:
			parts = append(parts, lipgloss.NewStyle().Foreground(theme.TextDim).Render(" "+label+" "))
		}
	}
	arrowStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	return arrowStyle.Render("◂ ") + strings.Join(parts, " ") + arrowStyle.Render(" ▸")
}

// Checkbox renders a boolean toggle.
func Checkbox(checked, focused bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	if focused {
		return theme.Selected.Render(box)
	}
	return theme.Body.Render(box)
}
