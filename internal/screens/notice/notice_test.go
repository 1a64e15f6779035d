package notice

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func TestNoticeView(t *testing.T) {
	n := New("Подтверждение телефона", "Номер не указан", "CARMARKET_PHONE")
	if n.Title() != "Подтверждение телефона" {
		t.Errorf("title = %q", n.Title())
	}
	view := n.View(80, 20)
	for _, want := range []string{"Номер не указан", "CARMARKET_PHONE"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if _, cmd := n.Update(tea.KeyPressMsg{Code: 'x'}); cmd != nil {
		t.Error("notice should ignore keys")
	}
}
