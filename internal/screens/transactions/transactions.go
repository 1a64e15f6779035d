// Package transactions is the payment history screen: type filter,
// summary counters over the whole history and refund requests.
package transactions

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/api"
	"github.com/carmarket/carmarket/internal/catalog"
	"github.com/carmarket/carmarket/internal/form"
	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/screens/formscreen"
	"github.com/carmarket/carmarket/internal/ui/components"
	"github.com/carmarket/carmarket/internal/ui/layout"
	"github.com/carmarket/carmarket/internal/ui/remote"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

var filters = []form.Option{
	{Value: "all", Label: "Все"},
	{Value: "payment", Label: "Платежи"},
	{Value: "refund", Label: "Возвраты"},
	{Value: "bonus", Label: "Бонусы"},
}

var typeLabels = map[string]string{
	"payment":    "Оплата",
	"refund":     "Возврат",
	"bonus":      "Бонус",
	"withdrawal": "Вывод",
}

// Screen lists transactions.
type Screen struct {
	requester form.Requester
	catalog   *catalog.Catalog

	filter components.Picker
	list   remote.Loader[[]api.Transaction]
	cursor int

	ctx    context.Context
	cancel context.CancelFunc
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.Closer          = (*Screen)(nil)
	_ screen.Resumer         = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
)

// New creates the history screen showing all transactions.
func New(r form.Requester, c *catalog.Catalog) *Screen {
	ctx, cancel := context.WithCancel(context.Background())
	return &Screen{
		requester: r,
		catalog:   c,
		filter:    components.NewPicker(filters, "all"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *Screen) Title() string { return "История платежей" }

func (s *Screen) Init() tea.Cmd {
	return s.list.Load(s.ctx, s.requester, api.PathTransactions)
}

func (s *Screen) Close() { s.cancel() }

// Resume reloads after a refund form closes.
func (s *Screen) Resume() tea.Cmd { return s.Init() }

// Transactions returns the entries matching the type filter.
func (s *Screen) Transactions() []api.Transaction {
	all := s.list.Data()
	kind := s.filter.Value()
	if kind == "all" {
		return all
	}
	var out []api.Transaction
	for _, tx := range all {
		if tx.Type == kind {
			out = append(out, tx)
		}
	}
	return out
}

// Stats summarises the whole history regardless of the filter.
func (s *Screen) Stats() api.TransactionStats { return api.Summarize(s.list.Data()) }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Выбор"},
		{Key: "←→", Description: "Фильтр"},
		{Key: "R", Description: "Возврат"},
		{Key: "N", Description: "Новый платёж"},
		{Key: "Esc", Description: "Назад"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case remote.LoadedMsg[[]api.Transaction]:
		if s.list.Accept(msg, "Ошибка загрузки транзакций") {
			if n := len(s.Transactions()); s.cursor >= n {
				s.cursor = max(n-1, 0)
			}
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.Transactions())-1 {
				s.cursor++
			}
		case "left", "right", "h", "l":
			var changed bool
			s.filter, changed = s.filter.Update(msg)
			if changed {
				s.cursor = 0
			}
		case "n":
			return s, router.Navigate("/payments/new")
		case "r":
			return s, s.refund()
		case "ctrl+r":
			return s, s.Init()
		}
	}
	return s, nil
}

// refund opens the refund form for the selected transaction when the
// backend would accept it.
func (s *Screen) refund() tea.Cmd {
	txs := s.Transactions()
	if s.cursor >= len(txs) {
		return nil
	}
	tx := txs[s.cursor]
	if !tx.Refundable() {
		return screen.Toast(screen.ToastInfo, "Возврат доступен только для завершённых платежей")
	}
	entry, err := s.catalog.Lookup("refund")
	if err != nil {
		return screen.Toast(screen.ToastError, err.Error())
	}
	fs := formscreen.New(entry, s.requester,
		formscreen.WithParams(map[string]string{"id": strconv.FormatInt(tx.ID, 10)}),
		formscreen.WithSubmitLabel("Запросить возврат"),
		formscreen.WithOnSuccess(func(json.RawMessage) tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}),
	)
	return func() tea.Msg { return router.PushScreenMsg{Screen: fs} }
}

func formatAmount(tx api.Transaction) string {
	sign := "-"
	if tx.Credit() {
		sign = "+"
	}
	return fmt.Sprintf("%s%.0f %s", sign, tx.Amount, tx.CurrencyCode)
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(s.Title()))
	b.WriteString("   ")
	b.WriteString(s.filter.View(true))
	b.WriteString("\n\n")

	if msg := s.list.Message(); msg != "" {
		b.WriteString(components.RenderBanner(msg))
		b.WriteString("\n\n")
	}
	if !s.list.Loaded() {
		b.WriteString(theme.Hint.Render("Загрузка..."))
		return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
	}

	st := s.Stats()
	b.WriteString(fmt.Sprintf("%s %d   %s %d   %s %d   %s %.0f ₸\n\n",
		theme.Subtitle.Render("Всего:"), st.Total,
		theme.Good.Render("Завершено:"), st.Completed,
		theme.Pending.Render("В обработке:"), st.Pending,
		theme.Subtitle.Render("Оплачено:"), st.TotalAmount,
	))

	txs := s.Transactions()
	if len(txs) == 0 {
		b.WriteString(theme.Hint.Render("Транзакций нет"))
	}
	for i, tx := range txs {
		prefix := "  "
		style := theme.Unselected
		if i == s.cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		label := typeLabels[tx.Type]
		if label == "" {
			label = tx.Type
		}
		amount := formatAmount(tx)
		amountStyle := theme.Bad
		if tx.Credit() {
			amountStyle = theme.Good
		}
		b.WriteString(fmt.Sprintf("%s  %s  %s  %s\n",
			style.Render(fmt.Sprintf("%s#%d %s", prefix, tx.ID, label)),
			amountStyle.Render(amount),
			theme.StatusStyle(tx.Status).Render(tx.Status),
			theme.Hint.Render(tx.CreatedDate.Format("02.01.2006 15:04")),
		))
		b.WriteString("    " + theme.Subtitle.Render(tx.Description) + "\n")
	}

	return lipgloss.NewStyle().Padding(1, 4).Render(b.String())
}
