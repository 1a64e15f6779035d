// Package welcome is the splash screen shown before the main menu.
package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/router"
	"github.com/carmarket/carmarket/internal/screen"
	"github.com/carmarket/carmarket/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	driveEnd     = 1200 * time.Millisecond
	totalDur     = 2000 * time.Millisecond
)

const carArt = `    ______
 __/  |_  \___
|  _     _    \
'-(_)---(_)---'`

// carTravel is how many columns the car moves while driving in.
const carTravel = 24

const banner = "C A R M A R K E T"

type tickMsg time.Time

// WelcomeScreen drives a car across the screen, then waits for a key.
type WelcomeScreen struct {
	homeFactory  func() screen.Screen
	backend      string
	elapsed      time.Duration
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that will transition to the screen produced
// by homeFactory. backend is shown under the banner.
func New(homeFactory func() screen.Screen, backend string) *WelcomeScreen {
	return &WelcomeScreen{
		homeFactory: homeFactory,
		backend:     backend,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned || w.elapsed >= totalDur {
			return w, nil
		}
		w.elapsed += tickInterval
		return w, tick()

	case tea.KeyPressMsg:
		// Any key skips the animation.
		return w, w.transition()
	}

	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	homeScreen := w.homeFactory()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: homeScreen}
	}
}

// carOffset is the car's indent for the current frame.
func (w *WelcomeScreen) carOffset() int {
	if w.elapsed >= driveEnd {
		return carTravel
	}
	return int(int64(carTravel) * int64(w.elapsed) / int64(driveEnd))
}

func (w *WelcomeScreen) View(width, height int) string {
	pad := strings.Repeat(" ", w.carOffset())
	lines := strings.Split(carArt, "\n")
	for i, l := range lines {
		lines[i] = pad + l + strings.Repeat(" ", carTravel-w.carOffset())
	}
	car := lipgloss.NewStyle().Foreground(theme.Primary).Render(strings.Join(lines, "\n"))
	road := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", carTravel+16))

	sections := []string{car, road}

	if w.elapsed >= driveEnd {
		sections = append(sections,
			"",
			lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(banner),
			lipgloss.NewStyle().Foreground(theme.Text).Render("Терминальный клиент маркетплейса"),
		)
		if w.backend != "" {
			sections = append(sections, theme.Hint.Render("● "+w.backend))
		}
		sections = append(sections, "",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
				Render("нажмите любую клавишу"))
	}

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
