package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/carmarket/carmarket/internal/ui/theme"
)

const titleFull = ` ██████╗ █████╗ ██████╗ ███╗   ███╗ █████╗ ██████╗ ██╗  ██╗███████╗████████╗
██╔════╝██╔══██╗██╔══██╗████╗ ████║██╔══██╗██╔══██╗██║ ██╔╝██╔════╝╚══██╔══╝
██║     ███████║██████╔╝██╔████╔██║███████║██████╔╝█████╔╝ █████╗     ██║
██║     ██╔══██║██╔══██╗██║╚██╔╝██║██╔══██║██╔══██╗██╔═██╗ ██╔══╝     ██║
╚██████╗██║  ██║██║  ██║██║ ╚═╝ ██║██║  ██║██║  ██║██║  ██╗███████╗   ██║
 ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝     ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚═╝  ╚═╝╚══════╝   ╚═╝`

const titleCompact = "C A R · M A R K E T"

// titleFullWidth is the column count of titleFull.
const titleFullWidth = 78

// contentWidth returns the uniform inner width used for all sections.
func contentWidth(frameWidth int) int {
	// Leave room for the frame border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 84 {
		w = 84
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	art := titleFull
	if compact || cw < titleFullWidth {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatusBar shows the backend and what the request log recorded.
func renderStatusBar(st Status, cw int) string {
	backend := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render("● " + st.Backend)

	var log string
	switch {
	case !st.LogEnabled:
		log = theme.Hint.Render("журнал запросов отключён")
	case st.Failed > 0:
		log = lipgloss.NewStyle().Foreground(theme.Warning).
			Render(fmt.Sprintf("запросов: %d, ошибок: %d", st.Requests, st.Failed))
	default:
		log = lipgloss.NewStyle().Foreground(theme.Success).
			Render(fmt.Sprintf("запросов: %d", st.Requests))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Border).
		Width(cw-2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(backend + "   " + log)
}

func renderMenuBox(menu string, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Render(menu)
}

// renderFrame wraps content in a double-border frame centered in the area.
func renderFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).   // account for border chars
		Height(height-2). // account for border chars
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
