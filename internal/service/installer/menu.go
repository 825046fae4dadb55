package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	id    string
	title string
}

// menu is the cursor list shared by the selection steps.
type menu struct {
	title   string
	choices []choice
	cursor  int
}

// update moves the cursor and reports the choice confirmed with enter.
func (m *menu) update(msg tea.Msg) (choice, bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return choice{}, false
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		return m.choices[m.cursor], true
	}
	return choice{}, false
}

func (m *menu) view() string {
	var b strings.Builder
	b.WriteString(m.title + "\n\n")
	for i, c := range m.choices {
		if m.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.title)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.title)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
