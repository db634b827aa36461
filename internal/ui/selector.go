package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectorItem is one choice of a Selector.
type SelectorItem struct {
	ID          string
	Label       string
	Description string
	// Disabled items are shown dimmed and cannot be chosen.
	Disabled bool
}

// Selector is an interactive single-choice list. Arrow keys or j/k move the
// cursor, digits jump to an item, enter chooses and esc cancels.
type Selector struct {
	title    string
	items    []SelectorItem
	cursor   int
	selected int
	active   bool
	width    int
}

// NewSelector creates an active selector with the cursor on the first
// enabled item.
func NewSelector(title string, items []SelectorItem) Selector {
	s := Selector{
		title:    title,
		items:    items,
		selected: -1,
		active:   true,
		width:    80,
	}
	s.cursor = s.next(-1, 1)
	return s
}

// SetWidth sets the selector width.
func (s *Selector) SetWidth(w int) {
	s.width = w
}

// Active reports whether the selector still awaits a choice.
func (s *Selector) Active() bool {
	return s.active
}

// Cursor returns the index under the cursor.
func (s *Selector) Cursor() int {
	return s.cursor
}

// Selected returns the chosen item ID, or empty while active or after
// cancel.
func (s *Selector) Selected() string {
	if s.selected >= 0 && s.selected < len(s.items) {
		return s.items[s.selected].ID
	}
	return ""
}

// Cancelled reports whether the user backed out.
func (s *Selector) Cancelled() bool {
	return !s.active && s.selected == -1
}

// next returns the nearest enabled index from i in direction dir, or i if
// there is none.
func (s *Selector) next(i, dir int) int {
	for j := i + dir; j >= 0 && j < len(s.items); j += dir {
		if !s.items[j].Disabled {
			return j
		}
	}
	if i < 0 {
		return 0
	}
	return i
}

// Update handles key input.
func (s *Selector) Update(msg tea.Msg) (*Selector, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}

	switch k := key.String(); k {
	case "up", "k":
		s.cursor = s.next(s.cursor, -1)
	case "down", "j":
		s.cursor = s.next(s.cursor, 1)
	case "enter":
		if s.cursor < len(s.items) && !s.items[s.cursor].Disabled {
			s.selected = s.cursor
			s.active = false
		}
	case "esc", "q":
		s.selected = -1
		s.active = false
	default:
		if len(k) == 1 && k[0] >= '1' && k[0] <= '9' {
			if i := int(k[0] - '1'); i < len(s.items) && !s.items[i].Disabled {
				s.cursor = i
			}
		}
	}

	return s, nil
}

// View renders the list, or nothing once a choice was made.
func (s *Selector) View() string {
	if !s.active {
		return ""
	}

	var b strings.Builder

	b.WriteString(HelpStyle.Render(s.title + " (↑/↓ or 1-9, enter select, esc back)"))
	b.WriteString("\n\n")

	for i, item := range s.items {
		isCursor := i == s.cursor

		if isCursor {
			b.WriteString(SelectorCursor.Render(SymbolArrow) + " ")
		} else {
			b.WriteString("  ")
		}

		display := item.Label
		if display == "" {
			display = item.ID
		}
		label := fmt.Sprintf("%d. %-32s", i+1, display)
		switch {
		case item.Disabled:
			b.WriteString(SelectorDim.Render(label))
		case isCursor:
			b.WriteString(SelectorActive.Render(label))
		default:
			b.WriteString(SelectorItemStyle.Render(label))
		}

		if item.Description != "" {
			b.WriteString(SelectorDim.Render(item.Description))
		}
		b.WriteString("\n")
	}

	return b.String()
}
