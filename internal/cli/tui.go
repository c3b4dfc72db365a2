package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/adforge/pkg/creative"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// VariationPickerModel - Interactive variation selection
// =============================================================================

// VariationPickerModel is the bubbletea model for choosing which variations
// to export. Space toggles a row, a selects all, enter confirms.
type VariationPickerModel struct {
	Variations []*creative.LayoutVariation
	Cursor     int
	Checked    map[int]bool
	Confirmed  bool
	Height     int
	Offset     int
}

// NewVariationPickerModel creates a picker with every variation checked.
func NewVariationPickerModel(vs []*creative.LayoutVariation) VariationPickerModel {
	checked := make(map[int]bool, len(vs))
	for i := range vs {
		checked[i] = true
	}
	return VariationPickerModel{Variations: vs, Checked: checked, Height: 15}
}

// Selected returns the checked variations in their original order, or nil
// when the picker was dismissed.
func (m VariationPickerModel) Selected() []*creative.LayoutVariation {
	if !m.Confirmed {
		return nil
	}
	var out []*creative.LayoutVariation
	for i, v := range m.Variations {
		if m.Checked[i] {
			out = append(out, v)
		}
	}
	return out
}

func (m VariationPickerModel) Init() tea.Cmd {
	return nil
}

func (m VariationPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Variations)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			m.Checked[m.Cursor] = !m.Checked[m.Cursor]
		case "a":
			all := m.count() < len(m.Variations)
			for i := range m.Variations {
				m.Checked[i] = all
			}
		case "enter":
			if m.count() == 0 {
				return m, nil
			}
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m VariationPickerModel) count() int {
	n := 0
	for i := range m.Variations {
		if m.Checked[i] {
			n++
		}
	}
	return n
}

func (m VariationPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Variations"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a all  ⏎ export  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Variations))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		v := m.Variations[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Checked[i] {
			box = "[x]"
		}
		rows = append(rows, []string{
			cursor + box,
			v.Name,
			v.Style,
			v.Channel,
			strconv.Itoa(v.Compliance.Overall),
			strconv.Itoa(v.PerformanceScore),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "Style", "Channel", "Compliance", "Performance").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			if idx >= len(m.Variations) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if !m.Checked[idx] {
				base = base.Foreground(colorDim)
			} else if col >= 4 {
				score := m.Variations[idx].Compliance.Overall
				if col == 5 {
					score = m.Variations[idx].PerformanceScore
				}
				base = scoreStyle(score)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d of %d selected", m.count(), len(m.Variations))))

	return b.String()
}

// pickVariations runs the picker and returns the confirmed selection.
func pickVariations(vs []*creative.LayoutVariation) ([]*creative.LayoutVariation, error) {
	final, err := tea.NewProgram(NewVariationPickerModel(vs)).Run()
	if err != nil {
		return nil, err
	}
	return final.(VariationPickerModel).Selected(), nil
}
