package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/arbor/pkg/features"
	"github.com/matzehuels/arbor/pkg/morph"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// FeatureListModel - Interactive feature browser
// =============================================================================

// FeatureListModel is the bubbletea model for browsing features. With a
// morphology, enter evaluates the feature under the cursor on it.
type FeatureListModel struct {
	Features []*features.Feature
	Morph    *morph.Morphology
	Cursor   int
	Height   int
	Offset   int

	values map[string]string
}

// NewFeatureListModel creates a browser over list. m may be nil.
func NewFeatureListModel(list []*features.Feature, m *morph.Morphology) FeatureListModel {
	return FeatureListModel{
		Features: list,
		Morph:    m,
		Height:   15,
		values:   map[string]string{},
	}
}

func (m FeatureListModel) Init() tea.Cmd {
	return nil
}

func (m FeatureListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Features)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if m.Morph != nil && len(m.Features) > 0 {
				f := m.Features[m.Cursor]
				m.values[f.Name] = evaluate(f, m.Morph)
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func evaluate(f *features.Feature, m *morph.Morphology) string {
	var target any = m
	if f.Scope == features.ScopePopulation {
		target = morph.NewPopulation(m)
	}
	v, err := features.Get(f.Name, target)
	if err != nil {
		return "error: " + err.Error()
	}
	return truncate(formatValue(v), 70)
}

func (m FeatureListModel) View() string {
	var b strings.Builder

	title := "Features"
	if m.Morph != nil {
		title += " of " + m.Morph.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	help := "↑/↓ navigate  q quit"
	if m.Morph != nil {
		help = "↑/↓ navigate  ⏎ evaluate  q quit"
	}
	b.WriteString(listDimStyle.Render(help))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Features))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		f := m.Features[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		value := m.values[f.Name]
		if value == "" {
			value = "—"
		}
		rows = append(rows, []string{cursor, f.Name, f.Scope.String(), f.Shape.String(), value})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Feature", "Scope", "Shape", "Value").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 2 || col == 3 {
				return listDimStyle
			}
			return lipgloss.NewStyle()
		})
	b.WriteString(t.Render())
	b.WriteString("\n")

	if len(m.Features) > 0 {
		b.WriteString("\n  " + wrapDoc(m.Features[m.Cursor].Doc, 76) + "\n")
	}
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Features))))
	return b.String()
}

func wrapDoc(doc string, width int) string {
	return lipgloss.NewStyle().Width(width).Foreground(colorGray).Render(doc)
}
