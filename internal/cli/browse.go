package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scopegraph/pkg/materialize"
	"github.com/matzehuels/scopegraph/pkg/scope"
)

// browseCommand creates the browse command, an interactive scope explorer.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse <definition.toml>",
		Short: "Explore a materialized graph interactively",
		Long: `Explore a materialized graph interactively.

Select a scope to see its parent, strategy, locations and imports. Press /
to resolve a unit in the selected scope.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := c.materialize(ctx, args[0])
			if err != nil {
				return err
			}
			defer l.Close()

			p := tea.NewProgram(newBrowseModel(ctx, l.graph), tea.WithContext(ctx), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}
}

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	paneStyle         = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// lookupMsg carries the outcome of an asynchronous unit lookup.
type lookupMsg struct {
	scope string
	name  string
	found bool
	from  string
	loc   string
	err   error
}

// browseModel is the bubbletea model for the scope explorer.
type browseModel struct {
	ctx    context.Context
	graph  *materialize.Graph
	scopes []*scope.Scope
	cursor int
	offset int
	height int

	typing bool
	query  string
	last   *lookupMsg
}

func newBrowseModel(ctx context.Context, g *materialize.Graph) browseModel {
	return browseModel{ctx: ctx, graph: g, scopes: g.Scopes(), height: 15}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.typing {
			return m.updateQuery(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.scopes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "/":
			if len(m.scopes) > 0 {
				m.typing = true
				m.query = ""
			}
		}
	case lookupMsg:
		m.last = &msg
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m browseModel) updateQuery(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.typing = false
	case tea.KeyEnter:
		m.typing = false
		if m.query == "" {
			return m, nil
		}
		return m, m.lookup(m.scopes[m.cursor], m.query)
	case tea.KeyBackspace:
		if m.query != "" {
			m.query = m.query[:len(m.query)-1]
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	return m, nil
}

// lookup resolves name in sc off the UI goroutine.
func (m browseModel) lookup(sc *scope.Scope, name string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		res := lookupMsg{scope: sc.Name(), name: name}
		u, ok, err := sc.ResolveUnit(ctx, name)
		res.found, res.err = ok, err
		if ok {
			res.from, res.loc = u.Scope, u.Location.String()
		}
		return res
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Scopes"))
	b.WriteString(listDimStyle.Render("  " + m.graph.ID()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  / resolve unit  q quit"))
	b.WriteString("\n\n")

	if len(m.scopes) == 0 {
		b.WriteString(listDimStyle.Render("  (no scopes)"))
		return b.String()
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.listView(), " ", paneStyle.Render(m.detailView())))
	b.WriteString("\n")

	switch {
	case m.typing:
		b.WriteString(StyleHighlight.Render("unit: ") + m.query + "█")
	case m.last != nil:
		b.WriteString(m.lookupView())
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.scopes))))

	return b.String()
}

func (m browseModel) listView() string {
	end := min(m.offset+m.height, len(m.scopes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		sc := m.scopes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		parent := "—"
		if p := sc.Parent(); p != nil {
			parent = p.Name()
		}
		rows = append(rows, []string{cursor, sc.Name(), parent, sc.Strategy().Name()})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Scope", "Parent", "Strategy").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			if col == 3 {
				return listDimStyle
			}
			return listNormalStyle
		})

	return t.Render()
}

func (m browseModel) detailView() string {
	sc := m.scopes[m.cursor]
	var b strings.Builder

	b.WriteString(StyleTitle.Render(sc.Name()))
	b.WriteString("\n")
	for _, loc := range sc.Locations() {
		b.WriteString(StyleLink.Render(loc.String()))
		b.WriteString("\n")
	}
	for _, l := range sc.UnitImports() {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("units %s %s", l.Pattern(), importTarget(l))))
		b.WriteString("\n")
	}
	for _, l := range sc.ResourceImports() {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("resources %s %s", l.Pattern(), importTarget(l))))
		b.WriteString("\n")
	}
	if units := sc.DefinedUnits(); len(units) > 0 {
		b.WriteString(listNormalStyle.Render("defined: " + strings.Join(units, ", ")))
	} else {
		b.WriteString(listDimStyle.Render("no units defined yet"))
	}
	return b.String()
}

func (m browseModel) lookupView() string {
	r := m.last
	switch {
	case r.err != nil:
		return styleIconError.Render(iconError) + " " + r.err.Error()
	case !r.found:
		return styleIconWarning.Render(iconWarning) + fmt.Sprintf(" %s not found in %s", r.name, r.scope)
	}
	return styleIconSuccess.Render(iconSuccess) + fmt.Sprintf(" %s %s %s %s",
		StyleHighlight.Render(r.name), StyleDim.Render("from"), r.from, StyleLink.Render(r.loc))
}

func importTarget(l *scope.Link) string {
	if t := l.Target(); t != nil {
		return iconArrow + " " + t.Name()
	}
	return iconArrow + " ?"
}
