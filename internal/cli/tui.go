package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ziptree/pkg/pipeline"
	"github.com/matzehuels/ziptree/pkg/ziptree"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseCommand opens an interactive view of a tree: seeds in encoded
// order on the left, the lookback from the selected seed on the right.
func (c *CLI) browseCommand() *cobra.Command {
	var opts queryOpts

	cmd := &cobra.Command{
		Use:   "browse <workload>",
		Short: "Explore lookbacks interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, err := c.parseLimit(opts.limit)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			runner, res, err := c.buildOne(ctx, args[0], opts.cacheFlags)
			if err != nil {
				return err
			}
			defer runner.Close()

			m := newBrowseModel(ctx, runner, res, limit)
			final, err := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			).Run()
			if err != nil {
				return err
			}
			if bm, ok := final.(browseModel); ok && bm.err != nil {
				return bm.err
			}
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}

// browseModel is the bubbletea model behind browse.
type browseModel struct {
	ctx    context.Context
	runner *pipeline.Runner
	res    *pipeline.Result
	order  []int
	cursor int
	offset int
	height int
	limit  ziptree.Distance
	hits   []ziptree.Hit
	err    error
}

func newBrowseModel(ctx context.Context, runner *pipeline.Runner, res *pipeline.Result, limit ziptree.Distance) browseModel {
	m := browseModel{
		ctx:    ctx,
		runner: runner,
		res:    res,
		order:  slices.Collect(res.Tree.Seeds()),
		height: 15,
		limit:  limit,
	}
	m.lookback()
	return m
}

func (m *browseModel) lookback() {
	if len(m.order) == 0 {
		m.hits = nil
		return
	}
	m.hits, m.err = m.runner.Lookback(m.ctx, m.res, m.order[m.cursor], m.limit)
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
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
			if m.cursor < len(m.order)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "+", "=":
			m.limit = ziptree.Sum(m.limit, limitStep(m.limit))
		case "-":
			if m.limit > 0 {
				m.limit -= min(m.limit, limitStep(m.limit-1))
			}
		default:
			return m, nil
		}
		m.lookback()
		if m.err != nil {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-8, 5)
	}
	return m, nil
}

// limitStep grows with the limit so large limits stay reachable from the
// keyboard.
func limitStep(limit ziptree.Distance) ziptree.Distance {
	switch {
	case limit < 10:
		return 1
	case limit < 100:
		return 10
	default:
		return 100
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.res.Name))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("limit %s", m.limit)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ seed  +/- limit  q quit"))
	b.WriteString("\n\n")

	if len(m.order) == 0 {
		b.WriteString(listDimStyle.Render("no seeds"))
		b.WriteString("\n")
		return b.String()
	}

	var list strings.Builder
	end := min(m.offset+m.height, len(m.order))
	for i := m.offset; i < end; i++ {
		s := m.order[i]
		line := fmt.Sprintf("s%-4d %s", s, m.res.Tree.Seed(s).Pos)
		if i == m.cursor {
			list.WriteString(listSelectedStyle.Render("▸ " + line))
		} else {
			list.WriteString(listNormalStyle.Render("  " + line))
		}
		list.WriteString("\n")
	}
	list.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.order))))

	hits := listDimStyle.Render("no seeds within the limit")
	if len(m.hits) > 0 {
		rows := make([][]string, len(m.hits))
		for i, h := range m.hits {
			rows[i] = []string{"s" + itoa(h.Seed), h.Distance.String()}
		}
		hits = renderTable([]string{"Seed", "Distance"}, rows)
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list.String(), "    ", hits))
	b.WriteString("\n")
	return b.String()
}
