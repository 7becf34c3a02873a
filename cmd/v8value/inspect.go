package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/wippyai/v8value/value"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Collapse key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Toggle:   key.NewBinding(key.WithKeys("enter", " ", "right", "l"), key.WithHelp("enter", "expand")),
	Collapse: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "collapse")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() string {
	var parts []string
	for _, b := range []key.Binding{k.Up, k.Down, k.Toggle, k.Collapse, k.Quit} {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

type inspectModel struct {
	tree     *tree
	viewport viewport.Model
	title    string
	cursor   int
	ready    bool
}

func newInspectModel(g *value.Graph, title string) *inspectModel {
	return &inspectModel{tree: newTree(g), title: title}
}

func (m *inspectModel) Init() tea.Cmd {
	return nil
}

func (m *inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 4
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.move(-1)
		case key.Matches(msg, keys.Down):
			m.move(1)
		case key.Matches(msg, keys.PageUp):
			m.move(-m.viewport.Height)
		case key.Matches(msg, keys.PageDown):
			m.move(m.viewport.Height)
		case key.Matches(msg, keys.Toggle):
			m.tree.toggle(m.cursor)
		case key.Matches(msg, keys.Collapse):
			m.cursor = m.tree.collapse(m.cursor)
		}
	}

	if m.ready {
		m.viewport.SetContent(m.content())
		m.follow()
	}
	return m, nil
}

func (m *inspectModel) move(delta int) {
	m.cursor += delta
	if m.cursor >= len(m.tree.lines) {
		m.cursor = len(m.tree.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// follow scrolls the viewport so the cursor row stays visible.
func (m *inspectModel) follow() {
	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}

func (m *inspectModel) content() string {
	var b strings.Builder
	for i := range m.tree.lines {
		line := m.tree.text(i)
		switch {
		case i == m.cursor:
			line = selectedStyle.Render(line)
		case m.tree.lines[i].cycle:
			line = cycleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *inspectModel) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("v8value"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString(fmt.Sprintf("  %d objects\n\n", m.tree.g.Reachable()))
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(keys.help()))
	return b.String()
}

func newInspectCmd(a *app) *cobra.Command {
	var in string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Browse a decoded value interactively",
		Long: `Browse a decoded value as a tree. Objects are labelled #N with their
heap index and expand on enter; references back into an ancestor are marked
as cycles.

Prints a dump instead when stdout is not a terminal.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if in == "" {
				in = a.cfg.Decode.Input
			}
			g, err := a.decodeInput(cmd, args, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				return value.Dump(out, g)
			}

			title := "stdin"
			opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithOutput(out)}
			if len(args) > 0 && args[0] != "-" {
				title = args[0]
			} else {
				// stdin held the data, so keys come from the terminal.
				opts = append(opts, tea.WithInputTTY())
			}
			p := tea.NewProgram(newInspectModel(g, title), opts...)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input encoding: raw, hex or base64")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
