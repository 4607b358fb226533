package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mjfos2r/ONT-RefAssembly/internal/config"
	"github.com/mjfos2r/ONT-RefAssembly/internal/fasta"
	"github.com/mjfos2r/ONT-RefAssembly/internal/headers"
	"github.com/mjfos2r/ONT-RefAssembly/internal/rewrite"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	labelStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	newStyle     = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
	oldStyle     = lipgloss.NewStyle().Foreground(accentColor)
	missingStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
)

// entry pairs an input record with its rewritten form.
type entry struct {
	Old     fasta.Record
	New     fasta.Record
	Row     *headers.Row
	Missing bool
}

type listItem struct {
	e entry
}

func (i listItem) FilterValue() string {
	return i.e.Old.ID + " " + i.e.New.ID
}

func (i listItem) Title() string {
	if i.e.Missing {
		return i.e.Old.ID
	}
	return i.e.New.ID
}

func (i listItem) Description() string {
	if i.e.Missing {
		return missingStyle.Render("no mapping")
	}
	return fmt.Sprintf("was %s    %d bp", i.e.Old.ID, len(i.e.Old.Seq))
}

type mode int

const (
	modeHeader mode = iota
	modeRow
	modeSequence
)

func (m mode) String() string {
	switch m {
	case modeHeader:
		return "Header"
	case modeRow:
		return "Report row"
	case modeSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

type model struct {
	list          list.Model
	entries       []entry
	currentMode   mode
	showHelp      bool
	width         int
	height        int
	missing       int
	selectedIndex int
}

// buildEntries rewrites records against the report, keeping records that
// have no mapping so they can be inspected.
func buildEntries(records []fasta.Record, b *headers.Builder) []entry {
	rows := make(map[string]headers.Row)
	for _, r := range b.Rows() {
		rows[r.Accession] = r
	}
	m := b.Map()
	out := make([]entry, 0, len(records))
	for _, rec := range records {
		e := entry{Old: rec}
		nr, err := rewrite.Record(rec, m)
		if err != nil {
			e.Missing = true
		} else {
			e.New = nr
			if r, ok := rows[rec.ID]; ok {
				e.Row = &r
			}
		}
		out = append(out, e)
	}
	return out
}

func newModel(entries []entry) model {
	items := make([]list.Item, len(entries))
	missing := 0
	for i, e := range entries {
		items[i] = listItem{e: e}
		if e.Missing {
			missing++
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Reference headers"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	return model{
		list:        l,
		entries:     entries,
		currentMode: modeHeader,
		missing:     missing,
	}
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.showHelp = !m.showHelp
			return m, nil
		case "tab":
			return m.cycleMode(), nil
		case "1":
			m.currentMode = modeHeader
			return m, nil
		case "2":
			m.currentMode = modeRow
			return m, nil
		case "3":
			m.currentMode = modeSequence
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	m.selectedIndex = m.list.Index()
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeftPanel(), m.renderRightPanel())
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	panel := containerStyle.Width(m.width*2/3 - 2).Height(m.height - 4)
	if len(m.entries) == 0 {
		return panel.Render("No records available")
	}
	item, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return panel.Render("No item selected")
	}
	return panel.Render(strings.Join(m.buildRightLines(item.e), "\n"))
}

// buildRightLines renders the detail panel for e in the current mode.
func (m model) buildRightLines(e entry) []string {
	lines := []string{titleStyle.Render(m.currentMode.String()), ""}
	switch m.currentMode {
	case modeHeader:
		lines = append(lines, labelStyle.Render("old: ")+oldStyle.Render(">"+e.Old.Description))
		if e.Missing {
			lines = append(lines, labelStyle.Render("new: ")+missingStyle.Render(fmt.Sprintf("no row for accession %q", e.Old.ID)))
		} else {
			lines = append(lines, labelStyle.Render("new: ")+newStyle.Render(">"+e.New.Description))
		}
	case modeRow:
		if e.Row == nil {
			lines = append(lines, missingStyle.Render("no report row"))
			break
		}
		lines = append(lines,
			labelStyle.Render("accession:  ")+e.Row.Accession,
			labelStyle.Render("name:       ")+e.Row.Name,
			labelStyle.Render("type:       ")+e.Row.MolType,
			labelStyle.Render("length:     ")+e.Row.Length,
			labelStyle.Render("circular:   ")+fmt.Sprint(e.Row.Circular()),
		)
	case modeSequence:
		width := m.width*2/3 - 6
		if width < 10 {
			width = 60
		}
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%d bp", len(e.Old.Seq))))
		lines = append(lines, wrap(string(e.Old.Seq), width)...)
	}
	return lines
}

func wrap(s string, width int) []string {
	var out []string
	for len(s) > width {
		out = append(out, s[:width])
		s = s[width:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

func (m model) renderStatusBar() string {
	leftInfo := fmt.Sprintf("%d/%d records", m.selectedIndex+1, len(m.entries))
	if m.missing > 0 {
		leftInfo += fmt.Sprintf(" (%d unmapped)", m.missing)
	}
	centerInfo := "Mode: " + m.currentMode.String()
	rightInfo := "Press 'h' for help • 'q' to quit"

	spacing := m.width - len(leftInfo) - len(centerInfo) - len(rightInfo) - 6
	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo + strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		// Fallback for narrow terminals
		statusContent = leftInfo + " | " + centerInfo
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `Reference headers preview - Help

Navigation:
  ↑/↓, j/k     Navigate list
  /            Filter records

View Modes:
  1            Old and new header
  2            Assembly report row
  3            Sequence
  Tab          Cycle modes

General:
  h            Toggle this help
  q, Ctrl+C    Quit

Records: ` + fmt.Sprint(len(m.entries)) + `
Unmapped: ` + fmt.Sprint(m.missing) + `
`
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func main() {
	reportFlag := flag.String("report", "", "NCBI assembly report (tab-delimited)")
	inputFlag := flag.String("in", "", "input FASTA file path")
	configFlag := flag.String("config", "", "path to config.json (optional)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		log.Fatal(err)
	}
	if *reportFlag != "" {
		cfg.Report = *reportFlag
	}
	if *inputFlag != "" {
		cfg.InputFasta = *inputFlag
	}
	if cfg.Report == "" || cfg.InputFasta == "" {
		log.Fatal("both -report and -in are required")
	}

	rf, err := fasta.Open(cfg.Report)
	if err != nil {
		log.Fatal(err)
	}
	b, err := headers.Read(rf, headers.Options{RejectDuplicates: cfg.RejectDuplicates})
	rf.Close()
	if err != nil {
		log.Fatal(err)
	}
	records, err := fasta.ReadFile(cfg.InputFasta)
	if err != nil {
		log.Fatal(err)
	}

	p := tea.NewProgram(newModel(buildEntries(records, b)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}
