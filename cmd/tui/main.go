package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lycantrope/fasta-filter/internal/fasta"
	"github.com/lycantrope/fasta-filter/internal/filter"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
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

	sequenceStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(lipgloss.Color("#111827")).
			Padding(1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	labelStyle = lipgloss.NewStyle().Foreground(mutedColor)
	valueStyle = lipgloss.NewStyle().Foreground(secondaryColor).Bold(true)
)

type listItem struct {
	record fasta.Record
}

func (i listItem) FilterValue() string {
	return i.record.Header
}

func (i listItem) Title() string {
	if id := i.record.ID(); id != "" {
		return id
	}
	return i.record.Header
}

func (i listItem) Description() string {
	if d := i.record.Description(); d != "" {
		return d
	}
	return fmt.Sprintf("%d bp", utf8.RuneCountInString(i.record.Sequence))
}

type mode int

const (
	modeWrapped mode = iota
	modeRaw
	modeComposition
)

func (m mode) String() string {
	switch m {
	case modeWrapped:
		return "Wrapped"
	case modeRaw:
		return "Raw"
	case modeComposition:
		return "Composition"
	default:
		return "Unknown"
	}
}

type model struct {
	list        list.Model
	records     []fasta.Record
	source      string
	wrapWidth   int
	currentMode mode
	showHelp    bool
	width       int
	height      int
}

// loadRecords reads the kept records of r with their sequences unwrapped; the
// view wraps them for display.
func loadRecords(r io.Reader, opts filter.Options) ([]fasta.Record, error) {
	pred, err := opts.Predicate()
	if err != nil {
		return nil, err
	}
	var records []fasta.Record
	for rec, err := range fasta.Records(r, pred, fasta.WithRawSequence()) {
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func newModel(records []fasta.Record, source string, wrapWidth int) model {
	items := make([]list.Item, len(records))
	for i, record := range records {
		items[i] = listItem{record: record}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "FASTA records"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	if wrapWidth < 1 {
		wrapWidth = fasta.DefaultWrapWidth
	}
	return model{
		list:        l,
		records:     records,
		source:      source,
		wrapWidth:   wrapWidth,
		currentMode: modeWrapped,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) cycleMode() model {
	m.currentMode = (m.currentMode + 1) % 3
	return m
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate list dimensions (left panel takes 1/3 of width)
		m.list.SetWidth(msg.Width / 3)
		m.list.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		// let the list own the keyboard while the user types a filter
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
			m.currentMode = modeWrapped
			return m, nil
		case "2":
			m.currentMode = modeRaw
			return m, nil
		case "3":
			m.currentMode = modeComposition
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}

	main := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderLeftPanel(),
		m.renderRightPanel(),
	)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		main,
		m.renderStatusBar(),
	)
}

func (m model) renderLeftPanel() string {
	return containerStyle.
		Width(m.width/3 - 2).
		Height(m.height - 4).
		Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := (m.width * 2) / 3
	panel := containerStyle.Width(rightWidth - 2).Height(m.height - 4)

	if len(m.records) == 0 {
		return panel.Render("No record matched the search terms")
	}
	selected := m.list.SelectedItem()
	if selected == nil {
		return panel.Render("No record selected")
	}
	lines := m.buildRightLines(selected.(listItem).record)
	return panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// buildRightLines renders the detail pane for rec in the current mode.
func (m model) buildRightLines(rec fasta.Record) []string {
	header := titleStyle.Render(rec.Header)
	meta := labelStyle.Render("Length: ") + valueStyle.Render(fmt.Sprintf("%d", utf8.RuneCountInString(rec.Sequence))) +
		labelStyle.Render("    Width: ") + valueStyle.Render(fmt.Sprintf("%d", m.wrapWidth))

	lines := []string{header, meta, ""}
	title := lipgloss.NewStyle().Foreground(accentColor).Bold(true).Render(m.currentMode.String() + ":")
	lines = append(lines, title, "")

	if rec.Sequence == "" {
		return append(lines, labelStyle.Render("Empty sequence"))
	}

	switch m.currentMode {
	case modeWrapped:
		wrapped, _ := fasta.Wrap(rec.Sequence, m.wrapWidth)
		lines = append(lines, wrapped...)
	case modeRaw:
		lines = append(lines, sequenceStyle.Width(m.width*2/3-6).Render(rec.Sequence))
	case modeComposition:
		lines = append(lines, compositionLines(rec.Sequence)...)
	}
	return lines
}

// compositionLines summarises residue counts, most frequent first.
func compositionLines(seq string) []string {
	counts := map[byte]int{}
	var order []byte
	for i := 0; i < len(seq); i++ {
		c := seq[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	lines := make([]string, 0, len(order)+1)
	for _, c := range order {
		pct := 100 * float64(counts[c]) / float64(len(seq))
		lines = append(lines, fmt.Sprintf("%c  %8d  %6.2f%%", c, counts[c], pct))
	}
	gc := counts['G'] + counts['C']
	lines = append(lines, "", fmt.Sprintf("GC  %6.2f%%", 100*float64(gc)/float64(len(seq))))
	return lines
}

// positionInfo reports the cursor among the records the list currently shows.
func (m model) positionInfo() string {
	visible := len(m.list.VisibleItems())
	switch {
	case len(m.records) == 0:
		return "0 records"
	case visible == 0:
		return fmt.Sprintf("0/0 of %d records", len(m.records))
	case visible < len(m.records):
		return fmt.Sprintf("%d/%d of %d records", m.list.Index()+1, visible, len(m.records))
	default:
		return fmt.Sprintf("%d/%d records", m.list.Index()+1, visible)
	}
}

func (m model) renderStatusBar() string {
	leftInfo := m.positionInfo()
	centerInfo := fmt.Sprintf("Mode: %s", m.currentMode)
	rightInfo := "Press 'h' for help, 'q' to quit"

	totalUsed := len(leftInfo) + len(centerInfo) + len(rightInfo)
	spacing := m.width - totalUsed - 6 // Account for padding

	var statusContent string
	if spacing > 0 {
		leftSpacing := spacing / 2
		statusContent = leftInfo + strings.Repeat(" ", leftSpacing) + centerInfo +
			strings.Repeat(" ", spacing-leftSpacing) + rightInfo
	} else {
		// Fallback for narrow terminals
		statusContent = fmt.Sprintf("%s | %s", leftInfo, centerInfo)
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `FASTA Filter Browser - Help

Navigation:
  up/down, j/k   Navigate records
  /              Filter headers

View Modes:
  1              Wrapped sequence
  2              Raw sequence
  3              Residue composition
  tab            Next mode

General:
  h              Toggle this help
  q, Ctrl+C      Quit

Source: ` + m.source + `
Current Mode: ` + m.currentMode.String() + `
Records: ` + fmt.Sprintf("%d", len(m.records)) + `
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
	wrapWidth := flag.Int("w", fasta.DefaultWrapWidth, "wrap width for the wrapped view")
	ignoreCase := flag.Bool("i", false, "match search terms case-insensitively")
	literal := flag.Bool("F", false, "treat search terms as literal strings")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: fasta-filter-tui [flags] <FASTA file|-> <search term> [search term...]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.New(os.Stderr)
	if flag.NArg() < 2 {
		flag.Usage()
		os.Exit(2)
	}

	opts := filter.Options{Terms: flag.Args()[1:], WrapWidth: *wrapWidth, IgnoreCase: *ignoreCase, Literal: *literal}
	if *wrapWidth < 1 {
		logger.Fatal("invalid wrap width", "width", *wrapWidth)
	}
	if _, err := opts.Predicate(); err != nil {
		logger.Fatal("invalid search terms", "err", err)
	}

	source := flag.Arg(0)
	var in io.Reader = os.Stdin
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			logger.Fatal("failed to open input fasta", "path", source, "err", err)
		}
		defer f.Close()
		in = f
	}
	records, err := loadRecords(in, opts)
	if err != nil {
		logger.Fatal("failed to read input fasta", "path", source, "err", err)
	}

	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if source == "-" {
		// stdin carried the FASTA data, read keys from the terminal instead
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(newModel(records, source, *wrapWidth), progOpts...)
	if _, err := p.Run(); err != nil {
		logger.Error("tui failed", "err", err)
		os.Exit(1)
	}
}
