//go:build !gui

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dlemaire/skim/internal/rsvp"
)

var (
	orpStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))

	wordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	countdownStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AAFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	completeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)
)

// Engine events arrive as messages so all UI state changes stay on the
// Bubble Tea loop.
type (
	stateMsg       rsvp.State
	countdownMsg   int
	choiceMsg      rsvp.StartChoice
	stopMsg        struct{ snapshot *rsvp.StopSnapshot }
	pageRequestMsg struct{}
	bookDoneMsg    struct{}
)

type uiMode int

const (
	modeStarting uiMode = iota
	modeChoosing
	modeReading
	modeDone
)

type model struct {
	app      *App
	mode     uiMode
	state    rsvp.State
	word     rsvp.Word
	count    int
	choice   rsvp.StartChoice
	progress progress.Model
	quitting bool
	finished bool
	width    int
	height   int
}

func newModel(app *App) model {
	return model{
		app:      app,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:    80,
		height:   24,
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		m.app.Engine.RequestStart("")
		return nil
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 4
		return m, nil

	case choiceMsg:
		m.choice = rsvp.StartChoice(msg)
		if m.choice.HasSavedPosition {
			m.mode = modeChoosing
			return m, nil
		}
		m.mode = modeReading
		return m, command(m.app.Engine.StartFromBeginning)

	case stateMsg:
		m.state = rsvp.State(msg)
		if w, ok := m.app.Engine.CurrentWord(); ok {
			m.word = w
		}
		return m, nil

	case countdownMsg:
		m.count = int(msg)
		return m, nil

	case pageRequestMsg:
		return m, func() tea.Msg {
			ok, err := m.app.NextSection()
			if err != nil || !ok {
				m.app.Engine.Stop()
				return bookDoneMsg{}
			}
			return nil
		}

	case bookDoneMsg:
		m.finished = true
		m.mode = modeDone
		return m, tea.Quit

	case stopMsg:
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeChoosing {
		switch msg.String() {
		case "r", "enter":
			m.mode = modeReading
			return m, command(m.app.Engine.StartFromSavedPosition)
		case "b":
			m.mode = modeReading
			return m, command(m.app.Engine.StartFromBeginning)
		case "c":
			m.mode = modeReading
			return m, command(m.app.Engine.StartFromCurrentPosition)
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case " ":
		return m, command(m.app.Engine.TogglePlayPause)

	case "+", "=", "up":
		return m, command(m.app.Engine.IncreaseSpeed)

	case "-", "down":
		return m, command(m.app.Engine.DecreaseSpeed)

	case "left":
		return m, command(func() { m.app.Engine.SkipBackward(0) })

	case "right":
		return m, command(func() { m.app.Engine.SkipForward(0) })

	case "p":
		return m, command(func() { m.app.Engine.SetPunctuationPause(nextPauseOption(m.state.PunctuationPause)) })

	case "q", "Q", "ctrl+c":
		m.quitting = true
		// Stop persists the position; quit on the stop event.
		return m, command(m.app.Engine.Stop)
	}

	return m, nil
}

// command runs an engine operation off the Update loop; results come back as
// engine events.
func command(fn func()) tea.Cmd {
	return func() tea.Msg {
		fn()
		return nil
	}
}

// nextPauseOption cycles through the allowed punctuation pause values.
func nextPauseOption(current time.Duration) time.Duration {
	opts := rsvp.PunctuationPauseOptions
	for i, opt := range opts {
		if opt == current {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func (m model) View() string {
	if m.quitting || m.finished {
		if m.finished {
			return completeStyle.Render("\n  Reading complete!\n")
		}
		return ""
	}

	switch m.mode {
	case modeStarting:
		return statusStyle.Render("Preparing...")
	case modeChoosing:
		return m.viewChoice()
	default:
		return m.viewReading()
	}
}

func (m model) viewChoice() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(promptStyle.Render("  Resume reading?"))
	sb.WriteString("\n\n")
	sb.WriteString("  r/enter  resume where you left off\n")
	sb.WriteString("  b        start from the beginning\n")
	sb.WriteString("  c        start from the current position\n")
	sb.WriteString("  q        quit\n")
	return sb.String()
}

func (m model) viewReading() string {
	if m.state.TotalWords == 0 && m.count == 0 {
		return statusStyle.Render("Preparing...")
	}

	pause := ""
	if m.state.Active && !m.state.Playing && m.count == 0 {
		pause = pausedStyle.Render(" [PAUSED]")
	}
	resumed := ""
	if m.state.ResumedFromIndex >= 0 {
		resumed = statusStyle.Render(fmt.Sprintf("resumed @%d", m.state.ResumedFromIndex+1))
	}

	status := statusStyle.Render(fmt.Sprintf("%s | Word %d/%d | %d WPM | pause %dms%s%s",
		m.app.SectionTitle(),
		m.state.CurrentIndex+1,
		m.state.TotalWords,
		m.state.WPM,
		m.state.PunctuationPause.Milliseconds(),
		pause,
		resumed,
	))

	controls := controlsStyle.Render("SPACE: pause/play  ↑/↓: speed  ←/→: skip  p: punct pause  Q: quit")

	var center string
	if m.count > 0 {
		center = strings.Repeat(" ", max(0, m.width/2-1)) + countdownStyle.Render(fmt.Sprintf("%d", m.count))
	} else {
		center = anchorORPText(m.word, m.width)
	}

	// Reserve lines: status, progress bar, controls
	avail := m.height - 3
	if avail < 1 {
		avail = 1
	}
	vPad := avail / 2

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n")
	for i := 0; i < vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString(center)
	for i := 0; i < avail-vPad; i++ {
		sb.WriteString("\n")
	}
	sb.WriteString("  " + m.progress.ViewAs(m.state.Progress/100))
	sb.WriteString("\n")
	sb.WriteString(controls)
	return sb.String()
}

// formatWord highlights the recognition point within a word.
func formatWord(word rsvp.Word) string {
	runes := []rune(word.Text)
	if len(runes) == 0 {
		return ""
	}
	orp := word.ORPIndex
	if orp >= len(runes) {
		orp = len(runes) - 1
	}

	before := string(runes[:orp])
	focus := string(runes[orp])
	after := ""
	if orp+1 < len(runes) {
		after = string(runes[orp+1:])
	}

	return wordStyle.Render(before) +
		orpStyle.Render(focus) +
		wordStyle.Render(after)
}

// anchorORPText pads the word so its recognition point sits at the screen
// center regardless of word length.
func anchorORPText(word rsvp.Word, width int) string {
	pad := width/2 - word.ORPIndex
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + formatWord(word)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func runHost(app *App) error {
	p := tea.NewProgram(newModel(app), tea.WithAltScreen())

	app.Engine.OnStateChange(func(s rsvp.State) { p.Send(stateMsg(s)) })
	app.Engine.OnCountdownChange(func(n int) { p.Send(countdownMsg(n)) })
	app.Engine.OnStartChoice(func(c rsvp.StartChoice) { p.Send(choiceMsg(c)) })
	app.Engine.OnStop(func(s *rsvp.StopSnapshot) { p.Send(stopMsg{snapshot: s}) })
	app.Engine.OnPageRequest(func() { p.Send(pageRequestMsg{}) })

	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
