// Package tui provides a Bubble Tea terminal user interface for splitpack.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/havonz/file-split-packer/internal/config"
	"github.com/havonz/file-split-packer/internal/logging"
	"github.com/havonz/file-split-packer/internal/model"
	"github.com/havonz/file-split-packer/internal/pack"
	"github.com/havonz/file-split-packer/internal/restore"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	focusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	selectedStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color("#F8B500"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)
)

// eventBuffer bounds progress events queued between the worker and the UI.
const eventBuffer = 64

var errCancelled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateForm State = iota
	StateRunning
	StateComplete
	StateError
)

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state    State
	settings *config.Settings

	// Form
	mode      Mode
	focus     fieldID
	input     textinput.Model
	output    textinput.Model
	value     textinput.Model
	password  textinput.Model
	strategy  model.Strategy
	unit      model.SplitUnit
	overwrite bool
	extract   bool
	formErr   error

	spinner  spinner.Model
	progress progress.Model

	// Running operation
	ctx        context.Context
	cancel     context.CancelFunc
	events     chan model.ProgressEvent
	last       model.ProgressEvent
	phases     []model.Phase
	cancelling bool

	// Result
	summary []string
	outputs []string
	err     error

	width int
}

// NewModel creates a TUI model whose form starts from settings. Nil uses
// the defaults.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	strategy, err := model.ParseStrategy(settings.Strategy)
	if err != nil {
		strategy = model.SplitThenZip
	}
	unit, err := model.ParseSplitUnit(settings.SplitBy)
	if err != nil {
		unit = model.SplitBySize
	}

	value := newTextInput("100MiB", 32)
	if unit == model.SplitByCount {
		value.SetValue(strconv.FormatUint(settings.PartCount, 10))
	} else {
		value.SetValue(settings.PartSize)
	}

	output := newTextInput("next to the input", 500)
	output.SetValue(settings.OutputDir)

	password := newTextInput("none", 128)
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	m := Model{
		state:     StateForm,
		settings:  settings,
		input:     newTextInput("/path/to/file-or-directory", 500),
		output:    output,
		value:     value,
		password:  password,
		strategy:  strategy,
		unit:      unit,
		overwrite: settings.Overwrite,
		extract:   settings.AutoExtract,
		spinner:   sp,
		progress:  prog,
	}
	m.setFocus(fieldInput)
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg carries one progress event from the running operation.
	ProgressMsg struct {
		Event model.ProgressEvent
	}

	// DoneMsg is sent when the running operation returns.
	DoneMsg struct {
		Split   *model.SplitOutcome
		Restore *model.RestoreOutcome
		Err     error
	}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateForm:
			return m.updateForm(msg)
		case StateRunning:
			switch msg.String() {
			case "ctrl+c":
				m.cancel()
				return m, tea.Quit
			case "esc":
				m.cancel()
				m.cancelling = true
			}
		case StateComplete, StateError:
			switch msg.String() {
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			case "r":
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if m.state != StateRunning {
			return m, nil
		}
		if len(m.phases) == 0 || m.phases[len(m.phases)-1] != msg.Event.Phase {
			m.phases = append(m.phases, msg.Event.Phase)
		}
		m.last = msg.Event
		cmds = append(cmds, m.progress.SetPercent(msg.Event.Fraction()), waitForEvent(m.events))

	case DoneMsg:
		m.finish(msg)

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "enter":
		return m.start()
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	case " ", "left", "right":
		if m.toggle() {
			m.formErr = nil
			return m, nil
		}
	}

	ti := m.textField(m.focus)
	if ti == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	m.formErr = nil
	return m, cmd
}

// job is one validated operation built from the form.
type job struct {
	split   *model.SplitRequest
	restore *model.RestoreRequest
	workers int
}

// buildJob converts the form into a request, layered over the settings.
func (m Model) buildJob() (job, error) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return job{}, model.ErrMissingInput
	}

	s := *m.settings
	s.OutputDir = strings.TrimSpace(m.output.Value())
	s.Strategy = m.strategy.String()
	s.Overwrite = m.overwrite
	s.AutoExtract = m.extract

	if m.mode == ModeRestore {
		if err := s.Validate(); err != nil {
			return job{}, err
		}
		req, err := s.ToRestoreRequest(input, m.password.Value())
		if err != nil {
			return job{}, err
		}
		return job{restore: &req}, nil
	}

	s.SplitBy = m.unit.String()
	value := strings.TrimSpace(m.value.Value())
	if m.unit == model.SplitByCount {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return job{}, fmt.Errorf("part count %q is not a whole number", value)
		}
		s.PartCount = n
	} else {
		s.PartSize = value
	}
	if err := s.Validate(); err != nil {
		return job{}, err
	}
	req, err := s.ToSplitRequest(input, m.password.Value())
	if err != nil {
		return job{}, err
	}
	return job{split: &req, workers: s.Workers}, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	j, err := m.buildJob()
	if err != nil {
		m.formErr = err
		return m, nil
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.events = make(chan model.ProgressEvent, eventBuffer)
	m.state = StateRunning
	m.formErr = nil
	m.last = model.ProgressEvent{}
	m.phases = nil
	m.cancelling = false
	m.setFocus(-1)

	return m, tea.Batch(
		m.spinner.Tick,
		m.progress.SetPercent(0),
		runJob(m.ctx, j, m.events),
		waitForEvent(m.events),
	)
}

func (m *Model) finish(msg DoneMsg) {
	if m.cancel != nil {
		m.cancel()
	}
	m.summary, m.outputs = nil, nil

	if msg.Err != nil {
		m.state = StateError
		m.err = msg.Err
		if m.cancelling && errors.Is(msg.Err, context.Canceled) {
			m.err = errCancelled
		}
		return
	}

	m.state = StateComplete
	m.err = nil
	switch {
	case msg.Split != nil:
		kind := "file"
		if msg.Split.IsDir {
			kind = "directory"
		}
		m.summary = append(m.summary,
			fmt.Sprintf("Split %s %q", kind, msg.Split.BaseName),
			fmt.Sprintf("Parts: %d", msg.Split.Parts))
		m.outputs = msg.Split.OutputFiles
	case msg.Restore != nil:
		m.summary = append(m.summary, "Merged: "+msg.Restore.MergedFile)
		if msg.Restore.ExtractedDir != "" {
			m.summary = append(m.summary, "Extracted: "+msg.Restore.ExtractedDir)
		}
		m.outputs = msg.Restore.OutputFiles
	}
}

// reset returns to the form, keeping the entered values.
func (m *Model) reset() {
	m.state = StateForm
	m.err = nil
	m.summary = nil
	m.outputs = nil
	m.last = model.ProgressEvent{}
	m.phases = nil
	m.cancelling = false
	m.setFocus(fieldInput)
}

// runJob executes j in the background. The events channel is closed once
// the operation has returned; no event is sent after that.
func runJob(ctx context.Context, j job, events chan<- model.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		defer close(events)

		sink := func(ev model.ProgressEvent) {
			select {
			case events <- ev:
			default:
			}
		}

		if j.split != nil {
			packer := pack.New(pack.Config{Workers: j.workers, Logger: logging.L()}, sink)
			out, err := packer.Split(ctx, *j.split)
			return DoneMsg{Split: out, Err: err}
		}

		restorer := restore.New(restore.Config{Logger: logging.L()}, sink)
		out, err := restorer.Restore(ctx, *j.restore)
		return DoneMsg{Restore: out, Err: err}
	}
}

// waitForEvent listens for the next progress event. A closed channel
// yields no message, which ends the listening loop.
func waitForEvent(events <-chan model.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{Event: ev}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("✂ File Split Packer"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Split files into zip parts and put them back together"))
	b.WriteString("\n\n")

	switch m.state {
	case StateForm:
		b.WriteString(m.viewForm())
	case StateRunning:
		b.WriteString(m.viewRunning())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewRunning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	if m.cancelling {
		b.WriteString(warningStyle.Render("Cancelling..."))
	} else {
		b.WriteString(subtitleStyle.Render(phaseTitle(m.last.Phase)))
	}
	b.WriteString("\n\n")

	b.WriteString(m.progress.ViewAs(m.last.Fraction()))
	b.WriteString("\n")

	status := fmt.Sprintf("%s / %s",
		humanize.IBytes(m.last.ProcessedBytes),
		humanize.IBytes(m.last.TotalBytes))
	if m.last.Message != "" {
		status += " | " + m.last.Message
	} else if m.last.PartTotal > 0 && m.last.PartIndex > 0 {
		status += fmt.Sprintf(" | Part %d/%d", m.last.PartIndex, m.last.PartTotal)
	}
	b.WriteString(infoStyle.Render(status))
	b.WriteString("\n\n")

	for i, phase := range m.phases {
		if i == len(m.phases)-1 && !m.last.Done() {
			b.WriteString(infoStyle.Render("› " + phaseTitle(phase)))
		} else {
			b.WriteString(successStyle.Render("✓ " + phaseTitle(phase)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	lines := append([]string{"✨ Done!", ""}, m.summary...)
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")

	for _, f := range m.outputs {
		b.WriteString(dimStyle.Render("  " + f))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateForm:
		return "tab/↑↓: move • space/←→: toggle • enter: start • esc: quit"
	case StateRunning:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: back to form • q: quit"
	}
	return ""
}

func phaseTitle(phase model.Phase) string {
	switch phase {
	case model.PhasePackDir:
		return "Packing directory"
	case model.PhaseZip:
		return "Compressing"
	case model.PhaseSplitZip:
		return "Writing parts"
	case model.PhaseSplit:
		return "Splitting"
	case model.PhaseRestore:
		return "Restoring parts"
	case model.PhaseMerge:
		return "Merging parts"
	case model.PhaseUnzip:
		return "Extracting"
	default:
		return "Starting"
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
