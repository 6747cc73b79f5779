package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sakura-events/sakura-backend/internal/dashboard"
	timerdomain "github.com/sakura-events/sakura-backend/internal/timers/domain"
)

// StopFunc stops the running timer at end.
type StopFunc func(ctx context.Context, end time.Time) (*timerdomain.StopResult, error)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	clockStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(1, 2)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")).Padding(0, 1)
	doneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 1)
)

// Model shows a running timer. Elapsed time is recomputed from the start
// timestamp on every tick.
type Model struct {
	Timer   dashboard.RunningTimer
	Project string

	clock    clock.Clock
	stop     StopFunc
	spinner  spinner.Model
	now      time.Time
	stopping bool
	err      string
	Result   *timerdomain.StopResult
}

func New(rt dashboard.RunningTimer, project string, clk clock.Clock, stop StopFunc) Model {
	if clk == nil {
		clk = clock.New()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		Timer:   rt,
		Project: project,
		clock:   clk,
		stop:    stop,
		spinner: s,
		now:     clk.Now(),
	}
}

type tickMsg time.Time

type stoppedMsg struct{ res *timerdomain.StopResult }

type errMsg string

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return tickMsg(m.clock.Now()) })
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "s":
			if m.stopping {
				return m, nil
			}
			m.stopping = true
			m.err = ""
			return m, m.stopCmd(m.clock.Now())
		}

	case tickMsg:
		m.now = time.Time(msg)
		return m, m.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stoppedMsg:
		m.stopping = false
		m.Result = msg.res
		return m, tea.Quit

	case errMsg:
		m.stopping = false
		m.err = string(msg)
		return m, nil
	}

	return m, nil
}

func (m Model) stopCmd(end time.Time) tea.Cmd {
	stop := m.stop
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res, err := stop(ctx, end)
		if err != nil {
			return errMsg(err.Error())
		}
		return stoppedMsg{res: res}
	}
}

func (m Model) View() string {
	title := titleStyle.Render("Sakura timer - " + m.Project)
	elapsed := clockStyle.Render(FormatElapsed(m.Timer.Elapsed(m.now)))

	status := helpStyle.Render("s stop  q quit (timer keeps running)")
	if m.stopping {
		status = helpStyle.Render(m.spinner.View() + " Stopping...")
	}
	if m.Result != nil {
		status = doneStyle.Render(fmt.Sprintf("Logged %.2fh, project total %.2fh", m.Result.Duration, m.Result.ProjectTotalHours))
	}

	parts := []string{title, elapsed, status}
	if m.err != "" {
		parts = append(parts, errStyle.Render(m.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormatElapsed renders d as HH:MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Run shows the timer until it is stopped or the user quits. The result is
// nil when the user quit with the timer still running.
func Run(m Model) (*timerdomain.StopResult, error) {
	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	return final.(Model).Result, nil
}
