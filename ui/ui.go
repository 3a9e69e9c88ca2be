// Package ui renders the interactive playback view: document title,
// transport state, a progress bar and key hints. It is a thin consumer
// of the speech controller; all state it shows arrives as messages
// from the controller's callbacks.
package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/recite-sh/recite/speech"
)

const minWidth = 24

// Model is the bubbletea model for a playback session.
type Model struct {
	ctrl   *speech.Controller
	title  string
	text   string
	params speech.VoiceParams

	bar     progress.Model
	percent float64
	state   speech.State
	err     error
	width   int

	// watching keeps the program alive after the session ends so a
	// file change can start a new one.
	watching bool
	quitting bool

	// stopped marks the session as cut short, so the next EndedMsg
	// resets the bar instead of filling it.
	stopped bool
}

// New builds the playback model. Speak is issued from Init, not here,
// so the program is already receiving messages when playback starts.
func New(ctrl *speech.Controller, title, text string, params speech.VoiceParams, watching bool) Model {
	bar := progress.New(progress.WithDefaultGradient())
	return Model{
		ctrl:     ctrl,
		title:    title,
		text:     text,
		params:   params,
		bar:      bar,
		state:    speech.StateIdle,
		watching: watching,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.speakCmd(m.text)
}

func (m Model) speakCmd(text string) tea.Cmd {
	ctrl, params := m.ctrl, m.params
	return func() tea.Msg {
		if err := ctrl.Speak(text, params); err != nil {
			return ErrorMsg{Err: err}
		}
		return nil
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := msg.Width - 8
		if w < minWidth {
			w = minWidth
		}
		m.bar.Width = w
		return m, nil

	case StartedMsg:
		m.state = speech.StatePlaying
		m.err = nil
		m.stopped = false
		m.percent = 0
		return m, nil

	case PausedMsg:
		m.state = speech.StatePaused
		return m, nil

	case ResumedMsg:
		m.state = speech.StatePlaying
		return m, nil

	case BoundaryMsg:
		m.percent = msg.Info.Percent
		return m, nil

	case EndedMsg:
		m.state = speech.StateIdle
		if m.err == nil && !m.stopped {
			m.percent = 100
		} else {
			m.percent = 0
		}
		if m.watching {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.state = speech.StateIdle
		if m.watching {
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case DocumentReloadedMsg:
		m.percent = 0
		m.err = nil
		m.stopped = true // any end event from the replaced session is not a completion
		return m, m.speakCmd(msg.Text)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		m.ctrl.Stop()
		return m, tea.Quit

	case " ":
		switch m.state {
		case speech.StatePlaying:
			m.ctrl.Pause()
		case speech.StatePaused:
			m.ctrl.Resume()
		}
		return m, nil

	case "s":
		m.stopped = true
		m.ctrl.Stop()
		return m, nil

	case "v":
		ctrl, params := m.ctrl, m.params
		return m, func() tea.Msg {
			if err := ctrl.PreviewVoice(params); err != nil {
				return ErrorMsg{Err: err}
			}
			return nil
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	maxTitle := m.width - 6
	if maxTitle < minWidth {
		maxTitle = minWidth
	}
	title := titleStyle.Render(truncate.StringWithTail(m.title, uint(maxTitle), "…"))

	var status string
	switch {
	case m.err != nil:
		status = errorStyle.Render("error: " + m.err.Error())
	case m.state == speech.StatePaused:
		status = pausedStyle.Render("paused")
	case m.state == speech.StatePlaying:
		status = stateStyle.Render("reading")
	default:
		status = subtleStyle.Render("idle")
	}

	bar := m.bar.ViewAs(m.percent / 100)
	pct := subtleStyle.Render(fmt.Sprintf("%3.0f%%", m.percent))

	help := helpStyle.Render("space pause/resume • s stop • v preview voice • q quit")

	return frameStyle.Render(
		title + "\n\n" +
			status + "\n" +
			bar + " " + pct + "\n" +
			help,
	)
}
