package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/recite-sh/recite/speech"
)

// Playback messages, sent into the program by the speech callbacks.

// StartedMsg reports that the first chunk began playing.
type StartedMsg struct{}

// EndedMsg reports that the session finished, was stopped or aborted.
type EndedMsg struct{}

// PausedMsg reports that playback paused.
type PausedMsg struct{}

// ResumedMsg reports that playback resumed.
type ResumedMsg struct{}

// BoundaryMsg reports word-level progress within the document.
type BoundaryMsg struct {
	Info speech.BoundaryInfo
}

// ErrorMsg reports a synthesis failure that aborted the session.
type ErrorMsg struct {
	Err error
}

// DocumentReloadedMsg carries freshly extracted text after the watched
// file changed.
type DocumentReloadedMsg struct {
	Text string
}

// Bind installs callbacks on ctrl that forward every playback event
// into p. It replaces any previously registered callbacks.
func Bind(p *tea.Program, ctrl *speech.Controller) {
	ctrl.SetCallbacks(speech.Callbacks{
		OnStart:  func() { p.Send(StartedMsg{}) },
		OnEnd:    func() { p.Send(EndedMsg{}) },
		OnPause:  func() { p.Send(PausedMsg{}) },
		OnResume: func() { p.Send(ResumedMsg{}) },
		OnBoundary: func(info speech.BoundaryInfo) {
			p.Send(BoundaryMsg{Info: info})
		},
		OnError: func(err error) { p.Send(ErrorMsg{Err: err}) },
	})
}
