package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/domainslab/internal/flow"
)

// ToastDuration is how long a toast stays on screen
const ToastDuration = 2500 * time.Millisecond

type toastKind int

const (
	toastSuccess toastKind = iota
	toastError
)

// Messages posted into the program by controllers and commands
type uploadStateMsg flow.UploadState

type searchStateMsg flow.SearchState

type toastMsg struct {
	kind toastKind
	text string
}

type toastExpiredMsg struct {
	id int
}

// uploadDoneMsg and searchDoneMsg mark the end of a controller call
type uploadDoneMsg struct {
	err error
}

type searchDoneMsg struct {
	err error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func expireToast(id int) tea.Cmd {
	return tea.Tick(ToastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{id: id}
	})
}
