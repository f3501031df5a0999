package tui

import (
	"github.com/MKhiriev/go-plan-keeper/models"
	tea "github.com/charmbracelet/bubbletea"
)

// NavigateTo switches the active page of [RootModel]. Payload, when set, is
// delivered to the new page instead of calling its Init.
type NavigateTo struct {
	Page    string
	Payload tea.Msg
}

// LoginResult finishes the login or registration form.
type LoginResult struct {
	Err   error
	Login string
}

// statusMsg carries a coordinator status pushed by its subscription.
type statusMsg models.SyncStatus

type saveOutcomeMsg struct {
	outcome models.SaveOutcome
}

type opDoneMsg struct {
	op  string
	err error
}

type clearNoticeMsg struct {
	seq int
}
