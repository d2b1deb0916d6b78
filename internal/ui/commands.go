package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/linkboard/internal/viewstate"
)

type tickMsg time.Time

type reloadedMsg struct {
	snapshot viewstate.Snapshot
	err      error
}

// mutationMsg reports a submitted add, edit or delete. refreshed is false
// when the controller decided there was nothing to send.
type mutationMsg struct {
	op        string
	refreshed bool
	err       error
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func reloadCmd(ctx context.Context, ctrl *viewstate.Controller) tea.Cmd {
	return func() tea.Msg {
		snap, err := ctrl.Reload(ctx)
		if err != nil {
			// Reload leaves state alone on failure; show what we still have.
			snap = ctrl.Snapshot()
		}
		return reloadedMsg{snapshot: snap, err: err}
	}
}

func submitAddCmd(ctx context.Context, ctrl *viewstate.Controller, op string, parent *int64, link string) tea.Cmd {
	return func() tea.Msg {
		ok, err := ctrl.SubmitAdd(ctx, parent, link)
		return mutationMsg{op: op, refreshed: ok, err: err}
	}
}

func submitEditCmd(ctx context.Context, ctrl *viewstate.Controller, k viewstate.Key, link string) tea.Cmd {
	return func() tea.Msg {
		ok, err := ctrl.SubmitEdit(ctx, k.Kind, k.ID, link)
		return mutationMsg{op: "edit " + k.Kind.String(), refreshed: ok, err: err}
	}
}

func submitDeleteCmd(ctx context.Context, ctrl *viewstate.Controller, k viewstate.Key) tea.Cmd {
	return func() tea.Msg {
		ok, err := ctrl.SubmitDelete(ctx, k.Kind, k.ID)
		return mutationMsg{op: "delete " + k.Kind.String(), refreshed: ok, err: err}
	}
}
