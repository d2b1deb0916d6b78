package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/linkboard/internal/prefs"
	"github.com/five82/linkboard/internal/viewstate"
)

// inputMode says what the keyboard is currently driving.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeAddPost
	modeAddComment
	modeEdit
	modeConfirmDelete
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Controller *viewstate.Controller
	Logger     *zap.Logger
	APIURL     string
	PollTick   time.Duration // zero disables picking up background refreshes
	Prefs      prefs.Prefs
	PrefsPath  string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	ctrl      *viewstate.Controller
	logger    *zap.Logger
	apiURL    string
	prefsPath string
	prefs     prefs.Prefs
	pollTick  time.Duration

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot viewstate.Snapshot
	rows     []row
	cursor   int
	list     viewport.Model

	// Input state
	mode   inputMode
	input  textinput.Model
	target viewstate.Key // form being edited, row pending delete, or parent post for a comment
	busy   bool          // a mutation or reload is in flight

	status    string
	statusErr bool
}

const (
	defaultPollTick = time.Second
	chromeLines     = 4 // header, spacer, prompt/status, footer
)

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Defaults()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	input := textinput.New()
	input.Placeholder = "https://…"
	input.CharLimit = 2048
	input.Prompt = "› "

	m := Model{
		ctx:       ctx,
		ctrl:      opts.Controller,
		logger:    logger,
		apiURL:    opts.APIURL,
		prefsPath: prefsPath,
		prefs:     p,
		pollTick:  opts.PollTick,
		theme:     GetTheme(p.Theme),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		list:      viewport.New(0, 0),
		input:     input,
	}
	if m.ctrl != nil {
		m.applySnapshot(m.ctrl.Snapshot())
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.pollTick <= 0 {
		return nil
	}
	return tickCmd(m.uiTick())
}

// uiTick is how often the model re-reads the controller to pick up
// background refreshes.
func (m Model) uiTick() time.Duration {
	if m.pollTick < defaultPollTick {
		return m.pollTick
	}
	return defaultPollTick
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncList()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(10, msg.Width-16)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if m.ctrl != nil {
			snap := m.ctrl.Snapshot()
			if !snap.LastUpdated.Equal(m.snapshot.LastUpdated) {
				m.applySnapshot(snap)
			}
		}
		return m, tickCmd(m.uiTick())

	case reloadedMsg:
		m.busy = false
		m.applySnapshot(msg.snapshot)
		if msg.err != nil {
			m.setError("reload failed", msg.err)
		} else {
			posts, comments := msg.snapshot.Stats()
			m.setStatus(fmt.Sprintf("reloaded %d posts, %d comments", posts, comments))
		}
		return m, nil

	case mutationMsg:
		m.busy = false
		m.applySnapshot(m.ctrl.Snapshot())
		switch {
		case msg.err != nil:
			m.setError(msg.op+" failed", msg.err)
			return m, nil
		case !msg.refreshed:
			m.setStatus("nothing to submit")
		default:
			m.setStatus(msg.op + " saved")
		}
		m.leaveInput()
		return m, nil
	}

	if m.mode != modeBrowse && m.mode != modeConfirmDelete {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applySnapshot installs a snapshot and rebuilds the rows, keeping the cursor
// on the same entity when it still exists.
func (m *Model) applySnapshot(snap viewstate.Snapshot) {
	var (
		key    viewstate.Key
		postID int64
	)
	if r, ok := m.selected(); ok {
		key, postID = r.key, r.postID
	}
	m.snapshot = snap
	m.rows = buildRows(snap.Posts, m.prefs.HideComments)
	m.cursor = relocate(m.rows, key, postID, m.cursor)

	// A refresh hides every form; an edit in progress goes with it.
	if m.mode == modeEdit && !m.ctrl.IsFormVisible(m.target.Kind, m.target.ID) {
		m.leaveInput()
	}
}

func (m Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(what string, err error) {
	m.status = fmt.Sprintf("%s: %v", what, err)
	m.statusErr = true
	m.logger.Warn(what, zap.Error(err))
}

func (m *Model) leaveInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.SetValue("")
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch m.mode {
	case modeConfirmDelete:
		return m.handleConfirmKey(msg)
	case modeAddPost, modeAddComment:
		return m.handleAddKey(msg)
	case modeEdit:
		return m.handleEditKey(msg)
	}
	return m.handleBrowseKey(msg)
}

func (m Model) handleBrowseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.ToggleComments):
		m.prefs.HideComments = !m.prefs.HideComments
		m.savePrefs()
		m.applySnapshot(m.snapshot)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(0, len(m.rows)-1)

	case key.Matches(msg, m.keys.Reload):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.setStatus("reloading…")
		return m, reloadCmd(m.ctx, m.ctrl)

	case key.Matches(msg, m.keys.AddPost):
		m.mode = modeAddPost
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.AddComment):
		r, ok := m.selected()
		if !ok {
			m.setStatus("no post selected")
			return m, nil
		}
		parent := r.key.ID
		if !r.isPost() {
			id, found := m.snapshot.ParentOf(r.key.ID)
			if !found {
				m.setStatus(fmt.Sprintf("comment #%d has no post", r.key.ID))
				return m, nil
			}
			parent = id
		}
		m.mode = modeAddComment
		m.target = viewstate.PostKey(parent)
		m.input.SetValue("")
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.ToggleEdit):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.ctrl.ToggleForm(r.key.Kind, r.key.ID) {
			return m.enterEdit(r.key)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirmDelete
		m.target = r.key
	}
	return m, nil
}

// enterEdit focuses the input on the registered form for k.
func (m Model) enterEdit(k viewstate.Key) (Model, tea.Cmd) {
	form, ok := m.ctrl.LookupEditForm(k.Kind, k.ID)
	if !ok {
		m.setError("edit", fmt.Errorf("no edit form for %s", k))
		return m, nil
	}
	m.mode = modeEdit
	m.target = k
	m.input.SetValue(form.Link)
	m.input.CursorEnd()
	return m, m.input.Focus()
}

func (m Model) handleAddKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.busy {
			return m, nil
		}
		var parent *int64
		op := "add post"
		if m.mode == modeAddComment {
			id := m.target.ID
			parent = &id
			op = "add comment"
		}
		m.busy = true
		return m, submitAddCmd(m.ctx, m.ctrl, op, parent, m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEditKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.ToggleForm(m.target.Kind, m.target.ID)
		m.leaveInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, submitEditCmd(m.ctx, m.ctrl, m.target, m.input.Value())
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetFormLink(m.target.Kind, m.target.ID, m.input.Value())
	return m, cmd
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Yes):
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, submitDeleteCmd(m.ctx, m.ctrl, m.target)
	case key.Matches(msg, m.keys.No):
		m.mode = modeBrowse
		m.setStatus("delete cancelled")
	}
	return m, nil
}

func (m *Model) savePrefs() {
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.logger.Warn("save prefs", zap.Error(err))
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Controller == nil {
		return fmt.Errorf("ui requires a view-state controller")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
