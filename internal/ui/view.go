package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/linkboard/internal/api"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.list.View(),
		m.renderPrompt(),
		m.renderFooter(),
	)
}

// syncList re-renders the board into the viewport and scrolls the selected
// row into view.
func (m *Model) syncList() {
	if !m.ready {
		return
	}
	m.list.Width = m.width
	m.list.Height = max(1, m.height-chromeLines)

	content, top, bottom := m.renderBoard()
	m.list.SetContent(content)
	switch {
	case top < m.list.YOffset:
		m.list.SetYOffset(top)
	case bottom >= m.list.YOffset+m.list.Height:
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m Model) renderHeader() string {
	s := m.theme.Styles()
	posts, comments := m.snapshot.Stats()

	left := s.Logo.Render("linkboard") + " " + s.MutedText.Render(m.apiURL)

	var state string
	switch {
	case m.snapshot.IsOffline():
		state = s.DangerText.Render(fmt.Sprintf("OFFLINE (%d failures)", m.snapshot.ConsecutiveFailures))
	case !m.snapshot.Loaded:
		state = s.WarningText.Render("not loaded")
	default:
		state = s.Text.Render(fmt.Sprintf("%d posts · %d comments", posts, comments)) +
			s.FaintText.Render("  "+m.snapshot.LastUpdated.Format("15:04:05"))
	}

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(state)-2)
	return s.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + state)
}

// renderBoard returns the board content and the first and last line of the
// selected row, including its inline form.
func (m Model) renderBoard() (content string, top, bottom int) {
	s := m.theme.Styles()
	if len(m.rows) == 0 {
		msg := "No posts yet. Press a to add one."
		if !m.snapshot.Loaded {
			msg = "Nothing loaded. Press r to reload."
		}
		return s.FaintText.Render(msg), 0, 0
	}

	var lines []string
	for i, r := range m.rows {
		if i == m.cursor {
			top = len(lines)
		}
		lines = append(lines, m.renderRow(r, i == m.cursor))
		if m.ctrl != nil && m.ctrl.IsFormVisible(r.key.Kind, r.key.ID) {
			lines = append(lines, strings.Split(m.renderForm(r), "\n")...)
		}
		if i == m.cursor {
			bottom = len(lines) - 1
		}
	}
	return strings.Join(lines, "\n"), top, bottom
}

func (m Model) renderRow(r row, selected bool) string {
	s := m.theme.Styles()

	indent := ""
	if !r.isPost() {
		indent = "    "
	}
	id := fmt.Sprintf("#%d", r.key.ID)
	link := r.link
	if link == "" {
		link = "(empty)"
	}
	var suffix string
	if r.isPost() && r.comments > 0 {
		suffix = fmt.Sprintf("  (%d)", r.comments)
	}

	avail := max(10, m.width-lipgloss.Width(indent)-len(id)-len(suffix)-10)
	link = lipgloss.NewStyle().MaxWidth(avail).Render(link)

	if selected {
		plain := fmt.Sprintf("%s▸ %s %s%s", indent, id, link, suffix)
		return s.Selected.Width(m.width).Render(plain)
	}
	return indent + "  " + s.KindBadge(r.key.Kind) + " " + s.MutedText.Render(id) + " " +
		s.Text.Render(link) + s.FaintText.Render(suffix)
}

func (m Model) renderForm(r row) string {
	s := m.theme.Styles()
	width := max(20, m.width-8)

	if m.mode == modeEdit && m.target == r.key {
		return s.Form.Width(width).MarginLeft(4).Render(m.input.View())
	}
	form, ok := m.ctrl.LookupEditForm(r.key.Kind, r.key.ID)
	if !ok {
		return s.Form.Width(width).MarginLeft(4).Render(s.DangerText.Render("no form"))
	}
	text := s.MutedText.Render(form.Link)
	if form.Dirty() {
		text += s.WarningText.Render("  (modified)")
	}
	return s.Form.Width(width).MarginLeft(4).Render(text + s.FaintText.Render("  e to close"))
}

func (m Model) renderPrompt() string {
	s := m.theme.Styles()
	switch m.mode {
	case modeAddPost:
		return s.Prompt.Render("New post ") + m.input.View()
	case modeAddComment:
		label := fmt.Sprintf("Comment on #%d ", m.target.ID)
		if post, ok := m.snapshot.FindPost(m.target.ID); ok {
			label = fmt.Sprintf("Comment on #%d (%s) ", post.ID, post.Link)
		}
		return s.Prompt.Render(label) + m.input.View()
	case modeConfirmDelete:
		noun := "post"
		if m.target.Kind == api.KindComment {
			noun = "comment"
		}
		return s.DangerText.Render(fmt.Sprintf("Delete %s #%d? (y/n)", noun, m.target.ID))
	}

	if m.busy {
		return s.WarningText.Render("working…")
	}
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return s.DangerText.Render(m.status)
	}
	return s.SuccessText.Render(m.status)
}

func (m Model) renderFooter() string {
	s := m.theme.Styles()
	return s.Footer.Width(m.width).Render(m.help.ShortHelpView(m.keys.ShortHelp()) + "  " + m.theme.Name)
}

func (m Model) renderHelp() string {
	s := m.theme.Styles()
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.Logo.Render("Keys"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		s.FaintText.Render("press any key to close"),
	)
	box := s.Form.Padding(1, 2).Render(body)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
