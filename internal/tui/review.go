package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/devflow/internal/plan"
)

// ReviewResult is the operator's verdict on a plan
type ReviewResult struct {
	Approved bool
	Reason   string
}

type viewMode int

const (
	listView viewMode = iota
	detailView
)

type reviewKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Back    key.Binding
	Approve key.Binding
	Reject  key.Binding
	Quit    key.Binding
}

func (k reviewKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Open, k.Back, k.Approve, k.Reject, k.Quit}
}

func (k reviewKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var reviewKeys = reviewKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Open:    key.NewBinding(key.WithKeys("enter", "right", "l"), key.WithHelp("enter", "details")),
	Back:    key.NewBinding(key.WithKeys("left", "h", "esc"), key.WithHelp("esc", "back")),
	Approve: key.NewBinding(key.WithKeys("a", "A"), key.WithHelp("a", "approve")),
	Reject:  key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "reject")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// ReviewModel lists the tickets of a plan and lets the operator approve or
// reject it
type ReviewModel struct {
	plan   *plan.Plan
	depths map[int]int
	cursor int
	mode   viewMode

	editingReason bool
	reason        string
	result        *ReviewResult

	help help.Model
}

// NewReviewModel creates the review model for p
func NewReviewModel(p *plan.Plan) ReviewModel {
	depths, err := plan.Depths(p.Tickets)
	if err != nil {
		depths = map[int]int{}
	}
	return ReviewModel{plan: p, depths: depths, help: help.New()}
}

// Result is nil until the operator decides
func (m ReviewModel) Result() *ReviewResult { return m.result }

// Init implements tea.Model
func (m ReviewModel) Init() tea.Cmd { return nil }

// Update implements tea.Model
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if m.editingReason {
			return m.updateReason(msg)
		}
		return m.updateNavigation(msg)
	}
	return m, nil
}

func (m ReviewModel) updateReason(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.editingReason = false
		m.result = &ReviewResult{Reason: strings.TrimSpace(m.reason)}
		return m, tea.Quit
	case tea.KeyEsc:
		m.editingReason = false
		m.reason = ""
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.reason); len(r) > 0 {
			m.reason = string(r[:len(r)-1])
		}
		return m, nil
	case tea.KeySpace:
		m.reason += " "
		return m, nil
	case tea.KeyRunes:
		m.reason += string(msg.Runes)
		return m, nil
	case tea.KeyCtrlC:
		m.result = &ReviewResult{Reason: "Review cancelled"}
		return m, tea.Quit
	}
	return m, nil
}

func (m ReviewModel) updateNavigation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, reviewKeys.Quit):
		m.result = &ReviewResult{Reason: "Review cancelled"}
		return m, tea.Quit
	case key.Matches(msg, reviewKeys.Up):
		if m.mode == listView && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, reviewKeys.Down):
		if m.mode == listView && m.cursor < len(m.plan.Tickets)-1 {
			m.cursor++
		}
	case key.Matches(msg, reviewKeys.Open):
		if len(m.plan.Tickets) > 0 {
			m.mode = detailView
		}
	case key.Matches(msg, reviewKeys.Back):
		m.mode = listView
	case key.Matches(msg, reviewKeys.Approve):
		m.result = &ReviewResult{Approved: true}
		return m, tea.Quit
	case key.Matches(msg, reviewKeys.Reject):
		m.editingReason = true
	}
	return m, nil
}

// View implements tea.Model
func (m ReviewModel) View() string {
	if m.result != nil {
		if m.result.Approved {
			return approveStyle.Render("\n✓ Plan approved") + "\n\n"
		}
		reason := m.result.Reason
		if reason == "" {
			reason = "No reason provided"
		}
		return rejectStyle.Render(fmt.Sprintf("\n✗ Plan rejected: %s", reason)) + "\n\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("📋 " + m.plan.ProjectName))
	b.WriteString("\n\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("%d tickets", len(m.plan.Tickets))))
	b.WriteString("\n\n")

	if m.mode == listView || len(m.plan.Tickets) == 0 {
		m.writeList(&b)
	} else {
		m.writeDetail(&b)
	}

	b.WriteString("\n")
	if m.editingReason {
		b.WriteString(rejectStyle.Render("✗ Rejection reason: "))
		b.WriteString(m.reason + "_\n")
		b.WriteString(helpStyle.Render("enter submit • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render(m.help.View(reviewKeys)))
	}
	return b.String()
}

func (m ReviewModel) writeList(b *strings.Builder) {
	for i, t := range m.plan.Tickets {
		style, cursor := itemStyle, "  "
		if i == m.cursor {
			style, cursor = selectedItemStyle, "→ "
		}
		indent := strings.Repeat("  ", m.depths[t.ID])
		b.WriteString(style.Render(fmt.Sprintf("%s%s%d. %s [%s]", cursor, indent, t.ID, t.Title, t.Size)))
		b.WriteString("\n")
	}
}

func (m ReviewModel) writeDetail(b *strings.Builder) {
	t := m.plan.Tickets[m.cursor]
	deps := m.plan.DependencyTitles(t)
	depText := "none"
	if len(deps) > 0 {
		depText = strings.Join(deps, ", ")
	}

	for _, row := range [][2]string{
		{"ID", fmt.Sprint(t.ID)},
		{"Title", t.Title},
		{"Size", string(t.Size)},
		{"Kind", string(t.Kind)},
		{"Depends on", depText},
		{"Description", t.Description},
	} {
		b.WriteString("  ")
		b.WriteString(detailKeyStyle.Render(fmt.Sprintf("%-12s", row[0]+":")))
		b.WriteString(" ")
		b.WriteString(detailValueStyle.Render(row[1]))
		b.WriteString("\n")
	}
}

// RunPlanReview shows the review UI. Empty plans are approved without
// asking.
func RunPlanReview(p *plan.Plan) (*ReviewResult, error) {
	if len(p.Tickets) == 0 {
		return &ReviewResult{Approved: true}, nil
	}

	final, err := tea.NewProgram(NewReviewModel(p)).Run()
	if err != nil {
		return nil, fmt.Errorf("running plan review UI: %w", err)
	}

	m, ok := final.(ReviewModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type: %T", final)
	}
	if m.result == nil {
		return &ReviewResult{Reason: "Review cancelled"}, nil
	}
	return m.result, nil
}
