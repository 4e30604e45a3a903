package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PabloGalante/shopassist/internal/app/conversation"
	"github.com/PabloGalante/shopassist/internal/domain"
)

// Conversation is the part of the conversation service the chat screen drives.
type Conversation interface {
	Watch(ctx context.Context, id domain.SessionID) (*conversation.Timeline, <-chan conversation.Event, func(), error)
	SubmitUtterance(ctx context.Context, id domain.SessionID, text string) (*domain.Message, error)
	Reset(ctx context.Context, id domain.SessionID) (*domain.Message, error)
	SetCategory(ctx context.Context, id domain.SessionID, category string) (domain.FilterCriteria, error)
	SetMinPrice(ctx context.Context, id domain.SessionID, raw string) (domain.FilterCriteria, error)
	SetMaxPrice(ctx context.Context, id domain.SessionID, raw string) (domain.FilterCriteria, error)
	SetInStockOnly(ctx context.Context, id domain.SessionID, on bool) (domain.FilterCriteria, error)
	ClearFilters(ctx context.Context, id domain.SessionID) (domain.FilterCriteria, error)
}

// eventMsg carries one conversation event into the update loop.
type eventMsg struct {
	event conversation.Event
}

// streamClosedMsg is sent when the service closes the subscription.
type streamClosedMsg struct{}

// waitForEvent blocks on the subscription and turns the next event into a message.
func waitForEvent(events <-chan conversation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg{event: ev}
	}
}

// chrome is the number of rows taken by everything but the chat viewport:
// header, filter bar, chat border, status line and the bordered input.
const chrome = 1 + 1 + 2 + 1 + 3

// Model is the chat screen state. Messages, filters and the pending flag
// only change in response to service events.
type Model struct {
	ctx       context.Context
	conv      Conversation
	sessionID domain.SessionID
	events    <-chan conversation.Event

	width  int
	height int
	ready  bool

	messages []*domain.Message
	filters  domain.FilterCriteria
	pending  bool
	notice   string

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keys     KeyMap
}

// NewModel builds the screen from a timeline snapshot and the subscription
// that continues it.
func NewModel(ctx context.Context, conv Conversation, tl *conversation.Timeline, events <-chan conversation.Event) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask for a product, or /help"
	ti.Focus()
	ti.CharLimit = 500
	ti.Prompt = "> "

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantMessageStyle

	m := Model{
		ctx:       ctx,
		conv:      conv,
		sessionID: tl.Session.ID,
		events:    events,
		messages:  append([]*domain.Message(nil), tl.Messages...),
		filters:   tl.Session.Filters.Clone(),
		pending:   tl.Pending,
		viewport:  viewport.New(80, 20),
		input:     ti,
		spinner:   sp,
		keys:      DefaultKeyMap,
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForEvent(m.events)}
	if m.pending {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-chrome, 3)
		m.input.Width = max(msg.Width-8, 10)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		wasPending := m.pending
		m.apply(msg.event)
		cmds := []tea.Cmd{waitForEvent(m.events)}
		if m.pending && !wasPending {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case streamClosedMsg:
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		line := m.input.Value()
		m.input.Reset()
		return m.submit(line)

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDn):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	m.notice = ""

	if c, ok := parseCommand(line); ok {
		notice, quit, err := c.run(m.ctx, m.conv, m.sessionID)
		if quit {
			return m, tea.Quit
		}
		if err != nil {
			m.notice = err.Error()
		} else {
			m.notice = notice
		}
		return m, nil
	}

	_, err := m.conv.SubmitUtterance(m.ctx, m.sessionID, line)
	switch {
	case errors.Is(err, conversation.ErrReplyPending):
		m.notice = "The assistant is still replying, please wait."
	case err != nil:
		m.notice = err.Error()
	}
	return m, nil
}

func (m *Model) apply(ev conversation.Event) {
	switch ev.Type {
	case conversation.EventMessage:
		m.messages = append(m.messages, ev.Message)
	case conversation.EventReset:
		m.messages = []*domain.Message{ev.Message}
	case conversation.EventPending:
		m.pending = ev.Pending
	case conversation.EventFilters:
		if ev.Filters != nil {
			m.filters = ev.Filters.Clone()
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderChat())
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := HeaderStyle.Width(m.width).Render("Shopping Assistant")
	filterBar := FilterBarStyle.Width(m.width).Render(renderFilters(m.filters))
	chat := ChatPanelStyle.Width(m.width - 2).Render(m.viewport.View())

	status := NoticeStyle.Render(m.notice)
	if m.pending {
		status = NoticeStyle.Render(m.spinner.View() + " Assistant is typing...")
	}

	input := InputBarStyle.Width(m.width - 2).Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, filterBar, chat, status, input)
}

func (m Model) renderChat() string {
	width := m.viewport.Width
	var sb strings.Builder
	for i, msg := range m.messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		if msg.Author == domain.RoleUser {
			sb.WriteString(UserMessageStyle.Width(width).Render("You: " + msg.Text))
		} else {
			sb.WriteString(AssistantMessageStyle.Width(width).Render("Assistant: " + msg.Text))
		}
		sb.WriteString("\n")
		for _, it := range msg.Items {
			sb.WriteString(ItemStyle.Width(width).Render(renderItem(it)))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func renderItem(it domain.Item) string {
	line := fmt.Sprintf("• %s  $%.2f  %s  %s",
		it.Name, it.Price, RatingStyle.Render(fmt.Sprintf("★ %.1f", it.Rating)), it.Category)
	if !it.InStock {
		line += "  " + OutOfStockStyle.Render("out of stock")
	}
	return line
}

func renderFilters(f domain.FilterCriteria) string {
	bound := func(v *float64) string {
		if s := domain.FormatPriceBound(v); s != "" {
			return s
		}
		return "-"
	}
	stock := "off"
	if f.InStockOnly {
		stock = "on"
	}
	return fmt.Sprintf("category: %s   min: %s   max: %s   in stock only: %s",
		f.Category, bound(f.MinPrice), bound(f.MaxPrice), stock)
}
