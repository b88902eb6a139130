// Package tui implements the interactive chat screen.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/eazerepy/eazerepy/client/sdk"
	"github.com/eazerepy/eazerepy/internal/chat"
	"github.com/eazerepy/eazerepy/internal/wallet"
)

var (
	colorAccent = lipgloss.Color("#7c3aed")
	colorUser   = lipgloss.Color("#4f46e5")
	colorDim    = lipgloss.Color("#6b7280")
	colorError  = lipgloss.Color("#dc2626")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	traitStyle   = lipgloss.NewStyle().Foreground(colorAccent).Padding(0, 1).Border(lipgloss.RoundedBorder(), false, true)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	agentHeading = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	userHeading  = lipgloss.NewStyle().Bold(true).Foreground(colorUser)
)

const maxTraits = 3

// ErrSignedOut is returned by Run when the screen closed because the session was signed out.
var ErrSignedOut = errors.New("signed out")

// Option customizes the chat screen.
type Option func(m *Model)

// WithSignedIn sets the check run after every network round trip; once it reports false
// the screen quits.
func WithSignedIn(fn func() bool) Option {
	return func(m *Model) { m.signedIn = fn }
}

type openedMsg struct{ err error }

type deliveredMsg struct{ err error }

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx     context.Context
	session *chat.Session

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	width   int
	height  int
	opened  bool
	fatal     error
	address   string
	signedIn  func() bool
	signedOut bool
}

// New creates the chat screen over an unopened session.
func New(ctx context.Context, session *chat.Session, opts ...Option) Model {
	inp := textinput.New()
	inp.Placeholder = "Type your message..."
	inp.Prompt = "› "
	inp.CharLimit = 0
	inp.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		ctx:      ctx,
		session:  session,
		input:    inp,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Run opens the screen on the terminal until the user quits.
func Run(ctx context.Context, session *chat.Session, opts ...Option) error {
	final, err := tea.NewProgram(New(ctx, session, opts...), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok && m.signedOut {
		return ErrSignedOut
	}
	return nil
}

// expired marks the screen signed out when the session no longer holds a valid login.
func (m *Model) expired() bool {
	if m.signedIn == nil || m.signedIn() {
		return false
	}
	m.signedOut = true
	return true
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.open(), m.spinner.Tick, textinput.Blink)
}

func (m Model) open() tea.Cmd {
	return func() tea.Msg {
		return openedMsg{err: m.session.Open(m.ctx)}
	}
}

func (m Model) deliver(p *chat.Pending) tea.Cmd {
	return func() tea.Msg {
		return deliveredMsg{err: m.session.Deliver(m.ctx, p)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.rerender()
		return m, nil
	case openedMsg:
		if m.expired() {
			return m, tea.Quit
		}
		if msg.err != nil {
			m.fatal = msg.err
			return m, nil
		}
		m.opened = true
		if agent := m.session.Agent(); agent != nil {
			if address, err := wallet.Address(agent.Credentials.Get("evm_private_key")); err == nil {
				m.address = address
			}
		}
		m.resize()
		m.rerender()
		return m, nil
	case deliveredMsg:
		if m.expired() {
			return m, tea.Quit
		}
		m.input.Focus()
		m.rerender()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.fatal != nil {
				return m, tea.Quit
			}
			pending, ok := m.session.Begin(m.input.Value())
			if !ok {
				return m, nil
			}
			m.input.Reset()
			m.input.Blur()
			m.rerender()
			return m, m.deliver(pending)
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.signedOut {
		return ""
	}
	if m.fatal != nil {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			errorStyle.Render(chat.Message(m.fatal)) + "\n\n" + dimStyle.Render("press enter to go back"))
	}
	if !m.opened {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.spinner.View() + " loading...")
	}
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.status())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m Model) header() string {
	agent := m.session.Agent()
	if agent == nil {
		return ""
	}
	line := titleStyle.Render(agent.AgentName)
	traits := agent.Traits
	if len(traits) > maxTraits {
		traits = traits[:maxTraits]
	}
	for _, trait := range traits {
		line += " " + traitStyle.Render(trait)
	}
	if m.address != "" {
		line += "\n" + dimStyle.Render("wallet "+m.address)
	}
	return line
}

func (m Model) status() string {
	switch {
	case m.session.Sending():
		return m.spinner.View() + dimStyle.Render(" Agent is typing...")
	case m.session.Err() != nil:
		return errorStyle.Render(chat.Message(m.session.Err()))
	}
	return dimStyle.Render("enter to send · esc to quit")
}

func (m *Model) resize() {
	headerH := 1
	if m.address != "" {
		headerH = 2
	}
	m.viewport.Width = max(0, m.width)
	m.viewport.Height = max(0, m.height-headerH-3)
	m.input.Width = max(0, m.width-4)
}

// rerender refreshes the transcript and follows the newest entry.
func (m *Model) rerender() {
	transcript := m.session.Transcript()
	if len(transcript) == 0 {
		m.viewport.SetContent(dimStyle.Render("No messages yet. Start a conversation!"))
		return
	}
	width := max(20, m.viewport.Width-2)
	body := lipgloss.NewStyle().Width(width)
	blocks := make([]string, 0, len(transcript))
	for _, msg := range transcript {
		blocks = append(blocks, renderMessage(msg, body))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.viewport.GotoBottom()
}

func renderMessage(msg sdk.Message, body lipgloss.Style) string {
	r := chat.Render(msg)
	heading := agentHeading.Render(r.Heading)
	if msg.Role == sdk.RoleUser {
		heading = userHeading.Render(r.Heading)
	}
	stamp := ""
	if !msg.CreatedAt.IsZero() {
		stamp = dimStyle.Render(" " + msg.CreatedAt.Local().Format("15:04"))
	}
	return fmt.Sprintf("%s%s\n%s", heading, stamp, body.Render(r.Body))
}
