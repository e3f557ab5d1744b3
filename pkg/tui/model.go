// Package tui implements the interactive terminal chat client.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/chatrelay/pkg/chat"
)

// Sender delivers a prompt and returns the reply text.
type Sender interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// Renderer turns reply markdown into terminal output.
type Renderer interface {
	Render(in string) (string, error)
}

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle      = lipgloss.NewStyle().Faint(true)
)

const defaultWidth = 80

// replyMsg carries the result of a send back to the UI loop.
type replyMsg struct {
	text string
	err  error
}

// Model is the bubbletea model for a chat session. The transcript is only
// touched from Update, so there is a single writer.
type Model struct {
	ctx        context.Context
	sender     Sender
	renderer   Renderer
	transcript chat.Transcript

	input   textinput.Model
	spinner spinner.Model
	loading bool
	width   int
}

// Option configures a Model.
type Option func(*Model)

// WithRenderer renders assistant replies through r, e.g. a glamour renderer.
func WithRenderer(r Renderer) Option {
	return func(m *Model) {
		m.renderer = r
	}
}

// NewModel creates a chat model that sends prompts through sender.
func NewModel(ctx context.Context, sender Sender, opts ...Option) Model {
	input := textinput.New()
	input.Placeholder = "Ask something..."
	input.Prompt = "> "
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctx:     ctx,
		sender:  sender,
		input:   input,
		spinner: s,
		width:   defaultWidth,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case replyMsg:
		m.loading = false
		if msg.err != nil {
			m.transcript.AppendError(msg.err)
		} else {
			m.transcript.AppendAssistant(msg.text)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
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

// submit sends the current input. Empty prompts and submits while a request
// is in flight are ignored.
func (m Model) submit() (tea.Model, tea.Cmd) {
	prompt := strings.TrimSpace(m.input.Value())
	if prompt == "" || m.loading {
		return m, nil
	}

	m.transcript.AppendUser(prompt)
	m.input.Reset()
	m.loading = true

	return m, tea.Batch(m.send(prompt), m.spinner.Tick)
}

func (m Model) send(prompt string) tea.Cmd {
	ctx, sender := m.ctx, m.sender
	return func() tea.Msg {
		text, err := sender.Send(ctx, prompt)
		return replyMsg{text: text, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder

	for _, msg := range m.transcript.Messages() {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}

	if m.loading {
		b.WriteString(m.spinner.View() + " waiting for reply\n\n")
	}

	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: send • esc: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderMessage(msg chat.Message) string {
	if msg.Role == chat.RoleUser {
		return userStyle.Render("You") + "\n" + ansi.Wordwrap(msg.Text, m.width, "") + "\n"
	}

	label := assistantStyle.Render("Assistant")
	if strings.HasPrefix(msg.Text, chat.ErrorPrefix) {
		return label + "\n" + errorStyle.Render(ansi.Wordwrap(msg.Text, m.width, "")) + "\n"
	}

	if m.renderer != nil {
		if out, err := m.renderer.Render(msg.Text); err == nil {
			return label + "\n" + strings.TrimRight(out, "\n") + "\n"
		}
	}
	return label + "\n" + ansi.Wordwrap(msg.Text, m.width, "") + "\n"
}

// Transcript returns the messages exchanged so far.
func (m Model) Transcript() []chat.Message {
	return m.transcript.Messages()
}

// Loading reports whether a request is in flight.
func (m Model) Loading() bool {
	return m.loading
}
