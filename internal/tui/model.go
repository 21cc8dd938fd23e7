package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cordchat/internal/domain"
	"cordchat/internal/session"
)

// ChatPort is the TUI-facing surface of the chat handler.
type ChatPort interface {
	Ask(ctx context.Context, question string) domain.Turn
	Session() *session.Session
}

// InitFunc builds the chat handler; it runs once, off the UI loop, because
// construction may download the index and open network clients.
type InitFunc func() (ChatPort, error)

type readyMsg struct{ port ChatPort }
type initFailedMsg struct{ err error }
type answeredMsg struct{}

// Model is the Bubble Tea model for the chat UI.
type Model struct {
	init      InitFunc
	port      ChatPort
	input     textinput.Model
	viewport  viewport.Model
	status    string
	keyLoaded bool
	ready     bool
	failed    bool
	thinking  bool
	pending   string
}

// New creates a new chat model. keyLoaded reports whether the API credential
// was found in the environment; it is shown in the header only, the pipeline
// itself fails construction when the credential is genuinely required.
func New(init InitFunc, keyLoaded bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about COVID-19 research..."
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		init:      init,
		input:     ti,
		viewport:  vp,
		keyLoaded: keyLoaded,
		status:    "Loading index and connecting...",
	}
}

// Init kicks off pipeline construction alongside the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		port, err := m.init()
		if err != nil {
			return initFailedMsg{err: err}
		}
		return readyMsg{port: port}
	})
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		_, th := transcriptStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved - th
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		// The session has a single writer; while an answer is in flight
		// the transcript is left as-is until answeredMsg arrives.
		if !m.thinking {
			m.viewport.SetContent(m.renderTranscript())
		}
		return m, nil

	case readyMsg:
		m.port = msg.port
		m.ready = true
		m.status = "Ready. Type a question, /clear resets history."
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case initFailedMsg:
		m.failed = true
		m.status = "Startup failed: " + msg.err.Error()
		return m, nil

	case answeredMsg:
		m.thinking = false
		m.pending = ""
		m.status = "Ready."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			if q == "/clear" {
				return m.clearHistory()
			}
			if m.failed {
				m.status = "Pipeline unavailable; fix the startup error and restart."
				m.input.SetValue("")
				return m, nil
			}
			if !m.ready || m.thinking {
				return m, nil
			}
			m.input.SetValue("")
			m.pending = q
			m.thinking = true
			m.status = "Thinking..."
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			port := m.port
			return m, func() tea.Msg {
				port.Ask(context.Background(), q)
				return answeredMsg{}
			}
		case "ctrl+l":
			return m.clearHistory()
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) clearHistory() (tea.Model, tea.Cmd) {
	m.input.SetValue("")
	if m.ready && !m.thinking {
		m.port.Session().Clear()
		m.status = "History cleared."
		m.viewport.SetContent(m.renderTranscript())
	}
	return m, nil
}

// View renders the header, transcript, input box and status line.
func (m Model) View() string {
	header := headerStyle.Render("COVID-19 Research Chat")
	key := keyOKStyle.Render("API key loaded")
	if !m.keyLoaded {
		key = keyMissingStyle.Render("API key not found")
	}
	transcript := transcriptStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "  " + key + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if m.port == nil {
		return "Loading..."
	}
	var b strings.Builder
	for turn := range m.port.Session().Turns() {
		switch turn.Role {
		case domain.RoleUser:
			b.WriteString(userStyle.Render("You: ") + turn.Content + "\n\n")
		case domain.RoleAssistant:
			b.WriteString(assistantStyle.Render("Assistant: ") + turn.Content + "\n")
			for i, src := range turn.Sources {
				b.WriteString(sourceStyle.Render(fmt.Sprintf("Source %d:", i+1)) + "\n")
				b.WriteString(sourceStyle.Render(string(src)) + "\n")
			}
			b.WriteString("\n")
		}
	}
	if m.pending != "" {
		b.WriteString(userStyle.Render("You: ") + m.pending + "\n\n")
		b.WriteString(assistantStyle.Render("Assistant: ") + "Thinking...\n")
	}
	if b.Len() == 0 {
		return "Ask any question about COVID-19 symptoms, treatments, vaccines, or other research topics."
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	keyOKStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	keyMissingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
