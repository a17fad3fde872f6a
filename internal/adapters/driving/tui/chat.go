// Package tui provides the interactive chat interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/minato-lab/innersearch/internal/core/domain"
	"github.com/minato-lab/innersearch/internal/core/ports/driving"
)

// turnDoneMsg carries the outcome of one assistant turn.
type turnDoneMsg struct {
	utterance string
	payload   domain.Response
	err       error
}

// indexNoticeMsg carries a notice line about an index rebuild.
type indexNoticeMsg string

// Model is the bubbletea model for the chat view: a transcript viewport
// over a single-line input, with a session-level mode toggle.
type Model struct {
	styles    *Styles
	assistant driving.Assistant
	ctx       context.Context

	sessionID  string
	notices    <-chan string
	mode       domain.Mode
	input      textinput.Model
	viewport   viewport.Model
	transcript []string
	waiting    bool
	ready      bool
	width      int
	height     int
}

// NewModel creates the chat model for an open session. A non-nil
// notices channel feeds index rebuild notices into the transcript.
func NewModel(ctx context.Context, assistant driving.Assistant, sessionID string, notices <-chan string) *Model {
	input := textinput.New()
	input.Placeholder = "質問を入力してください"
	input.Focus()
	input.CharLimit = 500

	return &Model{
		styles:    DefaultStyles(),
		assistant: assistant,
		ctx:       ctx,
		sessionID: sessionID,
		notices:   notices,
		mode:      domain.ModeInquiry,
		input:     input,
		width:     80,
		height:    24,
	}
}

// Init initialises the model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitNotice())
}

// waitNotice blocks on the notices channel and delivers the next
// rebuild notice as a message.
func (m *Model) waitNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return func() tea.Msg {
		notice, ok := <-m.notices
		if !ok {
			return nil
		}
		return indexNoticeMsg(notice)
	}
}

// Update handles terminal events and turn results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport = viewport.New(msg.Width, msg.Height-4)
		m.viewport.SetContent(strings.Join(m.transcript, "\n"))
		m.viewport.GotoBottom()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab:
			m.toggleMode()
			return m, nil
		case tea.KeyEnter:
			return m, m.submit()
		}

	case turnDoneMsg:
		m.waiting = false
		m.appendTurn(msg)
		return m, nil

	case indexNoticeMsg:
		m.transcript = append(m.transcript, m.styles.Help.Render(string(msg)), "")
		if m.ready {
			m.viewport.SetContent(strings.Join(m.transcript, "\n"))
			m.viewport.GotoBottom()
		}
		return m, m.waitNotice()
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the chat screen.
func (m *Model) View() string {
	if !m.ready {
		return "起動中..."
	}

	badge := m.styles.ModeBadge.Render(modeLabel(m.mode))
	title := m.styles.Title.Render("社内文書アシスタント") + " " + badge

	status := m.styles.Help.Render("Enter: 送信  Tab: モード切替  Esc: 終了")
	if m.waiting {
		status = m.styles.Help.Render("回答を生成しています...")
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s", title, m.viewport.View(), m.input.View(), status)
}

func (m *Model) toggleMode() {
	if m.mode == domain.ModeInquiry {
		m.mode = domain.ModeSearch
	} else {
		m.mode = domain.ModeInquiry
	}
}

func (m *Model) submit() tea.Cmd {
	utterance := strings.TrimSpace(m.input.Value())
	if utterance == "" || m.waiting {
		return nil
	}
	m.input.Reset()
	m.waiting = true

	mode := m.mode
	return func() tea.Msg {
		payload, err := m.assistant.HandleTurn(m.ctx, m.sessionID, mode, utterance)
		return turnDoneMsg{utterance: utterance, payload: payload, err: err}
	}
}

func (m *Model) appendTurn(msg turnDoneMsg) {
	m.transcript = append(m.transcript, m.styles.UserLine.Render("> "+msg.utterance))

	if msg.err != nil {
		m.transcript = append(m.transcript, m.styles.Failure.Render(domain.FailureMessage), "")
	} else {
		m.transcript = append(m.transcript, m.renderPayload(msg.payload)...)
	}

	m.viewport.SetContent(strings.Join(m.transcript, "\n"))
	m.viewport.GotoBottom()
}

func (m *Model) renderPayload(payload domain.Response) []string {
	switch p := payload.(type) {
	case domain.SearchResponse:
		if p.NoHit {
			return []string{m.styles.NoHit.Render(p.Message), ""}
		}
		lines := []string{m.styles.Citation.Render(iconGlyph(p.Primary.Icon) + " " + p.Primary.Label())}
		for _, c := range p.Secondary {
			lines = append(lines, m.styles.Citation.Render("  "+iconGlyph(c.Icon)+" "+c.Label()))
		}
		return append(lines, "")
	case domain.InquiryResponse:
		lines := []string{m.styles.Answer.Render(p.Answer)}
		for _, c := range p.Sources {
			lines = append(lines, m.styles.Citation.Render("  "+iconGlyph(c.Icon)+" "+c.Label()))
		}
		return append(lines, "")
	default:
		return []string{""}
	}
}

func modeLabel(mode domain.Mode) string {
	if mode == domain.ModeSearch {
		return "文書検索"
	}
	return "問い合わせ"
}

func iconGlyph(icon domain.Icon) string {
	if icon == domain.IconLink {
		return "🔗"
	}
	return "📄"
}

// Run opens the chat screen and blocks until the user quits. notices
// may be nil when document watching is disabled.
func Run(ctx context.Context, assistant driving.Assistant, sessionID string, notices <-chan string) error {
	program := tea.NewProgram(NewModel(ctx, assistant, sessionID, notices), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run chat ui: %w", err)
	}
	return nil
}
