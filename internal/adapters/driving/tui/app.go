package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

// turn is one completed question and answer exchange.
type turn struct {
	question string
	answer   *domain.Answer
	err      error
}

// answerMsg carries a finished answer back into the update loop.
type answerMsg struct {
	question string
	answer   *domain.Answer
	err      error
}

// App is the Bubble Tea model for the chat interface.
type App struct {
	ports    *Ports
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	history  []string
	useRAG   bool
	waiting  bool
	ready    bool
}

// NewApp creates the chat application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about pig farming and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		input:    ti,
		viewport: viewport.New(0, 0),
		useRAG:   true,
	}, nil
}

// WithContext sets the context used for answer calls.
func (a *App) WithContext(ctx context.Context) *App {
	if ctx != nil {
		a.ctx = ctx
	}
	return a
}

// Init starts the text input cursor blink.
func (a *App) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.ready = true
		_, frameHeight := chatBoxStyle.GetFrameSize()
		_, inputHeight := inputBoxStyle.GetFrameSize()
		reserved := frameHeight + inputHeight + 4
		height := msg.Height - reserved
		if height < 3 {
			height = 3
		}
		a.viewport.Width = maxInt(20, msg.Width-4)
		a.viewport.Height = height
		a.viewport.SetContent(a.renderTurns())
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return a, tea.Quit
		}
		switch msg.String() {
		case "ctrl+r":
			a.useRAG = !a.useRAG
			return a, nil
		case "enter":
			question := strings.TrimSpace(a.input.Value())
			if question == "" || a.waiting {
				return a, nil
			}
			a.waiting = true
			a.input.Reset()
			return a, a.ask(question)
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			a.viewport, cmd = a.viewport.Update(msg)
			return a, cmd
		}

	case answerMsg:
		a.waiting = false
		a.turns = append(a.turns, turn{
			question: msg.question,
			answer:   msg.answer,
			err:      msg.err,
		})
		if msg.err == nil {
			a.history = append(a.history, msg.question)
		}
		a.viewport.SetContent(a.renderTurns())
		a.viewport.GotoBottom()
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View renders the chat layout.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	header := headerStyle.Render("Farmlore")
	chat := chatBoxStyle.Render(a.viewport.View())
	input := inputBoxStyle.Render(a.input.View())

	mode := "retrieval on"
	if !a.useRAG {
		mode = "retrieval off"
	}
	status := fmt.Sprintf("%s | ctrl+r toggles retrieval | ctrl+c quits", mode)
	if a.waiting {
		status = "Thinking... | ctrl+c quits"
	}

	return header + "\n" + chat + "\n" + input + "\n" + statusStyle.Render(status)
}

// ask runs the question against the answer service off the update loop.
func (a *App) ask(question string) tea.Cmd {
	history := append([]string(nil), a.history...)
	useRAG := a.useRAG
	return func() tea.Msg {
		answer, err := a.ports.Answer.Query(a.ctx, driving.QueryRequest{
			Question:    question,
			UseRAG:      useRAG,
			ChatHistory: history,
		})
		return answerMsg{question: question, answer: answer, err: err}
	}
}

func (a *App) renderTurns() string {
	if len(a.turns) == 0 {
		return "Ask a question to get started."
	}

	var b strings.Builder
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(questionStyle.Render("You: " + t.question))
		b.WriteString("\n")
		if t.err != nil {
			b.WriteString(errorStyle.Render("Error: " + t.err.Error()))
			continue
		}
		b.WriteString(answerStyle.Render(t.answer.Text))
		for n, src := range t.answer.Sources {
			label := src.Title
			if label == "" {
				label = src.URL
			}
			b.WriteString("\n")
			b.WriteString(sourceStyle.Render(fmt.Sprintf("  [%d] %s (%.2f)", n+1, label, src.Score)))
		}
	}
	return b.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the chat interface and blocks until the user quits.
func Run(ctx context.Context, ports *Ports) error {
	app, err := NewApp(ports)
	if err != nil {
		return fmt.Errorf("create chat interface: %w", err)
	}
	app.WithContext(ctx)

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat interface: %w", err)
	}
	return nil
}
