package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmlore/farmlore/internal/core/domain"
	"github.com/farmlore/farmlore/internal/core/ports/driving"
)

type mockAnswerService struct {
	mu      sync.Mutex
	queries []driving.QueryRequest
	answer  *domain.Answer
	err     error
}

func (m *mockAnswerService) Query(_ context.Context, req driving.QueryRequest) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, req)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: "answer"}, nil
}

func (m *mockAnswerService) ImageQuery(_ context.Context, _ driving.ImageQueryRequest) (*domain.Answer, error) {
	return &domain.Answer{}, nil
}

func newTestApp(t *testing.T, answer *mockAnswerService) *App {
	t.Helper()
	app, err := NewApp(&Ports{Answer: answer})
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return app
}

func typeQuestion(app *App, question string) {
	app.input.SetValue(question)
}

func TestNewApp_RequiresAnswerService(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingAnswerService)
	assert.Nil(t, app)
}

func TestApp_EnterAsksQuestion(t *testing.T) {
	answer := &mockAnswerService{answer: &domain.Answer{
		Text: "Wean at four weeks.",
		Sources: []domain.SourceDocument{
			{Title: "Weaning guide", Score: 0.82},
		},
	}}
	app := newTestApp(t, answer)
	typeQuestion(app, "when to wean?")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, app.waiting)

	msg := cmd()
	app.Update(msg)

	assert.False(t, app.waiting)
	require.Len(t, answer.queries, 1)
	assert.Equal(t, "when to wean?", answer.queries[0].Question)
	assert.True(t, answer.queries[0].UseRAG)

	view := app.View()
	assert.Contains(t, view, "Wean at four weeks.")
	assert.Contains(t, view, "Weaning guide")
}

func TestApp_EmptyQuestionIgnored(t *testing.T) {
	app := newTestApp(t, &mockAnswerService{})
	typeQuestion(app, "   ")

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.False(t, app.waiting)
}

func TestApp_HistoryGrowsAcrossTurns(t *testing.T) {
	answer := &mockAnswerService{}
	app := newTestApp(t, answer)

	typeQuestion(app, "first question")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	typeQuestion(app, "second question")
	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	require.Len(t, answer.queries, 2)
	assert.Empty(t, answer.queries[0].ChatHistory)
	assert.Equal(t, []string{"first question"}, answer.queries[1].ChatHistory)
}

func TestApp_ErrorTurnNotAddedToHistory(t *testing.T) {
	answer := &mockAnswerService{err: errors.New("generation failed")}
	app := newTestApp(t, answer)

	typeQuestion(app, "broken question")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	assert.Empty(t, app.history)
	assert.Contains(t, app.View(), "generation failed")
}

func TestApp_ToggleRetrieval(t *testing.T) {
	answer := &mockAnswerService{}
	app := newTestApp(t, answer)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	typeQuestion(app, "no sources please")
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app.Update(cmd())

	require.Len(t, answer.queries, 1)
	assert.False(t, answer.queries[0].UseRAG)
}

func TestApp_QuitKeys(t *testing.T) {
	app := newTestApp(t, &mockAnswerService{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
