package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ditto/internal/model"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T, reply string, got *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewOpenAIRequiresModel(t *testing.T) {
	_, err := NewOpenAI(Config{APIKey: "k"})
	assert.Error(t, err)
}

func TestSummarizeTrending(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := fakeOpenAI(t, "  People argue about generics.\n", &req)
	c, err := NewOpenAI(Config{APIKey: "k", Model: "test-model", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.SummarizeTrending(context.Background(), []model.Subject{
		{Title: "Generics are here", Points: 12},
		{Title: "Modules in 2024", Points: 3},
	}, "")
	require.NoError(t, err)
	assert.Equal(t, "People argue about generics.", out)

	assert.Equal(t, "test-model", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Contains(t, req.Messages[0].Content, "English")
	assert.Contains(t, req.Messages[1].Content, "- Generics are here (12 stars)")
}

func TestSummarizeTrendingEmptySkipsCall(t *testing.T) {
	c, err := NewOpenAI(Config{APIKey: "k", Model: "m", BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	out, err := c.SummarizeTrending(context.Background(), nil, "English")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSummarizeSubjectFallsBackToTitle(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv := fakeOpenAI(t, "A short take.", &req)
	c, err := NewOpenAI(Config{APIKey: "k", Model: "m", BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := c.SummarizeSubject(context.Background(), "Only a title", "", "German")
	require.NoError(t, err)
	assert.Equal(t, "A short take.", out)
	assert.Contains(t, req.Messages[0].Content, "German")
	assert.Contains(t, req.Messages[1].Content, "Body: Only a title")
}

func TestTrendingPromptLimit(t *testing.T) {
	subs := make([]model.Subject, 5)
	for i := range subs {
		subs[i] = model.Subject{Title: "t", Points: i}
	}
	assert.Equal(t, "- t (0 stars)\n- t (1 stars)\n", TrendingPrompt(subs, 2))
}
