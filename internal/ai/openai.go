package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ditto/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summarizer writes short prose about trending subjects for the digest.
type Summarizer interface {
	// SummarizeSubject describes a single subject in 1-3 sentences.
	SummarizeSubject(ctx context.Context, title, body, language string) (string, error)
	// SummarizeTrending writes a short overview of the given subjects.
	SummarizeTrending(ctx context.Context, subjects []model.Subject, language string) (string, error)
}

// OpenAIClient implements Summarizer with the Chat Completions API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must be specified")
	}
	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cc), model: cfg.Model}, nil
}

func (o *OpenAIClient) SummarizeSubject(ctx context.Context, title, body, language string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()
	body = strings.TrimSpace(body)
	if body == "" {
		body = title
	}
	if r := []rune(body); len(r) > 1000 {
		body = string(r[:1000])
	}

	sys := fmt.Sprintf(`You describe forum posts for a weekly digest. Write in %s.
Return 1-3 plain sentences that tell a reader what the post is about and why people are talking about it.
Do not use links or markdown.`, langOrDefault(language))
	out, err := o.create(ctx, sys, fmt.Sprintf("Title: %s\nBody: %s", title, body))
	if err != nil {
		slog.Error("openai: summarize subject error", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (o *OpenAIClient) SummarizeTrending(ctx context.Context, subjects []model.Subject, language string) (string, error) {
	if len(subjects) == 0 {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 300*time.Second)
	defer cancel()

	sys := fmt.Sprintf(`You are the editor of a community forum digest. Write in %s.
Summarize what the community is discussing in 2-4 sentences of plain text, no links.`, langOrDefault(language))
	out, err := o.create(ctx, sys, "Trending subjects (title and stars):\n"+TrendingPrompt(subjects, 10))
	if err != nil {
		slog.Error("openai: summarize trending error", "error", err)
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// TrendingPrompt lists at most limit subjects, one "- title (N stars)" line each.
func TrendingPrompt(subjects []model.Subject, limit int) string {
	b := &strings.Builder{}
	for i, s := range subjects {
		if i >= limit {
			break
		}
		fmt.Fprintf(b, "- %s (%d stars)\n", s.Title, s.Points)
	}
	return b.String()
}

func (o *OpenAIClient) create(ctx context.Context, system, user string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func langOrDefault(lang string) string {
	l := strings.TrimSpace(lang)
	if l == "" {
		return "English"
	}
	return l
}
