package extract

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/pagesift/pagesift/internal/config"
	"github.com/pagesift/pagesift/pkg/anthropic"
	"github.com/pagesift/pagesift/pkg/gemini"
	"github.com/pagesift/pagesift/pkg/groq"
	"github.com/pagesift/pagesift/pkg/ollama"
	"github.com/pagesift/pagesift/pkg/openai"
)

// Provider runs extraction against one AI backend.
type Provider interface {
	Name() string
	Extract(ctx context.Context, req Request) (*Result, error)
}

// New builds the Provider for name. The name must already be validated and
// apiKey resolved (empty for ollama).
func New(ctx context.Context, name string, cfg *config.Config, apiKey string) (Provider, error) {
	switch name {
	case ProviderGemini:
		client, err := gemini.NewClient(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		return &geminiProvider{client: client, model: cfg.Gemini.Model}, nil
	case ProviderGroq:
		opts := []groq.Option{groq.WithModel(cfg.Groq.Model)}
		if cfg.Groq.BaseURL != "" {
			opts = append(opts, groq.WithBaseURL(cfg.Groq.BaseURL))
		}
		return &groqProvider{client: groq.NewClient(apiKey, opts...)}, nil
	case ProviderOpenAI:
		return &openaiProvider{client: openai.NewClient(apiKey), model: cfg.OpenAI.Model}, nil
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Ollama.Model)}
		if cfg.Ollama.BaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.Ollama.BaseURL))
		}
		return &ollamaProvider{client: ollama.NewClient(opts...)}, nil
	case ProviderClaude:
		return &claudeProvider{client: anthropic.NewClient(apiKey), model: cfg.Claude.Model}, nil
	default:
		return nil, eris.Errorf("extract: unsupported provider %q (valid: %s)", name, ValidNames())
	}
}

type geminiProvider struct {
	client gemini.Client
	model  string
}

func (p *geminiProvider) Name() string { return ProviderGemini }

func (p *geminiProvider) Extract(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	resp, err := p.client.GenerateContent(ctx, gemini.GenerateRequest{
		Model:  model,
		Prompt: BuildPrompt(req.Prompt, req.Content),
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: ProviderGemini,
		Model:    model,
		Text:     resp.Text,
		Usage:    Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}

type groqProvider struct {
	client groq.Client
}

func (p *groqProvider) Name() string { return ProviderGroq }

func (p *groqProvider) Extract(ctx context.Context, req Request) (*Result, error) {
	resp, err := p.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: req.Model,
		Messages: []groq.Message{
			{Role: "user", Content: BuildPrompt(req.Prompt, req.Content)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, eris.New("groq: no choices returned")
	}
	return &Result{
		Provider: ProviderGroq,
		Model:    resp.Model,
		Text:     resp.Choices[0].Message.Content,
		Usage:    Usage{InputTokens: int64(resp.Usage.PromptTokens), OutputTokens: int64(resp.Usage.CompletionTokens)},
	}, nil
}

type openaiProvider struct {
	client openai.Client
	model  string
}

func (p *openaiProvider) Name() string { return ProviderOpenAI }

func (p *openaiProvider) Extract(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	resp, err := p.client.ChatCompletion(ctx, openai.ChatRequest{
		Model:  model,
		System: systemPrompt,
		User:   BuildPrompt(req.Prompt, req.Content),
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: ProviderOpenAI,
		Model:    model,
		Text:     resp.Text,
		Usage:    Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}

type ollamaProvider struct {
	client ollama.Client
}

func (p *ollamaProvider) Name() string { return ProviderOllama }

func (p *ollamaProvider) Extract(ctx context.Context, req Request) (*Result, error) {
	resp, err := p.client.Chat(ctx, ollama.ChatRequest{
		Model: req.Model,
		Messages: []ollama.Message{
			{Role: "user", Content: BuildPrompt(req.Prompt, req.Content)},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: ProviderOllama,
		Model:    resp.Model,
		Text:     resp.Message.Content,
		Usage:    Usage{InputTokens: int64(resp.PromptEvalCount), OutputTokens: int64(resp.EvalCount)},
	}, nil
}

type claudeProvider struct {
	client anthropic.Client
	model  string
}

func (p *claudeProvider) Name() string { return ProviderClaude }

func (p *claudeProvider) Extract(ctx context.Context, req Request) (*Result, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:  model,
		System: systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: BuildPrompt(req.Prompt, req.Content)},
		},
	})
	if err != nil {
		return nil, err
	}
	return &Result{
		Provider: ProviderClaude,
		Model:    resp.Model,
		Text:     resp.Text,
		Usage:    Usage{InputTokens: resp.Usage.InputTokens, OutputTokens: resp.Usage.OutputTokens},
	}, nil
}
