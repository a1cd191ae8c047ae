// Package openai wraps the official openai-go SDK behind the small surface
// this tool needs.
package openai

import (
	"context"

	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rotisserie/eris"
)

// DefaultModel is used when a request does not name a model.
const DefaultModel = "gpt-4o-mini"

// Client defines the OpenAI operations used for extraction.
type Client interface {
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is our own request type for ChatCompletion.
type ChatRequest struct {
	Model  string
	System string
	User   string
}

// ChatResponse is our own response type from ChatCompletion.
type ChatResponse struct {
	Text  string
	Usage TokenUsage
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
}

// sdkClient implements Client using the official SDK.
type sdkClient struct {
	client *sdk.Client
}

// NewClient creates an OpenAI client backed by the SDK.
func NewClient(apiKey string) Client {
	client := sdk.NewClient(option.WithAPIKey(apiKey))
	return &sdkClient{client: &client}
}

func (c *sdkClient) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	var messages []sdk.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, sdk.ChatCompletionMessageParamUnion{
			OfSystem: &sdk.ChatCompletionSystemMessageParam{
				Content: sdk.ChatCompletionSystemMessageParamContentUnion{
					OfString: sdk.String(req.System),
				},
			},
		})
	}
	messages = append(messages, sdk.ChatCompletionMessageParamUnion{
		OfUser: &sdk.ChatCompletionUserMessageParam{
			Content: sdk.ChatCompletionUserMessageParamContentUnion{
				OfString: sdk.String(req.User),
			},
		},
	})

	resp, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    sdk.ChatModel(model),
		Messages: messages,
	})
	if err != nil {
		return nil, eris.Wrap(err, "openai: chat completion")
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, eris.New("openai: no choices returned")
	}

	return &ChatResponse{
		Text: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
