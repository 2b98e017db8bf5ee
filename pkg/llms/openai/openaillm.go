package openai

import (
	"context"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/x/values"
	goopenai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultModel is used when the configuration does not name one.
	DefaultModel = "gpt-4o-mini"
)

// ErrEmptyResponse is returned when the OpenAI API returns an empty response.
var ErrEmptyResponse = errors.New("empty response")

// LLM is an OpenAI chat-completions implementation of llms.Model, speaking the
// legacy function-calling protocol: the request carries a flat `functions`
// catalog with `function_call: "auto"`, and the response's first choice either
// contains free text or a function call descriptor.
type LLM struct {
	client   *goopenai.Client
	model    string
	provider llms.ProviderType
}

var _ llms.Model = (*LLM)(nil)

type options struct {
	token      string
	baseURL    string
	model      string
	provider   llms.ProviderType
	httpClient *http.Client
}

// Option is an option for the OpenAI model.
type Option func(*options)

// WithToken sets the API token.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithModel sets the default model name.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithBaseURL overrides the API base URL, e.g. for an Azure deployment or a
// local proxy.
func WithBaseURL(baseURL string) Option {
	return func(o *options) { o.baseURL = baseURL }
}

// WithProviderType overrides the reported provider type.
func WithProviderType(pt llms.ProviderType) Option {
	return func(o *options) { o.provider = pt }
}

// WithHTTPClient sets the HTTP client to use for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// New returns a new OpenAI model.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		model:    DefaultModel,
		provider: llms.ProviderOpenAI,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.token == "" {
		return nil, errors.New("missing OpenAI API token")
	}

	cfg := goopenai.DefaultConfig(o.token)
	if o.baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(o.baseURL, "/")
	}
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client:   goopenai.NewClientWithConfig(cfg),
		model:    o.model,
		provider: o.provider,
	}, nil
}

// GetProviderType returns the type of provider.
func (l *LLM) GetProviderType() llms.ProviderType {
	return l.provider
}

// GetName returns the model name.
func (l *LLM) GetName() string {
	return l.model
}

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.GetCallOptions(options...)

	req := goopenai.ChatCompletionRequest{
		Model:       values.StringsCoalesce(opts.Model, l.model),
		Messages:    toChatMessages(messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
	}
	if len(opts.Functions) > 0 {
		req.Functions = toFunctions(opts.Functions)
		req.FunctionCall = string(values.StringsCoalesce(
			string(opts.FunctionCallBehavior),
			string(llms.FunctionCallBehaviorAuto)))
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.WithStack(ErrEmptyResponse)
	}

	choices := make([]*llms.ContentChoice, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		choice := &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
		}
		if fc := c.Message.FunctionCall; fc != nil {
			choice.FuncCall = &llms.FunctionCall{
				Name:      fc.Name,
				Arguments: fc.Arguments,
			}
		}
		choices = append(choices, choice)
	}
	return &llms.ContentResponse{Choices: choices}, nil
}

func toChatMessages(messages []llms.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Name:    m.Name,
		}
		if m.FunctionCall != nil {
			msg.FunctionCall = &goopenai.FunctionCall{
				Name:      m.FunctionCall.Name,
				Arguments: m.FunctionCall.Arguments,
			}
		}
		out = append(out, msg)
	}
	return out
}

func toFunctions(functions []llms.FunctionDefinition) []goopenai.FunctionDefinition {
	out := make([]goopenai.FunctionDefinition, 0, len(functions))
	for _, f := range functions {
		out = append(out, goopenai.FunctionDefinition{
			Name:        f.Name,
			Description: f.Description,
			Parameters:  f.Parameters,
		})
	}
	return out
}
