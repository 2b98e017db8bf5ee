// Package config loads the service configuration from a YAML file, with
// environment variable expansion for secrets.
package config

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config is the top level service configuration.
type Config struct {
	// LLM configures the model provider.
	LLM LLMConfig `json:"llm" yaml:"llm" validate:"required"`
	// Gateway configures the tool gateway client.
	Gateway GatewayConfig `json:"gateway" yaml:"gateway" validate:"required"`
	// Server configures the HTTP API.
	Server ServerConfig `json:"server" yaml:"server"`
	// Agent configures the conversation loop.
	Agent AgentConfig `json:"agent" yaml:"agent"`
}

// LLMConfig for the model provider.
type LLMConfig struct {
	// Provider is OPENAI or AZURE.
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=OPENAI AZURE"`
	// Token is the API token. Use ${ENV_NAME} to load from the environment.
	Token string `json:"token" yaml:"token" validate:"required"`
	// BaseURL overrides the API endpoint, e.g. for an Azure deployment.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	// Model is the model name to use.
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
	// MaxTokens caps the generated response size.
	MaxTokens int `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	// Temperature is the sampling temperature, between 0 and 1.
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature,omitempty" validate:"gte=0,lte=1"`
}

// GatewayConfig for the tool gateway client.
type GatewayConfig struct {
	// BaseURL is the gateway endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" validate:"required,url"`
	// Token is the bearer token sent with gateway requests.
	Token string `json:"token,omitempty" yaml:"token,omitempty"`
}

// ServerConfig for the HTTP API.
type ServerConfig struct {
	// ListenAddr is the host:port to serve on.
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
}

// AgentConfig for the conversation loop.
type AgentConfig struct {
	// IterationLimit bounds model-call/tool-call rounds per run.
	IterationLimit int `json:"iteration_limit,omitempty" yaml:"iteration_limit,omitempty" validate:"gte=0"`
	// ToolErrorFeedback reports failed tool calls back to the model.
	ToolErrorFeedback bool `json:"tool_error_feedback,omitempty" yaml:"tool_error_feedback,omitempty"`
	// LoopThreshold aborts a run after this many consecutive identical tool
	// calls. Zero disables detection.
	LoopThreshold int `json:"loop_threshold,omitempty" yaml:"loop_threshold,omitempty" validate:"gte=0"`
	// MaxHistory bounds the stored messages replayed per chat.
	MaxHistory int `json:"max_history,omitempty" yaml:"max_history,omitempty" validate:"gte=0"`
}

// DefaultListenAddr is used when the configuration does not name one.
const DefaultListenAddr = ":8080"

// LoadConfig from file.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.WithMessagef(err, "invalid configuration: %s", file)
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = DefaultListenAddr
	}
	return cfg, nil
}
