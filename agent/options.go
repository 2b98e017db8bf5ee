package agent

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

// Config holds the agent knobs. A zero Config is usable: default iteration
// limit, no callback, no loop detection, tool errors abort the run.
type Config struct {
	// Model overrides the model name for LLM calls.
	Model string
	// MaxTokens is the maximum number of tokens to generate in an LLM call.
	MaxTokens int
	// Temperature is the sampling temperature for LLM calls, between 0 and 1.
	Temperature float64

	// IterationLimit bounds model-call/tool-call rounds per run.
	// Zero means DefaultIterationLimit.
	IterationLimit int

	// ToolErrorFeedback reports a failed tool call back to the model as a
	// function result instead of aborting the run.
	ToolErrorFeedback bool

	// Callback observes run, model-call and tool-call edges.
	Callback Callback

	// NewLoopDetector constructs a fresh per-run loop detector.
	// Nil disables detection: only the iteration cap bounds cycles.
	NewLoopDetector func() LoopDetector
}

// NewConfig returns a Config with the given options applied.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithModel is an option that overrides the model name for LLM calls.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
	}
}

// WithMaxTokens is an option that sets the max tokens for LLM calls.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature is an option that sets the sampling temperature for LLM calls.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
	}
}

// WithIterationLimit is an option that overrides the iteration cap.
func WithIterationLimit(limit int) Option {
	return func(o *Config) {
		o.IterationLimit = limit
	}
}

// WithToolErrorFeedback is an option that makes failed tool calls visible to
// the model as function results instead of aborting the run.
func WithToolErrorFeedback(enabled bool) Option {
	return func(o *Config) {
		o.ToolErrorFeedback = enabled
	}
}

// WithCallback is an option that sets the callback handler.
func WithCallback(cb Callback) Option {
	return func(o *Config) {
		o.Callback = cb
	}
}

// WithLoopDetection is an option that enables pluggable tool-call loop
// detection; the factory is invoked once per run.
func WithLoopDetection(factory func() LoopDetector) Option {
	return func(o *Config) {
		o.NewLoopDetector = factory
	}
}
