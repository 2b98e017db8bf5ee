// Package agent drives the tool-augmented conversational loop: it advertises
// the scope-filtered, sanitized tool catalog to the model, then alternates
// model calls and tool calls until the model produces a final answer or the
// iteration cap is reached.
package agent

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/chatops/pkg/metricskey"
	"github.com/effective-security/chatops/pkg/schema"
	"github.com/effective-security/chatops/toolservice"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/chatops", "agent")

// DefaultIterationLimit bounds the model-call/tool-call rounds per run.
const DefaultIterationLimit = 10

// ExhaustedMessage is the advisory returned when a run hits the iteration cap.
// Exhaustion is a normal termination path, not an error.
const ExhaustedMessage = "I was not able to finish within the allowed number of tool calls. Please narrow the request and try again."

var (
	// ErrBadToolArguments is returned when the model produced a function call
	// whose arguments are not valid JSON. The tool is not invoked.
	ErrBadToolArguments = errors.New("malformed tool call arguments")
	// ErrToolCallLoop is returned when the configured loop detector aborts a
	// run that keeps requesting the same tool call.
	ErrToolCallLoop = errors.New("tool call loop detected")
)

// ToolBackend is the slice of the gateway client the agent depends on.
type ToolBackend interface {
	// AccessibleTools returns the descriptors available to the given scope.
	AccessibleTools(ctx context.Context, scope toolservice.AccessScope) ([]toolservice.ToolDefinition, error)
	// Call invokes the named tool and returns its JSON-serialized result.
	Call(ctx context.Context, name string, args map[string]any) (json.RawMessage, error)
}

// Request is one stateless invocation of the loop. The catalog snapshot and
// the conversation are both rebuilt per run; nothing is persisted across runs.
type Request struct {
	// Prompt is the user's question.
	Prompt string
	// Scope restricts which tools the run may use.
	Scope toolservice.AccessScope
	// UserID is the chat-platform identity of the requester, if known.
	UserID string
	// History is the prior thread conversation, replayed verbatim in order.
	History []llms.Message
}

// Agent runs tool-augmented conversations against a single model and gateway.
// Concurrent Run calls are independent; the Agent itself is immutable after
// construction.
type Agent struct {
	llm   llms.Model
	tools ToolBackend
	cfg   *Config
}

// New returns a new Agent.
func New(llm llms.Model, tools ToolBackend, opts ...Option) *Agent {
	return &Agent{
		llm:   llm,
		tools: tools,
		cfg:   NewConfig(opts...),
	}
}

// Run executes the loop and returns the final natural-language answer.
func (a *Agent) Run(ctx context.Context, req *Request) (string, error) {
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, string(req.Scope))

	cb := a.cfg.Callback
	if cb != nil {
		cb.OnRunStart(ctx, req)
	}

	reply, err := a.run(ctx, req)
	if err != nil {
		metricskey.StatsAgentRunsFailed.IncrCounter(1, string(req.Scope))
		if cb != nil {
			cb.OnRunError(ctx, req, err)
		}
		return "", err
	}
	metricskey.StatsAgentRunsSucceeded.IncrCounter(1, string(req.Scope))
	if cb != nil {
		cb.OnRunEnd(ctx, req, reply)
	}
	return reply, nil
}

func (a *Agent) run(ctx context.Context, req *Request) (string, error) {
	prov := a.llm.GetProviderType()
	if !prov.Supports(llms.CapabilityFunctionCalling) {
		return "", errors.Newf("the %s provider does not support function calling", prov)
	}

	defs, err := a.tools.AccessibleTools(ctx, req.Scope)
	if err != nil {
		return "", err
	}
	functions := make([]llms.FunctionDefinition, 0, len(defs))
	for _, td := range defs {
		functions = append(functions, llms.FunctionDefinition{
			Name:        td.Name,
			Description: td.Description,
			Parameters:  schema.Sanitize(td.Parameters),
		})
	}

	messages := BuildMessages(req.Scope, req.UserID, req.History, req.Prompt)

	var callOpts []llms.CallOption
	if a.cfg.Model != "" {
		callOpts = append(callOpts, llms.WithModel(a.cfg.Model))
	}
	if a.cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(a.cfg.MaxTokens))
	}
	if a.cfg.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(a.cfg.Temperature))
	}
	if len(functions) > 0 {
		callOpts = append(callOpts,
			llms.WithFunctions(functions),
			llms.WithFunctionCallBehavior(llms.FunctionCallBehaviorAuto))
	}

	// detectors are stateful, so each run gets its own
	var detector LoopDetector
	if a.cfg.NewLoopDetector != nil {
		detector = a.cfg.NewLoopDetector()
	}

	cb := a.cfg.Callback
	modelName := a.llm.GetName()
	limit := values.NumbersCoalesce(a.cfg.IterationLimit, DefaultIterationLimit)

	for iteration := 1; ; iteration++ {
		if iteration > limit {
			metricskey.StatsAgentRunsExhausted.IncrCounter(1, string(req.Scope))
			logger.ContextKV(ctx, xlog.WARNING,
				"status", "iteration_limit_reached",
				"scope", req.Scope,
				"limit", limit,
			)
			return ExhaustedMessage, nil
		}

		if cb != nil {
			cb.OnModelCallStart(ctx, modelName, messages)
		}
		metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(messages)), modelName)
		metricskey.StatsLLMBytesSent.IncrCounter(float64(llms.CountMessagesContentSize(messages)), modelName)

		modelStarted := time.Now()
		resp, err := a.llm.GenerateContent(ctx, messages, callOpts...)
		metricskey.PerfModelCall.MeasureSince(modelStarted, modelName)
		if err != nil {
			return "", errors.WithMessage(err, "failed to generate content from LLM")
		}
		if cb != nil {
			cb.OnModelCallEnd(ctx, modelName, resp)
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("LLM returned a response with no choices")
		}

		choice := resp.Choices[0]
		fc := choice.FuncCall
		if fc == nil {
			return choice.Content, nil
		}

		var args map[string]any
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return "", errors.Mark(
				errors.WithMessagef(err, "tool %s: malformed arguments", fc.Name),
				ErrBadToolArguments)
		}

		if detector != nil && detector.Observe(fc.Name, fc.Arguments) {
			return "", errors.Mark(
				errors.Newf("tool %s requested repeatedly with identical arguments", fc.Name),
				ErrToolCallLoop)
		}

		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_call",
			"tool", fc.Name,
			"iteration", iteration,
			"args", slices.StringUpto(fc.Arguments, 64),
		)
		if cb != nil {
			cb.OnToolCallStart(ctx, fc.Name, fc.Arguments)
		}

		result, err := a.tools.Call(ctx, fc.Name, args)
		if err != nil {
			if cb != nil {
				cb.OnToolCallError(ctx, fc.Name, fc.Arguments, err)
			}
			if !a.cfg.ToolErrorFeedback {
				return "", err
			}
			// Report the failure to the model as a function result so it can
			// adapt instead of aborting the whole run.
			result, _ = json.Marshal(map[string]string{"error": err.Error()})
		} else if cb != nil {
			cb.OnToolCallEnd(ctx, fc.Name, fc.Arguments, string(result))
		}

		messages = append(messages,
			llms.FunctionCallMessage(fc),
			llms.FunctionResultMessage(fc.Name, string(result)))
	}
}
