// Package callbacks provides ready-made agent.Callback implementations.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/pkg/llms"
	"github.com/effective-security/xlog"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agent.Callback = (*Noop)(nil)
	_ agent.Callback = (*Printer)(nil)
	_ agent.Callback = (*PackageLogger)(nil)
	_ agent.Callback = (*Fanout)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agent.Callback
}

func NewFanout(callbacks ...agent.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agent.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnRunStart(ctx context.Context, req *agent.Request) {
	for _, callback := range l.callbacks {
		callback.OnRunStart(ctx, req)
	}
}

func (l *Fanout) OnRunEnd(ctx context.Context, req *agent.Request, reply string) {
	for _, callback := range l.callbacks {
		callback.OnRunEnd(ctx, req, reply)
	}
}

func (l *Fanout) OnRunError(ctx context.Context, req *agent.Request, err error) {
	for _, callback := range l.callbacks {
		callback.OnRunError(ctx, req, err)
	}
}

func (l *Fanout) OnModelCallStart(ctx context.Context, model string, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnModelCallStart(ctx, model, messages)
	}
}

func (l *Fanout) OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnModelCallEnd(ctx, model, resp)
	}
}

func (l *Fanout) OnToolCallStart(ctx context.Context, tool, arguments string) {
	for _, callback := range l.callbacks {
		callback.OnToolCallStart(ctx, tool, arguments)
	}
}

func (l *Fanout) OnToolCallEnd(ctx context.Context, tool, arguments, result string) {
	for _, callback := range l.callbacks {
		callback.OnToolCallEnd(ctx, tool, arguments, result)
	}
}

func (l *Fanout) OnToolCallError(ctx context.Context, tool, arguments string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolCallError(ctx, tool, arguments, err)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (l *Noop) OnRunStart(ctx context.Context, req *agent.Request)             {}
func (l *Noop) OnRunEnd(ctx context.Context, req *agent.Request, reply string) {}
func (l *Noop) OnRunError(ctx context.Context, req *agent.Request, err error)  {}
func (l *Noop) OnModelCallStart(ctx context.Context, model string, messages []llms.Message) {
}
func (l *Noop) OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse) {
}
func (l *Noop) OnToolCallStart(ctx context.Context, tool, arguments string)       {}
func (l *Noop) OnToolCallEnd(ctx context.Context, tool, arguments, result string) {}
func (l *Noop) OnToolCallError(ctx context.Context, tool, arguments string, err error) {
}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnRunStart(ctx context.Context, req *agent.Request) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Run Start: scope %s\n", req.Scope)
	fmt.Fprintf(l.Out, "Prompt: %s\n", req.Prompt)
}

func (l *Printer) OnRunEnd(ctx context.Context, req *agent.Request, reply string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintln(l.Out, "Run End")
	if l.Mode == ModeVerbose && reply != "" {
		fmt.Fprintln(l.Out, reply)
	}
}

func (l *Printer) OnRunError(ctx context.Context, req *agent.Request, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Run Error: %s\n", err.Error())
}

func (l *Printer) OnModelCallStart(ctx context.Context, model string, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Model Call: %s model, %d messages\n", model, len(messages))
}

func (l *Printer) OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Model Call End: %s model, %d choices\n", model, len(resp.Choices))
	if l.Mode == ModeVerbose {
		for _, choice := range resp.Choices {
			if choice.Content != "" {
				fmt.Fprintln(l.Out, choice.Content)
			}
		}
	}
}

func (l *Printer) OnToolCallStart(ctx context.Context, tool, arguments string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool)
	fmt.Fprintf(l.Out, "Input: %s\n", arguments)
}

func (l *Printer) OnToolCallEnd(ctx context.Context, tool, arguments, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result)
	}
}

func (l *Printer) OnToolCallError(ctx context.Context, tool, arguments string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool, err.Error())
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnRunStart(ctx context.Context, req *agent.Request) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_start",
		"scope", req.Scope,
		"user", req.UserID,
	)
}

func (l *PackageLogger) OnRunEnd(ctx context.Context, req *agent.Request, reply string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_end",
		"scope", req.Scope,
		"reply_size", len(reply),
	)
}

func (l *PackageLogger) OnRunError(ctx context.Context, req *agent.Request, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "run_error",
		"scope", req.Scope,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnModelCallStart(ctx context.Context, model string, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_start",
		"model", model,
		"messages", len(messages),
	)
}

func (l *PackageLogger) OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_end",
		"model", model,
		"choices", len(resp.Choices),
	)
}

func (l *PackageLogger) OnToolCallStart(ctx context.Context, tool, arguments string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_call_start",
		"tool", tool,
		"input", arguments,
	)
}

func (l *PackageLogger) OnToolCallEnd(ctx context.Context, tool, arguments, result string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_call_end",
		"tool", tool,
		"output", result,
	)
}

func (l *PackageLogger) OnToolCallError(ctx context.Context, tool, arguments string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_call_error",
		"tool", tool,
		"err", err.Error(),
	)
}
