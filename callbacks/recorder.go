package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/effective-security/chatops/agent"
	"github.com/effective-security/chatops/pkg/llms"
)

// ensure Recorder implements agent.Callback
var _ agent.Callback = (*Recorder)(nil)

var TimeNowFn = time.Now

// RunStats aggregates counters observed over recorded runs.
type RunStats struct {
	Duration time.Duration

	Runs          uint32
	RunsSucceeded uint32
	RunsFailed    uint32

	ModelCalls    uint32
	TotalMessages uint32
	LLMBytesOut   uint64

	ToolCalls          uint32
	ToolCallsSucceeded uint32
	ToolCallsFailed    uint32
}

// Recorder is a callback handler that accumulates run statistics and a
// timestamped transcript of events. Attach a fresh Recorder per run.
type Recorder struct {
	mode Mode

	lock    sync.Mutex
	w       bytes.Buffer
	started time.Time
	stats   RunStats
}

func NewRecorder(mode Mode) *Recorder {
	return &Recorder{mode: mode}
}

// Stats returns a snapshot of the accumulated counters.
func (l *Recorder) Stats() RunStats {
	l.lock.Lock()
	defer l.lock.Unlock()
	stats := l.stats
	if !l.started.IsZero() {
		stats.Duration = TimeNowFn().Sub(l.started)
	}
	return stats
}

// Transcript returns the recorded event log.
func (l *Recorder) Transcript() []byte {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.w.Bytes()
}

func (l *Recorder) OnRunStart(ctx context.Context, req *agent.Request) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.Runs++
	l.started = TimeNowFn()
	l.print("*** Run Started ***")
	l.print("Scope:", string(req.Scope))
	if l.mode == ModeVerbose {
		l.print("Prompt:", req.Prompt)
	}
}

func (l *Recorder) OnRunEnd(ctx context.Context, req *agent.Request, reply string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.RunsSucceeded++
	if l.mode == ModeVerbose && reply != "" {
		l.print("Reply:", reply)
	}
	l.print(fmt.Sprintf("Model calls: %d, Messages: %d, Bytes Out: %d",
		l.stats.ModelCalls,
		l.stats.TotalMessages,
		l.stats.LLMBytesOut,
	))
	l.print(fmt.Sprintf("Tool calls: %d, Failed: %d",
		l.stats.ToolCalls,
		l.stats.ToolCallsFailed,
	))
	l.print("*** Run Ended ***")
}

func (l *Recorder) OnRunError(ctx context.Context, req *agent.Request, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.RunsFailed++
	l.print("*** Run Error ***", err.Error())
}

func (l *Recorder) OnModelCallStart(ctx context.Context, model string, messages []llms.Message) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ModelCalls++
	l.stats.TotalMessages += uint32(len(messages))
	l.stats.LLMBytesOut += llms.CountMessagesContentSize(messages)
	l.print("*** Model Call ***", fmt.Sprintf("%s model, %d messages", model, len(messages)))
}

func (l *Recorder) OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.print("*** Model Call End ***", fmt.Sprintf("%s model, %d choices", model, len(resp.Choices)))
}

func (l *Recorder) OnToolCallStart(ctx context.Context, tool, arguments string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolCalls++
	l.print(tool, "*** Tool Start ***")
	if l.mode == ModeVerbose {
		l.print(tool, "Input:", arguments)
	}
}

func (l *Recorder) OnToolCallEnd(ctx context.Context, tool, arguments, result string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolCallsSucceeded++
	if l.mode == ModeVerbose {
		l.print(tool, "Output:", result)
	}
	l.print(tool, "*** Tool End ***")
}

func (l *Recorder) OnToolCallError(ctx context.Context, tool, arguments string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.stats.ToolCallsFailed++
	l.print(tool, "*** Tool Error ***", err.Error())
}

// print writes the entries to the transcript.
// The entries are written in the following format:
// [timestamp] entry entry\n
func (l *Recorder) print(entries ...string) {
	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = l.w.WriteString(ts)
	_, _ = l.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = l.w.WriteString(" ")
		}
		_, _ = l.w.WriteString(entry)
	}
	_, _ = l.w.WriteString("\n")
}
