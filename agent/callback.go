package agent

import (
	"context"

	"github.com/effective-security/chatops/pkg/llms"
)

// Callback observes the edges of a run. All methods are invoked synchronously
// on the run's goroutine; implementations must not block.
type Callback interface {
	OnRunStart(ctx context.Context, req *Request)
	OnRunEnd(ctx context.Context, req *Request, reply string)
	OnRunError(ctx context.Context, req *Request, err error)

	OnModelCallStart(ctx context.Context, model string, messages []llms.Message)
	OnModelCallEnd(ctx context.Context, model string, resp *llms.ContentResponse)

	OnToolCallStart(ctx context.Context, tool, arguments string)
	OnToolCallEnd(ctx context.Context, tool, arguments, result string)
	OnToolCallError(ctx context.Context, tool, arguments string, err error)
}
