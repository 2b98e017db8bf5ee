package toolservice

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/chatops/pkg/metricskey"
	"github.com/effective-security/xlog"
)

// AccessScope is the read/write/delete classification restricting which tools
// a session may use.
type AccessScope string

const (
	// ScopeRead allows read-only tools.
	ScopeRead AccessScope = "read"
	// ScopeWrite allows write tools.
	ScopeWrite AccessScope = "write"
	// ScopeDelete allows delete tools. Descriptors may carry it, but sessions
	// are never granted this scope.
	ScopeDelete AccessScope = "delete"
)

// ParseSessionScope validates a session access scope. Only read and write are
// grantable to a session.
func ParseSessionScope(s string) (AccessScope, error) {
	switch AccessScope(s) {
	case ScopeRead, ScopeWrite:
		return AccessScope(s), nil
	}
	return "", errors.Newf("invalid access scope: %q", s)
}

// AccessibleTools fetches the catalog and filters it to descriptors whose
// access level equals the requested scope. The gateway is re-queried on every
// call; the agent holds no catalog cache across runs.
func (c *Client) AccessibleTools(ctx context.Context, scope AccessScope) ([]ToolDefinition, error) {
	list, err := c.ListTools(ctx)
	if err != nil {
		metricskey.StatsCatalogFetchFailed.IncrCounter(1, string(scope))
		return nil, err
	}

	var out []ToolDefinition
	for _, td := range list {
		if td.Access == scope {
			out = append(out, td)
		}
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "catalog_fetched",
		"scope", scope,
		"advertised", len(list),
		"accessible", len(out),
	)
	return out, nil
}
