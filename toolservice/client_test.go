package toolservice_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/chatops/toolservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const catalogJSON = `[
	{
		"name": "list_accounts",
		"description": "List customer accounts.",
		"parameters": {"type": "object", "properties": {"Limit": {"type": "integer"}}},
		"access": "read"
	},
	{
		"name": "lookup_user",
		"description": "Resolve a chat identity to a customer record.",
		"parameters": {"type": "object", "properties": {"Email": {"type": "string"}}},
		"access": "read"
	},
	{
		"name": "update_account",
		"description": "Update a customer account.",
		"parameters": {"type": "object"},
		"access": "write"
	},
	{
		"name": "purge_account",
		"description": "Delete a customer account.",
		"parameters": {"type": "object"},
		"access": "delete"
	}
]`

func TestAccessibleTools_FiltersByScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/tools", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(catalogJSON))
	}))
	defer srv.Close()

	client, err := toolservice.NewClient(srv.URL, toolservice.WithToken("test-token"))
	require.NoError(t, err)

	ctx := context.Background()

	readTools, err := client.AccessibleTools(ctx, toolservice.ScopeRead)
	require.NoError(t, err)
	require.Len(t, readTools, 2)
	assert.Equal(t, "list_accounts", readTools[0].Name)
	assert.Equal(t, "lookup_user", readTools[1].Name)
	for _, td := range readTools {
		assert.Equal(t, toolservice.ScopeRead, td.Access)
	}

	writeTools, err := client.AccessibleTools(ctx, toolservice.ScopeWrite)
	require.NoError(t, err)
	require.Len(t, writeTools, 1)
	assert.Equal(t, "update_account", writeTools[0].Name)

	deleteTools, err := client.AccessibleTools(ctx, toolservice.ScopeDelete)
	require.NoError(t, err)
	require.Len(t, deleteTools, 1)
	assert.Equal(t, "purge_account", deleteTools[0].Name)
}

func TestAccessibleTools_FetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, err := toolservice.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.AccessibleTools(context.Background(), toolservice.ScopeRead)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolservice.ErrCatalogUnavailable)

	// transport failure
	srv.Close()
	_, err = client.AccessibleTools(context.Background(), toolservice.ScopeRead)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolservice.ErrCatalogUnavailable)
}

func TestCall_UnwrapsResultEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tools/call", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "list_accounts", gjson.GetBytes(body, "tool").String())
		assert.Equal(t, int64(5), gjson.GetBytes(body, "arguments.Limit").Int())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result": {"accounts": ["a-1", "a-2"]}}`))
	}))
	defer srv.Close()

	client, err := toolservice.NewClient(srv.URL)
	require.NoError(t, err)

	res, err := client.Call(context.Background(), "list_accounts", map[string]any{"Limit": 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"accounts": ["a-1", "a-2"]}`, string(res))
}

func TestCall_BareResultPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accounts": []}`))
	}))
	defer srv.Close()

	client, err := toolservice.NewClient(srv.URL)
	require.NoError(t, err)

	res, err := client.Call(context.Background(), "list_accounts", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"accounts": []}`, string(res))
}

func TestCall_InvocationErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "tool exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := toolservice.NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), "list_accounts", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolservice.ErrToolCallFailed)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := toolservice.NewClient("")
	require.Error(t, err)
}

func TestParseSessionScope(t *testing.T) {
	scope, err := toolservice.ParseSessionScope("read")
	require.NoError(t, err)
	assert.Equal(t, toolservice.ScopeRead, scope)

	scope, err = toolservice.ParseSessionScope("write")
	require.NoError(t, err)
	assert.Equal(t, toolservice.ScopeWrite, scope)

	_, err = toolservice.ParseSessionScope("delete")
	require.Error(t, err)

	_, err = toolservice.ParseSessionScope("admin")
	require.Error(t, err)
}
