package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/effective-security/chatops/pkg/schema"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSchema(t *testing.T, js string) *jsonschema.Schema {
	t.Helper()
	var s jsonschema.Schema
	err := json.Unmarshal([]byte(js), &s)
	require.NoError(t, err)
	return &s
}

func Test_Sanitize_Nil(t *testing.T) {
	assert.Nil(t, schema.Sanitize(nil))
}

func Test_Sanitize_ScalarPassThrough(t *testing.T) {
	s := parseSchema(t, `{
		"type": "object",
		"properties": {
			"Query": {"type": "string", "description": "The query to run."},
			"Limit": {"type": "integer", "default": 10}
		},
		"required": ["Query"]
	}`)

	out := schema.Sanitize(s)
	require.NotNil(t, out)

	q, ok := out.Properties.Get("Query")
	require.True(t, ok)
	assert.Equal(t, "string", q.Type)
	assert.Equal(t, "The query to run.", q.Description)

	l, ok := out.Properties.Get("Limit")
	require.True(t, ok)
	assert.Equal(t, "integer", l.Type)
	assert.Equal(t, []string{"Query"}, out.Required)
}

func Test_Sanitize_CollapsesPropertyRef(t *testing.T) {
	s := parseSchema(t, `{
		"type": "object",
		"properties": {
			"Filter": {"$ref": "#/defs/Foo", "description": "the foo"},
			"Target": {"$ref": "#/defs/Foo"}
		}
	}`)

	out := schema.Sanitize(s)

	f, ok := out.Properties.Get("Filter")
	require.True(t, ok)
	assert.Empty(t, f.Ref)
	assert.Equal(t, "object", f.Type)
	assert.Equal(t, "the foo", f.Description)

	tgt, ok := out.Properties.Get("Target")
	require.True(t, ok)
	assert.Empty(t, tgt.Ref)
	assert.Equal(t, "object", tgt.Type)
	assert.Equal(t, "Reference to #/defs/Foo", tgt.Description)
}

func Test_Sanitize_CollapsesItemsRef(t *testing.T) {
	s := parseSchema(t, `{
		"type": "object",
		"properties": {
			"Records": {
				"type": "array",
				"items": {"$ref": "#/defs/Record"}
			}
		}
	}`)

	out := schema.Sanitize(s)

	r, ok := out.Properties.Get("Records")
	require.True(t, ok)
	require.NotNil(t, r.Items)
	assert.Empty(t, r.Items.Ref)
	assert.Equal(t, "object", r.Items.Type)
	assert.Empty(t, r.Items.Description)
}

func Test_Sanitize_ReferenceFreeAtAnyDepth(t *testing.T) {
	s := parseSchema(t, `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"$id": "https://gateway.local/tools/query",
		"$defs": {
			"Foo": {"type": "object", "properties": {"A": {"type": "string"}}}
		},
		"type": "object",
		"properties": {
			"Top": {"$ref": "#/$defs/Foo"},
			"Nested": {
				"type": "object",
				"properties": {
					"Deep": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"Leaf": {"$ref": "#/$defs/Foo"}
							}
						}
					}
				}
			}
		}
	}`)

	out := schema.Sanitize(s)

	bs, err := json.Marshal(out)
	require.NoError(t, err)
	js := string(bs)
	assert.NotContains(t, js, "$ref")
	assert.NotContains(t, js, "$defs")
	assert.NotContains(t, js, "$schema")
	assert.NotContains(t, js, "$id")
}

func Test_Sanitize_TopLevelRef(t *testing.T) {
	s := parseSchema(t, `{"$ref": "#/$defs/Request"}`)

	out := schema.Sanitize(s)
	assert.Empty(t, out.Ref)
	assert.Equal(t, "object", out.Type)
}

func Test_Sanitize_PreservesPropertyOrder(t *testing.T) {
	s := parseSchema(t, `{
		"type": "object",
		"properties": {
			"Zeta": {"type": "string"},
			"Alpha": {"$ref": "#/defs/A"},
			"Mid": {"type": "number"}
		}
	}`)

	out := schema.Sanitize(s)

	var names []string
	for pair := out.Properties.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names)
}
