// Package schema rewrites tool parameter schemas into the restricted
// JSON-schema dialect accepted by the chat-completions function-calling API.
package schema

import (
	"github.com/invopop/jsonschema"
)

// Sanitize rewrites the schema in place and returns it. The function-calling
// API cannot resolve cross-referenced definitions, so every `$ref` is inlined
// to a maximally permissive placeholder before the schema is advertised to the
// model:
//
//   - `$schema`, `$id`, `$anchor` and the `$defs` container are dropped;
//   - a property that is itself a reference becomes `{type: "object"}`,
//     keeping its original description, or a synthesized "Reference to <ref>"
//     when absent;
//   - an array items reference collapses to `{type: "object"}`;
//   - every other nested schema position is rewritten recursively.
//
// The rewrite is lossy: argument validation for reference-typed parameters is
// deferred to the tool-execution service. Sanitize is total over its domain
// and never fails; nil passes through.
func Sanitize(s *jsonschema.Schema) *jsonschema.Schema {
	if s == nil {
		return nil
	}

	s.Version = ""
	s.ID = ""
	s.Anchor = ""
	s.Definitions = nil
	s.DynamicRef = ""
	if s.Ref != "" {
		// A bare reference at this level has nothing left to resolve against
		// once the definitions container is gone.
		s.Ref = ""
		if s.Type == "" {
			s.Type = "object"
		}
	}

	if s.Properties != nil {
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			child := pair.Value
			if child == nil {
				continue
			}
			if child.Ref != "" {
				pair.Value = collapseRef(child)
				continue
			}
			Sanitize(child)
		}
	}

	if s.Items != nil {
		if s.Items.Ref != "" {
			s.Items = &jsonschema.Schema{Type: "object"}
		} else {
			Sanitize(s.Items)
		}
	}

	for _, sub := range s.PrefixItems {
		Sanitize(sub)
	}
	for _, sub := range s.AllOf {
		Sanitize(sub)
	}
	for _, sub := range s.AnyOf {
		Sanitize(sub)
	}
	for _, sub := range s.OneOf {
		Sanitize(sub)
	}
	for _, sub := range s.PatternProperties {
		Sanitize(sub)
	}
	Sanitize(s.Not)
	Sanitize(s.If)
	Sanitize(s.Then)
	Sanitize(s.Else)
	Sanitize(s.Contains)
	Sanitize(s.PropertyNames)
	Sanitize(s.AdditionalProperties)

	return s
}

func collapseRef(child *jsonschema.Schema) *jsonschema.Schema {
	desc := child.Description
	if desc == "" {
		desc = "Reference to " + child.Ref
	}
	return &jsonschema.Schema{
		Type:        "object",
		Description: desc,
	}
}
