// SPDX-FileCopyrightText: Copyright 2026 vgate authors
// SPDX-License-Identifier: Apache-2.0

// Package template implements the parameter templater (C3): substituting
// call arguments into a routing variant's string fields per spec §4.3's
// pure/embedded/env-var placeholder rules, using gjson/sjson for walking and
// splicing arbitrary JSON-shaped config values.
package template

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/stacklok/vgate/pkg/errs"
)

// purePlaceholder matches a string whose entire content is one {{name}} with
// no surrounding text.
var purePlaceholder = regexp.MustCompile(`^\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}$`)

// anyPlaceholder matches every {{name}} occurrence, pure or embedded.
var anyPlaceholder = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// envPlaceholder matches the distinct ${ENV} syntax for process environment
// lookups, used in credential fields.
var envPlaceholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Defaults supplies fallback values for arguments a schema declares with a
// default, keyed by argument name.
type Defaults map[string]any

// Render walks every string field of config and substitutes placeholders
// using args, returning a new config map. config is never mutated in place.
func Render(config map[string]any, args map[string]any, defaults Defaults) (map[string]any, error) {
	raw, err := json.Marshal(config)
	if err != nil {
		return nil, errs.NewInvalidArgumentsError("marshaling routing config", err)
	}

	out, err := renderJSON(string(raw), args, defaults)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return nil, errs.NewInvalidArgumentsError("re-parsing rendered routing config", err)
	}
	return result, nil
}

// renderJSON substitutes placeholders throughout a JSON document's string
// leaves, using gjson to enumerate them and sjson to splice replacements
// back in without disturbing the surrounding structure.
func renderJSON(doc string, args map[string]any, defaults Defaults) (string, error) {
	result := gjson.Parse(doc)
	var walkErr error

	var walk func(path string, value gjson.Result) string
	walk = func(path string, value gjson.Result) string {
		if walkErr != nil {
			return doc
		}
		switch {
		case value.IsObject():
			value.ForEach(func(key, v gjson.Result) bool {
				childPath := joinPath(path, key.String())
				doc = walk(childPath, v)
				return true
			})
		case value.IsArray():
			i := 0
			value.ForEach(func(_, v gjson.Result) bool {
				childPath := fmt.Sprintf("%s.%d", path, i)
				doc = walk(childPath, v)
				i++
				return true
			})
		case value.Type == gjson.String:
			rendered, err := renderString(value.String(), args, defaults)
			if err != nil {
				walkErr = err
				return doc
			}
			if rendered.raw {
				var parsedBack any
				if err := json.Unmarshal([]byte(rendered.jsonLiteral), &parsedBack); err == nil {
					updated, err := sjson.Set(doc, path, parsedBack)
					if err != nil {
						walkErr = err
						return doc
					}
					return updated
				}
			}
			updated, err := sjson.Set(doc, path, rendered.text)
			if err != nil {
				walkErr = err
				return doc
			}
			return updated
		}
		return doc
	}

	doc = walk("", result)
	if walkErr != nil {
		return "", walkErr
	}
	return doc, nil
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

type renderedValue struct {
	// raw is true when the pure-placeholder rule applies: jsonLiteral holds
	// the argument's JSON encoding and should replace the field verbatim,
	// preserving its original type.
	raw         bool
	jsonLiteral string
	// text holds the embedded-placeholder stringified result otherwise.
	text string
}

func renderString(s string, args map[string]any, defaults Defaults) (renderedValue, error) {
	if m := purePlaceholder.FindStringSubmatch(s); m != nil {
		val, err := lookup(m[1], args, defaults)
		if err != nil {
			return renderedValue{}, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return renderedValue{}, errs.InvalidArguments(m[1], "argument is not JSON-representable")
		}
		return renderedValue{raw: true, jsonLiteral: string(b)}, nil
	}

	rendered := s
	var lookupErr error
	rendered = anyPlaceholder.ReplaceAllStringFunc(rendered, func(match string) string {
		if lookupErr != nil {
			return match
		}
		sub := anyPlaceholder.FindStringSubmatch(match)
		val, err := lookup(sub[1], args, defaults)
		if err != nil {
			lookupErr = err
			return match
		}
		return stringify(val)
	})
	if lookupErr != nil {
		return renderedValue{}, lookupErr
	}

	rendered = envPlaceholder.ReplaceAllStringFunc(rendered, func(match string) string {
		sub := envPlaceholder.FindStringSubmatch(match)
		return os.Getenv(sub[1])
	})

	return renderedValue{text: rendered}, nil
}

func lookup(name string, args map[string]any, defaults Defaults) (any, error) {
	if v, ok := args[name]; ok {
		return v, nil
	}
	if defaults != nil {
		if v, ok := defaults[name]; ok {
			return v, nil
		}
	}
	return nil, errs.MissingArgument(name)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
