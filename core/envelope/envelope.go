// Package envelope recovers the structured reply the assistant is required to
// produce from free-form model output.
//
// Model output is not guaranteed to be well formed: it may wrap the object in
// prose or code fences, or omit it entirely. [Recover] always returns a
// well-formed [Envelope], substituting [Fallback] when nothing valid can be
// extracted.
package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

const (
	DefaultLanguageCode = "en-IN"

	fallbackReply       = "I'm having a little trouble thinking right now, please try asking in a different way."
	backendFailureReply = "Sorry, a critical technical error occurred. Please try again later."
)

var (
	ErrNoObject        = errors.New("no object found in model output")
	ErrMalformed       = errors.New("malformed envelope")
	ErrMissingField    = errors.New("envelope field missing")
	ErrUnexpectedField = errors.New("unexpected envelope field")
)

// Envelope is the only valid shape of an assistant reply.
type Envelope struct {
	Reply        string `json:"reply" jsonschema:"description=Reply to the user in the user's language"`
	LanguageCode string `json:"language_code" jsonschema:"description=BCP-47 language tag of the reply,example=en-IN,example=hi-IN"`
}

// Fallback is the fixed envelope substituted whenever model output cannot be
// validated.
func Fallback() Envelope {
	return Envelope{Reply: fallbackReply, LanguageCode: DefaultLanguageCode}
}

// BackendFailure is the fixed envelope used when no model output could be
// obtained at all (transport failure, non-2xx status, generator error).
func BackendFailure() Envelope {
	return Envelope{Reply: backendFailureReply, LanguageCode: DefaultLanguageCode}
}

// ExtractCandidate returns the inclusive span between the first '{' and the
// last '}' of raw, or "" if there is no such span.
func ExtractCandidate(raw string) string {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(raw, '}')
	if end < start {
		return ""
	}
	return raw[start : end+1]
}

// Parse strictly decodes candidate into an [Envelope]. The candidate must be a
// single JSON object holding exactly "reply" and "language_code", both
// non-empty strings.
func Parse(candidate string) (Envelope, error) {
	if strings.TrimSpace(candidate) == "" {
		return Envelope{}, ErrNoObject
	}

	dec := json.NewDecoder(strings.NewReader(candidate))
	var fields map[string]json.RawMessage
	if err := dec.Decode(&fields); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if fields == nil {
		return Envelope{}, fmt.Errorf("%w: not an object", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Envelope{}, fmt.Errorf("%w: trailing data after object", ErrMalformed)
	}

	for key := range fields {
		if key != "reply" && key != "language_code" {
			return Envelope{}, fmt.Errorf("%w: %q", ErrUnexpectedField, key)
		}
	}

	reply, err := stringField(fields, "reply")
	if err != nil {
		return Envelope{}, err
	}
	languageCode, err := stringField(fields, "language_code")
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{Reply: reply, LanguageCode: languageCode}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", fmt.Errorf("%w: %q is not a string", ErrMalformed, key)
	}
	if value == "" {
		return "", fmt.Errorf("%w: %q is empty", ErrMissingField, key)
	}
	return value, nil
}

// Extract locates and parses the envelope inside raw model output.
//
// The greedy first-'{'/last-'}' span is tried first. If it does not parse
// (e.g. prose after the object contains a stray brace), each balanced
// top-level object is tried in order of appearance.
func Extract(raw string) (Envelope, error) {
	env, err := Parse(ExtractCandidate(raw))
	if err == nil {
		return env, nil
	}

	for _, candidate := range balancedObjects(raw) {
		if env, scanErr := Parse(candidate); scanErr == nil {
			return env, nil
		}
	}
	return Envelope{}, err
}

// Recover returns the envelope contained in raw, or [Fallback] and false.
// It never panics.
func Recover(raw string) (env Envelope, ok bool) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("envelope extraction panicked", "panic", fmt.Sprint(recovered))
			env, ok = Fallback(), false
			recordFallback("panic")
		}
	}()

	env, err := Extract(raw)
	if err != nil {
		logger.Warn("model output is not a valid envelope, using fallback",
			"error", err, "raw_length", len(raw))
		recordFallback(reason(err))
		return Fallback(), false
	}
	return env, true
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrNoObject):
		return "no_object"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrUnexpectedField):
		return "unexpected_field"
	default:
		return "malformed"
	}
}

// balancedObjects returns every top-level {...} span in raw, honouring JSON
// string literals so braces inside strings do not affect nesting.
func balancedObjects(raw string) []string {
	var (
		objects  []string
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if depth > 0 && inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				objects = append(objects, raw[start:i+1])
				start = -1
			}
		}
	}
	return objects
}

var schema = sync.OnceValue(func() []byte {
	reflector := jsonschema.Reflector{DoNotReference: true}
	s := reflector.Reflect(&Envelope{})
	s.Version = ""
	b, err := s.MarshalJSON()
	if err != nil {
		logger.Error("failed to marshal envelope schema", "error", err)
		return nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, b); err != nil {
		return b
	}
	return compact.Bytes()
})

// Schema returns the JSON schema describing [Envelope].
func Schema() []byte { return bytes.Clone(schema()) }
