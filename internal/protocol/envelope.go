// Package protocol defines the websocket wire format: a JSON envelope
// carrying a named event, the closed set of client intents with their
// JSON schemas, and the server events.
package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// Envelope is the frame shape in both directions
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var intentSchemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		panic(fmt.Sprintf("protocol: read schemas: %v", err))
	}

	urls := make(map[string]string, len(entries))
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".schema.json")
		raw, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			panic(fmt.Sprintf("protocol: read schema %s: %v", entry.Name(), err))
		}
		url := "hexroom://schemas/" + entry.Name()
		if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
			panic(fmt.Sprintf("protocol: add schema %s: %v", entry.Name(), err))
		}
		urls[name] = url
	}

	compiled := make(map[string]*jsonschema.Schema, len(urls))
	for name, url := range urls {
		compiled[name] = compiler.MustCompile(url)
	}
	for name := range intentFactories {
		if _, ok := compiled[name]; !ok {
			panic(fmt.Sprintf("protocol: no schema for intent %s", name))
		}
	}
	return compiled
}

// DecodeIntent parses a client frame into its typed intent.
// Unknown event names and payloads that fail their schema are BadRequest.
func DecodeIntent(raw []byte) (Intent, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.BadRequest("message is not a valid event envelope")
	}
	if env.Event == "" {
		return nil, errors.BadRequest("event name is required")
	}

	factory, ok := intentFactories[env.Event]
	if !ok {
		return nil, errors.BadRequest("unknown event %q", env.Event).WithMeta("event", env.Event)
	}

	data := env.Data
	if len(bytes.TrimSpace(data)) == 0 {
		data = json.RawMessage("null")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.BadRequest("%s payload is not valid JSON", env.Event)
	}
	if err := intentSchemas[env.Event].Validate(doc); err != nil {
		return nil, errors.BadRequest("invalid %s payload: %s", env.Event, schemaMessage(err)).
			WithMeta("event", env.Event)
	}

	intent := factory()
	if doc == nil {
		return intent, nil
	}
	if err := json.Unmarshal(data, intent); err != nil {
		return nil, errors.BadRequest("invalid %s payload: %v", env.Event, err)
	}
	return intent, nil
}

// schemaMessage flattens a validation error to its most specific cause
func schemaMessage(err error) string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(verr.Causes) > 0 {
		verr = verr.Causes[0]
	}
	loc := verr.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, verr.Message)
}

// Encode wraps an event in its envelope
func Encode(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s", ev.EventName())
	}
	out, err := json.Marshal(Envelope{Event: ev.EventName(), Data: data})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s envelope", ev.EventName())
	}
	return out, nil
}

// ErrorEvent converts any error into the wire error event. Errors that
// never went through internal/errors are reported without their text.
func ErrorEvent(err error) Error {
	var custom *errors.Error
	if !errors.As(err, &custom) {
		return Error{Message: "Internal error", Code: string(errors.CodeInternal)}
	}
	code := custom.Reason.String()
	if code == "" {
		code = string(custom.Code)
	}
	return Error{Message: custom.Message, Code: code}
}
