package envvars

import (
	"encoding/json"
	"fmt"
)

// Environment identifies one of the two environments a Pages project
// deploys to.
type Environment string

const (
	Production Environment = "production"
	Preview    Environment = "preview"
)

// ParseEnvironment accepts exactly "production" or "preview".
func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case string(Production):
		return Production, nil
	case string(Preview):
		return Preview, nil
	}
	return "", fmt.Errorf("invalid environment %q: must be %q or %q", s, Production, Preview)
}

func (e Environment) String() string { return string(e) }

// Set implements pflag.Value so an Environment can back a cobra flag.
func (e *Environment) Set(s string) error {
	parsed, err := ParseEnvironment(s)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Type implements pflag.Value.
func (e *Environment) Type() string { return "environment" }

func (e Environment) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(e))
}

// UnmarshalJSON rejects environment names the tool does not know, so a
// deployment targeting an unexpected environment fails loudly instead of
// being misfiled.
func (e *Environment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return e.Set(s)
}

// Map holds the variables of a single environment as plain name/value pairs.
type Map map[string]string

// UnmarshalJSON requires every value to be a JSON string. Without it a null
// or numeric value would silently decode as its zero string instead of
// failing the parse.
func (m *Map) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	vars := make(Map, len(raw))
	for name, value := range raw {
		var s *string
		if err := json.Unmarshal(value, &s); err != nil || s == nil {
			return fmt.Errorf("variable %q: value is not a string", name)
		}
		vars[name] = *s
	}
	*m = vars
	return nil
}

// Document is the local variables file: one map per environment. A nil map
// means the environment is absent from the document (JSON null), which is
// distinct from an environment that is present but has no variables ({}).
type Document struct {
	Production Map `json:"production"`
	Preview    Map `json:"preview"`
}

// MalformedDocumentError reports a variables file that is not valid JSON or
// does not have the expected shape.
type MalformedDocumentError struct {
	Err error
}

func (e *MalformedDocumentError) Error() string {
	return "malformed variables document: " + e.Err.Error()
}

func (e *MalformedDocumentError) Unwrap() error { return e.Err }

// EnvironmentUnavailableError reports an operation that needs an environment
// the document does not carry.
type EnvironmentUnavailableError struct {
	Environment Environment
}

func (e *EnvironmentUnavailableError) Error() string {
	return fmt.Sprintf("environment %q is not present in the variables document", e.Environment)
}

// ParseDocument decodes a variables file. The top level must be a JSON
// object; production and preview, when present, must each be null or an
// object of string values. A missing field decodes as a nil map. Unknown
// sibling fields are ignored.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedDocumentError{Err: err}
	}
	return &doc, nil
}

// Marshal renders the document as indented JSON, production first, map keys
// in sorted order. Nil maps come out as null, empty maps as {}.
func (d *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Vars selects one environment's variables. The result is nil when the
// document does not carry that environment.
func (d *Document) Vars(env Environment) Map {
	switch env {
	case Preview:
		return d.Preview
	default:
		return d.Production
	}
}
