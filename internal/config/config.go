// Package config loads and validates .uuidfreeze.yaml project configuration.
//
// The YAML document is decoded with gopkg.in/yaml.v3 and then checked
// against the embedded CUE schema, so typos in key names and out-of-range
// values fail with positioned field errors rather than being ignored.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/uuidfreeze/uuidfreeze/internal/generate"
)

// DefaultFilename is the config file looked up in the project root.
const DefaultFilename = ".uuidfreeze.yaml"

//go:embed schema.cue
var schemaSource string

// Error code constants for config loading and validation.
const (
	ErrCodeNotFound = "C001" // config file not found
	ErrCodeRead     = "C002" // file read error
	ErrCodeParse    = "C003" // YAML parse error
	ErrCodeSchema   = "C004" // schema violation
	ErrCodePolicy   = "C005" // unknown exhaustion policy
)

// Error describes a configuration problem with the field it concerns.
type Error struct {
	Code    string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Config holds the project-level defaults applied when a Control is built.
type Config struct {
	// DefaultIgnore replaces the built-in session ignore prefixes.
	DefaultIgnore []string `yaml:"default_ignore"`

	// ExtendIgnore is appended to the effective ignore prefixes.
	ExtendIgnore []string `yaml:"extend_ignore"`

	// OnExhausted names the default sequence exhaustion policy.
	OnExhausted string `yaml:"on_exhausted"`

	// Journal is an optional journal file path; empty keeps it in memory.
	Journal string `yaml:"journal"`
}

// Default returns the zero configuration: no ignore prefixes, cycle
// exhaustion, in-memory journal.
func Default() Config {
	return Config{OnExhausted: string(generate.PolicyCycle)}
}

// IgnorePrefixes returns the combined session ignore list.
func (c Config) IgnorePrefixes() []string {
	out := make([]string, 0, len(c.DefaultIgnore)+len(c.ExtendIgnore))
	out = append(out, c.DefaultIgnore...)
	out = append(out, c.ExtendIgnore...)
	return out
}

// Policy resolves OnExhausted to a generator policy.
func (c Config) Policy() (generate.Policy, error) {
	if c.OnExhausted == "" {
		return generate.PolicyCycle, nil
	}
	p, err := generate.ParsePolicy(c.OnExhausted)
	if err != nil {
		return "", &Error{Code: ErrCodePolicy, Field: "on_exhausted", Message: err.Error()}
	}
	return p, nil
}

// Load reads and validates a config file. A missing file is an error;
// callers that treat the file as optional should stat it first or use
// LoadIfPresent.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
	}
	if err != nil {
		return Config{}, &Error{Code: ErrCodeRead, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return Parse(data, path)
}

// LoadIfPresent returns the default configuration when the file does not
// exist, and otherwise behaves like Load.
func LoadIfPresent(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes and schema-checks a YAML document. filename is used only
// in error positions.
func Parse(data []byte, filename string) (Config, error) {
	if err := validateSchema(data, filename); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, &Error{Code: ErrCodeParse, Message: fmt.Sprintf("parsing %s: %v", filename, err)}
	}
	if cfg.OnExhausted == "" {
		cfg.OnExhausted = string(generate.PolicyCycle)
	}
	if _, err := cfg.Policy(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validateSchema unifies the document with the embedded CUE schema.
func validateSchema(data []byte, filename string) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &Error{Code: ErrCodeSchema, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return &Error{Code: ErrCodeParse, Message: fmt.Sprintf("parsing %s: %v", filename, err)}
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return &Error{Code: ErrCodeParse, Message: fmt.Sprintf("building %s: %v", filename, err)}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(); err != nil {
		return schemaError(err)
	}
	return nil
}

// schemaError converts a CUE validation error into a field-scoped Error.
func schemaError(err error) error {
	for _, e := range errors.Errors(err) {
		field := ""
		if p := e.Path(); len(p) > 0 {
			field = p[len(p)-1]
			for i := len(p) - 2; i >= 0; i-- {
				field = p[i] + "." + field
			}
		}
		return &Error{Code: ErrCodeSchema, Field: field, Message: e.Error()}
	}
	return &Error{Code: ErrCodeSchema, Message: err.Error()}
}
