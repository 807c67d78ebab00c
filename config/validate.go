package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("schema.json", schemaJSON)
})

// Validate checks the configuration against the embedded JSON schema and
// then applies the cross-field checks the schema cannot express.
func (c *Config) Validate() error {
	if err := c.validateSchema(); err != nil {
		return err
	}

	names := make(map[string]bool, len(c.Species))
	for i := range c.Species {
		sp := &c.Species[i]
		if names[sp.Name] {
			return fmt.Errorf("%w: duplicate species %q", ErrInvalidConfig, sp.Name)
		}
		names[sp.Name] = true

		if sp.KRange.Min > sp.KRange.Max {
			return fmt.Errorf("%w: species %q: k_range min %g > max %g",
				ErrInvalidConfig, sp.Name, sp.KRange.Min, sp.KRange.Max)
		}
		if sp.KRange.Max <= 0 {
			return fmt.Errorf("%w: species %q: k_range max must be positive", ErrInvalidConfig, sp.Name)
		}
		if sp.Temperature.Min > sp.Temperature.Max {
			return fmt.Errorf("%w: species %q: temperature min > max", ErrInvalidConfig, sp.Name)
		}
		if sp.Precipitation.Min > sp.Precipitation.Max {
			return fmt.Errorf("%w: species %q: precipitation min > max", ErrInvalidConfig, sp.Name)
		}
	}

	for _, name := range c.Population.Species {
		if !names[name] {
			return fmt.Errorf("%w: population references unknown species %q", ErrInvalidConfig, name)
		}
	}
	return nil
}

// validateSchema round-trips the config through YAML and JSON so the schema
// validator sees plain JSON values.
func (c *Config) validateSchema() error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("re-reading config: %w", err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("converting config to json: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decoding config json: %w", err)
	}

	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
