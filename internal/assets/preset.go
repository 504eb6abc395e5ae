// Package assets generates the regenerable payloads the web application
// reads from its configuration directories: sampling-parameter presets
// (JSON), character cards (YAML), and operator docs (Markdown). Nothing
// here is user-owned state; every emit overwrites unconditionally.
package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ParamKind is the value type a recognized sampling key expects.
type ParamKind int

const (
	ParamNumber ParamKind = iota
	ParamBool
	ParamString
)

// RecognizedParams enumerates the sampling keys we validate. Keys
// outside this set pass through verbatim so presets stay forward-
// compatible with the application's evolving parameter surface.
var RecognizedParams = map[string]ParamKind{
	"temperature":        ParamNumber,
	"top_p":              ParamNumber,
	"top_k":              ParamNumber,
	"min_p":              ParamNumber,
	"typical_p":          ParamNumber,
	"repetition_penalty": ParamNumber,
	"frequency_penalty":  ParamNumber,
	"presence_penalty":   ParamNumber,
	"max_new_tokens":     ParamNumber,
	"truncation_length":  ParamNumber,
	"seed":               ParamNumber,
	"do_sample":          ParamBool,
	"add_bos_token":      ParamBool,
	"ban_eos_token":      ParamBool,
}

type presetParam struct {
	Key   string
	Value any
}

// PresetDocument is a flat, ordered mapping of sampling parameters plus
// a trailing human-readable description. Keys are unique; values are
// numbers, booleans, or strings.
type PresetDocument struct {
	Name        string
	Description string
	params      []presetParam
}

// NewPreset starts an empty preset document.
func NewPreset(name, description string) *PresetDocument {
	return &PresetDocument{Name: name, Description: description}
}

// Set adds or replaces a parameter. Recognized keys are type-checked;
// unrecognized keys are accepted as long as the value is scalar.
func (d *PresetDocument) Set(key string, value any) error {
	switch value.(type) {
	case int, int64, float32, float64, bool, string:
	default:
		return fmt.Errorf("preset %s: key %q: value must be a number, boolean, or string", d.Name, key)
	}

	if kind, ok := RecognizedParams[key]; ok {
		if err := checkKind(key, kind, value); err != nil {
			return fmt.Errorf("preset %s: %w", d.Name, err)
		}
	}

	for i := range d.params {
		if d.params[i].Key == key {
			d.params[i].Value = value
			return nil
		}
	}
	d.params = append(d.params, presetParam{Key: key, Value: value})
	return nil
}

func checkKind(key string, kind ParamKind, value any) error {
	switch kind {
	case ParamNumber:
		switch value.(type) {
		case int, int64, float32, float64:
			return nil
		}
		return fmt.Errorf("key %q expects a number, got %T", key, value)
	case ParamBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("key %q expects a boolean, got %T", key, value)
		}
	case ParamString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("key %q expects a string, got %T", key, value)
		}
	}
	return nil
}

// Get returns the value for key.
func (d *PresetDocument) Get(key string) (any, bool) {
	for _, p := range d.params {
		if p.Key == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Keys lists the parameter keys in insertion order, without the
// trailing description.
func (d *PresetDocument) Keys() []string {
	out := make([]string, len(d.params))
	for i, p := range d.params {
		out[i] = p.Key
	}
	return out
}

// Filename is the on-disk name the application looks the preset up by.
func (d *PresetDocument) Filename() string { return d.Name + ".json" }

// MarshalJSON writes the parameters in insertion order with the
// description as the final key, matching what the application expects.
func (d *PresetDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, p := range d.params {
		k, err := json.Marshal(p.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(p.Value)
		if err != nil {
			return nil, fmt.Errorf("preset %s: key %q: %w", d.Name, p.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		buf.WriteByte(',')
	}
	buf.WriteString(`"description":`)
	desc, err := json.Marshal(d.Description)
	if err != nil {
		return nil, err
	}
	buf.Write(desc)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RenderJSON is MarshalJSON pretty-printed for the emitted file.
func (d *PresetDocument) RenderJSON() ([]byte, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// BuiltinPresets is the preset set the playbook ships: a balanced
// default, a low-temperature variant for factual work, and a loose one
// for drafting.
func BuiltinPresets() []*PresetDocument {
	return []*PresetDocument{
		{
			Name:        "playbook_default",
			Description: "Balanced sampling for everyday chat and notebook runs.",
			params: []presetParam{
				{"temperature", 0.7},
				{"top_p", 0.9},
				{"top_k", 40},
				{"repetition_penalty", 1.1},
				{"max_new_tokens", 512},
				{"do_sample", true},
			},
		},
		{
			Name:        "playbook_precise",
			Description: "Low-temperature sampling for extraction and factual answers.",
			params: []presetParam{
				{"temperature", 0.3},
				{"top_p", 0.75},
				{"top_k", 20},
				{"repetition_penalty", 1.15},
				{"max_new_tokens", 512},
				{"do_sample", true},
			},
		},
		{
			Name:        "playbook_creative",
			Description: "Loose sampling for brainstorming and long-form drafts.",
			params: []presetParam{
				{"temperature", 1.15},
				{"top_p", 0.95},
				{"top_k", 100},
				{"repetition_penalty", 1.05},
				{"max_new_tokens", 768},
				{"do_sample", true},
			},
		},
	}
}
