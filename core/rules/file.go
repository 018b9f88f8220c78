package rules

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/seobench/schema"
	"gopkg.in/yaml.v3"
)

// ruleFile is the YAML layout of a rules file.
type ruleFile struct {
	Rules []schema.Rule `yaml:"rules"`
}

// LoadFile reads rules from path. Files ending in .yaml or .yml are YAML; anything else is DSL text.
func LoadFile(path string) ([]schema.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(string(data))
	}
}

// ParseYAML decodes a YAML rules document and checks that every rule could be written as DSL.
func ParseYAML(data []byte) ([]schema.Rule, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rules: invalid YAML: %w", err)
	}
	for i := range doc.Rules {
		if err := normalize(&doc.Rules[i]); err != nil {
			return nil, fmt.Errorf("rules: rule %d: %w", i+1, err)
		}
	}
	return doc.Rules, nil
}

// normalize trims a rule in place and rejects anything the DSL cannot express.
func normalize(r *schema.Rule) error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || strings.ContainsAny(r.Name, ":\n") || strings.HasPrefix(r.Name, "#") {
		return fmt.Errorf("invalid rule name %q", r.Name)
	}
	clauses := 0
	for _, key := range Keys {
		values := r.Field(key)
		for i, v := range *values {
			v = strings.TrimSpace(v)
			if v == "" || strings.ContainsAny(v, ",;\n") {
				return fmt.Errorf("%s: invalid value %q for %s", r.Name, v, key)
			}
			(*values)[i] = v
		}
		if len(*values) == 0 {
			*values = nil
			continue
		}
		clauses++
	}
	if clauses == 0 {
		return fmt.Errorf("%s: rule has no clauses", r.Name)
	}
	return nil
}

// MarshalYAML encodes rules as a YAML rules document.
func MarshalYAML(rules []schema.Rule) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ruleFile{Rules: rules}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
