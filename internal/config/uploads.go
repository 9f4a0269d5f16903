package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	megabyte = 1024 * 1024

	MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeXLS  = "application/vnd.ms-excel"
)

// UploadRule limits what may be stored into one resource kind.
type UploadRule struct {
	MaxSize    int64    `yaml:"max_size"`
	Extensions []string `yaml:"extensions"`
	MimeTypes  []string `yaml:"mime_types"`
}

// UploadRules maps a resource kind (packages, questions, phrases) to its rule.
type UploadRules map[string]UploadRule

type uploadRulesFile struct {
	Uploads map[string]UploadRule `yaml:"uploads"`
}

func spreadsheetRule(maxSize int64) UploadRule {
	return UploadRule{
		MaxSize:    maxSize,
		Extensions: []string{".xlsx", ".xls"},
		MimeTypes:  []string{MimeXLSX, MimeXLS},
	}
}

func DefaultUploadRules() UploadRules {
	return UploadRules{
		"packages":  spreadsheetRule(10 * megabyte),
		"questions": spreadsheetRule(10 * megabyte),
		"phrases":   spreadsheetRule(5 * megabyte),
	}
}

// LoadUploadRules overlays the rules found in a YAML file on top of the defaults.
// Fields left empty in the file keep their default values.
func LoadUploadRules(path string) (UploadRules, error) {
	rules := DefaultUploadRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload rules file: %w", err)
	}

	var file uploadRulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse upload rules file: %w", err)
	}

	for kind, override := range file.Uploads {
		base, ok := rules[kind]
		if !ok {
			return nil, fmt.Errorf("unknown upload kind %q in %s", kind, path)
		}
		if override.MaxSize > 0 {
			base.MaxSize = override.MaxSize
		}
		if len(override.Extensions) > 0 {
			base.Extensions = normalizeExtensions(override.Extensions)
		}
		if len(override.MimeTypes) > 0 {
			base.MimeTypes = override.MimeTypes
		}
		rules[kind] = base
	}

	return rules, nil
}

func (r UploadRules) Validate() error {
	for kind, rule := range r {
		if rule.MaxSize <= 0 {
			return fmt.Errorf("upload rule %q: max_size must be positive", kind)
		}
		if len(rule.Extensions) == 0 {
			return fmt.Errorf("upload rule %q: at least one extension is required", kind)
		}
	}
	return nil
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
