package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk layout of a YAML template catalog.
type catalogFile struct {
	Templates []TemplateSpec `yaml:"templates"`
}

// LoadCatalog reads template specs from a YAML file. The specs are not
// validated until they go through a Builder.
func LoadCatalog(path string) ([]TemplateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog document.
func ParseCatalog(data []byte) ([]TemplateSpec, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}
	for i := range file.Templates {
		rules := file.Templates[i].Mapping
		for j := range rules {
			if rules[j].Occur < 0 {
				rules[j].Malformed = fmt.Sprintf("occur must be positive, got %d", rules[j].Occur)
			}
		}
	}
	return file.Templates, nil
}

// NewRegistry builds the built-in catalog followed by any extra specs.
func NewRegistry(extra ...TemplateSpec) (*Registry, error) {
	return NewBuilder().Add(Builtin()...).Add(extra...).Build()
}

// LoadRegistry builds the built-in catalog plus the specs of every YAML
// catalog in paths.
func LoadRegistry(paths ...string) (*Registry, error) {
	var extra []TemplateSpec
	for _, p := range paths {
		specs, err := LoadCatalog(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		extra = append(extra, specs...)
	}
	return NewRegistry(extra...)
}
