package config

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidegen/internal/domain/entities"
	"github.com/fredcamaral/slidegen/internal/domain/ports"
)

// promptFile is the on-disk layout of a prompt catalog
type promptFile struct {
	Prompts []entities.PromptTemplate `yaml:"prompts"`
}

// YAMLPromptCatalog serves prompt templates from a YAML file, falling back to the built-in set
type YAMLPromptCatalog struct {
	path string
}

// NewYAMLPromptCatalog creates a catalog backed by path. An empty path serves the defaults.
func NewYAMLPromptCatalog(path string) *YAMLPromptCatalog {
	return &YAMLPromptCatalog{path: path}
}

// List reads the catalog on every call so edits show up without a restart
func (c *YAMLPromptCatalog) List(ctx context.Context) ([]entities.PromptTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.path == "" {
		return entities.DefaultPrompts(), nil
	}

	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return entities.DefaultPrompts(), nil
	}

	data, err := os.ReadFile(c.path) // #nosec G304 - path is operator supplied configuration
	if err != nil {
		return nil, fmt.Errorf("reading prompt catalog %s: %w", c.path, err)
	}

	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing prompt catalog %s: %w", c.path, err)
	}

	if len(file.Prompts) == 0 {
		return entities.DefaultPrompts(), nil
	}

	for i, p := range file.Prompts {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("prompt %d in %s: %w", i+1, c.path, err)
		}
	}

	return file.Prompts, nil
}

// WriteDefaultPrompts writes the built-in catalog to path as a starting point for editing
func WriteDefaultPrompts(path string) error {
	data, err := yaml.Marshal(promptFile{Prompts: entities.DefaultPrompts()})
	if err != nil {
		return fmt.Errorf("encoding prompt catalog: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing prompt catalog %s: %w", path, err)
	}
	return nil
}

// Ensure YAMLPromptCatalog implements ports.PromptCatalog
var _ ports.PromptCatalog = (*YAMLPromptCatalog)(nil)
