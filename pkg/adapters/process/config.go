package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ToolConfig describes one allow-listed command.
type ToolConfig struct {
	Name        string   `yaml:"name" json:"name"`
	Command     string   `yaml:"command" json:"command"`
	Args        []string `yaml:"args" json:"args"`
	Description string   `yaml:"description" json:"description"`
}

// ConfigFile represents the structure of tools.yaml.
type ConfigFile struct {
	Tools []ToolConfig `yaml:"tools" json:"tools"`
}

// LoadTools reads a tools file (YAML, or JSON by extension) and returns the tools by name.
// A missing file yields an empty set.
func LoadTools(path string) (map[string]ToolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]ToolConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	tools := make(map[string]ToolConfig, len(cfg.Tools))
	for _, tool := range cfg.Tools {
		if tool.Name == "" || tool.Command == "" {
			continue
		}
		tools[tool.Name] = tool
	}
	return tools, nil
}
