package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CommandOverride customizes one registered command. Zero-valued fields
// keep the builtin behavior.
type CommandOverride struct {
	Name     string `yaml:"name"`
	Trigger  string `yaml:"trigger"`
	Model    string `yaml:"model"`
	Template string `yaml:"template"`
}

// CommandsFile is the parsed commands.yaml.
type CommandsFile struct {
	Commands []CommandOverride `yaml:"commands"`
}

// LoadCommands reads and parses a commands.yaml. Overrides without a
// name are rejected since they cannot be matched to a command.
func LoadCommands(path string) (*CommandsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading commands file: %w", err)
	}

	var cf CommandsFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing commands YAML: %w", err)
	}

	for i, o := range cf.Commands {
		if o.Name == "" {
			return nil, fmt.Errorf("commands[%d]: missing name", i)
		}
	}
	return &cf, nil
}

// Override returns the override for the named command, if any.
func (cf *CommandsFile) Override(name string) (CommandOverride, bool) {
	if cf == nil {
		return CommandOverride{}, false
	}
	for _, o := range cf.Commands {
		if o.Name == name {
			return o, true
		}
	}
	return CommandOverride{}, false
}
