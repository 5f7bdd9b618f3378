package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PromptPreset is one named pair of prompt templates. The user prompt
// template may reference {source_lang}, {target_lang} and {text}.
type PromptPreset struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

// promptFile is the on-disk shape of prompts.yaml.
type promptFile struct {
	Presets []PromptPreset `yaml:"presets"`
}

// LoadPrompts reads prompt presets from the YAML file at path. A
// missing file yields an empty list.
func LoadPrompts(path string) ([]PromptPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var file promptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: preset %d has no name", path, i)
		}
	}
	return file.Presets, nil
}

// FindPrompt returns the preset with the given name.
func FindPrompt(presets []PromptPreset, name string) (PromptPreset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return PromptPreset{}, false
}
