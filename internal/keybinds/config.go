package keybinds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config is the user's keybinding overrides. Each section maps an action name
// to a comma-separated list of keys, e.g. {"table": {"delete": "x,delete"}}.
// Keys listed for an action replace that action's defaults in the section.
type Config struct {
	Version string            `json:"version"`
	Global  map[string]string `json:"global,omitempty"`
	Table   map[string]string `json:"table,omitempty"`
	Search  map[string]string `json:"search,omitempty"`
	Form    map[string]string `json:"form,omitempty"`
	Viewer  map[string]string `json:"viewer,omitempty"`
	Help    map[string]string `json:"help,omitempty"`
	History map[string]string `json:"history,omitempty"`
}

// sections maps each context to its overrides
func (c *Config) sections() map[Context]map[string]string {
	return map[Context]map[string]string{
		ContextGlobal:  c.Global,
		ContextTable:   c.Table,
		ContextSearch:  c.Search,
		ContextForm:    c.Form,
		ContextViewer:  c.Viewer,
		ContextHelp:    c.Help,
		ContextHistory: c.History,
	}
}

// LoadConfig loads keybinding configuration from a JSON file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// SplitKeys parses a comma-separated key list. A lone "," is the comma key.
func SplitKeys(value string) []string {
	if strings.TrimSpace(value) == "," {
		return []string{","}
	}
	var keys []string
	for _, k := range strings.Split(value, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// ApplyConfig applies user configuration to a registry.
// User bindings override default bindings.
func ApplyConfig(registry *Registry, config *Config) error {
	for context, section := range config.sections() {
		for actionStr, keyList := range section {
			action := Action(actionStr)
			if err := ValidateAction(actionStr); err != nil {
				return fmt.Errorf("%s: %w", context, err)
			}
			if !IsKnownAction(action) {
				return fmt.Errorf("%s: unknown action %q", context, actionStr)
			}

			keys := SplitKeys(keyList)
			for _, key := range keys {
				if err := ValidateKey(key); err != nil {
					return fmt.Errorf("%s.%s: %w", context, actionStr, err)
				}
			}

			registry.Unbind(context, action)
			registry.RegisterMultiple(context, keys, action)
		}
	}

	return nil
}

// LoadOrDefault loads user config if it exists, otherwise returns default registry
func LoadOrDefault(configPath string) (*Registry, error) {
	registry := NewDefaultRegistry()

	if configPath == "" {
		return registry, nil
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}

		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// ExportDefaults builds a Config listing every default binding, for users to edit
func ExportDefaults() *Config {
	registry := NewDefaultRegistry()
	config := &Config{Version: "1.0"}

	targets := map[Context]*map[string]string{
		ContextGlobal:  &config.Global,
		ContextTable:   &config.Table,
		ContextSearch:  &config.Search,
		ContextForm:    &config.Form,
		ContextViewer:  &config.Viewer,
		ContextHelp:    &config.Help,
		ContextHistory: &config.History,
	}

	for context, target := range targets {
		section := make(map[string]string)
		for _, b := range registry.ListBindings(context) {
			if existing, ok := section[string(b.Action)]; ok {
				section[string(b.Action)] = existing + "," + b.Key
			} else {
				section[string(b.Action)] = b.Key
			}
		}
		*target = section
	}

	return config
}
