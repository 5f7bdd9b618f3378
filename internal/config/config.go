package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/lingoflow-ai/lingoflow/pkg/types"
)

// Load loads configuration from multiple sources (priority order):
// 1. Global config (~/.config/lingoflow/)
// 2. Project config (lingoflow.json in directory)
// 3. LINGOFLOW_CONFIG file
// 4. LINGOFLOW_CONFIG_CONTENT inline JSON
// 5. Environment variables
func Load(directory string) (*types.Config, error) {
	config := &types.Config{
		Provider: make(map[string]types.ProviderConfig),
	}

	loaded := make(map[string]bool)
	loadOnce := func(path string, baseDir string) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return
		}
		if loaded[absPath] {
			return
		}
		if loadConfigFile(path, config, baseDir) == nil {
			loaded[absPath] = true
		}
	}

	// 1. Global config
	globalPath := GetPaths().Config
	loadOnce(filepath.Join(globalPath, "lingoflow.json"), globalPath)
	loadOnce(filepath.Join(globalPath, "lingoflow.jsonc"), globalPath)

	// 2. Project config
	if directory != "" {
		loadOnce(filepath.Join(directory, "lingoflow.json"), directory)
		loadOnce(filepath.Join(directory, "lingoflow.jsonc"), directory)
	}

	// 3. LINGOFLOW_CONFIG file override
	if configPath := os.Getenv("LINGOFLOW_CONFIG"); configPath != "" {
		loadOnce(configPath, filepath.Dir(configPath))
	}

	// 4. LINGOFLOW_CONFIG_CONTENT inline JSON
	if configContent := os.Getenv("LINGOFLOW_CONFIG_CONTENT"); configContent != "" {
		var inlineConfig types.Config
		if err := json.Unmarshal(jsonc.ToJSON([]byte(configContent)), &inlineConfig); err == nil {
			mergeConfig(config, &inlineConfig)
		}
	}

	// 5. Environment variables (highest priority)
	applyEnvOverrides(config)

	return config, nil
}

// loadConfigFile loads a single config file with interpolation support.
func loadConfigFile(path string, config *types.Config, baseDir string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Strip JSONC comments, then expand placeholders
	data = jsonc.ToJSON(data)
	data = interpolate(data, baseDir)

	var fileConfig types.Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return err
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// interpolate processes {env:VAR} and {file:path} placeholders.
func interpolate(data []byte, baseDir string) []byte {
	str := string(data)

	envPattern := regexp.MustCompile(`\{env:([^}]+)\}`)
	str = envPattern.ReplaceAllStringFunc(str, func(match string) string {
		varName := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})

	filePattern := regexp.MustCompile(`\{file:([^}]+)\}`)
	str = filePattern.ReplaceAllStringFunc(str, func(match string) string {
		filePath := filePattern.FindStringSubmatch(match)[1]

		if strings.HasPrefix(filePath, "~/") {
			filePath = filepath.Join(os.Getenv("HOME"), filePath[2:])
		} else if !filepath.IsAbs(filePath) {
			filePath = filepath.Join(baseDir, filePath)
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			return match // keep the placeholder if the file is missing
		}

		escaped := strings.ReplaceAll(strings.TrimSpace(string(content)), "\\", "\\\\")
		escaped = strings.ReplaceAll(escaped, "\"", "\\\"")
		escaped = strings.ReplaceAll(escaped, "\n", "\\n")
		escaped = strings.ReplaceAll(escaped, "\r", "\\r")
		escaped = strings.ReplaceAll(escaped, "\t", "\\t")
		return escaped
	})

	return []byte(str)
}

// mergeConfig merges source config into target.
func mergeConfig(target, source *types.Config) {
	if source.Schema != "" {
		target.Schema = source.Schema
	}
	if source.Model != "" {
		target.Model = source.Model
	}
	if source.Theme != "" {
		target.Theme = source.Theme
	}
	if source.HistoryLimit != 0 {
		target.HistoryLimit = source.HistoryLimit
	}
	if source.SystemPrompt != "" {
		target.SystemPrompt = source.SystemPrompt
	}
	if source.UserPromptTemplate != "" {
		target.UserPromptTemplate = source.UserPromptTemplate
	}

	if source.Provider != nil {
		if target.Provider == nil {
			target.Provider = make(map[string]types.ProviderConfig)
		}
		for k, v := range source.Provider {
			merged := target.Provider[k]
			if v.APIKey != "" {
				merged.APIKey = v.APIKey
			}
			if v.BaseURL != "" {
				merged.BaseURL = v.BaseURL
			}
			if v.Model != "" {
				merged.Model = v.Model
			}
			if v.Params != nil {
				merged.Params = v.Params
			}
			merged.Disable = v.Disable
			target.Provider[k] = merged
		}
	}
}

// applyEnvOverrides applies environment variable overrides. Keys from
// the environment never clobber a key set explicitly in a config file.
func applyEnvOverrides(config *types.Config) {
	providerEnvMap := map[string]string{
		"openai":     "OPENAI_API_KEY",
		"anthropic":  "ANTHROPIC_API_KEY",
		"gemini":     "GEMINI_API_KEY",
		"openrouter": "OPENROUTER_API_KEY",
	}

	for provider, envVar := range providerEnvMap {
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			continue
		}
		if config.Provider == nil {
			config.Provider = make(map[string]types.ProviderConfig)
		}
		p := config.Provider[provider]
		if p.APIKey == "" {
			p.APIKey = apiKey
			config.Provider[provider] = p
		}
	}

	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		if config.Provider == nil {
			config.Provider = make(map[string]types.ProviderConfig)
		}
		p := config.Provider["ollama"]
		if p.BaseURL == "" {
			p.BaseURL = host
			config.Provider["ollama"] = p
		}
	}

	if model := os.Getenv("LINGOFLOW_MODEL"); model != "" {
		config.Model = model
	}
}

// Save saves the configuration to a file.
func Save(config *types.Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
