// Package config provides configuration loading, merging, and path
// management for LingoFlow.
//
// # Configuration Loading
//
// The Load function searches for and merges configuration from
// multiple sources in priority order:
//
//  1. Global config (~/.config/lingoflow/)
//  2. Project config (lingoflow.json/lingoflow.jsonc in the working
//     directory)
//  3. LINGOFLOW_CONFIG file
//  4. LINGOFLOW_CONFIG_CONTENT inline JSON
//  5. Environment variables
//
// Later sources override earlier ones; environment variables have the
// highest precedence, except that an API key from the environment
// never overrides one set explicitly in a config file.
//
// # Supported Formats
//
// Both JSON and JSONC (JSON with comments) are supported; comments are
// stripped with tidwall/jsonc before parsing.
//
// # Variable Interpolation
//
// Configuration files support two placeholder forms:
//   - {env:VAR_NAME} expands to the environment variable's value
//   - {file:path} expands to the file's contents, escaped for JSON
//
// File paths may be absolute, relative to the config file's directory,
// or ~/ prefixed.
//
// Example:
//
//	{
//	  "model": "anthropic/claude-3-5-haiku-latest",
//	  "provider": {
//	    "anthropic": {
//	      "apiKey": "{env:ANTHROPIC_API_KEY}"
//	    }
//	  }
//	}
//
// # Environment Variable Overrides
//
//   - OPENAI_API_KEY, ANTHROPIC_API_KEY, GEMINI_API_KEY,
//     OPENROUTER_API_KEY fill the matching provider's key
//   - OLLAMA_HOST overrides the Ollama base URL
//   - LINGOFLOW_MODEL overrides the default "provider/model" string
//   - LINGOFLOW_CONFIG points at a specific config file
//   - LINGOFLOW_CONFIG_CONTENT supplies inline JSON configuration
//
// # Prompt Presets
//
// LoadPrompts reads named system/user prompt template pairs from the
// YAML preset file (prompts.yaml in the config directory).
//
// # Path Management
//
// The Paths type follows the XDG Base Directory Specification:
//   - Data: ~/.local/share/lingoflow (XDG_DATA_HOME)
//   - Config: ~/.config/lingoflow (XDG_CONFIG_HOME)
//   - Cache: ~/.cache/lingoflow (XDG_CACHE_HOME)
//   - State: ~/.local/state/lingoflow (XDG_STATE_HOME)
//
// On Windows these fall back to APPDATA.
package config
