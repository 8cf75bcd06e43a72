// Package file provides file-based implementations of driven port interfaces.
// Everything lives under ~/.lexrag unless a directory is given.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable LLM prompt templates
//   - SynonymExpander: YAML legal-synonym query expansion
//
// LoadEnv reads API keys from .env files.
package file
