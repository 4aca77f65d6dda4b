// Package file provides filesystem-backed implementations of driven ports.
//
// Adapters:
//   - ConfigStore: TOML settings in ~/.pagewise/config.toml
//   - PromptStore: user-editable LLM prompts in ~/.pagewise/prompts
package file
