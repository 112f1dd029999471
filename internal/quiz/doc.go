// Package quiz turns manuscripts into multiple-choice tests.
//
// A Generator lists manuscripts, builds the test prompt from the first few
// thousand characters of the chosen one, sends it to the configured
// Provider, and saves whatever comes back. Provider failures are rendered
// into the saved text rather than aborting, so every generation run leaves a
// file behind.
//
// Providers:
//   - huggingface: text-generation inference endpoint, waits and retries once on HTTP 429
//   - openrouter: chat completions through internal/llm
//   - openai: chat completions through the official SDK
package quiz
