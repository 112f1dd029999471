// Package llm is a small client for OpenAI-compatible chat-completions
// endpoints, OpenRouter by default.
//
// The openrouter quiz provider sends its prompts through Client.Complete and
// the doctor command uses Client.HealthCheck to confirm the key and model.
//
// Calls are retried on timeouts, HTTP 408, 429 and 5xx, and on 200 replies
// that carry no text. Delays double from one second up to ten, a Retry-After
// header wins, and cancelling the context stops the loop.
package llm
