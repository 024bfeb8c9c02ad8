// Package llm wraps the chat-completion API used by the curator pipeline.
// The client is transport-only: it sends prompts, retries transient
// failures with bounded backoff, classifies rate limiting distinctly, and
// returns the model's raw text for the caller to parse.
package llm
