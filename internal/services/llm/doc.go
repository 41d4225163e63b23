// Package llm wraps the OpenRouter chat completion API for storyboard and
// description generation. Requests retry on 429/5xx and timeouts with
// exponential backoff, honoring Retry-After. DecodeLLMJSON tolerates the
// usual model formatting quirks (code fences, prose around the payload).
package llm
