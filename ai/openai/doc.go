// Package openai provides an ai.Embedder backed by OpenAI-compatible
// embedding APIs. It works with the hosted OpenAI service as well as local
// servers exposing the same surface (Ollama, LocalAI, vLLM).
package openai
