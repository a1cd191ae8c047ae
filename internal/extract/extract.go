// Package extract dispatches page content to an AI provider and returns the
// extracted text.
package extract

import (
	"fmt"
	"strings"
)

// Supported provider identifiers. These double as the keys of the
// credential file.
const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderClaude = "claude"
)

// Providers lists the supported providers in menu order.
var Providers = []string{ProviderGemini, ProviderGroq, ProviderOllama, ProviderOpenAI, ProviderClaude}

// DefaultPrompt is the extraction instruction used when none is given.
const DefaultPrompt = "Extract the main content and summarize it."

// systemPrompt frames the chat-style providers.
const systemPrompt = "You are a helpful assistant designed to extract information from text."

// Valid reports whether name is a supported provider.
func Valid(name string) bool {
	for _, p := range Providers {
		if p == name {
			return true
		}
	}
	return false
}

// NeedsKey reports whether a provider requires an API key. Ollama runs
// locally and does not.
func NeedsKey(name string) bool {
	return name != ProviderOllama
}

// Request carries one extraction call.
type Request struct {
	// Prompt is the extraction instruction.
	Prompt string
	// Content is the scraped page content (markdown).
	Content string
	// Model overrides the provider's configured model when non-empty.
	Model string
}

// Result is the provider's answer.
type Result struct {
	Provider string
	Model    string
	// Text is printed to stdout exactly as returned.
	Text  string
	Usage Usage
}

// Usage reports token consumption where the provider exposes it.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// BuildPrompt combines the instruction and the page content into the single
// user prompt sent to every provider.
func BuildPrompt(prompt, content string) string {
	return fmt.Sprintf("%s\n\nHere is the content:\n\n%s", prompt, content)
}

// ValidNames returns the provider list for error messages.
func ValidNames() string {
	return strings.Join(Providers, ", ")
}
