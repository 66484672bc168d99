package core

// Provider identifies the model provider an engine instance is bound to for
// its lifetime. The provider determines the authentication header forwarded
// to the vector store, the vectorizer/generative modules baked into created
// collections and the endpoint of the client-side completion call.
type Provider string

const (
	// ProviderMistral selects Mistral for embedding, generation and completion.
	ProviderMistral Provider = "mistral"
	// ProviderOpenAI selects OpenAI for embedding, generation and completion.
	ProviderOpenAI Provider = "openai"
)

// ProviderCredentials binds a provider to its API key. One engine holds
// exactly one set of credentials; there is no runtime reconfiguration.
type ProviderCredentials struct {
	Provider Provider
	APIKey   string
}

// Validate reports whether the credentials name a known provider and carry a
// non-empty key.
func (c ProviderCredentials) Validate() error {
	if _, err := c.AuthHeader(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return NewError(KindConnection, "missing api key for provider %q", c.Provider)
	}
	return nil
}

// AuthHeader returns the store-side header name under which the provider API
// key must be forwarded, so the store can call the provider on the caller's
// behalf during vectorization and generation.
func (c ProviderCredentials) AuthHeader() (string, error) {
	switch c.Provider {
	case ProviderMistral:
		return "X-Mistral-Api-Key", nil
	case ProviderOpenAI:
		return "X-OpenAI-Api-Key", nil
	default:
		return "", NewError(KindConnection, "unknown model provider %q", c.Provider)
	}
}

// VectorizerModule returns the store vectorizer module bound to the provider.
func (p Provider) VectorizerModule() string {
	switch p {
	case ProviderMistral:
		return "text2vec-mistral"
	case ProviderOpenAI:
		return "text2vec-openai"
	default:
		return ""
	}
}

// GenerativeModule returns the store generative module bound to the provider.
func (p Provider) GenerativeModule() string {
	switch p {
	case ProviderMistral:
		return "generative-mistral"
	case ProviderOpenAI:
		return "generative-openai"
	default:
		return ""
	}
}

// CompletionBaseURL returns the chat completion endpoint for the provider.
// An empty string means the completion client's built-in default.
func (p Provider) CompletionBaseURL() string {
	if p == ProviderMistral {
		return "https://api.mistral.ai/v1"
	}
	return ""
}

// DefaultChatModel returns the completion model used when none is configured.
func (p Provider) DefaultChatModel() string {
	if p == ProviderMistral {
		return "mistral-small-latest"
	}
	return "gpt-4o-mini"
}
