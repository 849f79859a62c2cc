package config

// FactsConfig selects the domain-facts provider
type FactsConfig struct {
	Provider string
}

// ClassifierConfig selects the text-classifier provider
type ClassifierConfig struct {
	Provider string
}

// RemoteConfig represents the configuration for the remote analysis service
type RemoteConfig struct {
	BaseURL string
	Timeout string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GetFacts returns the domain-facts provider configuration
func (c *Config) GetFacts() FactsConfig {
	return FactsConfig{
		Provider: c.GetString("facts.provider"),
	}
}

// GetClassifier returns the classifier provider configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		Provider: c.GetString("classifier.provider"),
	}
}

// GetRemote returns the remote analysis service configuration
func (c *Config) GetRemote() RemoteConfig {
	return RemoteConfig{
		BaseURL: c.GetString("remote.base_url"),
		Timeout: c.GetString("remote.timeout"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxTextSize: c.GetInt("openai.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}
