package deepseek

import (
	"time"

	"github.com/Rrens/routine-advisor/internal/config"
	"github.com/Rrens/routine-advisor/internal/llm"
	"github.com/Rrens/routine-advisor/internal/llm/openai"
)

const baseURL = "https://api.deepseek.com/v1"

// NewProvider creates a DeepSeek provider. DeepSeek speaks the OpenAI chat
// completions protocol, so the OpenAI client is reused under another name.
func NewProvider(cfg config.ProviderConfig, timeout time.Duration) llm.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewCompatible("deepseek", cfg, []string{
		"deepseek-chat",
		"deepseek-reasoner",
	}, timeout)
}
