package gemini

import "intervuai/backend/internal/llm"

const providerName = "gemini"

// selected with AI_PROVIDER=gemini
func init() {
	llm.RegisterProvider(providerName, func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config)
	})
}
