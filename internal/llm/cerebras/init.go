package cerebras

import "intervuai/backend/internal/llm"

// Register Cerebras provider on package import
func init() {
	llm.RegisterProvider("cerebras", func() (llm.Provider, error) {
		config, err := NewConfig()
		if err != nil {
			return nil, err
		}
		return NewClient(config, nil), nil
	})
}
