package llm

import (
	"context"
	"errors"
	"testing"
)

type fakeProvider struct{ name string }

func (f fakeProvider) GenerateContent(context.Context, Prompt, string) (*GenerationResponse, error) {
	return &GenerationResponse{Content: "ok"}, nil
}

func (f fakeProvider) GetProviderName() string { return f.name }

func TestRegistry(t *testing.T) {
	RegisterProvider("fake-registry", func() (Provider, error) { return fakeProvider{name: "fake-registry"}, nil })

	p, err := NewProvider("fake-registry")
	if err != nil {
		t.Fatalf("NewProvider returned error: %v", err)
	}
	if p.GetProviderName() != "fake-registry" {
		t.Fatalf("unexpected provider %s", p.GetProviderName())
	}

	found := false
	for _, name := range Registered() {
		if name == "fake-registry" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected fake-registry to be listed")
	}

	if _, err := NewProvider("does-not-exist"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestProviderError(t *testing.T) {
	cause := errors.New("429")
	err := &ProviderError{Provider: "cerebras", Code: ErrCodeRateLimit, Message: "Rate limited", Err: cause}

	if err.Error() != "cerebras error: Rate limited (429)" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected ProviderError to unwrap to cause")
	}
	if CodeOf(err) != ErrCodeRateLimit {
		t.Fatalf("expected rate limit code, got %q", CodeOf(err))
	}
	if CodeOf(cause) != "" {
		t.Fatal("plain errors carry no code")
	}
}
