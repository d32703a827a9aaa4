package llm

import "testing"

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false, false},
		{"zhipu", Config{Provider: "zhipu", APIKey: "k"}, "zhipu", false, false},
		{"glm alias", Config{Provider: "glm", APIKey: "k"}, "zhipu", false, false},
		{"ollama", Config{Provider: "ollama", Model: "qwen2.5"}, "ollama", false, false},
		{"case insensitive", Config{Provider: "OpenAI", APIKey: "k"}, "openai", false, false},
		{"disabled", Config{Provider: ""}, "", true, false},
		{"unknown", Config{Provider: "watson"}, "", false, true},
		{"openai without key", Config{Provider: "openai"}, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if tt.wantNil {
				if provider != nil {
					t.Fatalf("Expected nil provider, got %v", provider)
				}
				return
			}
			if provider.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", provider.Name(), tt.wantName)
			}
		})
	}
}
