package ai

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestNewRejectsUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "openai"}, zap.NewNop()); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewRequiresGeminiKey(t *testing.T) {
	t.Setenv(geminiAPIKeyEnv, "")

	if _, err := New(context.Background(), Config{}, zap.NewNop()); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestNewGeminiFromEnv(t *testing.T) {
	t.Setenv(geminiAPIKeyEnv, "test-key")

	interviewer, err := New(context.Background(), Config{Provider: " Gemini "}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if interviewer == nil {
		t.Fatal("expected interviewer")
	}
}
