package gemini

import (
	"context"
	"testing"
)

func TestNewGeneratorRequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestGeneratorNotInitialized(t *testing.T) {
	var g *Generator
	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for nil generator")
	}

	g = &Generator{}
	if _, err := g.GenerateContent(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for generator without client")
	}
	if _, err := g.EnsureProfileCache(context.Background(), "", "", "payload"); err == nil {
		t.Fatal("expected error for missing client")
	}
}

func TestGeneratorModel(t *testing.T) {
	var g *Generator
	if got := g.Model(); got != "" {
		t.Fatalf("expected empty model for nil generator, got %q", got)
	}

	g = &Generator{modelName: "gemini-2.5-flash"}
	if got := g.Model(); got != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %q", got)
	}
}
