package llm_test

import (
	"strings"
	"testing"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/Rrens/routine-advisor/internal/llm"
)

func TestSystemInstruction(t *testing.T) {
	prompt := llm.SystemInstruction("L'Oréal")

	mustContain := []string{
		"L'Oréal",
		"SOURCES:",
		"step-by-step",
		"avoid hallucination",
		"ingredients may interact",
	}

	for _, s := range mustContain {
		if !strings.Contains(prompt, s) {
			t.Errorf("system instruction should contain %q", s)
		}
	}
}

func TestBuildMessages_WithoutProducts(t *testing.T) {
	messages := []domain.ChatMessage{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "narrator", Content: "passed through"},
	}

	out := llm.BuildMessages("L'Oréal", messages, nil)

	if len(out) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(out))
	}
	if out[0].Role != "system" || out[0].Content != llm.SystemInstruction("L'Oréal") {
		t.Errorf("first message should be the system instruction, got %+v", out[0])
	}
	for i, m := range messages {
		if out[i+1] != m {
			t.Errorf("message %d = %+v, want %+v", i+1, out[i+1], m)
		}
	}
}

func TestBuildMessages_WithProducts(t *testing.T) {
	products := []domain.ProductSummary{
		{Name: "CeraVe Foaming Cleanser", Brand: "CeraVe", Description: "Gel cleanser"},
		{Name: "Revitalift Serum", Brand: "L'Oréal Paris", Description: "Hyaluronic acid"},
	}

	out := llm.BuildMessages("L'Oréal", []domain.ChatMessage{{Role: "user", Content: "routine?"}}, products)

	if len(out) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(out))
	}

	last := out[2]
	if last.Role != "system" {
		t.Errorf("product summary role = %q, want system", last.Role)
	}

	expected := "Product data:\n- CeraVe Foaming Cleanser (CeraVe): Gel cleanser\n- Revitalift Serum (L'Oréal Paris): Hyaluronic acid"
	if last.Content != expected {
		t.Errorf("product summary = %q, want %q", last.Content, expected)
	}
}

func TestProductDataMessage_Empty(t *testing.T) {
	if _, ok := llm.ProductDataMessage(nil); ok {
		t.Error("expected no product message for an empty list")
	}
}

func TestExtractCitations(t *testing.T) {
	reply := `AM: cleanser, then SPF.

SOURCES:
- L'Oréal Paris: https://www.loreal-paris.com
2. [CeraVe](https://www.cerave.com/skincare)
- https://www.loreal-paris.com
not a link`

	got := llm.ExtractCitations(reply)

	want := []domain.Citation{
		{Title: "L'Oréal Paris", URL: "https://www.loreal-paris.com"},
		{Title: "CeraVe", URL: "https://www.cerave.com/skincare"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d citations, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("citation %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractCitations_NoMarker(t *testing.T) {
	if got := llm.ExtractCitations("see https://example.com"); got != nil {
		t.Errorf("expected no citations without a SOURCES marker, got %+v", got)
	}
}

func TestExtractCitations_BareURL(t *testing.T) {
	got := llm.ExtractCitations("Sources: https://example.com/a")
	if len(got) != 1 || got[0].Title != "https://example.com/a" {
		t.Errorf("unexpected citations: %+v", got)
	}
}
