package llm

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Rrens/routine-advisor/internal/domain"
)

// SystemInstruction returns the fixed persona and citation policy for the given brand
func SystemInstruction(brand string) string {
	return fmt.Sprintf(`You are a friendly, concise product routine assistant for %s products.
When possible, include verifiable sources or links in a 'SOURCES:' list at the end of your reply.
If you reference product pages, use the product name and brand, and, when no direct URL is available,
list the brand homepage. Keep answers factual and avoid hallucination. Provide step-by-step routine instructions
and short warnings if ingredients may interact.`, brand)
}

// ProductDataMessage summarizes the selected products as a system message.
// It reports false when there is nothing to summarize.
func ProductDataMessage(products []domain.ProductSummary) (domain.ChatMessage, bool) {
	if len(products) == 0 {
		return domain.ChatMessage{}, false
	}

	lines := make([]string, 0, len(products))
	for _, p := range products {
		lines = append(lines, p.Line())
	}

	return domain.ChatMessage{
		Role:    string(domain.RoleSystem),
		Content: "Product data:\n" + strings.Join(lines, "\n"),
	}, true
}

// BuildMessages assembles the outbound conversation: system instruction,
// the client messages verbatim, then the product summary if any.
func BuildMessages(brand string, messages []domain.ChatMessage, products []domain.ProductSummary) []domain.ChatMessage {
	out := make([]domain.ChatMessage, 0, len(messages)+2)
	out = append(out, domain.ChatMessage{
		Role:    string(domain.RoleSystem),
		Content: SystemInstruction(brand),
	})

	for _, m := range messages {
		out = append(out, domain.ChatMessage{Role: m.Role, Content: m.Content})
	}

	if summary, ok := ProductDataMessage(products); ok {
		out = append(out, summary)
	}

	return out
}

var (
	sourcesMarker = regexp.MustCompile(`(?i)sources:`)
	urlPattern    = regexp.MustCompile(`https?://[^\s)\]>"']+`)
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
)

// ExtractCitations collects the links listed after the last "SOURCES:" marker
// of a reply. Each line carrying a URL becomes one citation; the text before
// the URL, if any, is its title.
func ExtractCitations(reply string) []domain.Citation {
	locs := sourcesMarker.FindAllStringIndex(reply, -1)
	if len(locs) == 0 {
		return nil
	}
	tail := reply[locs[len(locs)-1][1]:]

	var citations []domain.Citation
	seen := make(map[string]bool)
	for _, line := range strings.Split(tail, "\n") {
		url := urlPattern.FindString(line)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true

		title := line[:strings.Index(line, url)]
		title = bulletPrefix.ReplaceAllString(title, "")
		title = strings.TrimSpace(strings.Trim(strings.TrimSpace(title), ":-–([]<"))
		if title == "" {
			title = url
		}
		citations = append(citations, domain.Citation{Title: title, URL: url})
	}
	return citations
}
