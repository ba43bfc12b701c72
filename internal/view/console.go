// Package view renders client state to a terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Section selects which render calls produce output
type Section uint8

const (
	SectionProducts Section = 1 << iota
	SectionSelection
	SectionChat
	SectionStatus

	SectionNone Section = 0
	SectionAll          = SectionProducts | SectionSelection | SectionChat | SectionStatus
)

type styles struct {
	title     lipgloss.Style
	faint     lipgloss.Style
	selected  lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	notice    lipgloss.Style
	link      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:     r.NewStyle().Bold(true),
		faint:     r.NewStyle().Faint(true),
		selected:  r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		user:      r.NewStyle().Bold(true),
		assistant: r.NewStyle().Foreground(lipgloss.Color("11")),
		notice:    r.NewStyle().Foreground(lipgloss.Color("9")),
		link:      r.NewStyle().Foreground(lipgloss.Color("13")).Underline(true),
	}
}

// Console writes state to a terminal. Chat output is incremental: only
// messages not yet shown are printed.
type Console struct {
	mu       sync.Mutex
	out      io.Writer
	style    styles
	sections Section
	shown    int
}

// NewConsole creates a console renderer writing to out
func NewConsole(out io.Writer, sections Section) *Console {
	return &Console{
		out:      out,
		style:    newStyles(lipgloss.NewRenderer(out)),
		sections: sections,
	}
}

// SetSections changes which render calls produce output
func (c *Console) SetSections(sections Section) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sections = sections
}

func (c *Console) enabled(s Section) bool {
	return c.sections&s != 0
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// RenderProducts lists the visible products with their selected marks
func (c *Console) RenderProducts(products []domain.Product, selected map[domain.ProductID]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled(SectionProducts) {
		return
	}

	if len(products) == 0 {
		c.printf("%s\n", c.style.faint.Render("No products found."))
		return
	}

	for _, p := range products {
		mark := "[ ]"
		if selected[p.ID] {
			mark = c.style.selected.Render("[x]")
		}
		line := fmt.Sprintf("%s %-6s %s %s", mark, p.ID, c.style.title.Render(p.Name), c.style.faint.Render(p.Brand))
		if p.Category != "" {
			line += c.style.faint.Render(" · " + p.Category)
		}
		c.printf("%s\n", line)
	}
}

// RenderDetail prints one product with its description expanded
func (c *Console) RenderDetail(p domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.printf("%s\n", c.style.title.Render(p.Name))
	c.printf("%s\n", c.style.faint.Render(fmt.Sprintf("%s · %s · id %s", p.Brand, p.Category, p.ID)))
	if p.Description != "" {
		c.printf("\n%s\n", p.Description)
	}
	if p.Image != "" {
		c.printf("\n%s\n", c.style.link.Render(p.Image))
	}
}

// RenderCategories prints the category picker options
func (c *Console) RenderCategories(categories []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(categories) == 0 {
		c.printf("%s\n", c.style.faint.Render("No categories."))
		return
	}
	for _, cat := range categories {
		c.printf("%s\n", cat)
	}
}

// RenderSelection lists the selected products
func (c *Console) RenderSelection(selected []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled(SectionSelection) {
		return
	}

	if len(selected) == 0 {
		c.printf("%s\n", c.style.faint.Render("No products selected"))
		return
	}

	chips := make([]string, 0, len(selected))
	for _, p := range selected {
		chips = append(chips, fmt.Sprintf("%s %s", p.Name, c.style.faint.Render("("+p.ID.String()+")")))
	}
	c.printf("%s %s\n", c.style.title.Render("Selected:"), strings.Join(chips, ", "))
}

// MarkProduct reports one product entering or leaving the selection
func (c *Console) MarkProduct(id domain.ProductID, selected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled(SectionStatus) {
		return
	}

	if selected {
		c.printf("%s %s\n", c.style.selected.Render("+"), id)
	} else {
		c.printf("%s %s\n", c.style.faint.Render("-"), id)
	}
}

// RenderChat prints messages not shown yet
func (c *Console) RenderChat(messages []domain.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A shorter conversation means it was replaced; show it from the start
	start := c.shown
	if len(messages) < start {
		start = 0
	}
	c.shown = len(messages)

	if !c.enabled(SectionChat) {
		return
	}

	for _, m := range messages[start:] {
		if m.Role == domain.RoleAssistant {
			c.printf("%s %s\n", c.style.assistant.Render("Assistant:"), m.Content)
		} else {
			c.printf("%s %s\n", c.style.user.Render("You:"), m.Content)
		}
		for _, cite := range m.Citations {
			c.printf("  %s %s\n", c.style.faint.Render(cite.Title), c.style.link.Render(cite.URL))
		}
	}
}

// ShowNotice prints a transient notice
func (c *Console) ShowNotice(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled(SectionStatus) {
		return
	}

	c.printf("%s\n", c.style.notice.Render(text))
}

// ShowTyping prints the typing indicator when on
func (c *Console) ShowTyping(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !on || !c.enabled(SectionStatus) {
		return
	}

	c.printf("%s\n", c.style.faint.Render("Assistant is typing…"))
}
