// Package catalog loads the product document and answers filter queries over it.
package catalog

import (
	"strings"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/elliotchance/pie/v2"
)

// Catalog is an immutable, ordered snapshot of the product document
type Catalog struct {
	products []domain.Product
	index    map[domain.ProductID]int
}

// New indexes products by id, keeping their document order
func New(products []domain.Product) *Catalog {
	index := make(map[domain.ProductID]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	return &Catalog{products: products, index: index}
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}

// Products returns a copy of every product in document order
func (c *Catalog) Products() []domain.Product {
	return append([]domain.Product(nil), c.products...)
}

// Get looks up a product by id
func (c *Catalog) Get(id domain.ProductID) (domain.Product, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Has reports whether id belongs to the catalog
func (c *Catalog) Has(id domain.ProductID) bool {
	_, ok := c.index[id]
	return ok
}

// Pick returns the products whose ids are in ids, in document order.
// Unknown ids are ignored.
func (c *Catalog) Pick(ids []domain.ProductID) []domain.Product {
	wanted := make(map[domain.ProductID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	return pie.Filter(c.products, func(p domain.Product) bool {
		return wanted[p.ID]
	})
}

// Filter narrows the product list to what the user is looking for
type Filter struct {
	Query    string
	Category string
}

// Matches applies the filter to one product. The query is a trimmed,
// case-insensitive substring of name, brand or description; the category
// must match exactly, ignoring case. Empty criteria match everything.
func (f Filter) Matches(p domain.Product) bool {
	if cat := strings.ToLower(f.Category); cat != "" && strings.ToLower(p.Category) != cat {
		return false
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Brand), q) ||
		strings.Contains(strings.ToLower(p.Description), q)
}

// Filter returns the matching products in document order
func (c *Catalog) Filter(f Filter) []domain.Product {
	return pie.Filter(c.products, f.Matches)
}

// Categories lists the distinct non-empty categories, sorted
func (c *Catalog) Categories() []string {
	categories := pie.Map(c.products, func(p domain.Product) string {
		return p.Category
	})
	categories = pie.Filter(categories, func(s string) bool {
		return s != ""
	})
	return pie.Sort(pie.Unique(categories))
}
