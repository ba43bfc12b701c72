package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductID identifies a product. Catalog documents may carry ids as JSON
// numbers or strings; both are kept in their textual form.
type ProductID string

// UnmarshalJSON accepts either a JSON string or a JSON number
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())
	return nil
}

// MarshalJSON writes canonical integer ids as JSON numbers and everything
// else, including "007" and "+1", as strings
func (id ProductID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ProductID) String() string {
	return string(id)
}

// Product represents a catalog entry
type Product struct {
	ID          ProductID `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Brand       string    `json:"brand"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
}

// Summary renders the product as "name (brand): description"
func (p Product) Summary() string {
	return fmt.Sprintf("%s (%s): %s", p.Name, p.Brand, p.Description)
}

// ToSummary returns the subset of fields the relay forwards upstream
func (p Product) ToSummary() ProductSummary {
	return ProductSummary{
		Name:        p.Name,
		Brand:       p.Brand,
		Description: p.Description,
	}
}

// ProductSummary is the relay's view of a selected product
type ProductSummary struct {
	Name        string `json:"name"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
}

// Line renders the summary as a bulleted "- name (brand): description" entry
func (p ProductSummary) Line() string {
	return fmt.Sprintf("- %s (%s): %s", p.Name, p.Brand, p.Description)
}
