package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Rrens/routine-advisor/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// document is the on-disk shape of the product list
type document struct {
	Products []json.RawMessage `json:"products"`
}

// Load reads the product document from a file path or an http(s) URL
func Load(ctx context.Context, client *http.Client, source string) (*Catalog, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetch(ctx, client, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", source, err)
	}

	return Parse(data)
}

func fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// Parse decodes a product document. A missing "products" field yields an
// empty catalog. Entries without an id or a name, entries that fail to
// decode and repeated ids are dropped with a warning.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	products := make([]domain.Product, 0, len(doc.Products))
	seen := make(map[domain.ProductID]bool, len(doc.Products))
	for i, raw := range doc.Products {
		var p domain.Product
		if err := json.Unmarshal(raw, &p); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping undecodable product")
			continue
		}
		if err := validate.Struct(p); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping invalid product")
			continue
		}
		if seen[p.ID] {
			log.Warn().Str("id", p.ID.String()).Msg("skipping duplicate product id")
			continue
		}
		seen[p.ID] = true
		products = append(products, p)
	}

	return New(products), nil
}
