// Package translate fills in English display names for catalog entries whose
// source names are Arabic only.
package translate

import (
	"context"
	"fmt"
	"unicode"

	"github.com/raine/kawthar-catalog/internal/catalog"
	"github.com/rs/zerolog/log"
)

const defaultBatchSize = 50

// Translator translates Arabic texts to English. The result maps each input
// text to its translation; texts it could not translate are left out.
type Translator interface {
	Translate(ctx context.Context, texts []string) (map[string]string, error)
}

// Enricher sets the English names of categories, brands and products whose
// English name is still a copy of the Arabic one.
type Enricher struct {
	translator Translator
	batchSize  int
}

func NewEnricher(translator Translator) *Enricher {
	return &Enricher{translator: translator, batchSize: defaultBatchSize}
}

// Enrich translates in batches. When a batch fails the names translated so
// far are kept and the error is returned.
func (e *Enricher) Enrich(ctx context.Context, c *catalog.Catalog) error {
	pending := pendingNames(c)
	if len(pending) == 0 {
		return nil
	}

	translations := make(map[string]string, len(pending))
	var batchErr error
	for start := 0; start < len(pending); start += e.batchSize {
		end := min(start+e.batchSize, len(pending))
		batch, err := e.translator.Translate(ctx, pending[start:end])
		if err != nil {
			batchErr = fmt.Errorf("failed to translate names: %w", err)
			break
		}
		for src, dst := range batch {
			if dst != "" {
				translations[src] = dst
			}
		}
	}

	applied := apply(c, translations)
	log.Info().
		Int("pending", len(pending)).
		Int("translated", len(translations)).
		Int("applied", applied).
		Msg("catalog names enriched")
	return batchErr
}

// pendingNames lists distinct Arabic names that have no separate English name,
// in catalog order.
func pendingNames(c *catalog.Catalog) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(ar, en string) {
		if ar == en && hasArabic(ar) && !seen[ar] {
			seen[ar] = true
			names = append(names, ar)
		}
	}
	for _, category := range c.Categories {
		add(category.NameAR, category.NameEN)
	}
	for _, brand := range c.Brands {
		add(brand.NameAR, brand.NameEN)
	}
	for _, product := range c.Products {
		add(product.NameAR, product.NameEN)
	}
	return names
}

func apply(c *catalog.Catalog, translations map[string]string) int {
	applied := 0
	set := func(ar string, en *string) {
		if *en != ar {
			return
		}
		if t, ok := translations[ar]; ok {
			*en = t
			applied++
		}
	}
	for i := range c.Categories {
		set(c.Categories[i].NameAR, &c.Categories[i].NameEN)
	}
	for i := range c.Brands {
		set(c.Brands[i].NameAR, &c.Brands[i].NameEN)
	}
	for i := range c.Products {
		set(c.Products[i].NameAR, &c.Products[i].NameEN)
	}
	return applied
}

func hasArabic(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Arabic, r) {
			return true
		}
	}
	return false
}
