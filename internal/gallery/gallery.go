// Package gallery loads the CSV product exports shown in the product gallery.
package gallery

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/raine/kawthar-catalog/internal/csvparse"
	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/raine/kawthar-catalog/internal/source"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Source string

const (
	Shopify     Source = "shopify"
	WooCommerce Source = "woocommerce"
)

type Collection string

const (
	Egypt Collection = "egypt"
	Local Collection = "local"
)

var (
	AllSources     = []Source{Shopify, WooCommerce}
	AllCollections = []Collection{Egypt, Local}
)

var sourceLocations = []struct {
	source   Source
	location string
}{
	{Shopify, "assets/products/products_shopify.csv"},
	{WooCommerce, "assets/products/products_woocommerce.csv"},
}

// ParseSource returns the source named s.
func ParseSource(s string) (Source, bool) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	return src, slices.Contains(AllSources, src)
}

// ParseCollection returns the collection named s.
func ParseCollection(s string) (Collection, bool) {
	c := Collection(strings.ToLower(strings.TrimSpace(s)))
	return c, slices.Contains(AllCollections, c)
}

type Product struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Brand      string     `json:"brand"`
	Category   string     `json:"category"`
	Image      string     `json:"image"`
	Source     Source     `json:"source"`
	Collection Collection `json:"collection"`
}

// Options selects which exports and collections to load. Empty slices mean
// all of them.
type Options struct {
	Collections []Collection
	Sources     []Source
}

// Loader reads the CSV exports on every call; the image index and probe
// results are shared across calls.
type Loader struct {
	fetcher source.Fetcher
	index   *images.IndexStore
	prober  *images.Prober
	warner  *images.Warner
}

// NewLoader returns a gallery loader. prober may be nil to skip image
// existence checks.
func NewLoader(fetcher source.Fetcher, index *images.IndexStore, prober *images.Prober, warner *images.Warner) *Loader {
	if warner == nil {
		warner = images.NewWarner()
	}
	return &Loader{fetcher: fetcher, index: index, prober: prober, warner: warner}
}

// Load fetches the selected exports concurrently and normalises every record
// for every selected collection. A failed fetch fails the whole load.
func (l *Loader) Load(ctx context.Context, opts Options) ([]Product, error) {
	collections := opts.Collections
	if len(collections) == 0 {
		collections = AllCollections
	}
	sources := opts.Sources
	if len(sources) == 0 {
		sources = AllSources
	}

	resolver := images.NewIndexResolver(l.index.Load(ctx), l.warner)

	type payload struct {
		source   Source
		location string
		text     string
	}
	var wanted []payload
	for _, cfg := range sourceLocations {
		if slices.Contains(sources, cfg.source) {
			wanted = append(wanted, payload{source: cfg.source, location: cfg.location})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range wanted {
		g.Go(func() error {
			data, err := l.fetcher.Fetch(gctx, wanted[i].location)
			if err != nil {
				return fmt.Errorf("unable to load CSV from %s: %w", wanted[i].location, err)
			}
			wanted[i].text = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var products []Product
	for _, p := range wanted {
		records := csvparse.Records(p.text)
		for _, collection := range collections {
			for i, record := range records {
				var (
					product Product
					ok      bool
				)
				switch p.source {
				case Shopify:
					product, ok = normalizeShopify(record, i, collection, resolver)
				case WooCommerce:
					product, ok = normalizeWooCommerce(record, i, collection, resolver), true
				}
				if ok {
					products = append(products, product)
				}
			}
		}
	}

	if l.prober != nil && len(products) > 0 {
		urls := make([]string, len(products))
		for i, p := range products {
			urls[i] = p.Image
		}
		for i, url := range l.prober.Resolve(ctx, urls) {
			products[i].Image = url
		}
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// IndexStatus reports the outcome of loading the image index.
func (l *Loader) IndexStatus() images.IndexStatus {
	return l.index.Status()
}

func normalizeShopify(record map[string]string, index int, collection Collection, resolver *images.IndexResolver) (Product, bool) {
	if status := strings.TrimSpace(record["Status"]); status != "" && !strings.EqualFold(status, "active") {
		return Product{}, false
	}

	handle := strings.TrimSpace(record["Handle"])
	title := strings.TrimSpace(record["Title"])
	filename := images.ExtractFilename(strings.TrimSpace(record["Image Src"]))

	idBase := firstNonEmpty(handle, title, fmt.Sprintf("shopify-%d", index))
	return Product{
		ID:         fmt.Sprintf("shopify-%s-%s-%d", collection, idBase, index),
		Title:      firstNonEmpty(title, handle),
		Brand:      strings.TrimSpace(record["Vendor"]),
		Category:   strings.TrimSpace(record["Product Category"]),
		Image:      resolver.Resolve(string(collection), filename),
		Source:     Shopify,
		Collection: collection,
	}, true
}

func normalizeWooCommerce(record map[string]string, index int, collection Collection, resolver *images.IndexResolver) Product {
	title := strings.TrimSpace(record["Name"])
	filename := images.ExtractFilename(strings.TrimSpace(record["Images"]))

	idBase := firstNonEmpty(title, fmt.Sprintf("woocommerce-%d", index))
	return Product{
		ID:         fmt.Sprintf("woocommerce-%s-%s-%d", collection, idBase, index),
		Title:      title,
		Brand:      strings.TrimSpace(record["Brand"]),
		Category:   strings.TrimSpace(record["Categories"]),
		Image:      resolver.Resolve(string(collection), filename),
		Source:     WooCommerce,
		Collection: collection,
	}
}

// ListCategories returns the distinct non-empty categories in locale order.
func ListCategories(products []Product) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			categories = append(categories, p.Category)
		}
	}
	collate.New(language.Und).SortStrings(categories)
	return categories
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
