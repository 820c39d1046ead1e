package catalog

import "strings"

func (c *Catalog) CategoryByID(id string) (Category, bool) {
	for _, category := range c.Categories {
		if category.ID == id {
			return category, true
		}
	}
	return Category{}, false
}

func (c *Catalog) BrandByID(id string) (Brand, bool) {
	for _, brand := range c.Brands {
		if brand.ID == id {
			return brand, true
		}
	}
	return Brand{}, false
}

// ProductByID returns the first product with id. Later rows sharing the id
// are only reachable through list queries.
func (c *Catalog) ProductByID(id string) (Product, bool) {
	for _, product := range c.Products {
		if product.ID == id {
			return product, true
		}
	}
	return Product{}, false
}

func (c *Catalog) SectionByID(id string) (Section, bool) {
	for _, section := range c.Sections {
		if section.ID == id {
			return section, true
		}
	}
	return Section{}, false
}

func (c *Catalog) ProductsByCategory(categoryID string) []Product {
	return c.filter(func(p Product) bool { return p.CategoryID == categoryID })
}

func (c *Catalog) ProductsByBrand(brandID string) []Product {
	return c.filter(func(p Product) bool { return p.BrandID == brandID })
}

// ProductsInSection returns the products carrying the section's badge, or
// nil for an unknown section.
func (c *Catalog) ProductsInSection(sectionID string) []Product {
	section, ok := c.SectionByID(sectionID)
	if !ok {
		return nil
	}
	return c.filter(func(p Product) bool { return p.HasBadge(section.Badge) })
}

// Search matches query case-insensitively against product names, SKUs and
// tags. An empty query matches every product.
func (c *Catalog) Search(query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.filter(func(Product) bool { return true })
	}
	return c.filter(func(p Product) bool {
		if strings.Contains(strings.ToLower(p.NameAR), q) ||
			strings.Contains(strings.ToLower(p.NameEN), q) ||
			strings.Contains(strings.ToLower(p.SKU), q) {
			return true
		}
		for _, tag := range p.Tags {
			if strings.Contains(strings.ToLower(tag), q) {
				return true
			}
		}
		return false
	})
}

// Filter narrows products by every non-empty criterion.
type Filter struct {
	Query      string
	CategoryID string
	BrandID    string
	SectionID  string
}

// Find applies f and returns the matching products in catalog order.
func (c *Catalog) Find(f Filter) []Product {
	products := c.Search(f.Query)
	var badge Badge
	if f.SectionID != "" {
		section, ok := c.SectionByID(f.SectionID)
		if !ok {
			return []Product{}
		}
		badge = section.Badge
	}

	matched := products[:0]
	for _, p := range products {
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.BrandID != "" && p.BrandID != f.BrandID {
			continue
		}
		if badge != "" && !p.HasBadge(badge) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func (c *Catalog) filter(keep func(Product) bool) []Product {
	out := []Product{}
	for _, p := range c.Products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
