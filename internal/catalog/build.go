package catalog

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/raine/kawthar-catalog/internal/classify"
	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/raine/kawthar-catalog/internal/normalize"
	"github.com/raine/kawthar-catalog/internal/warehouse"
)

const (
	defaultCategoryName = "بدون تصنيف"
	defaultBrandName    = "Unknown"
	defaultCurrency     = "SAR"

	// Stock reported for in-stock rows without a sold quantity signal.
	nominalStock      = 999
	bestsellerMinimum = 50
)

var defaultWeightOption = WeightOption{LabelAR: "افتراضي", LabelEN: "Default", Grams: 0, PriceDelta: 0}

// Build turns warehouse rows into a catalog. Categories and brands are
// harvested from every row in first-seen order before products are
// assembled, so every product references an existing category and brand.
// Rows without a product id are dropped. Repeated product ids are kept and
// reported in the diagnostics.
func Build(rows []warehouse.Row, table classify.Table) *Catalog {
	c := &Catalog{
		LoadID:     uuid.NewString(),
		LoadedAt:   time.Now(),
		Categories: []Category{},
		Brands:     []Brand{},
		Products:   make([]Product, 0, len(rows)),
		Sections:   append([]Section(nil), Sections...),
	}
	c.Diagnostics.SourceRows = len(rows)

	seenCategories := make(map[string]bool)
	seenBrands := make(map[string]bool)
	for _, row := range rows {
		category := categoryFor(row, table)
		if !seenCategories[category.ID] {
			seenCategories[category.ID] = true
			c.Categories = append(c.Categories, category)
		}
		brand := brandFor(row)
		if !seenBrands[brand.ID] {
			seenBrands[brand.ID] = true
			c.Brands = append(c.Brands, brand)
		}
	}

	seenIDs := make(map[string]int)
	for _, row := range rows {
		id := normalize.String(row.ProductID, "")
		if id == "" {
			c.Diagnostics.DroppedRows++
			continue
		}
		seenIDs[id]++
		switch seenIDs[id] {
		case 1:
		case 2:
			c.Diagnostics.Duplicated = append(c.Diagnostics.Duplicated, id)
			c.Diagnostics.DuplicateIDs++
		default:
			c.Diagnostics.DuplicateIDs++
		}
		c.Products = append(c.Products, productFor(id, row, table))
	}
	return c
}

func categoryFor(row warehouse.Row, table classify.Table) Category {
	name := normalize.String(row.CategoryName, defaultCategoryName)
	slug := normalize.Slug(name)
	if slug == "" {
		slug = "uncategorized"
	}
	token := table.Classify(name)
	return Category{
		ID:         "cat-" + slug,
		Slug:       slug,
		NameAR:     name,
		NameEN:     name,
		ColorToken: token,
		Icon:       classify.Icon(token),
	}
}

func brandFor(row warehouse.Row) Brand {
	name := normalize.String(row.BrandName, defaultBrandName)
	slug := normalize.Slug(name)
	if slug == "" {
		slug = "unknown"
	}
	return Brand{
		ID:     "brand-" + slug,
		Slug:   slug,
		NameAR: name,
		NameEN: name,
	}
}

func productFor(id string, row warehouse.Row, table classify.Table) Product {
	title := normalize.String(row.Name, "Product "+id)
	description := normalize.String(row.Description, "")
	category := categoryFor(row, table)
	tags := normalize.Tags(row.Tags)

	price := normalize.FirstNumber(0, row.SalePrice, row.Price, row.RegularPrice)
	var compareAt *float64
	if regular := normalize.FirstNumber(price, row.RegularPrice); regular > price {
		compareAt = &regular
	}

	slug := normalize.String(row.CustomURL, "")
	if slug == "" {
		slug = normalize.Slug(title)
	}
	if slug == "" {
		slug = id
	}

	return Product{
		ID:             id,
		Slug:           slug,
		NameAR:         title,
		NameEN:         title,
		DescAR:         description,
		DescEN:         description,
		CategoryID:     category.ID,
		BrandID:        brandFor(row).ID,
		Price:          price,
		CompareAtPrice: compareAt,
		Currency:       normalize.String(row.Currency, defaultCurrency),
		Images:         []string{images.ResolveWarehouse(row.ImageRefs())},
		SKU:            normalize.String(row.SKU, "SKU-"+id),
		WeightOptions:  []WeightOption{defaultWeightOption},
		StockQty:       stockQty(row),
		IsFrozen:       category.ColorToken == classify.Frozen || classify.FrozenTags.MatchAny(tags),
		Badges:         badgesFor(row),
		Tags:           tags,
	}
}

// stockQty is zero for unavailable or out-of-stock rows. In-stock rows use
// the sold quantity (at least one, capped at MaxInt32) or a nominal quantity
// when there is none.
func stockQty(row warehouse.Row) int {
	inStock := normalize.Bool(row.IsAvailable, true) && !normalize.Bool(row.IsOutOfStock, false)
	if !inStock {
		return 0
	}
	sold := normalize.Number(row.SoldQuantity, 0)
	if sold <= 0 {
		return nominalStock
	}
	if sold >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Max(1, sold))
}

func badgesFor(row warehouse.Row) []Badge {
	badges := []Badge{}
	if normalize.Bool(row.IsOnSale, false) {
		badges = append(badges, BadgeOffer)
	}
	if normalize.Number(row.SoldQuantity, 0) >= bestsellerMinimum {
		badges = append(badges, BadgeBestseller)
	}
	if classify.NewTags.Match(normalize.String(row.Tags, "")) {
		badges = append(badges, BadgeNew)
	}
	return badges
}
