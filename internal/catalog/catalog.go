// Package catalog assembles the in-memory storefront catalog from warehouse
// rows and answers read-only queries against it.
package catalog

import (
	"time"

	"github.com/raine/kawthar-catalog/internal/classify"
)

type Category struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug"`
	NameAR     string         `json:"name_ar"`
	NameEN     string         `json:"name_en"`
	ColorToken classify.Token `json:"colorToken"`
	Icon       string         `json:"icon"`
}

type Brand struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	NameAR        string `json:"name_ar"`
	NameEN        string `json:"name_en"`
	DescriptionAR string `json:"description_ar"`
	DescriptionEN string `json:"description_en"`
}

type WeightOption struct {
	LabelAR    string  `json:"label_ar"`
	LabelEN    string  `json:"label_en"`
	Grams      int     `json:"grams"`
	PriceDelta float64 `json:"priceDelta"`
}

type Badge string

const (
	BadgeOffer      Badge = "offer"
	BadgeBestseller Badge = "bestseller"
	BadgeNew        Badge = "new"
)

type Product struct {
	ID             string         `json:"id"`
	Slug           string         `json:"slug"`
	NameAR         string         `json:"name_ar"`
	NameEN         string         `json:"name_en"`
	DescAR         string         `json:"desc_ar"`
	DescEN         string         `json:"desc_en"`
	CategoryID     string         `json:"categoryId"`
	BrandID        string         `json:"brandId"`
	Price          float64        `json:"price"`
	CompareAtPrice *float64       `json:"compareAtPrice,omitempty"`
	Currency       string         `json:"currency"`
	Images         []string       `json:"images"`
	SKU            string         `json:"sku"`
	WeightOptions  []WeightOption `json:"weightOptions"`
	StockQty       int            `json:"stockQty"`
	IsFrozen       bool           `json:"isFrozen"`
	Badges         []Badge        `json:"badges"`
	Tags           []string       `json:"tags"`
}

// HasBadge reports whether p carries badge.
func (p Product) HasBadge(badge Badge) bool {
	for _, b := range p.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// Section is a fixed storefront shelf populated by a badge.
type Section struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	NameAR string `json:"name_ar"`
	NameEN string `json:"name_en"`
	Badge  Badge  `json:"badge"`
}

// Sections are the storefront shelves in display order.
var Sections = []Section{
	{ID: "best-sellers", Slug: "best-sellers", NameAR: "الأكثر مبيعاً", NameEN: "Best sellers", Badge: BadgeBestseller},
	{ID: "offers", Slug: "offers", NameAR: "العروض", NameEN: "Offers", Badge: BadgeOffer},
	{ID: "new", Slug: "new", NameAR: "الجديد", NameEN: "New", Badge: BadgeNew},
}

// Diagnostics counts what the build skipped or tolerated.
type Diagnostics struct {
	SourceRows   int      `json:"sourceRows"`
	BadLines     int      `json:"badLines"`
	DroppedRows  int      `json:"droppedRows"`
	DuplicateIDs int      `json:"duplicateIds"`
	Duplicated   []string `json:"duplicatedIdList"`
}

// Catalog is an immutable snapshot of one load.
type Catalog struct {
	LoadID            string      `json:"loadId"`
	LoadedAt          time.Time   `json:"loadedAt"`
	SourceFingerprint string      `json:"sourceFingerprint,omitempty"`
	Categories        []Category  `json:"categories"`
	Brands            []Brand     `json:"brands"`
	Products          []Product   `json:"products"`
	Sections          []Section   `json:"sections"`
	Diagnostics       Diagnostics `json:"diagnostics"`
}
