package catalog

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/raine/kawthar-catalog/internal/classify"
	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/raine/kawthar-catalog/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildFromJSONL(t *testing.T, lines ...string) *Catalog {
	t.Helper()
	rows, bad := warehouse.ParseJSONL([]byte(strings.Join(lines, "\n")))
	require.Zero(t, bad)
	return Build(rows, classify.DefaultTable)
}

func TestBuild_OneProductPerIdentifiedRow(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "1", "name": "Rice"}`,
		`{"name": "No id"}`,
		`{"product_id": "  ", "name": "Blank id"}`,
		`{"product_id": 2, "name": "Sugar"}`,
		`{"product_id": "1", "name": "Rice again"}`,
	)

	require.Len(t, c.Products, 3)
	assert.Equal(t, "1", c.Products[0].ID)
	assert.Equal(t, "2", c.Products[1].ID)
	assert.Equal(t, "1", c.Products[2].ID)

	assert.Equal(t, 5, c.Diagnostics.SourceRows)
	assert.Equal(t, 2, c.Diagnostics.DroppedRows)
	assert.Equal(t, 1, c.Diagnostics.DuplicateIDs)
	assert.Equal(t, []string{"1"}, c.Diagnostics.Duplicated)

	p, ok := c.ProductByID("1")
	require.True(t, ok)
	assert.Equal(t, "Rice", p.NameAR, "first match wins")
}

func TestBuild_DuplicateCountsEveryExtraRow(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "a"}`, `{"product_id": "a"}`, `{"product_id": "a"}`,
		`{"product_id": "b"}`, `{"product_id": "b"}`,
	)
	assert.Equal(t, 3, c.Diagnostics.DuplicateIDs)
	assert.Equal(t, []string{"a", "b"}, c.Diagnostics.Duplicated)
}

func TestBuild_CategoriesAndBrands(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "1", "category_name": "Frozen Food", "brand_name": "Al Safi"}`,
		`{"product_id": "2", "category_name": "frozen   food", "brand_name": "al-safi"}`,
		`{"product_id": "3", "category_name": "لحوم ودواجن"}`,
		`{"name": "no id still harvested", "category_name": "Dairy"}`,
		`{"product_id": "4", "category_name": "!!!", "brand_name": "***"}`,
		`{"product_id": "5"}`,
	)

	require.Len(t, c.Categories, 5)
	assert.Equal(t, Category{
		ID: "cat-frozen-food", Slug: "frozen-food", NameAR: "Frozen Food", NameEN: "Frozen Food",
		ColorToken: classify.Frozen, Icon: "snowflake",
	}, c.Categories[0])
	assert.Equal(t, "cat-لحوم-ودواجن", c.Categories[1].ID)
	assert.Equal(t, classify.Meat, c.Categories[1].ColorToken)
	assert.Equal(t, "cat-dairy", c.Categories[2].ID)
	assert.Equal(t, "milk", c.Categories[2].Icon)
	assert.Equal(t, "cat-uncategorized", c.Categories[3].ID)
	assert.Equal(t, "!!!", c.Categories[3].NameAR)
	assert.Equal(t, "cat-بدون-تصنيف", c.Categories[4].ID)
	assert.Equal(t, classify.Grocery, c.Categories[4].ColorToken)

	// "***" slugifies to nothing and lands on the unknown brand.
	require.Len(t, c.Brands, 2)
	assert.Equal(t, "brand-al-safi", c.Brands[0].ID)
	assert.Equal(t, "Al Safi", c.Brands[0].NameAR)
	assert.Equal(t, "brand-unknown", c.Brands[1].ID)
	assert.Equal(t, "Unknown", c.Brands[1].NameAR)

	for _, p := range c.Products {
		_, ok := c.CategoryByID(p.CategoryID)
		assert.True(t, ok, "product %s references a harvested category", p.ID)
		_, ok = c.BrandByID(p.BrandID)
		assert.True(t, ok, "product %s references a harvested brand", p.ID)
	}
}

func TestBuild_Prices(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "1", "sale_price": 80, "regular_price": 100}`,
		`{"product_id": "2", "sale_price": null, "price": 100, "regular_price": 100}`,
		`{"product_id": "3", "price": "45.5"}`,
		`{"product_id": "4", "regular_price": "20"}`,
		`{"product_id": "5"}`,
		`{"product_id": "6", "sale_price": "", "price": "abc", "regular_price": 30, "currency": "EGP"}`,
	)

	tests := []struct {
		id        string
		price     float64
		compareAt *float64
		currency  string
	}{
		{"1", 80, ptr(100), "SAR"},
		{"2", 100, nil, "SAR"},
		{"3", 45.5, nil, "SAR"},
		{"4", 20, nil, "SAR"},
		{"5", 0, nil, "SAR"},
		{"6", 30, nil, "EGP"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			p, ok := c.ProductByID(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.price, p.Price)
			assert.Equal(t, tt.compareAt, p.CompareAtPrice)
			assert.Equal(t, tt.currency, p.Currency)
		})
	}
}

func ptr(f float64) *float64 { return &f }

func TestBuild_Stock(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{"unavailable", `{"product_id": "1", "is_available": false, "sold_quantity": 70}`, 0},
		{"unavailable string", `{"product_id": "1", "is_available": "no"}`, 0},
		{"out of stock", `{"product_id": "1", "is_available": true, "is_out_of_stock": "1"}`, 0},
		{"zero sold", `{"product_id": "1", "is_available": true, "is_out_of_stock": false, "sold_quantity": 0}`, 999},
		{"no signal", `{"product_id": "1"}`, 999},
		{"sold", `{"product_id": "1", "sold_quantity": "12"}`, 12},
		{"fractional sold", `{"product_id": "1", "sold_quantity": 0.4}`, 1},
		{"unknown availability token", `{"product_id": "1", "is_available": "maybe", "sold_quantity": 3}`, 3},
		{"huge sold string", `{"product_id": "1", "is_available": true, "sold_quantity": "1e20"}`, math.MaxInt32},
		{"huge sold number", `{"product_id": "1", "sold_quantity": 1e300}`, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildFromJSONL(t, tt.line)
			require.Len(t, c.Products, 1)
			assert.Equal(t, tt.want, c.Products[0].StockQty)
		})
	}
}

func TestBuild_ProductFields(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": 7, "name": "  Basmati Rice 5kg ", "description": "Long grain", "sku": "", "tags": "new | rice,, مجمد", "local_image": "images/products/rice.jpg", "is_on_sale": "yes", "sold_quantity": 50}`,
		`{"product_id": "8", "custom_url": "custom-slug", "image_url": "https://cdn.example.com/x.jpg"}`,
		`{"product_id": "9", "name": "***"}`,
	)

	p := c.Products[0]
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "basmati-rice-5kg", p.Slug)
	assert.Equal(t, "Basmati Rice 5kg", p.NameAR)
	assert.Equal(t, "Basmati Rice 5kg", p.NameEN)
	assert.Equal(t, "Long grain", p.DescAR)
	assert.Equal(t, "SKU-7", p.SKU)
	assert.Equal(t, []string{"new", "rice", "مجمد"}, p.Tags)
	assert.True(t, p.IsFrozen, "frozen tag marks product frozen")
	assert.Equal(t, []Badge{BadgeOffer, BadgeBestseller, BadgeNew}, p.Badges)
	assert.Equal(t, []string{"/assets/images/products/rice.jpg"}, p.Images)
	assert.Equal(t, []WeightOption{{LabelAR: "افتراضي", LabelEN: "Default"}}, p.WeightOptions)

	p = c.Products[1]
	assert.Equal(t, "custom-slug", p.Slug)
	assert.Equal(t, "Product 8", p.NameAR)
	assert.Equal(t, []string{"https://cdn.example.com/x.jpg"}, p.Images)
	assert.Empty(t, p.Badges)
	assert.NotNil(t, p.Badges)
	assert.Empty(t, p.Tags)

	p = c.Products[2]
	assert.Equal(t, "9", p.Slug, "slug falls back to id")
	assert.Equal(t, []string{images.Placeholder}, p.Images)
}

func TestBuild_FrozenFromCategory(t *testing.T) {
	c := buildFromJSONL(t, `{"product_id": "1", "category_name": "مجمدات"}`)
	assert.True(t, c.Products[0].IsFrozen)
}

func TestBuild_CustomTable(t *testing.T) {
	table := classify.Table{
		Rules:   []classify.Rule{{Token: classify.Dairy, Keywords: classify.Keywords{"cheese"}}},
		Default: classify.Meat,
	}
	rows, _ := warehouse.ParseJSONL([]byte(`{"product_id":"1","category_name":"Cheese"}` + "\n" + `{"product_id":"2","category_name":"Other"}`))
	c := Build(rows, table)
	assert.Equal(t, classify.Dairy, c.Categories[0].ColorToken)
	assert.Equal(t, classify.Meat, c.Categories[1].ColorToken)
}

func TestBuild_LoadMetadata(t *testing.T) {
	a := Build(nil, classify.DefaultTable)
	b := Build(nil, classify.DefaultTable)
	assert.NotEmpty(t, a.LoadID)
	assert.NotEqual(t, a.LoadID, b.LoadID)
	assert.False(t, a.LoadedAt.IsZero())
	assert.Equal(t, Sections, a.Sections)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"categories":[]`)
	assert.Contains(t, string(data), `"products":[]`)
}

func TestQueries(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "1", "name": "Rice", "category_name": "Grains", "brand_name": "Safi", "sku": "R-1", "sold_quantity": 90}`,
		`{"product_id": "2", "name": "حليب", "category_name": "Dairy", "brand_name": "Almarai", "is_on_sale": true}`,
		`{"product_id": "3", "name": "Brown rice", "category_name": "Grains", "brand_name": "Almarai", "tags": "new,organic"}`,
	)

	ids := func(ps []Product) []string {
		out := []string{}
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "3"}, ids(c.ProductsByCategory("cat-grains")))
	assert.Equal(t, []string{"2", "3"}, ids(c.ProductsByBrand("brand-almarai")))
	assert.Empty(t, c.ProductsByBrand("brand-missing"))

	assert.Equal(t, []string{"1"}, ids(c.ProductsInSection("best-sellers")))
	assert.Equal(t, []string{"2"}, ids(c.ProductsInSection("offers")))
	assert.Equal(t, []string{"3"}, ids(c.ProductsInSection("new")))
	assert.Nil(t, c.ProductsInSection("clearance"))

	assert.Equal(t, []string{"1", "3"}, ids(c.Search("RICE")))
	assert.Equal(t, []string{"2"}, ids(c.Search("حليب")))
	assert.Equal(t, []string{"1"}, ids(c.Search("r-1")))
	assert.Equal(t, []string{"3"}, ids(c.Search("organic")))
	assert.Len(t, c.Search("  "), 3)

	assert.Equal(t, []string{"3"}, ids(c.Find(Filter{Query: "rice", BrandID: "brand-almarai"})))
	assert.Equal(t, []string{"1"}, ids(c.Find(Filter{CategoryID: "cat-grains", SectionID: "best-sellers"})))
	assert.Empty(t, c.Find(Filter{SectionID: "nope"}))

	_, ok := c.SectionByID("offers")
	assert.True(t, ok)
	_, ok = c.CategoryByID("cat-nope")
	assert.False(t, ok)
	_, ok = c.ProductByID("nope")
	assert.False(t, ok)
}

func TestSummary(t *testing.T) {
	c := buildFromJSONL(t,
		`{"product_id": "1", "sold_quantity": 60}`,
		`{"product_id": "1"}`,
		`{"name": "dropped"}`,
	)
	c.Diagnostics.BadLines = 2

	summary := c.Summary()
	assert.True(t, strings.HasPrefix(summary, "Catalog "+c.LoadID+"\n"))
	assert.Contains(t, summary, "Products:     2\n")
	assert.Contains(t, summary, "Bad lines:    2\n")
	assert.Contains(t, summary, "Dropped rows: 1\n")
	assert.Contains(t, summary, "Duplicate ids: 1\n")
	assert.Contains(t, summary, "Best sellers: 1\n")
	assert.True(t, strings.HasSuffix(summary, "Duplicated: 1"))
}
