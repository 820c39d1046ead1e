// Package warehouse decodes the newline-delimited JSON product export.
package warehouse

import (
	"bytes"
	"encoding/json"

	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/rs/zerolog/log"
)

// DefaultLocation is the warehouse feed path relative to the source root.
const DefaultLocation = "assets/images/warehouse_products.json"

// Row is one product record of the feed. Fields stay loosely typed because
// the export mixes strings, numbers, booleans and nulls for the same column.
type Row struct {
	ProductID     any `json:"product_id"`
	Name          any `json:"name"`
	Description   any `json:"description"`
	CategoryName  any `json:"category_name"`
	BrandName     any `json:"brand_name"`
	Price         any `json:"price"`
	SalePrice     any `json:"sale_price"`
	RegularPrice  any `json:"regular_price"`
	Currency      any `json:"currency"`
	IsAvailable   any `json:"is_available"`
	IsOutOfStock  any `json:"is_out_of_stock"`
	IsOnSale      any `json:"is_on_sale"`
	SoldQuantity  any `json:"sold_quantity"`
	Tags          any `json:"tags"`
	SKU           any `json:"sku"`
	Image         any `json:"image"`
	LocalImage    any `json:"local_image"`
	ImageURL      any `json:"image_url"`
	OriginalImage any `json:"original_image"`
	ProductURL    any `json:"product_url"`
	CustomURL     any `json:"custom_url"`
}

// ImageRefs returns the image columns of the row.
func (r Row) ImageRefs() images.WarehouseRefs {
	return images.WarehouseRefs{
		LocalImage:    r.LocalImage,
		Image:         r.Image,
		OriginalImage: r.OriginalImage,
		ImageURL:      r.ImageURL,
	}
}

// ParseJSONL decodes one row per non-blank line. Lines that are not JSON
// objects are skipped with a warning naming their 1-based line number; the
// number of skipped lines is returned alongside the rows.
func ParseJSONL(data []byte) ([]Row, int) {
	var (
		rows []Row
		bad  int
	)
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var row Row
		if err := decodeLine(line, &row); err != nil {
			bad++
			log.Warn().Err(err).Int("line", i+1).Msgf("Bad JSONL line #%d", i+1)
			continue
		}
		rows = append(rows, row)
	}
	return rows, bad
}

func decodeLine(line []byte, row *Row) error {
	if line[0] != '{' {
		return errNotObject
	}
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()
	if err := dec.Decode(row); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}
