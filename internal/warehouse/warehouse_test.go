package warehouse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONL(t *testing.T) {
	data := []byte(`{"product_id": 101, "name": "أرز بسمتي", "price": "12.5", "is_available": true}

  {"product_id": "102", "name": "Milk", "brand_name": null}
{not json
[1, 2]
null
{"product_id": "103"} {"product_id": "104"}
{"product_id": "105", "tags": "new|offer"}` + "\r\n")

	rows, bad := ParseJSONL(data)
	assert.Equal(t, 4, bad)
	require.Len(t, rows, 3)

	assert.Equal(t, json.Number("101"), rows[0].ProductID)
	assert.Equal(t, "أرز بسمتي", rows[0].Name)
	assert.Equal(t, "12.5", rows[0].Price)
	assert.Equal(t, true, rows[0].IsAvailable)

	assert.Equal(t, "102", rows[1].ProductID)
	assert.Nil(t, rows[1].BrandName)

	assert.Equal(t, "105", rows[2].ProductID)
	assert.Equal(t, "new|offer", rows[2].Tags)
}

func TestParseJSONL_Empty(t *testing.T) {
	rows, bad := ParseJSONL([]byte("\n  \n"))
	assert.Empty(t, rows)
	assert.Zero(t, bad)
}

func TestRow_ImageRefs(t *testing.T) {
	row := Row{LocalImage: "a.jpg", Image: "b.jpg", OriginalImage: nil, ImageURL: "https://x/c.jpg"}
	refs := row.ImageRefs()
	assert.Equal(t, "a.jpg", refs.LocalImage)
	assert.Equal(t, "b.jpg", refs.Image)
	assert.Nil(t, refs.OriginalImage)
	assert.Equal(t, "https://x/c.jpg", refs.ImageURL)
}
