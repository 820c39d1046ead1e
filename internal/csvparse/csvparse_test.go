package csvparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "quoted field with embedded comma",
			in:   "name,brand\nRice,\"Acme, Inc.\"\n",
			want: [][]string{{"name", "brand"}, {"Rice", "Acme, Inc."}},
		},
		{
			name: "escaped quotes",
			in:   `a,"say ""hi"""`,
			want: [][]string{{"a", `say "hi"`}},
		},
		{
			name: "newline inside quotes",
			in:   "a,\"line1\nline2\"\r\nb,c",
			want: [][]string{{"a", "line1\nline2"}, {"b", "c"}},
		},
		{
			name: "crlf and lone cr separate rows",
			in:   "a,b\r\nc,d\re,f",
			want: [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}},
		},
		{
			name: "blank rows dropped",
			in:   "a,b\n\n , \n,,\nc,d\n",
			want: [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name: "arabic text preserved",
			in:   "الاسم,السعر\nأرز مصري,25",
			want: [][]string{{"الاسم", "السعر"}, {"أرز مصري", "25"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestParse_UnterminatedQuoteNeverFails(t *testing.T) {
	rows := Parse("a,\"unterminated\nb,c")
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a", "unterminated\nb,c"}, rows[0])
}

func TestRecords(t *testing.T) {
	in := "\ufeff Handle ,Title,Vendor\nrice-1,Rice,Doha\nsugar-2,Sugar\n"
	records := Records(in)

	require.Len(t, records, 2)
	assert.Equal(t, map[string]string{"Handle": "rice-1", "Title": "Rice", "Vendor": "Doha"}, records[0])
	assert.Equal(t, "", records[1]["Vendor"])
}

func TestRecords_HeaderOnly(t *testing.T) {
	assert.Empty(t, Records("Handle,Title\n"))
	assert.Nil(t, Records(""))
}
