package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/dedent"
)

// Summary renders a short plain-text report of the catalog.
func (c *Catalog) Summary() string {
	report := fmt.Sprintf(strings.TrimSpace(dedent.Dedent(`
		Catalog %s
		Loaded:       %s
		Categories:   %d
		Brands:       %d
		Products:     %d
		Source rows:  %d
		Bad lines:    %d
		Dropped rows: %d
		Duplicate ids: %d
	`)),
		c.LoadID,
		c.LoadedAt.Format(time.RFC3339),
		len(c.Categories),
		len(c.Brands),
		len(c.Products),
		c.Diagnostics.SourceRows,
		c.Diagnostics.BadLines,
		c.Diagnostics.DroppedRows,
		c.Diagnostics.DuplicateIDs,
	)

	var b strings.Builder
	b.WriteString(report)
	for _, section := range c.Sections {
		fmt.Fprintf(&b, "\n%s: %d", section.NameEN, len(c.ProductsInSection(section.ID)))
	}
	if len(c.Diagnostics.Duplicated) > 0 {
		fmt.Fprintf(&b, "\nDuplicated: %s", strings.Join(c.Diagnostics.Duplicated, ", "))
	}
	return b.String()
}
