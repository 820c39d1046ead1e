// Package images resolves raw product image references to served paths.
package images

import (
	"strings"

	"github.com/raine/kawthar-catalog/internal/normalize"
)

const (
	// Placeholder is served when no usable image reference exists.
	Placeholder = "/assets/products/placeholder.png"

	productImagesDir = "/assets/images/products/"
)

// WarehouseRefs are the image columns of a warehouse row.
type WarehouseRefs struct {
	LocalImage    any
	Image         any
	OriginalImage any
	ImageURL      any
}

// ResolveWarehouse picks the image to render for a warehouse row: the first
// local reference, else the first remote reference verbatim, else the
// placeholder.
func ResolveWarehouse(refs WarehouseRefs) string {
	for _, candidate := range []any{refs.LocalImage, refs.Image, refs.OriginalImage} {
		if local, ok := LocalPath(normalize.String(candidate, "")); ok {
			return local
		}
	}
	for _, candidate := range []any{refs.ImageURL, refs.Image, refs.OriginalImage} {
		if remote := normalize.String(candidate, ""); remote != "" {
			return remote
		}
	}
	return Placeholder
}

// LocalPath rewrites a local image reference onto the served assets tree.
// Absolute http(s) URLs and blank values are not local.
func LocalPath(raw string) (string, bool) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" || isRemote(candidate) {
		return "", false
	}

	switch {
	case strings.HasPrefix(candidate, "/assets/"):
		return candidate, true
	case strings.HasPrefix(candidate, "assets/"):
		return "/" + candidate, true
	case strings.HasPrefix(candidate, "/images/products/"), strings.HasPrefix(candidate, "images/products/"):
		return productImagesDir + lastSegment(candidate), true
	case strings.HasPrefix(candidate, "/images/"):
		return "/assets" + candidate, true
	case strings.HasPrefix(candidate, "images/"):
		return "/assets/" + candidate, true
	case strings.HasPrefix(candidate, "/products/"):
		return "/assets/images" + candidate, true
	case strings.HasPrefix(candidate, "products/"):
		return "/assets/images/" + candidate, true
	}

	filename := lastSegment(candidate)
	if filename == "" {
		return "", false
	}
	return productImagesDir + filename, true
}

func isRemote(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func lastSegment(s string) string {
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}
