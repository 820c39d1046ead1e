// Package indexbuild scans the product image folders and writes the image
// index consumed by the gallery loader.
package indexbuild

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/rs/zerolog/log"
)

// Root is one collection's image folder.
type Root struct {
	Collection string
	Dir        string
}

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// DefaultRoots returns the egypt and local image folders under publicDir.
func DefaultRoots(publicDir string) []Root {
	return []Root{
		{Collection: "egypt", Dir: filepath.Join(publicDir, "assets", "products", "egypt-products", "images")},
		{Collection: "local", Dir: filepath.Join(publicDir, "assets", "products", "local-products", "images")},
	}
}

// OutputPath is where the index is written for publicDir.
func OutputPath(publicDir string) string {
	return filepath.Join(publicDir, filepath.FromSlash(images.IndexLocation))
}

// Build walks every root and maps each image filename to its path relative
// to publicDir. A missing root yields an empty collection. When a filename
// repeats inside a collection the first entry is kept.
func Build(publicDir string, roots []Root) (images.Index, error) {
	index := make(images.Index, len(roots))
	for _, root := range roots {
		entries := make(map[string]string)
		index[root.Collection] = entries

		files, err := collect(root.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", root.Dir, err)
		}
		for _, file := range files {
			rel, err := filepath.Rel(publicDir, file)
			if err != nil {
				return nil, fmt.Errorf("failed to relativize %s: %w", file, err)
			}
			name := filepath.Base(file)
			if _, exists := entries[name]; exists {
				log.Warn().
					Str("collection", root.Collection).
					Str("filename", name).
					Msg("Duplicate filename detected, keeping the first entry")
				continue
			}
			entries[name] = path.Join("/", filepath.ToSlash(rel))
		}
	}
	return index, nil
}

func collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if allowedExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, p)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return files, err
}

// Write stores index as indented JSON with a trailing newline.
func Write(file string, index images.Index) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(index); err != nil {
		return fmt.Errorf("failed to encode image index: %w", err)
	}
	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write image index: %w", err)
	}
	return nil
}

// Run builds the index for the default roots under publicDir and writes it.
// It returns the output path.
func Run(publicDir string) (string, error) {
	index, err := Build(publicDir, DefaultRoots(publicDir))
	if err != nil {
		return "", err
	}
	out := OutputPath(publicDir)
	if err := Write(out, index); err != nil {
		return "", err
	}
	return out, nil
}
