package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/raine/kawthar-catalog/internal/catalog"
	"github.com/raine/kawthar-catalog/internal/classify"
)

// SnapshotInfo describes a stored snapshot without its rows.
type SnapshotInfo struct {
	LoadID      string              `json:"loadId"`
	Fingerprint string              `json:"fingerprint"`
	LoadedAt    time.Time           `json:"loadedAt"`
	Diagnostics catalog.Diagnostics `json:"diagnostics"`
}

// SaveSnapshot stores c unless a snapshot of the same source fingerprint
// already exists. It reports whether a new snapshot was written.
func (s *Store) SaveSnapshot(ctx context.Context, c *catalog.Catalog) (bool, error) {
	if c.SourceFingerprint == "" {
		return false, fmt.Errorf("catalog %s has no source fingerprint", c.LoadID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var existing string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT load_id FROM catalog_snapshots WHERE fingerprint = ?`),
		c.SourceFingerprint,
	).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("failed to query snapshot: %w", err)
	}

	duplicated, err := json.Marshal(nonNil(c.Diagnostics.Duplicated))
	if err != nil {
		return false, fmt.Errorf("failed to encode diagnostics: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(`
		INSERT INTO catalog_snapshots
			(load_id, fingerprint, loaded_at, source_rows, bad_lines, dropped_rows, duplicate_ids, duplicated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		c.LoadID, c.SourceFingerprint, c.LoadedAt.UnixMilli(),
		c.Diagnostics.SourceRows, c.Diagnostics.BadLines, c.Diagnostics.DroppedRows,
		c.Diagnostics.DuplicateIDs, string(duplicated),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	for i, cat := range c.Categories {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO snapshot_categories (load_id, position, id, slug, name_ar, name_en, color_token, icon)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			c.LoadID, i, cat.ID, cat.Slug, cat.NameAR, cat.NameEN, string(cat.ColorToken), cat.Icon,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert category %s: %w", cat.ID, err)
		}
	}

	for i, brand := range c.Brands {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO snapshot_brands (load_id, position, id, slug, name_ar, name_en, description_ar, description_en)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			c.LoadID, i, brand.ID, brand.Slug, brand.NameAR, brand.NameEN, brand.DescriptionAR, brand.DescriptionEN,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert brand %s: %w", brand.ID, err)
		}
	}

	insertProduct, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO snapshot_products (load_id, position, id, category_id, brand_id, data)
		VALUES (?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return false, fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer insertProduct.Close()

	for i, product := range c.Products {
		data, err := json.Marshal(product)
		if err != nil {
			return false, fmt.Errorf("failed to encode product %s: %w", product.ID, err)
		}
		if _, err := insertProduct.ExecContext(ctx, c.LoadID, i, product.ID, product.CategoryID, product.BrandID, string(data)); err != nil {
			return false, fmt.Errorf("failed to insert product %s: %w", product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return true, nil
}

// ListSnapshots returns up to limit snapshots, newest first.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT load_id, fingerprint, loaded_at, source_rows, bad_lines, dropped_rows, duplicate_ids, duplicated
		FROM catalog_snapshots ORDER BY loaded_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		info, err := scanSnapshotInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return infos, nil
}

// LatestSnapshot loads the most recent snapshot, or nil when none is stored.
func (s *Store) LatestSnapshot(ctx context.Context) (*catalog.Catalog, error) {
	infos, err := s.ListSnapshots(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(infos) == 0 {
		return nil, nil
	}
	return s.Snapshot(ctx, infos[0].LoadID)
}

// Snapshot loads the snapshot with loadID, or nil when it does not exist.
func (s *Store) Snapshot(ctx context.Context, loadID string) (*catalog.Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT load_id, fingerprint, loaded_at, source_rows, bad_lines, dropped_rows, duplicate_ids, duplicated
		FROM catalog_snapshots WHERE load_id = ?`), loadID)
	info, err := scanSnapshotInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c := &catalog.Catalog{
		LoadID:            info.LoadID,
		LoadedAt:          info.LoadedAt,
		SourceFingerprint: info.Fingerprint,
		Categories:        []catalog.Category{},
		Brands:            []catalog.Brand{},
		Products:          []catalog.Product{},
		Sections:          append([]catalog.Section(nil), catalog.Sections...),
		Diagnostics:       info.Diagnostics,
	}

	if err := s.loadCategories(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadBrands(ctx, c); err != nil {
		return nil, err
	}
	if err := s.loadProducts(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Store) loadCategories(ctx context.Context, c *catalog.Catalog) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, slug, name_ar, name_en, color_token, icon
		FROM snapshot_categories WHERE load_id = ? ORDER BY position`), c.LoadID)
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cat catalog.Category
		var token string
		if err := rows.Scan(&cat.ID, &cat.Slug, &cat.NameAR, &cat.NameEN, &token, &cat.Icon); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		cat.ColorToken = classify.Token(token)
		c.Categories = append(c.Categories, cat)
	}
	return rows.Err()
}

func (s *Store) loadBrands(ctx context.Context, c *catalog.Catalog) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, slug, name_ar, name_en, description_ar, description_en
		FROM snapshot_brands WHERE load_id = ? ORDER BY position`), c.LoadID)
	if err != nil {
		return fmt.Errorf("failed to query brands: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var b catalog.Brand
		if err := rows.Scan(&b.ID, &b.Slug, &b.NameAR, &b.NameEN, &b.DescriptionAR, &b.DescriptionEN); err != nil {
			return fmt.Errorf("failed to scan brand: %w", err)
		}
		c.Brands = append(c.Brands, b)
	}
	return rows.Err()
}

func (s *Store) loadProducts(ctx context.Context, c *catalog.Catalog) error {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT data FROM snapshot_products WHERE load_id = ? ORDER BY position`), c.LoadID)
	if err != nil {
		return fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return fmt.Errorf("failed to scan product: %w", err)
		}
		var p catalog.Product
		if err := json.Unmarshal([]byte(data), &p); err != nil {
			return fmt.Errorf("failed to decode product: %w", err)
		}
		c.Products = append(c.Products, p)
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshotInfo(row scanner) (SnapshotInfo, error) {
	var (
		info       SnapshotInfo
		loadedAt   int64
		duplicated string
	)
	err := row.Scan(
		&info.LoadID, &info.Fingerprint, &loadedAt,
		&info.Diagnostics.SourceRows, &info.Diagnostics.BadLines, &info.Diagnostics.DroppedRows,
		&info.Diagnostics.DuplicateIDs, &duplicated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return info, err
	}
	if err != nil {
		return info, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	info.LoadedAt = time.UnixMilli(loadedAt)
	if err := json.Unmarshal([]byte(duplicated), &info.Diagnostics.Duplicated); err != nil {
		return info, fmt.Errorf("failed to decode diagnostics: %w", err)
	}
	return info, nil
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
