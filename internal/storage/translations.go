package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetTranslation returns the cached translation of text.
func (s *Store) GetTranslation(ctx context.Context, text string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var translated string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT translated FROM translation_cache WHERE source_text = ?`),
		text,
	).Scan(&translated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query translation cache: %w", err)
	}
	return translated, true, nil
}

// SetTranslation stores or replaces the translation of text.
func (s *Store) SetTranslation(ctx context.Context, text, translated string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO translation_cache (source_text, translated, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (source_text) DO UPDATE SET translated = excluded.translated, updated_at = excluded.updated_at`),
		text, translated, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to cache translation: %w", err)
	}
	return nil
}
