package translate

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Cache stores translations by source text.
type Cache interface {
	GetTranslation(ctx context.Context, text string) (string, bool, error)
	SetTranslation(ctx context.Context, text, translated string) error
}

// CachedTranslator wraps a Translator with a persistent cache. Cache errors
// are logged and treated as misses.
type CachedTranslator struct {
	inner Translator
	cache Cache
}

func NewCachedTranslator(inner Translator, cache Cache) *CachedTranslator {
	return &CachedTranslator{inner: inner, cache: cache}
}

func (c *CachedTranslator) Translate(ctx context.Context, texts []string) (map[string]string, error) {
	result := make(map[string]string, len(texts))
	var misses []string
	for _, text := range texts {
		cached, ok, err := c.cache.GetTranslation(ctx, text)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check translation cache")
		}
		if ok {
			result[text] = cached
			continue
		}
		misses = append(misses, text)
	}

	if len(misses) == 0 {
		log.Debug().Int("hits", len(result)).Msg("translation cache hit")
		return result, nil
	}

	translated, err := c.inner.Translate(ctx, misses)
	if err != nil {
		return nil, err
	}
	for text, en := range translated {
		result[text] = en
		if err := c.cache.SetTranslation(ctx, text, en); err != nil {
			log.Warn().Err(err).Msg("failed to cache translation")
		}
	}
	return result, nil
}
