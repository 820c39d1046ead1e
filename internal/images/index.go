package images

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/raine/kawthar-catalog/internal/source"
	"github.com/rs/zerolog/log"
)

// IndexLocation is where the offline index builder writes the image index,
// relative to the public directory.
const IndexLocation = "assets/products/images_index.json"

// Index maps collection -> bare filename -> served path.
type Index map[string]map[string]string

// IndexStatus describes the outcome of loading the image index.
type IndexStatus string

const (
	IndexUnknown IndexStatus = "unknown"
	IndexLoaded  IndexStatus = "loaded"
	IndexMissing IndexStatus = "missing"
	IndexError   IndexStatus = "error"
)

// Warner emits each distinct warning message at most once.
type Warner struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewWarner() *Warner {
	return &Warner{seen: make(map[string]struct{})}
}

// Warn logs message unless it has been logged before. It reports whether the
// message was emitted.
func (w *Warner) Warn(message string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[message]; ok {
		return false
	}
	w.seen[message] = struct{}{}
	log.Warn().Msg(message)
	return true
}

// IndexResolver maps bare filenames to served paths for one index state.
type IndexResolver struct {
	index  Index
	warner *Warner
}

// NewIndexResolver returns a resolver over index, which may be nil when the
// index could not be loaded.
func NewIndexResolver(index Index, warner *Warner) *IndexResolver {
	if warner == nil {
		warner = NewWarner()
	}
	return &IndexResolver{index: index, warner: warner}
}

// Resolve returns the served path for filename in collection, or the
// placeholder when the filename is empty, the index is missing, or the index
// lacks the filename.
func (r *IndexResolver) Resolve(collection, filename string) string {
	if filename == "" {
		r.warner.Warn(fmt.Sprintf("Missing image filename for %s product record.", collection))
		return Placeholder
	}
	if r.index == nil {
		r.warner.Warn(fmt.Sprintf("Images index missing, using placeholder for %s.", filename))
		return Placeholder
	}
	mapped := r.index[collection][filename]
	if mapped == "" {
		r.warner.Warn(fmt.Sprintf("Image filename %q not found in %s index.", filename, collection))
		return Placeholder
	}
	return mapped
}

// IndexStore loads the image index once and remembers the outcome, including
// failures.
type IndexStore struct {
	fetcher  source.Fetcher
	location string
	warner   *Warner

	mu     sync.Mutex
	done   bool
	index  Index
	status IndexStatus
}

func NewIndexStore(fetcher source.Fetcher, warner *Warner) *IndexStore {
	if warner == nil {
		warner = NewWarner()
	}
	return &IndexStore{
		fetcher:  fetcher,
		location: IndexLocation,
		warner:   warner,
		status:   IndexUnknown,
	}
}

// Load returns the index, or nil when it is missing or unreadable.
func (s *IndexStore) Load(ctx context.Context) Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return s.index
	}

	data, err := s.fetcher.Fetch(ctx, s.location)
	if err != nil {
		if ctx.Err() != nil {
			// Leave the store unloaded so a later caller can retry.
			return nil
		}
		s.status = IndexError
		if source.IsNotFound(err) {
			s.status = IndexMissing
		}
		s.warner.Warn(fmt.Sprintf("Images index could not be loaded (%v). Run \"build-images-index\".", err))
		s.done = true
		return nil
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		s.status = IndexError
		s.warner.Warn(fmt.Sprintf("Images index could not be loaded (%v). Run \"build-images-index\".", err))
		s.done = true
		return nil
	}

	s.index = index
	s.status = IndexLoaded
	s.done = true
	return index
}

// Status reports the outcome of the last load.
func (s *IndexStore) Status() IndexStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
