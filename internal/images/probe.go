package images

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	probeTimeout     = 10 * time.Second
	probeConcurrency = 32
)

// Prober checks whether image URLs resolve. Results are memoised per URL, so
// a URL shared by many products is probed at most once.
type Prober struct {
	publicDir string
	client    *resty.Client

	mu      sync.Mutex
	results map[string]*probe
}

type probe struct {
	done chan struct{}
	ok   bool
	// retry is set when the probe was abandoned by a cancelled caller.
	retry bool
}

// NewProber returns a prober that resolves site-relative paths under
// publicDir and remote URLs with an HTTP HEAD request.
func NewProber(publicDir string) *Prober {
	return &Prober{
		publicDir: publicDir,
		client:    resty.New().SetTimeout(probeTimeout),
		results:   make(map[string]*probe),
	}
}

// Exists reports whether url points at an existing image. The placeholder and
// empty URLs never exist. A probe cut short by ctx is not remembered.
func (p *Prober) Exists(ctx context.Context, url string) bool {
	if url == "" || url == Placeholder {
		return false
	}

	for {
		p.mu.Lock()
		pr, found := p.results[url]
		if !found {
			pr = &probe{done: make(chan struct{})}
			p.results[url] = pr
		}
		p.mu.Unlock()

		if !found {
			return p.run(ctx, url, pr)
		}

		select {
		case <-pr.done:
			if !pr.retry {
				return pr.ok
			}
		case <-ctx.Done():
			return false
		}
	}
}

func (p *Prober) run(ctx context.Context, url string, pr *probe) bool {
	ok := p.check(ctx, url)
	if ctx.Err() != nil {
		p.mu.Lock()
		delete(p.results, url)
		p.mu.Unlock()
		pr.retry = true
		close(pr.done)
		return ok
	}
	pr.ok = ok
	close(pr.done)
	return ok
}

func (p *Prober) check(ctx context.Context, url string) bool {
	if isRemote(url) {
		res, err := p.client.R().SetContext(ctx).Head(url)
		if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("image probe failed")
			return false
		}
		return !res.IsError()
	}

	local := url
	if strings.HasPrefix(url, "/") {
		local = filepath.Join(p.publicDir, filepath.FromSlash(path.Clean(url)))
	}
	info, err := os.Stat(local)
	return err == nil && !info.IsDir()
}

// Resolve probes every URL concurrently and returns the URLs with missing
// images replaced by the placeholder. The result is index-aligned with urls.
func (p *Prober) Resolve(ctx context.Context, urls []string) []string {
	resolved := make([]string, len(urls))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i := range urls {
		g.Go(func() error {
			if p.Exists(ctx, urls[i]) {
				resolved[i] = urls[i]
			} else {
				resolved[i] = Placeholder
			}
			return nil
		})
	}
	_ = g.Wait()
	return resolved
}
