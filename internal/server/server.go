// Package server exposes the catalog over a read-only JSON HTTP API.
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/raine/kawthar-catalog/internal/catalog"
	"github.com/raine/kawthar-catalog/internal/gallery"
	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/raine/kawthar-catalog/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	defaultLimit = 20
	maxLimit     = 100

	queryCacheSize = 256
)

// CatalogSource provides the loaded catalog.
type CatalogSource interface {
	EnsureLoaded(ctx context.Context) (*catalog.Catalog, error)
	Snapshot() *catalog.Catalog
}

// GallerySource provides the CSV gallery products.
type GallerySource interface {
	Load(ctx context.Context, opts gallery.Options) ([]gallery.Product, error)
	IndexStatus() images.IndexStatus
}

// SnapshotSource reads catalog snapshots saved by earlier loads.
type SnapshotSource interface {
	ListSnapshots(ctx context.Context, limit int) ([]storage.SnapshotInfo, error)
	LatestSnapshot(ctx context.Context) (*catalog.Catalog, error)
	Snapshot(ctx context.Context, loadID string) (*catalog.Catalog, error)
}

type Server struct {
	catalog   CatalogSource
	gallery   GallerySource
	snapshots SnapshotSource

	// Filtered product lists keyed by load id and filter.
	queries *lru.Cache[string, []catalog.Product]

	router *gin.Engine
}

// New builds the HTTP handler. gal may be nil, in which case the gallery
// routes are not registered.
func New(cat CatalogSource, gal GallerySource) *Server {
	queries, err := lru.New[string, []catalog.Product](queryCacheSize)
	if err != nil {
		// Only returned for a non-positive size.
		panic(err)
	}

	s := &Server{catalog: cat, gallery: gal, queries: queries}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	router.GET("/health", s.health)
	router.GET("/ready", s.ready)
	router.GET("/diagnostics", s.diagnostics)

	categories := router.Group("/categories")
	categories.GET("", s.listCategories)
	categories.GET("/:id", s.getCategory)
	categories.GET("/:id/products", s.categoryProducts)

	brands := router.Group("/brands")
	brands.GET("", s.listBrands)
	brands.GET("/:id", s.getBrand)
	brands.GET("/:id/products", s.brandProducts)

	products := router.Group("/products")
	products.GET("", s.listProducts)
	products.GET("/:id", s.getProduct)

	sections := router.Group("/sections")
	sections.GET("", s.listSections)
	sections.GET("/:id/products", s.sectionProducts)

	if gal != nil {
		g := router.Group("/gallery")
		g.GET("", s.listGallery)
		g.GET("/categories", s.galleryCategories)
	}

	s.router = router
	return s
}

// RegisterSnapshots adds the /snapshots routes backed by src. It must be
// called before the handler starts serving.
func (s *Server) RegisterSnapshots(src SnapshotSource) {
	s.snapshots = src
	snapshots := s.router.Group("/snapshots")
	snapshots.GET("", s.listSnapshots)
	snapshots.GET("/latest", s.latestSnapshot)
	snapshots.GET("/:id", s.getSnapshot)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	}
}

// loaded returns the catalog or writes a 503 when it cannot be loaded.
func (s *Server) loaded(c *gin.Context) (*catalog.Catalog, bool) {
	cat, err := s.catalog.EnsureLoaded(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("catalog unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
		return nil, false
	}
	return cat, true
}

type pagination struct {
	Limit  int
	Offset int
}

func parsePagination(c *gin.Context) pagination {
	p := pagination{
		Limit:  parseInt(c.Query("limit"), defaultLimit),
		Offset: parseInt(c.Query("offset"), 0),
	}
	if p.Limit <= 0 || p.Limit > maxLimit {
		p.Limit = defaultLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

func paginate[T any](items []T, p pagination) gin.H {
	start := min(p.Offset, len(items))
	end := min(start+p.Limit, len(items))
	page := items[start:end]
	if page == nil {
		page = []T{}
	}
	return gin.H{
		"total":  len(items),
		"limit":  p.Limit,
		"offset": p.Offset,
		"items":  page,
	}
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// splitParam accepts both repeated parameters and comma-separated values.
func splitParam(c *gin.Context, name string) []string {
	var out []string
	for _, v := range c.QueryArray(name) {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
}
