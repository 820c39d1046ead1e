package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raine/kawthar-catalog/internal/catalog"
	"github.com/raine/kawthar-catalog/internal/gallery"
	"github.com/raine/kawthar-catalog/internal/storage"
	"github.com/rs/zerolog/log"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) ready(c *gin.Context) {
	cat := s.catalog.Snapshot()
	if cat == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"loadId":   cat.LoadID,
		"products": len(cat.Products),
	})
}

func (s *Server) diagnostics(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	resp := gin.H{
		"loadId":            cat.LoadID,
		"loadedAt":          cat.LoadedAt,
		"sourceFingerprint": cat.SourceFingerprint,
		"diagnostics":       cat.Diagnostics,
	}
	if s.gallery != nil {
		resp["imageIndex"] = s.gallery.IndexStatus()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listCategories(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, paginate(cat.Categories, parsePagination(c)))
}

func (s *Server) getCategory(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	category, found := cat.CategoryByID(c.Param("id"))
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (s *Server) categoryProducts(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, found := cat.CategoryByID(id); !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, paginate(cat.ProductsByCategory(id), parsePagination(c)))
}

func (s *Server) listBrands(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, paginate(cat.Brands, parsePagination(c)))
}

func (s *Server) getBrand(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	brand, found := cat.BrandByID(c.Param("id"))
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, brand)
}

func (s *Server) brandProducts(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, found := cat.BrandByID(id); !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, paginate(cat.ProductsByBrand(id), parsePagination(c)))
}

func (s *Server) listProducts(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	f := catalog.Filter{
		Query:      c.Query("q"),
		CategoryID: c.Query("category"),
		BrandID:    c.Query("brand"),
		SectionID:  c.Query("section"),
	}
	c.JSON(http.StatusOK, paginate(s.find(cat, f), parsePagination(c)))
}

func (s *Server) getProduct(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	product, found := cat.ProductByID(c.Param("id"))
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) listSections(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	type section struct {
		catalog.Section
		Count int `json:"count"`
	}
	items := make([]section, 0, len(cat.Sections))
	for _, sec := range cat.Sections {
		items = append(items, section{Section: sec, Count: len(s.find(cat, catalog.Filter{SectionID: sec.ID}))})
	}
	c.JSON(http.StatusOK, paginate(items, parsePagination(c)))
}

func (s *Server) sectionProducts(c *gin.Context) {
	cat, ok := s.loaded(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if _, found := cat.SectionByID(id); !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, paginate(s.find(cat, catalog.Filter{SectionID: id}), parsePagination(c)))
}

// find memoises filtered product lists per catalog load.
func (s *Server) find(cat *catalog.Catalog, f catalog.Filter) []catalog.Product {
	key := cat.LoadID + "\x00" + f.Query + "\x00" + f.CategoryID + "\x00" + f.BrandID + "\x00" + f.SectionID
	if products, ok := s.queries.Get(key); ok {
		return products
	}
	products := cat.Find(f)
	s.queries.Add(key, products)
	return products
}

func (s *Server) galleryOptions(c *gin.Context) (gallery.Options, bool) {
	var opts gallery.Options
	for _, v := range splitParam(c, "collection") {
		collection, ok := gallery.ParseCollection(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown collection: " + v})
			return opts, false
		}
		opts.Collections = append(opts.Collections, collection)
	}
	for _, v := range splitParam(c, "source") {
		src, ok := gallery.ParseSource(v)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source: " + v})
			return opts, false
		}
		opts.Sources = append(opts.Sources, src)
	}
	return opts, true
}

func (s *Server) loadGallery(c *gin.Context) ([]gallery.Product, bool) {
	opts, ok := s.galleryOptions(c)
	if !ok {
		return nil, false
	}
	products, err := s.gallery.Load(c.Request.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("gallery unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "gallery unavailable"})
		return nil, false
	}
	return products, true
}

func (s *Server) listGallery(c *gin.Context) {
	products, ok := s.loadGallery(c)
	if !ok {
		return
	}
	if category := c.Query("category"); category != "" {
		filtered := []gallery.Product{}
		for _, p := range products {
			if p.Category == category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	c.JSON(http.StatusOK, paginate(products, parsePagination(c)))
}

func (s *Server) galleryCategories(c *gin.Context) {
	products, ok := s.loadGallery(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": gallery.ListCategories(products)})
}

func (s *Server) listSnapshots(c *gin.Context) {
	limit := parsePagination(c).Limit
	infos, err := s.snapshots.ListSnapshots(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list snapshots")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read snapshots"})
		return
	}
	if infos == nil {
		infos = []storage.SnapshotInfo{}
	}
	c.JSON(http.StatusOK, gin.H{"limit": limit, "items": infos})
}

func (s *Server) latestSnapshot(c *gin.Context) {
	snap, err := s.snapshots.LatestSnapshot(c.Request.Context())
	s.writeSnapshot(c, snap, err)
}

func (s *Server) getSnapshot(c *gin.Context) {
	snap, err := s.snapshots.Snapshot(c.Request.Context(), c.Param("id"))
	s.writeSnapshot(c, snap, err)
}

func (s *Server) writeSnapshot(c *gin.Context, snap *catalog.Catalog, err error) {
	if err != nil {
		log.Error().Err(err).Msg("failed to read snapshot")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read snapshots"})
		return
	}
	if snap == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, snap)
}
