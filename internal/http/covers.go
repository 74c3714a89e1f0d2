package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookscanner/internal/covers"
)

// CoversController handles book cover requests.
type CoversController struct {
	cache  *covers.Cache
	reader RecordReader
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache *covers.Cache, reader RecordReader) *CoversController {
	return &CoversController{
		cache:  cache,
		reader: reader,
	}
}

// GetCover serves a cached book cover image.
// GET /api/books/:id/cover
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := cc.reader.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get book for cover")
		return
	}
	if book == nil || book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	// Get cached cover (will fetch if not cached)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, book.CoverURL)
	if err != nil {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	c.File(cachePath)
}
