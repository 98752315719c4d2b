package handler

import (
	"net/http"
	"strconv"

	"contenthub/internal/middleware"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// SearchHandler serves the store-backed search and, when Elasticsearch is
// enabled, the full-text search.
type SearchHandler struct {
	searchService service.SearchService
	fullText      service.FullTextSearcher
}

// NewSearchHandler creates a SearchHandler. fullText may be nil.
func NewSearchHandler(searchService service.SearchService, fullText service.FullTextSearcher) *SearchHandler {
	return &SearchHandler{searchService: searchService, fullText: fullText}
}

// Search handles POST /content/search.
func (h *SearchHandler) Search(c *gin.Context) {
	var req service.SearchQuery
	if !bindJSON(c, "Search", &req) {
		return
	}
	result, err := h.searchService.Search(c.Request.Context(), req, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "Search", err)
		return
	}
	respond(c, "success", result)
}

// FullTextSearch handles GET /content/search/fulltext?q=&size=.
func (h *SearchHandler) FullTextSearch(c *gin.Context) {
	if h.fullText == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    http.StatusServiceUnavailable,
			"message": "full-text search is not enabled",
			"data":    nil,
		})
		return
	}

	query := c.Query("q")
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		log.Warnf("FullTextSearch: invalid size %q", c.Query("size"))
		badRequest(c, "size must be a number")
		return
	}

	hits, err := h.fullText.Search(c.Request.Context(), query, size, middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "FullTextSearch", err)
		return
	}
	log.Infow("full-text search", "query", query, "hits", len(hits))
	respond(c, "success", hits)
}
