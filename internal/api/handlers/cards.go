package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/codyseavey/mtgssm/internal/metrics"
	"github.com/codyseavey/mtgssm/internal/models"
	"github.com/codyseavey/mtgssm/internal/services"
)

type resolveResult struct {
	id  uuid.UUID
	err error
}

type CardHandler struct {
	index   *services.CatalogIndex
	matcher *services.LegacyMatcher
	// The index never changes, so resolutions can be cached for the process lifetime
	resolveCache *lru.Cache[models.LegacyQuery, resolveResult]
}

func NewCardHandler(index *services.CatalogIndex, matcher *services.LegacyMatcher, cacheSize int) (*CardHandler, error) {
	if cacheSize <= 0 {
		cacheSize = 1024
	}
	cache, err := lru.New[models.LegacyQuery, resolveResult](cacheSize)
	if err != nil {
		return nil, err
	}
	return &CardHandler{
		index:        index,
		matcher:      matcher,
		resolveCache: cache,
	}, nil
}

func (h *CardHandler) GetCard(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	card := h.index.Card(id)
	if card == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
		return
	}
	c.JSON(http.StatusOK, card)
}

// ResolveCard maps legacy identifying fields (set, name, number,
// multiverseid, artist) to a single catalog card.
func (h *CardHandler) ResolveCard(c *gin.Context) {
	var q models.LegacyQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q.SetCode = strings.TrimSpace(q.SetCode)
	q.Name = strings.TrimSpace(q.Name)
	if q.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	result, ok := h.resolveCache.Get(q)
	if ok {
		metrics.ResolveCacheHits.Inc()
	} else {
		metrics.ResolveCacheMisses.Inc()
		id, err := h.matcher.Resolve(q)
		result = resolveResult{id: id, err: err}
		h.resolveCache.Add(q, result)
	}

	var matchErr *services.MatchError
	switch {
	case result.err == nil:
		c.JSON(http.StatusOK, gin.H{"card": h.index.Card(result.id)})
	case errors.Is(result.err, services.ErrAmbiguousMatch):
		candidates := []*models.Card{}
		if errors.As(result.err, &matchErr) {
			for _, id := range matchErr.Candidates {
				candidates = append(candidates, h.index.Card(id))
			}
		}
		c.JSON(http.StatusConflict, gin.H{"error": result.err.Error(), "candidates": candidates})
	case errors.Is(result.err, services.ErrNoMatch):
		c.JSON(http.StatusNotFound, gin.H{"error": result.err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.err.Error()})
	}
}
