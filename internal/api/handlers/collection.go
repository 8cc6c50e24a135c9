package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/mtgssm/internal/services"
)

// Maximum accepted size of an uploaded collection file
const maxImportBytes = 32 << 20

type CollectionHandler struct {
	index             *services.CatalogIndex
	importService     *services.ImportService
	collectionService *services.CollectionService
	lenientByDefault  bool
}

func NewCollectionHandler(index *services.CatalogIndex, importService *services.ImportService, collectionService *services.CollectionService, lenientByDefault bool) *CollectionHandler {
	return &CollectionHandler{
		index:             index,
		importService:     importService,
		collectionService: collectionService,
		lenientByDefault:  lenientByDefault,
	}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	counts, err := h.collectionService.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, services.Entries(h.index, counts))
}

func (h *CollectionHandler) GetStats(c *gin.Context) {
	stats, err := h.collectionService.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

type importFailure struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// ImportCollection reads a CSV collection file (multipart "file" field or the
// raw request body) in the current or any legacy format and merges it into
// the stored collection.
//
// Query params: lenient (collect unresolved rows instead of failing),
// dry_run (report only), replace (overwrite instead of merging).
func (h *CollectionHandler) ImportCollection(c *gin.Context) {
	lenient := queryBool(c, "lenient", h.lenientByDefault)
	dryRun := queryBool(c, "dry_run", false)
	replace := queryBool(c, "replace", false)

	data, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := services.ReadRows(bytes.NewReader(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	result, err := h.importService.Import(ctx, rows, lenient)
	if err != nil {
		var rowErr *services.RowError
		if errors.As(err, &rowErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "line": rowErr.Line})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !dryRun {
		if replace {
			err = h.collectionService.Replace(ctx, result.Counts)
		} else {
			err = h.collectionService.Merge(ctx, result.Counts)
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	failures := make([]importFailure, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, importFailure{Line: f.Line, Error: f.Err.Error()})
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":     result.Rows,
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"cards":    result.Counts.Total(),
		"failures": failures,
		"dry_run":  dryRun,
	})
}

// ExportCollection writes the stored collection as CSV. verbose=true also
// lists every unowned catalog card.
func (h *CollectionHandler) ExportCollection(c *gin.Context) {
	counts, err := h.collectionService.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	serializer := services.NewCSVSerializer(h.index, queryBool(c, "verbose", false))
	if err := serializer.Write(&buf, counts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="collection.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func readUpload(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return nil, errors.New("failed to open uploaded file")
		}
		defer src.Close()
		return io.ReadAll(io.LimitReader(src, maxImportBytes))
	}

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	if len(data) == 0 {
		return nil, errors.New("no collection file provided")
	}
	return data, nil
}

func queryBool(c *gin.Context, key string, fallback bool) bool {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
