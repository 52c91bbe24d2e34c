package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/docmanager/internal/document"
	"github.com/gogotex/docmanager/internal/document/service"
	"github.com/gogotex/docmanager/internal/storage"
	"github.com/gogotex/docmanager/pkg/logger"
)

// Exporter uploads snapshots of documents and reads them back by name. It is
// optional; without one the export routes answer 503.
type Exporter interface {
	Export(ctx context.Context, docs []document.Document) (storage.ExportResult, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type documentHandler struct {
	svc service.Service
	exp Exporter
}

func RegisterDocumentRoutes(r gin.IRouter, svc service.Service, exp Exporter) {
	h := &documentHandler{svc: svc, exp: exp}
	r.GET("/api/documents", h.list)
	r.POST("/api/documents", h.save)
	r.POST("/api/documents/search", h.search)
	r.POST("/api/documents/export", h.export)
	r.GET("/api/documents/export/:name", h.download)
	r.GET("/api/documents/:id", h.get)
}

// save upserts the posted document. 201 when the server assigned the id.
func (h *documentHandler) save(c *gin.Context) {
	var d document.Document
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	created := d.ID == ""
	saved, err := h.svc.Save(c.Request.Context(), d)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, saved)
}

func (h *documentHandler) get(c *gin.Context) {
	d, ok, err := h.svc.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *documentHandler) search(c *gin.Context) {
	req, ok := bindSearchRequest(c)
	if !ok {
		return
	}
	h.respondSearch(c, req)
}

// list answers GET /api/documents, reading filters from the query string:
// repeated titlePrefix, contains and authorId, RFC3339 createdFrom/createdTo.
func (h *documentHandler) list(c *gin.Context) {
	req := document.SearchRequest{
		TitlePrefixes:    c.QueryArray("titlePrefix"),
		ContainsContents: c.QueryArray("contains"),
		AuthorIDs:        c.QueryArray("authorId"),
	}
	var err error
	if req.CreatedFrom, err = queryTime(c, "createdFrom"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CreatedTo, err = queryTime(c, "createdTo"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respondSearch(c, req)
}

func (h *documentHandler) export(c *gin.Context) {
	if h.exp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
		return
	}
	req, ok := bindSearchRequest(c)
	if !ok {
		return
	}
	docs, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	res, err := h.exp.Export(c.Request.Context(), docs)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// download streams a stored snapshot back as JSON.
func (h *documentHandler) download(c *gin.Context) {
	if h.exp == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "export storage not configured"})
		return
	}
	rc, err := h.exp.Open(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, storage.ErrInvalidSnapshotName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	case errors.Is(err, storage.ErrDownloadUnsupported):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case err != nil:
		fail(c, http.StatusBadGateway, err)
		return
	}
	defer rc.Close()
	c.DataFromReader(http.StatusOK, -1, "application/json", rc, nil)
}

func (h *documentHandler) respondSearch(c *gin.Context, req document.SearchRequest) {
	docs, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// fail logs a backend failure and answers with its message.
func fail(c *gin.Context, status int, err error) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindSearchRequest accepts an empty body as the empty request.
func bindSearchRequest(c *gin.Context) (document.SearchRequest, bool) {
	var req document.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, false
	}
	return req, true
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New("invalid " + key + ": expected RFC3339 timestamp")
	}
	return &t, nil
}
