package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/events"
	"github.com/pagemark/pagemark/internal/reader"
)

// ReadingController serves per-document reading state: the remembered page
// and the table of contents used for navigation.
type ReadingController struct {
	library *library.Repository
	bus     *events.Bus
}

func NewReadingController(lib *library.Repository, bus *events.Bus) *ReadingController {
	return &ReadingController{
		library: lib,
		bus:     bus,
	}
}

// GetPosition returns the last-read page for a document.
// GET /api/documents/:id/position
func (rc *ReadingController) GetPosition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	pageIndex, err := rc.library.GetReadingPosition(id)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get reading position")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page_index":    pageIndex,
		"spread_number": reader.SpreadNumber(pageIndex),
	})
}

type setPositionRequest struct {
	PageIndex *int `json:"page_index" binding:"required"`
}

// SetPosition stores the page the reader is currently on.
// PUT /api/documents/:id/position
func (rc *ReadingController) SetPosition(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setPositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "page_index is required")
		return
	}
	if *req.PageIndex < 0 {
		respondBadRequest(c, "page_index must be non-negative")
		return
	}

	err := rc.library.SetReadingPosition(id, *req.PageIndex)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "set reading position")
		return
	}

	if rc.bus != nil {
		rc.bus.Publish(events.PageChanged{DocumentID: id, PageIndex: *req.PageIndex})
	}

	respondSuccess(c, "Reading position updated")
}

// GetOutline returns the document's table of contents.
// GET /api/documents/:id/outline
func (rc *ReadingController) GetOutline(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := rc.library.GetByID(id); err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	} else if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	outline, err := rc.library.GetOutline(id)
	if err != nil {
		respondInternalError(c, err, "get outline")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{"outline": outline, "count": len(outline)})
}
