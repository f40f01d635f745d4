package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
	"github.com/pagemark/pagemark/internal/events"
	"github.com/pagemark/pagemark/internal/reader"
)

// HighlightsController serves the highlights & notes panel: the grouped
// highlight list, highlight/note creation, and deletion by group or by
// single annotation.
type HighlightsController struct {
	library     *library.Repository
	annotations *annotations.Repository
	groups      *reader.Service
	bus         *events.Bus
}

func NewHighlightsController(lib *library.Repository, anns *annotations.Repository, groups *reader.Service, bus *events.Bus) *HighlightsController {
	return &HighlightsController{
		library:     lib,
		annotations: anns,
		groups:      groups,
		bus:         bus,
	}
}

// GroupView is one highlights-panel entry: a highlight group plus its
// display label.
type GroupView struct {
	Text           string          `json:"text"`
	PageLabel      string          `json:"page_label"`
	FirstPageIndex int             `json:"first_page_index"`
	LastPageIndex  int             `json:"last_page_index"`
	Members        []reader.Member `json:"members"`
}

// ListGroups returns the document's highlight groups in panel order.
// GET /api/documents/:id/highlights
func (hc *HighlightsController) ListGroups(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := hc.library.GetByID(id); err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	} else if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	groups, err := hc.groups.Groups(id)
	if err != nil {
		respondInternalError(c, err, "compute highlight groups")
		return
	}

	views := make([]GroupView, 0, len(groups))
	for _, g := range groups {
		views = append(views, GroupView{
			Text:           g.Text,
			PageLabel:      reader.PageLabel(g),
			FirstPageIndex: g.FirstPageIndex,
			LastPageIndex:  g.LastPageIndex,
			Members:        g.Members,
		})
	}

	c.IndentedJSON(http.StatusOK, gin.H{"groups": views, "count": len(views)})
}

type addAnnotationRequest struct {
	PageIndex *int    `json:"page_index" binding:"required"`
	Kind      string  `json:"kind"`
	Text      string  `json:"text"`
	Contents  string  `json:"contents"`
	Note      string  `json:"note"`
	Color     string  `json:"color"`
	BoundsX   float64 `json:"bounds_x"`
	BoundsY   float64 `json:"bounds_y"`
	BoundsW   float64 `json:"bounds_w"`
	BoundsH   float64 `json:"bounds_h"`
}

// AddAnnotation creates a highlight or note on a page.
// POST /api/documents/:id/highlights
func (hc *HighlightsController) AddAnnotation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	doc, err := hc.library.GetByID(id)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	} else if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	if *req.PageIndex < 0 || *req.PageIndex >= doc.PageCount {
		respondBadRequest(c, "page_index out of range")
		return
	}

	kind := entities.AnnotationKind(req.Kind)
	if kind == "" {
		kind = entities.AnnotationKindHighlight
	}
	if kind != entities.AnnotationKindHighlight && kind != entities.AnnotationKindNote {
		respondBadRequest(c, "kind must be 'highlight' or 'note'")
		return
	}

	ann := &entities.Annotation{
		DocumentID: id,
		PageIndex:  *req.PageIndex,
		Kind:       kind,
		Text:       strings.TrimSpace(req.Text),
		Contents:   req.Contents,
		Note:       req.Note,
		Color:      req.Color,
		BoundsX:    req.BoundsX,
		BoundsY:    req.BoundsY,
		BoundsW:    req.BoundsW,
		BoundsH:    req.BoundsH,
	}
	if err := hc.annotations.Create(ann); err != nil {
		respondInternalError(c, err, "create annotation")
		return
	}

	// Invalidate synchronously so the next read recomputes, then announce
	// the mutation (the save task is enqueued by the bus subscriber).
	hc.groups.Invalidate(id)
	if hc.bus != nil {
		hc.bus.Publish(events.AnnotationsChanged{DocumentID: id})
	}

	respondCreated(c, ann)
}

type deleteGroupRequest struct {
	FirstPageIndex *int   `json:"first_page_index" binding:"required"`
	Text           string `json:"text" binding:"required"`
}

// DeleteGroup removes every annotation of a highlight group. Members
// already gone from the store are skipped silently.
// POST /api/documents/:id/highlights/groups/delete
func (hc *HighlightsController) DeleteGroup(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req deleteGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "first_page_index and text are required")
		return
	}

	found, err := hc.groups.DeleteGroup(id, *req.FirstPageIndex, req.Text)
	if err != nil {
		respondInternalError(c, err, "delete highlight group")
		return
	}
	if !found {
		respondNotFound(c, "highlight group")
		return
	}

	respondSuccess(c, "Highlight group deleted")
}

// DeleteAnnotation removes a single annotation.
// DELETE /api/annotations/:id
func (hc *HighlightsController) DeleteAnnotation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ann, err := hc.annotations.GetByID(id)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "annotation")
		return
	} else if err != nil {
		respondInternalError(c, err, "get annotation")
		return
	}

	if _, err := hc.annotations.Remove(id); err != nil {
		respondInternalError(c, err, "delete annotation")
		return
	}

	hc.groups.Invalidate(ann.DocumentID)
	if hc.bus != nil {
		hc.bus.Publish(events.AnnotationsChanged{DocumentID: ann.DocumentID})
	}

	respondSuccess(c, "Annotation deleted")
}

type setNoteRequest struct {
	Note string `json:"note"`
}

// SetNote replaces the user note on an annotation. An empty note clears it.
// PUT /api/annotations/:id/note
func (hc *HighlightsController) SetNote(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req setNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	ann, err := hc.annotations.GetByID(id)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "annotation")
		return
	} else if err != nil {
		respondInternalError(c, err, "get annotation")
		return
	}

	if err := hc.annotations.SetNote(id, req.Note); err != nil {
		respondInternalError(c, err, "set note")
		return
	}

	hc.groups.Invalidate(ann.DocumentID)
	if hc.bus != nil {
		hc.bus.Publish(events.AnnotationsChanged{DocumentID: ann.DocumentID})
	}

	respondSuccess(c, "Note updated")
}
