package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
	"github.com/pagemark/pagemark/internal/events"
	"github.com/pagemark/pagemark/internal/tasks"
)

// LibraryController serves the document library: registration, recents and
// removal. It is the service rendition of the original shell's recent
// documents menu and drag-and-drop open.
type LibraryController struct {
	library     *library.Repository
	annotations *annotations.Repository
	bus         *events.Bus
	taskClient  *tasks.Client
}

func NewLibraryController(lib *library.Repository, anns *annotations.Repository, bus *events.Bus, taskClient *tasks.Client) *LibraryController {
	return &LibraryController{
		library:     lib,
		annotations: anns,
		bus:         bus,
		taskClient:  taskClient,
	}
}

type outlineEntryRequest struct {
	Title     string `json:"title" binding:"required"`
	PageIndex int    `json:"page_index"`
	Level     int    `json:"level"`
}

type registerDocumentRequest struct {
	Title     string                `json:"title" binding:"required"`
	Author    string                `json:"author"`
	FilePath  string                `json:"file_path"`
	FileHash  string                `json:"file_hash"`
	PageCount int                   `json:"page_count" binding:"required,min=1"`
	Outline   []outlineEntryRequest `json:"outline"`
}

// RegisterDocument adds a document to the library.
// POST /api/documents
func (lc *LibraryController) RegisterDocument(c *gin.Context) {
	var req registerDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	doc := &entities.Document{
		Title:     req.Title,
		Author:    req.Author,
		FilePath:  req.FilePath,
		FileHash:  req.FileHash,
		PageCount: req.PageCount,
	}

	saved, err := lc.library.Register(doc)
	if err != nil {
		respondInternalError(c, err, "register document")
		return
	}

	if len(req.Outline) > 0 {
		outline := make([]entities.OutlineEntry, 0, len(req.Outline))
		for _, entry := range req.Outline {
			outline = append(outline, entities.OutlineEntry{
				Title:     entry.Title,
				PageIndex: entry.PageIndex,
				Level:     entry.Level,
			})
		}
		if err := lc.library.ReplaceOutline(saved.ID, outline); err != nil {
			respondInternalError(c, err, "store outline")
			return
		}
	}

	if lc.bus != nil {
		lc.bus.Publish(events.DocumentOpened{DocumentID: saved.ID})
	}

	respondCreated(c, saved)
}

// ListDocuments returns library entries, most recently opened first.
// GET /api/documents
func (lc *LibraryController) ListDocuments(c *gin.Context) {
	docs, err := lc.library.ListRecent(0)
	if err != nil {
		respondInternalError(c, err, "list documents")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"documents": docs, "count": len(docs)})
}

// GetDocument returns one library entry with its annotation count.
// GET /api/documents/:id
func (lc *LibraryController) GetDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	doc, err := lc.library.GetByID(id)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	count, err := lc.annotations.CountForDocument(id)
	if err != nil {
		respondInternalError(c, err, "count annotations")
		return
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"document":         doc,
		"annotation_count": count,
	})
}

// DeleteDocument removes a library entry. Its annotations are pruned by
// the background cleanup task.
// DELETE /api/documents/:id
func (lc *LibraryController) DeleteDocument(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := lc.library.GetByID(id); err == gorm.ErrRecordNotFound {
		respondNotFound(c, "document")
		return
	} else if err != nil {
		respondInternalError(c, err, "get document")
		return
	}

	if err := lc.library.Delete(id); err != nil {
		respondInternalError(c, err, "delete document")
		return
	}

	if lc.taskClient != nil {
		if _, err := lc.taskClient.Add(tasks.CleanupLibraryTask{}).Save(); err != nil {
			// Deletion already succeeded; cleanup will run on the next
			// scheduled pass.
			respondSuccess(c, "Document deleted (cleanup deferred)")
			return
		}
	}

	respondSuccess(c, "Document deleted")
}
