package entities

import (
	"time"

	"gorm.io/gorm"
)

type AnnotationKind string

const (
	AnnotationKindHighlight AnnotationKind = "highlight"
	AnnotationKindNote      AnnotationKind = "note"
)

// Document is a library entry for a registered paged document.
// LastPageIndex is the persisted reading position (zero-based).
type Document struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Title         string         `gorm:"index;size:512" json:"title"`
	Author        string         `gorm:"index;size:256" json:"author,omitempty"`
	FilePath      string         `gorm:"size:1024" json:"file_path,omitempty"`
	FileHash      string         `gorm:"index;size:64" json:"file_hash,omitempty"`
	PageCount     int            `json:"page_count"`
	LastPageIndex int            `json:"last_page_index"`
	OpenedAt      time.Time      `gorm:"index" json:"opened_at,omitempty"`
	Annotations   []Annotation   `gorm:"foreignKey:DocumentID" json:"annotations,omitempty"`
	Outline       []OutlineEntry `gorm:"foreignKey:DocumentID" json:"outline,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// Annotation is a page-scoped highlight or note. Position orders
// annotations within a page; the pair (PageIndex, Position) gives the
// stable page-then-in-page ordering the highlights panel relies on.
type Annotation struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	DocumentID uint           `gorm:"index" json:"document_id"`
	PageIndex  int            `gorm:"index" json:"page_index"`
	Position   int            `json:"position"`
	Kind       AnnotationKind `gorm:"size:20;default:'highlight'" json:"kind"`

	// Text is the underlying document text the annotation covers
	// (trimmed). Contents is any explicit free text stored on the
	// annotation itself; Note is a user-attached comment.
	Text     string `gorm:"type:text" json:"text"`
	Contents string `gorm:"type:text" json:"contents,omitempty"`
	Note     string `gorm:"type:text" json:"note,omitempty"`

	Color string `gorm:"size:10" json:"color,omitempty"`

	// Bounds in page coordinate space, opaque to grouping.
	BoundsX float64 `json:"bounds_x"`
	BoundsY float64 `json:"bounds_y"`
	BoundsW float64 `json:"bounds_w"`
	BoundsH float64 `json:"bounds_h"`

	Document  Document  `gorm:"foreignKey:DocumentID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OutlineEntry is one table-of-contents row for a document.
type OutlineEntry struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	DocumentID uint     `gorm:"index" json:"document_id"`
	Title      string   `gorm:"size:512" json:"title"`
	PageIndex  int      `json:"page_index"`
	Level      int      `json:"level"`
	SortOrder  int      `json:"sort_order"`
	Document   Document `gorm:"foreignKey:DocumentID" json:"-"`
}

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

func (Annotation) TableName() string {
	return "annotations"
}

func (OutlineEntry) TableName() string {
	return "outline_entries"
}

func (Setting) TableName() string {
	return "settings"
}
