// Package exporters writes a document's highlights to markdown. The export
// is the "save" target of the application: best-effort, asynchronous, and
// regenerated in full on every save request.
package exporters

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
	"github.com/pagemark/pagemark/internal/reader"
)

type ExportResult struct {
	DocumentsProcessed int
	GroupsProcessed    int
	DocumentsFailed    int
}

// DocumentMarkdownExporter renders one markdown file per document,
// containing its highlight groups (with spread page labels) and notes.
type DocumentMarkdownExporter struct {
	library     *library.Repository
	annotations *annotations.Repository
	groups      *reader.Service
	OutputDir   string
}

func NewDocumentMarkdownExporter(lib *library.Repository, anns *annotations.Repository, groups *reader.Service, outputDir string) *DocumentMarkdownExporter {
	return &DocumentMarkdownExporter{
		library:     lib,
		annotations: anns,
		groups:      groups,
		OutputDir:   outputDir,
	}
}

func (e *DocumentMarkdownExporter) ensureOutputDir() error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	return nil
}

// ExportDocument writes the markdown file for one document and returns its
// path.
func (e *DocumentMarkdownExporter) ExportDocument(documentID uint) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}

	doc, err := e.library.GetByID(documentID)
	if err != nil {
		return "", fmt.Errorf("load document %d: %w", documentID, err)
	}

	groups, err := e.groups.Groups(documentID)
	if err != nil {
		return "", fmt.Errorf("compute groups for document %d: %w", documentID, err)
	}

	records, err := e.annotations.ListForDocument(documentID)
	if err != nil {
		return "", fmt.Errorf("list annotations for document %d: %w", documentID, err)
	}

	outputPath := filepath.Join(e.OutputDir, sanitizeFilename(doc.Title)+".md")
	content := GenerateMarkdown(doc, groups, records)
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// ExportAll exports every library document, continuing past individual
// failures.
func (e *DocumentMarkdownExporter) ExportAll() (ExportResult, error) {
	docs, err := e.library.ListRecent(0)
	if err != nil {
		return ExportResult{}, err
	}

	var result ExportResult
	for _, doc := range docs {
		if _, err := e.ExportDocument(doc.ID); err != nil {
			result.DocumentsFailed++
			continue
		}
		result.DocumentsProcessed++
	}
	return result, nil
}

// GenerateMarkdown renders the export body: frontmatter, one section per
// highlight group labelled with its spread range, and a trailing notes
// section for annotations carrying user notes.
func GenerateMarkdown(doc *entities.Document, groups []reader.Group, records []entities.Annotation) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: document_highlights\n")
	fmt.Fprintf(&builder, "created_at: %s\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&builder, "title: \"%s\"\n", strings.ReplaceAll(doc.Title, "\"", "\\\""))
	if doc.Author != "" {
		fmt.Fprintf(&builder, "author: \"%s\"\n", strings.ReplaceAll(doc.Author, "\"", "\\\""))
	}
	fmt.Fprintf(&builder, "pages: %d\n", doc.PageCount)
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "## Highlights\n\n")

	for _, group := range groups {
		fmt.Fprintf(&builder, "### %s\n\n", reader.PageLabel(group))
		fmt.Fprintf(&builder, "> %s\n\n", strings.ReplaceAll(group.Text, "\n", "\n> "))
	}

	var noted []entities.Annotation
	for _, rec := range records {
		if rec.Note != "" {
			noted = append(noted, rec)
		}
	}
	if len(noted) > 0 {
		fmt.Fprintf(&builder, "## Notes\n\n")
		for _, rec := range noted {
			fmt.Fprintf(&builder, "- (page %d) %s\n", reader.SpreadNumber(rec.PageIndex), rec.Note)
		}
	}

	return builder.String()
}

// sanitizeFilename strips path separators and characters that commonly
// break filesystems from a document title.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	sanitized := strings.TrimSpace(replacer.Replace(name))
	if sanitized == "" {
		sanitized = "untitled"
	}
	return sanitized
}
