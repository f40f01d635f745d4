package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/database"
	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/entities"
)

// sidecarDocument is the JSON shape of an annotation sidecar file: document
// metadata plus its page-scoped annotations.
type sidecarDocument struct {
	Title     string              `json:"title"`
	Author    string              `json:"author"`
	FilePath  string              `json:"file_path"`
	FileHash  string              `json:"file_hash"`
	PageCount int                 `json:"page_count"`
	Outline   []sidecarOutline    `json:"outline"`
	Items     []sidecarAnnotation `json:"annotations"`
}

type sidecarOutline struct {
	Title     string `json:"title"`
	PageIndex int    `json:"page_index"`
	Level     int    `json:"level"`
}

type sidecarAnnotation struct {
	PageIndex int     `json:"page_index"`
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

// ImportAnnotationsCommand registers a document and its annotations from a
// sidecar JSON file.
type ImportAnnotationsCommand struct {
	SidecarPath  string
	DatabasePath string
	Verbose      bool
	DryRun       bool
}

func NewImportAnnotationsCommand() *ImportAnnotationsCommand {
	return &ImportAnnotationsCommand{}
}

func (cmd *ImportAnnotationsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-annotations", flag.ExitOnError)

	fs.StringVar(&cmd.SidecarPath, "file", "", "Path to the annotation sidecar JSON file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-annotations -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Register a document and its highlight/note annotations from a sidecar\n")
		fmt.Fprintf(os.Stderr, "JSON file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s import-annotations -file mybook.annotations.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s import-annotations -file mybook.annotations.json -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.SidecarPath == "" {
		return fmt.Errorf("required flag -file not provided")
	}

	return nil
}

func (cmd *ImportAnnotationsCommand) Run() error {
	fmt.Println("Annotation Import")
	fmt.Println("=================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	data, err := os.ReadFile(cmd.SidecarPath)
	if err != nil {
		return fmt.Errorf("failed to read sidecar file: %w", err)
	}

	var sidecar sidecarDocument
	if err := json.Unmarshal(data, &sidecar); err != nil {
		return fmt.Errorf("failed to parse sidecar file: %w", err)
	}

	if sidecar.Title == "" {
		return fmt.Errorf("sidecar file has no document title")
	}
	if sidecar.PageCount <= 0 {
		return fmt.Errorf("sidecar file has no page count")
	}

	fmt.Printf("Document: %q by %q (%d pages)\n", sidecar.Title, sidecar.Author, sidecar.PageCount)
	fmt.Printf("Annotations: %d, outline entries: %d\n", len(sidecar.Items), len(sidecar.Outline))

	if cmd.Verbose {
		for i, item := range sidecar.Items {
			fmt.Printf("  %d. page %d [%s] %.60q\n", i+1, item.PageIndex, item.Kind, item.Text)
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	fmt.Printf("\nSaving to database: %s\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	libraryRepo := library.NewRepository(db.DB)
	annotationsRepo := annotations.NewRepository(db.DB)

	doc, err := libraryRepo.Register(&entities.Document{
		Title:     sidecar.Title,
		Author:    sidecar.Author,
		FilePath:  sidecar.FilePath,
		FileHash:  sidecar.FileHash,
		PageCount: sidecar.PageCount,
	})
	if err != nil {
		return fmt.Errorf("failed to register document: %w", err)
	}

	if len(sidecar.Outline) > 0 {
		outline := make([]entities.OutlineEntry, 0, len(sidecar.Outline))
		for _, entry := range sidecar.Outline {
			outline = append(outline, entities.OutlineEntry{
				Title:     entry.Title,
				PageIndex: entry.PageIndex,
				Level:     entry.Level,
			})
		}
		if err := libraryRepo.ReplaceOutline(doc.ID, outline); err != nil {
			return fmt.Errorf("failed to store outline: %w", err)
		}
	}

	var imported, skipped int
	for _, item := range sidecar.Items {
		if item.PageIndex < 0 || item.PageIndex >= sidecar.PageCount {
			skipped++
			if cmd.Verbose {
				fmt.Printf("  [SKIP] page %d out of range\n", item.PageIndex)
			}
			continue
		}

		kind := entities.AnnotationKind(item.Kind)
		if kind != entities.AnnotationKindHighlight && kind != entities.AnnotationKindNote {
			kind = entities.AnnotationKindHighlight
		}

		ann := &entities.Annotation{
			DocumentID: doc.ID,
			PageIndex:  item.PageIndex,
			Kind:       kind,
			Text:       item.Text,
			Contents:   item.Contents,
			Note:       item.Note,
			Color:      item.Color,
			BoundsX:    item.BoundsX,
			BoundsY:    item.BoundsY,
			BoundsW:    item.BoundsW,
			BoundsH:    item.BoundsH,
		}
		if err := annotationsRepo.Create(ann); err != nil {
			skipped++
			fmt.Printf("  [ERROR] failed to save annotation on page %d: %v\n", item.PageIndex, err)
			continue
		}
		imported++
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Document ID: %d\n", doc.ID)
	fmt.Printf("Annotations saved: %d/%d\n", imported, len(sidecar.Items))
	if skipped > 0 {
		fmt.Printf("Skipped: %d\n", skipped)
	}

	fmt.Println("\nImport complete!")
	return nil
}
