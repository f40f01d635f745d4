package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/database"
	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/exporters"
	"github.com/pagemark/pagemark/internal/provider"
	"github.com/pagemark/pagemark/internal/reader"
)

// ExportMarkdownCommand renders the markdown export for one document or for
// the whole library.
type ExportMarkdownCommand struct {
	DatabasePath string
	OutputDir    string
	DocumentID   uint
}

func NewExportMarkdownCommand() *ExportMarkdownCommand {
	return &ExportMarkdownCommand{}
}

func (cmd *ExportMarkdownCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export-markdown", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	fs.StringVar(&cmd.OutputDir, "output", config.DefaultExportDir, "Directory to write markdown files to")
	documentID := fs.Uint("id", 0, "Document ID to export (0 exports the whole library)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export-markdown [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Write markdown exports of highlight groups and notes.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s export-markdown\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s export-markdown -id 3 -output ~/notes\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd.DocumentID = uint(*documentID)
	return nil
}

func (cmd *ExportMarkdownCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	libraryRepo := library.NewRepository(db.DB)
	annotationsRepo := annotations.NewRepository(db.DB)

	// No bus and no save callback here: the export itself is the save, so
	// providers have nothing to announce.
	providerSource := provider.NewSource(libraryRepo, annotationsRepo, nil)
	readerService := reader.NewService(providerSource, nil)
	exporter := exporters.NewDocumentMarkdownExporter(libraryRepo, annotationsRepo, readerService, cmd.OutputDir)

	if cmd.DocumentID != 0 {
		path, err := exporter.ExportDocument(cmd.DocumentID)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("Exported document %d to %s\n", cmd.DocumentID, path)
		return nil
	}

	result, err := exporter.ExportAll()
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Println("=== Export Summary ===")
	fmt.Printf("Documents exported: %d\n", result.DocumentsProcessed)
	if result.DocumentsFailed > 0 {
		fmt.Printf("Documents failed: %d\n", result.DocumentsFailed)
	}
	fmt.Printf("Output directory: %s\n", cmd.OutputDir)
	return nil
}
