package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pagemark/pagemark/internal/config"
	"github.com/pagemark/pagemark/internal/database"
	"github.com/pagemark/pagemark/internal/database/annotations"
	"github.com/pagemark/pagemark/internal/database/library"
	"github.com/pagemark/pagemark/internal/database/preferences"
	"github.com/pagemark/pagemark/internal/events"
	"github.com/pagemark/pagemark/internal/exporters"
	http_controllers "github.com/pagemark/pagemark/internal/http"
	"github.com/pagemark/pagemark/internal/provider"
	"github.com/pagemark/pagemark/internal/reader"
	"github.com/pagemark/pagemark/internal/scheduler"
	"github.com/pagemark/pagemark/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Pagemark v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	libraryRepo := library.NewRepository(db.DB)
	annotationsRepo := annotations.NewRepository(db.DB)
	preferencesRepo := preferences.NewRepository(db.DB)

	// Event bus: the single dispatch point for document/page/annotation
	// notifications.
	bus := events.NewBus(64)
	defer bus.Close()

	// Providers announce saves on the bus; the subscriber below turns the
	// announcement into an export.
	providerSource := provider.NewSource(libraryRepo, annotationsRepo, func(documentID uint) {
		bus.Publish(events.AnnotationsChanged{DocumentID: documentID})
	})

	readerService := reader.NewService(providerSource, bus)
	exporter := exporters.NewDocumentMarkdownExporter(libraryRepo, annotationsRepo, readerService, cfg.Export.OutputDir)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSaveDocumentQueue(exporter),
			tasks.NewCleanupLibraryQueue(db),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Wire event subscribers. With the task queue enabled, saves go
	// through it (one worker, so writes never overlap); without it, the
	// bus dispatcher itself serializes the exports.
	bus.Subscribe(func(e events.Event) {
		switch ev := e.(type) {
		case events.AnnotationsChanged:
			if taskClient != nil {
				if _, err := taskClient.Add(tasks.SaveDocumentTask{DocumentID: ev.DocumentID}).Save(); err != nil {
					log.Printf("Failed to enqueue save for document %d: %v", ev.DocumentID, err)
				}
				return
			}
			if _, err := exporter.ExportDocument(ev.DocumentID); err != nil {
				log.Printf("Best-effort save failed for document %d: %v", ev.DocumentID, err)
			}
		case events.DocumentOpened:
			if err := libraryRepo.TouchOpened(ev.DocumentID); err != nil {
				log.Printf("Failed to touch document %d: %v", ev.DocumentID, err)
			}
			if err := preferencesRepo.SetLastOpenedDocument(ev.DocumentID); err != nil {
				log.Printf("Failed to remember last opened document: %v", err)
			}
		case events.PageChanged:
			// Position is persisted by the controller before the event is
			// published; nothing further to do here yet.
		}
	})

	// Start the periodic full-library export if configured
	var exportScheduler *scheduler.ExportSyncScheduler
	if cfg.ExportSync.Enabled {
		exportScheduler = scheduler.NewExportSyncScheduler(exporter, cfg.ExportSync.Schedule)
		if err := exportScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: failed to start export sync scheduler: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:      db,
		Library:       libraryRepo,
		Annotations:   annotationsRepo,
		Preferences:   preferencesRepo,
		ReaderService: readerService,
		Bus:           bus,
		TaskClient:    taskClient,
		Version:       version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if exportScheduler != nil {
			exportScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
