package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"html-presenter/internal/config"
	"html-presenter/internal/db"
	"html-presenter/internal/eventloop"
	"html-presenter/internal/frames"
	"html-presenter/internal/handlers"
	"html-presenter/internal/models"
	"html-presenter/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the presenter server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Initialize database
	if err := db.InitDatabase(cfg.Database.Path); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Default slides
	manifest, err := services.NewManifestStore(cfg.Slides.Dir, cfg.Slides.Include, cfg.Slides.Exclude)
	if err != nil {
		return err
	}
	if err := manifest.Load(); err != nil {
		return fmt.Errorf("failed to load slides: %w", err)
	}

	// Initialize services
	content := services.NewContentStore(cfg.Slides.Dir)
	deck := services.NewDeckService(content, manifest.Slides())
	journal := services.NewJournalService(db.DB)
	remotes := services.NewRemoteService(db.DB)
	hub := services.NewWebSocketService()
	go hub.Run(ctx)

	loop := eventloop.NewRunner(cfg.Viewer.FrameInterval)
	go loop.Run(ctx)

	host := frames.NewHost(ctx, loop, content, frames.Options{
		Scaler:         cfg.Scaler.Options(),
		ViewportWidth:  cfg.Viewer.Width,
		ViewportHeight: cfg.Viewer.Height,
		Autoplay:       cfg.Viewer.Autoplay,
		FrameInterval:  cfg.Viewer.FrameInterval,
	})
	defer host.Close()

	viewer := services.NewViewerService(loop, deck, host, hub, services.ViewerOptions{
		Engine:     cfg.Viewer.EngineConfig(),
		InputRate:  cfg.Viewer.InputRate,
		InputBurst: cfg.Viewer.InputBurst,
	})
	hub.SetCommandHandler(viewer)
	viewer.OnTransition(func(rec models.TransitionRecord) {
		if _, err := journal.Record(rec); err != nil {
			log.Printf("Failed to record transition: %v", err)
		}
	})
	viewer.Start()

	if cfg.Slides.Watch {
		watcher, err := services.NewSlideWatcher(cfg.Slides.Dir, manifest, deck)
		if err != nil {
			log.Printf("Slide watching disabled: %v", err)
		} else {
			defer watcher.Close()
			go func() {
				if err := watcher.Run(ctx); err != nil {
					log.Printf("Slide watcher stopped: %v", err)
				}
			}()
		}
	}

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(ctx, hub, cfg.CORS.AllowedOrigins)
	staticHandler := handlers.NewStaticHandler(cfg.Slides.Dir, content, hub.ClientCount)
	deckHandler := handlers.NewDeckHandler(deck, services.NewIngestor(content), content, viewer, cfg.Slides.MaxUploadMB)
	viewerHandler := handlers.NewViewerHandler(viewer, host, journal)
	remoteHandler := handlers.NewRemoteHandler(viewer, remotes)

	// Setup routes
	router := handlers.SetupRoutes(wsHandler, staticHandler, deckHandler, viewerHandler, remoteHandler, cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})

	// Configure server
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		// Configure TLS if enabled
		if cfg.TLS.Enabled {
			server.TLSConfig = &tls.Config{
				MinVersion: cfg.TLS.TLSVersion(),
			}

			log.Printf("Starting HTTPS server on %s", server.Addr)
			log.Printf("TLS Certificate: %s", cfg.TLS.CertFile)
			log.Printf("TLS Key: %s", cfg.TLS.KeyFile)
			log.Printf("TLS Min Version: %s", cfg.TLS.MinVersion)

			errCh <- server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
			return
		}
		log.Printf("Starting HTTP server on %s", server.Addr)
		log.Printf("Warning: HTTP mode is not recommended for production")

		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
