package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-attendance/internal/config"
	"github.com/kozaktomas/face-attendance/internal/faceclient"
	"github.com/kozaktomas/face-attendance/internal/gdrive"
	"github.com/kozaktomas/face-attendance/internal/gsheets"
	"github.com/kozaktomas/face-attendance/internal/ledger"
	"github.com/kozaktomas/face-attendance/internal/matcher"
	"github.com/kozaktomas/face-attendance/internal/store"
	"github.com/kozaktomas/face-attendance/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the attendance web server",
	Long: `Start the Face Attendance web server.
The server exposes the registration and attendance API for the kiosk
frontend plus the admin panel for reports, dashboards, and exports.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// buildLedger wires the spreadsheet repository behind a row cache.
func buildLedger(ctx context.Context, cfg *config.Config) (ledger.Repository, error) {
	sheet, err := gsheets.NewLedger(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID)
	if err != nil {
		return nil, err
	}

	var cache ledger.RowCache
	if cfg.Cache.RedisAddr != "" {
		redisCache := ledger.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL)
		if err := redisCache.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		fmt.Printf("Worksheet cache: redis (%s)\n", cfg.Cache.RedisAddr)
		cache = redisCache
	} else {
		fmt.Printf("Worksheet cache: in-process (TTL %s)\n", cfg.Cache.TTL)
		cache = ledger.NewMemoryCache(cfg.Cache.TTL)
	}

	return ledger.NewCachedRepository(sheet, cache), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	if cfg.Google.SpreadsheetID == "" {
		return errors.New("SHEETS_SPREADSHEET_ID environment variable is required")
	}
	if cfg.Google.ParentFolderID == "" {
		return errors.New("DRIVE_PARENT_FOLDER_ID environment variable is required")
	}

	faces := store.NewFaceStore(cfg.Store.FacesPath, cfg.Face.Dim)
	if err := faces.Load(); err != nil {
		return fmt.Errorf("loading face store: %w", err)
	}
	fmt.Printf("Face store loaded with %d registered faces\n", faces.Count())

	registry := store.NewClassRegistry(cfg.Store.RegistryPath)
	if err := registry.Load(); err != nil {
		return fmt.Errorf("loading class registry: %w", err)
	}

	ctx := context.Background()

	archive, err := gdrive.NewArchive(ctx, cfg.Google.CredentialsFile, cfg.Google.ParentFolderID)
	if err != nil {
		return fmt.Errorf("initializing drive archive: %w", err)
	}

	if err := registry.EnsureDefaults(ctx, cfg.Classes.Defaults, archive); err != nil {
		return fmt.Errorf("creating default classes: %w", err)
	}
	fmt.Printf("Class registry ready with %d classes\n", len(registry.Names()))

	repo, err := buildLedger(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing attendance ledger: %w", err)
	}

	embedder := faceclient.New(cfg.Face.URL)
	if err := embedder.Health(ctx); err != nil {
		fmt.Printf("Warning: face service not reachable yet: %v\n", err)
	}

	port, host := resolveServeHostPort(cmd)

	server := web.NewServer(web.Deps{
		Config:   cfg,
		Faces:    faces,
		Registry: registry,
		Matcher:  matcher.New(cfg.Face.Threshold, cfg.Face.IndexMin),
		Embedder: embedder,
		Archive:  archive,
		Folders:  archive,
		Ledger:   repo,
	}, port, host)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Attendance on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
