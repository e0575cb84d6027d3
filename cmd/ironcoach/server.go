package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ironcoachapp/ironcoach/internal/api"
	"github.com/ironcoachapp/ironcoach/internal/auth"
	"github.com/ironcoachapp/ironcoach/internal/chat"
	"github.com/ironcoachapp/ironcoach/internal/config"
	"github.com/ironcoachapp/ironcoach/internal/llm"
	"github.com/ironcoachapp/ironcoach/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ironcoach server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running ironcoach server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ironcoach system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd.Context())
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "ironcoach.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func newVerifier(cfg config.Config) auth.Verifier {
	if cfg.Auth.Mode == "static" {
		return auth.NewStaticVerifier(cfg.Auth.Token, auth.Identity{
			UserID: cfg.Auth.UserID,
			Email:  cfg.Auth.Email,
		})
	}
	return auth.NewRemoteVerifier(cfg.Auth.BaseURL, cfg.Auth.AnonKey)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "ironcoach version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("ironcoach is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("ironcoach is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	verifier := newVerifier(cfg)
	slog.Info("auth verifier configured", "mode", cfg.Auth.Mode)

	generator := llm.NewClientWithBaseURL(cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.BaseURL)
	chatSvc := chat.NewService(store, generator, cfg.Chat.HistoryLimit)

	handler := api.NewHandler(api.Deps{
		Store:         store,
		Chat:          chatSvc,
		Verifier:      verifier,
		AllowedOrigin: cfg.Server.AllowedOrigin,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store: store,
		Chat:  chatSvc,
		Operator: auth.Identity{
			UserID: cfg.Auth.UserID,
			Email:  cfg.Auth.Email,
		},
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "ironcoach listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("ironcoach is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop ironcoach (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to ironcoach (PID %d)", pid)
	return nil
}

func showStatus(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}

	var serverStatus, authStatus string

	// Probe the local server and the auth service concurrently.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
		req, err := http.NewRequestWithContext(gctx, "GET", url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err != nil {
			serverStatus = "stopped"
			return nil
		}
		resp.Body.Close()
		if resp.StatusCode == 200 {
			serverStatus = fmt.Sprintf("running on port %d", cfg.Server.Port)
		} else {
			serverStatus = fmt.Sprintf("error (HTTP %d)", resp.StatusCode)
		}
		return nil
	})
	g.Go(func() error {
		if cfg.Auth.Mode != "remote" {
			authStatus = "static token"
			return nil
		}
		authStatus = probeAuthHealth(gctx, client, cfg.Auth.BaseURL, cfg.Auth.AnonKey)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	printStatus("Server", "%s", serverStatus)
	printStatus("Auth", "%s", authStatus)
	printStatus("Model", "%s", cfg.Gemini.Model)
	printStatus("History limit", "%d turns", cfg.Chat.HistoryLimit)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func probeAuthHealth(ctx context.Context, client *http.Client, baseURL, anonKey string) string {
	req, err := http.NewRequestWithContext(ctx, "GET", baseURL+"/auth/v1/health", nil)
	if err != nil {
		return "unreachable"
	}
	req.Header.Set("apikey", anonKey)
	resp, err := client.Do(req)
	if err != nil {
		return "unreachable"
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		return fmt.Sprintf("error (HTTP %d)", resp.StatusCode)
	}
	return fmt.Sprintf("reachable at %s", baseURL)
}
