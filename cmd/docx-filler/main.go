package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-docx-filler/internal/config"
	"github.com/a3tai/mcp-docx-filler/internal/convert"
	"github.com/a3tai/mcp-docx-filler/internal/filler"
	"github.com/a3tai/mcp-docx-filler/internal/ingest"
	"github.com/a3tai/mcp-docx-filler/internal/mcp"
	"github.com/a3tai/mcp-docx-filler/internal/templates"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) {
	switch {
	case cfg.IsServerMode():
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	case cfg.IsDebug():
		// stdout carries the MCP protocol or the batch traces
		log.SetOutput(os.Stderr)
	default:
		log.SetOutput(io.Discard)
	}
}

// runBatch executes one of the command line modes and writes its traces
// to w. Only failures to acquire the inputs abort the run; per-document
// failures are reported in the traces.
func runBatch(ctx context.Context, cfg *config.Config, svc *filler.Service, w io.Writer) error {
	paths, err := filler.ResolveInputs(cfg.Doc, cfg.Input)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(w, "no .docx or .doc files found")
		return nil
	}

	opts := filler.Options{OutDir: cfg.OutDir, Row: cfg.Row, DryRun: cfg.DryRun, Workers: cfg.Workers}

	switch cfg.Mode {
	case config.ModeDetect:
		for _, rep := range svc.DetectAll(ctx, paths) {
			filler.WriteDetect(w, rep)
		}
		return nil

	case config.ModeSuggest:
		for _, p := range paths {
			filler.WriteSuggest(w, svc.Suggest(ctx, p))
		}
		return nil

	case config.ModeAuto:
		records, err := ingest.LoadRecords(cfg.Excel)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", cfg.Excel, err)
		}
		return writeRun(w, func() (*filler.RunReport, error) {
			return svc.AutoFill(ctx, paths, records, opts)
		})

	case config.ModeFill:
		wb, err := ingest.LoadWorkbook(cfg.Excel)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", cfg.Excel, err)
		}
		return writeRun(w, func() (*filler.RunReport, error) {
			return svc.FillWithWorkbook(ctx, paths, wb, opts)
		})
	}
	return fmt.Errorf("mode %s is not a batch mode", cfg.Mode)
}

func writeRun(w io.Writer, run func() (*filler.RunReport, error)) error {
	report, err := run()
	if report != nil {
		filler.WriteRun(w, report)
	}
	return err
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server) {
	// the parent process controls our lifecycle; exit when stdin closes
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}
	if cfg.IsDebug() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	registry, err := templates.LoadRegistry(cfg.Templates...)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	converter := convert.New(cfg.Soffice)
	defer func() { _ = converter.Close() }()

	service := filler.NewService(registry, converter, cfg.MaxFileSize)
	service.SetDebug(cfg.IsDebug())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsBatchMode() {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		err := runBatch(ctx, cfg, service, os.Stdout)
		stop()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			_ = converter.Close()
			os.Exit(1)
		}
		return
	}

	server, err := mcp.NewServer(cfg, service)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, server)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP DOCX Filler\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
