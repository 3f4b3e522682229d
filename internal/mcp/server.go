package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-docx-filler/internal/config"
	"github.com/a3tai/mcp-docx-filler/internal/descriptions"
	"github.com/a3tai/mcp-docx-filler/internal/filler"
	"github.com/a3tai/mcp-docx-filler/internal/ingest"
	"github.com/a3tai/mcp-docx-filler/internal/security"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *filler.Service
	paths     *security.PathValidator
	mcpServer *server.MCPServer

	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance. Every path a client sends
// is confined to cfg.Directory.
func NewServer(cfg *config.Config, service *filler.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	paths, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("invalid working directory: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		service:   service,
		paths:     paths,
		mcpServer: mcpServer,
		stdin:     os.Stdin,
		stdout:    os.Stdout,
	}
	s.registerTools()
	return s, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"docx_detect",
		mcp.WithDescription(descriptions.GetToolDescription("docx_detect")),
		mcp.WithString("path", mcp.Description("Document to classify, relative to the working directory")),
		mcp.WithString("input", mcp.Description("Directory or glob of documents to classify")),
	), s.handleDetect)

	s.mcpServer.AddTool(mcp.NewTool(
		"docx_suggest",
		mcp.WithDescription(descriptions.GetToolDescription("docx_suggest")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document to analyze")),
	), s.handleSuggest)

	s.mcpServer.AddTool(mcp.NewTool(
		"docx_fill",
		mcp.WithDescription(descriptions.GetToolDescription("docx_fill")),
		mcp.WithString("excel", mcp.Required(), mcp.Description("Master workbook with a 'data' sheet")),
		mcp.WithString("path", mcp.Description("Document to fill")),
		mcp.WithString("input", mcp.Description("Directory or glob of documents to fill")),
		mcp.WithString("out", mcp.Description("Output directory (defaults to the configured one)")),
		mcp.WithNumber("row", mcp.Description("Only this 1-based data row; 0 or absent fills every row")),
		mcp.WithBoolean("dry_run", mcp.Description("Return the trace without writing files")),
		mcp.WithBoolean("use_mapping", mcp.Description("Use the workbook's 'mapping' and 'settings' sheets instead of template detection")),
	), s.handleFill)

	s.mcpServer.AddTool(mcp.NewTool(
		"docx_list_templates",
		mcp.WithDescription(descriptions.GetToolDescription("docx_list_templates")),
	), s.handleListTemplates)

	s.mcpServer.AddTool(mcp.NewTool(
		"docx_validate",
		mcp.WithDescription(descriptions.GetToolDescription("docx_validate")),
		mcp.WithString("path", mcp.Required(), mcp.Description("File to validate")),
	), s.handleValidate)
}

func (s *Server) handleDetect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputs, err := s.resolveInputs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(inputs) == 0 {
		return mcp.NewToolResultText("No .docx or .doc files found"), nil
	}

	var b strings.Builder
	for _, rep := range s.service.DetectAll(ctx, inputs) {
		filler.WriteDetect(&b, rep)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	abs, err := s.paths.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	rep := s.service.Suggest(ctx, abs)
	if rep.Err != nil {
		return mcp.NewToolResultError(rep.Err.Error()), nil
	}
	var b strings.Builder
	filler.WriteSuggest(&b, rep)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	excel, err := request.RequireString("excel")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	excel, err = s.paths.Resolve(excel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	inputs, err := s.resolveInputs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := stringArg(args, "out")
	if out == "" {
		out = s.config.OutDir
	}
	outDir, err := s.paths.ResolveDir(out)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	row, err := intArg(args, "row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts := filler.Options{
		OutDir:  outDir,
		Row:     row,
		DryRun:  boolArg(args, "dry_run"),
		Workers: s.config.Workers,
	}

	var report *filler.RunReport
	if boolArg(args, "use_mapping") {
		wb, lerr := ingest.LoadWorkbook(excel)
		if lerr != nil {
			return mcp.NewToolResultError(lerr.Error()), nil
		}
		report, err = s.service.FillWithWorkbook(ctx, inputs, wb, opts)
	} else {
		records, lerr := ingest.LoadRecords(excel)
		if lerr != nil {
			return mcp.NewToolResultError(lerr.Error()), nil
		}
		report, err = s.service.AutoFill(ctx, inputs, records, opts)
	}
	if report == nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	filler.WriteRun(&b, report)
	if err != nil {
		fmt.Fprintf(&b, "run interrupted: %v\n", err)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListTemplates(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s v%s - %d template(s), working directory %s\n\n",
		s.config.ServerName, s.config.Version, s.service.Registry().Len(), s.paths.Root())
	filler.WriteTemplates(&b, s.service.Registry())
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	abs, err := s.paths.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.service.Validate(abs)
	if result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("Document %s is valid and readable", path)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Validation failed for %s: %s", path, result.Message)), nil
}

// resolveInputs confines path/input to the working directory and expands
// them into the documents to process.
func (s *Server) resolveInputs(args map[string]any) ([]string, error) {
	doc, input := stringArg(args, "path"), stringArg(args, "input")
	if doc == "" && input == "" {
		return nil, errors.New("either path or input is required")
	}

	var err error
	if input != "" {
		if input, err = s.paths.Resolve(input); err != nil {
			return nil, err
		}
		doc = ""
	} else if doc, err = s.paths.Resolve(doc); err != nil {
		return nil, err
	}

	found, err := filler.ResolveInputs(doc, input)
	if err != nil {
		return nil, err
	}
	out := found[:0]
	for _, p := range found {
		if ok, werr := s.paths.Within(p); werr == nil && ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// intArg accepts JSON numbers and numeric strings.
func intArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case nil:
		return 0, nil
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%s must be an integer", key)
	}
}

func boolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting docx filler MCP server in stdio mode")
		log.Printf("Working directory: %s", s.paths.Root())
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.Default())
	if err := stdio.Listen(ctx, s.stdin, s.stdout); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))
	log.Printf("Starting docx filler MCP server (SSE) on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve SSE: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
