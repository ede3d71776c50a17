package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/docparse/internal/config"
	"github.com/a3tai/docparse/internal/descriptions"
	"github.com/a3tai/docparse/internal/logging"
	"github.com/a3tai/docparse/internal/output"
	"github.com/a3tai/docparse/internal/pdf"
)

const (
	httpEndpoint      = "/mcp"
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *logrus.Logger
	log        logrus.FieldLogger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *logrus.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool set is fixed
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
		log:        logger.WithField("component", "mcp"),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	extractLinesTool := mcp.NewTool(
		"pdf_extract_lines",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_extract_lines")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, relative to the server directory or absolute inside it"),
		),
		mcp.WithString("format",
			mcp.Description("Output format, jsonl by default"),
			mcp.Enum(formatNames()...),
		),
	)
	s.mcpServer.AddTool(extractLinesTool, s.handleExtractLines)

	pageCountTool := mcp.NewTool(
		"pdf_page_count",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_page_count")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pageCountTool, s.handlePageCount)

	renderPageTool := mcp.NewTool(
		"pdf_render_page",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_render_page")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithNumber("page",
			mcp.Description("Zero-based page index"),
			mcp.DefaultNumber(0),
		),
		mcp.WithNumber("dpi",
			mcp.Description("Resolution in dots per inch"),
			mcp.DefaultNumber(config.DefaultDPI),
		),
	)
	s.mcpServer.AddTool(renderPageTool, s.handleRenderPage)

	validateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)
}

func formatNames() []string {
	formats := output.SupportedFormats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return names
}

// Handler functions

func (s *Server) handleExtractLines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format, err := output.ParseFormat(request.GetString("format", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ExtractLines(ctx, pdf.ExtractLinesRequest{Path: path, Workers: s.config.Workers})
	if err != nil {
		s.log.WithError(err).WithField("path", path).Warn("Line extraction failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, result.Lines, format); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handlePageCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PageCount(pdf.PageCountRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("PDF %s has %d page(s)", result.Path, result.Pages)), nil
}

func (s *Server) handleRenderPage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page := request.GetInt("page", 0)
	dpi := request.GetInt("dpi", config.DefaultDPI)
	if dpi < 1 || dpi > config.MaxDPI {
		return mcp.NewToolResultError(fmt.Sprintf("dpi must be between 1 and %d", config.MaxDPI)), nil
	}

	result, err := s.pdfService.RenderPage(ctx, pdf.RenderPageRequest{Path: path, Page: page, DPI: dpi})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"path": path, "page": page}).Warn("Render failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := result.Bitmap.EncodePNG(&buf); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	caption := fmt.Sprintf("Page %d of %s at %d dpi (%dx%d pixels)",
		result.Page, result.Path, result.DPI, result.Bitmap.Width, result.Bitmap.Height)
	return mcp.NewToolResultImage(caption, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatValidateFileResult(result)), nil
}

func formatValidateFileResult(result *pdf.ValidateFileResult) string {
	if !result.Valid {
		return fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "PDF file %s is valid and readable\n", result.Path)
	fmt.Fprintf(&text, "Pages: %d\n", result.Pages)
	fmt.Fprintf(&text, "Size: %d bytes\n", result.Size)
	if result.StructureValid {
		text.WriteString("Structure: valid\n")
	} else {
		fmt.Fprintf(&text, "Structure: %s\n", result.StructureError)
	}
	return text.String()
}

// Run starts the MCP server on the configured transport
func (s *Server) Run(ctx context.Context) error {
	switch s.config.Transport {
	case config.TransportStdio:
		return s.ServeStdio(ctx, os.Stdin, os.Stdout)
	case config.TransportHTTP:
		return s.runHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport: %q", s.config.Transport)
	}
}

// ServeStdio speaks MCP over in/out until in is exhausted or ctx is done
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.WithField("directory", s.config.PDFDirectory).Info("Starting MCP server on stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(logging.StdLogger(s.logger, logrus.ErrorLevel))

	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// httpHandler returns the streamable HTTP transport. It is stateless: every
// request is handled on its own.
func (s *Server) httpHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(httpEndpoint, server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true)))
	return mux
}

// runHTTP serves the streamable HTTP transport until ctx is done
func (s *Server) runHTTP(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"address":   httpServer.Addr,
			"endpoint":  httpEndpoint,
			"directory": s.config.PDFDirectory,
		}).Info("Starting MCP server on HTTP")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	<-errCh
	s.log.Info("MCP HTTP server stopped")
	return nil
}
