package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/a3tai/docparse/internal/config"
	"github.com/a3tai/docparse/internal/logging"
	"github.com/a3tai/docparse/internal/mcp"
	"github.com/a3tai/docparse/internal/output"
	"github.com/a3tai/docparse/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// Exit codes
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}
	if cfg.ShowVersion {
		printVersion(stdout)
		return exitOK
	}

	// Logs always go to stderr; stdout carries records, images or MCP frames
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON, Output: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	logger.WithField("config", cfg.String()).Debug("Starting")

	service, err := pdf.NewService(pdf.Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory,
		CacheSize:   cfg.CacheSize,
		Workers:     cfg.Workers,
		Logger:      logger,

		StrictValidation: cfg.StrictValidation,
		Debug:            cfg.IsDebug(),
	})
	if err != nil {
		logger.WithError(err).Error("Failed to create PDF service")
		return exitFailure
	}

	switch cfg.Command {
	case config.CommandText:
		err = runText(ctx, cfg, service, stdout)
	case config.CommandRender:
		err = runRender(ctx, cfg, service, stdout)
	case config.CommandPages:
		err = runPages(cfg, service, stdout)
	case config.CommandValidate:
		var valid bool
		valid, err = runValidate(cfg, service, stdout)
		if err == nil && !valid {
			return exitFailure
		}
	case config.CommandServe:
		err = runServe(ctx, cfg, service, logger)
	}

	if err != nil {
		logger.WithError(err).WithField("command", cfg.Command).Error("Command failed")
		return exitFailure
	}
	return exitOK
}

// openOutput returns the configured output file, or stdout when none is set
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func runText(ctx context.Context, cfg *config.Config, service *pdf.Service, stdout io.Writer) error {
	format, err := output.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	result, err := service.ExtractLines(ctx, pdf.ExtractLinesRequest{Path: cfg.InputPath, Workers: cfg.Workers})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	if err := output.Write(w, result.Lines, format); err != nil {
		closeOutput()
		return err
	}
	return closeOutput()
}

func runRender(ctx context.Context, cfg *config.Config, service *pdf.Service, stdout io.Writer) error {
	result, err := service.RenderPage(ctx, pdf.RenderPageRequest{Path: cfg.InputPath, Page: cfg.Page, DPI: cfg.DPI})
	if err != nil {
		return err
	}

	w, closeOutput, err := openOutput(cfg, stdout)
	if err != nil {
		return err
	}
	if isTerminal(w) {
		closeOutput()
		return fmt.Errorf("refusing to write %s image data to a terminal; use --output or redirect stdout", cfg.ImageFormat)
	}

	switch cfg.ImageFormat {
	case config.ImageFormatRaw:
		err = result.Bitmap.WriteRaw(w)
	default:
		err = result.Bitmap.EncodePNG(w)
	}
	if err != nil {
		closeOutput()
		return err
	}
	return closeOutput()
}

func runPages(cfg *config.Config, service *pdf.Service, stdout io.Writer) error {
	result, err := service.PageCount(pdf.PageCountRequest{Path: cfg.InputPath})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, result.Pages)
	return err
}

func runValidate(cfg *config.Config, service *pdf.Service, stdout io.Writer) (bool, error) {
	result, err := service.ValidateFile(pdf.ValidateFileRequest{Path: cfg.InputPath})
	if err != nil {
		return false, err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return false, err
	}
	return result.Valid, nil
}

func runServe(ctx context.Context, cfg *config.Config, service *pdf.Service, logger *logrus.Logger) error {
	server, err := mcp.NewServer(cfg, service, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "docparse\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
