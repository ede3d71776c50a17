// Package pdf is the document service: it resolves and checks paths, opens
// documents through the shared engine, and runs line reconstruction and
// page rendering.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/docparse/internal/cache"
	"github.com/a3tai/docparse/internal/lines"
	pdferrors "github.com/a3tai/docparse/internal/pdf/errors"
	"github.com/a3tai/docparse/internal/pdf/raster"
	"github.com/a3tai/docparse/internal/pdf/security"
	"github.com/a3tai/docparse/internal/pdf/wrapper"
)

// Options configures a Service
type Options struct {
	MaxFileSize int64
	// Directory confines every request path; empty means unrestricted
	Directory string
	// CacheSize is the number of extraction results kept, 0 disables
	CacheSize int
	// Workers bounds parallel page reconstruction, 0 means one per CPU
	Workers int
	Logger  logrus.FieldLogger

	// StrictValidation and Debug configure the shared engine on first use
	StrictValidation bool
	Debug            bool

	// Backend and Renderer default to the shared engine and MuPDF
	Backend  wrapper.Backend
	Renderer raster.Renderer
}

// Service handles PDF file operations by orchestrating the engine, the
// reconstruction core and the rasterizer
type Service struct {
	maxFileSize   int64
	workers       int
	backend       wrapper.Backend
	renderer      raster.Renderer
	validator     *Validator
	pathValidator *security.PathValidator
	results       *cache.LRU[cache.FileKey, cachedLines]
	log           logrus.FieldLogger
}

type cachedLines struct {
	pages   int
	records []lines.LineRecord
}

// NewService creates a new PDF service with all components
func NewService(opts Options) (*Service, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	pathValidator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	backend := opts.Backend
	if backend == nil {
		engine, err := wrapper.SharedEngine(engineConfig(opts, log))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PDF engine: %w", err)
		}
		backend = engine
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	renderer := opts.Renderer
	if renderer == nil {
		renderer = raster.NewFitzRenderer(backend, log)
	}

	return &Service{
		maxFileSize:   opts.MaxFileSize,
		workers:       workers,
		backend:       backend,
		renderer:      renderer,
		validator:     NewValidator(opts.MaxFileSize, backend),
		pathValidator: pathValidator,
		results:       cache.NewLRU[cache.FileKey, cachedLines](opts.CacheSize),
		log:           log.WithField("component", "pdf_service"),
	}, nil
}

// engineConfig derives the engine configuration from service options
func engineConfig(opts Options, log logrus.FieldLogger) wrapper.FactoryConfig {
	config := wrapper.DefaultFactoryConfig()
	config.StrictValidation = opts.StrictValidation
	config.DebugMode = opts.Debug
	config.Logger = log
	return config
}

// resolve applies the sandbox and the file checks, returning the absolute path
func (s *Service) resolve(path string) (string, error) {
	resolved, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", pdferrors.Wrap(pdferrors.ErrorTypeSecurity, "security validation failed", err).WithFile(path)
	}
	if _, err := s.validator.checkFile(resolved); err != nil {
		return "", err
	}
	return resolved, nil
}

// ExtractLines reconstructs the text lines of every page. Results for an
// unchanged file are served from the cache.
func (s *Service) ExtractLines(ctx context.Context, req ExtractLinesRequest) (*ExtractLinesResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	log := s.log.WithField("path", path)

	key, keyErr := cache.KeyForFile(path)
	if keyErr == nil {
		if hit, ok := s.results.Get(key); ok {
			log.WithField("lines", len(hit.records)).Debug("Serving cached lines")
			return &ExtractLinesResult{Path: path, Pages: hit.pages, Lines: slices.Clone(hit.records), Cached: true}, nil
		}
	}

	pages, err := s.readGlyphs(ctx, path)
	if err != nil {
		return nil, err
	}

	workers := req.Workers
	if workers <= 0 {
		workers = s.workers
	}
	records, err := lines.ReconstructDocument(ctx, pages, workers)
	if err != nil {
		return nil, err
	}

	if keyErr == nil {
		s.results.Put(key, cachedLines{pages: len(pages), records: slices.Clone(records)})
	}

	log.WithFields(logrus.Fields{"pages": len(pages), "lines": len(records)}).Debug("Reconstructed lines")
	return &ExtractLinesResult{Path: path, Pages: len(pages), Lines: records}, nil
}

// readGlyphs collects every page's glyphs. The parser is used from one
// goroutine only.
func (s *Service) readGlyphs(ctx context.Context, path string) ([][]lines.Glyph, error) {
	doc, err := s.backend.OpenDocument(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "failed to open PDF", err).WithFile(path)
	}
	defer doc.Close()

	pages := make([][]lines.Glyph, doc.GetPageCount())
	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		glyphs, err := doc.PageGlyphs(i)
		if err != nil {
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeTextLayer, "failed to read text layer", err).
				WithFile(path).WithPage(i + 1)
		}
		pages[i] = glyphs
	}
	return pages, nil
}

// PageCount returns the number of pages in a PDF
func (s *Service) PageCount(req PageCountRequest) (*PageCountResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	n, err := s.backend.PageCount(path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeOpenFailed, "failed to count pages", err).WithFile(path)
	}
	return &PageCountResult{Path: path, Pages: n}, nil
}

// RenderPage rasterizes one page at the requested resolution
func (s *Service) RenderPage(ctx context.Context, req RenderPageRequest) (*RenderPageResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	bitmap, err := s.renderer.Render(ctx, path, req.Page, req.DPI)
	if err != nil {
		switch {
		case errors.Is(err, raster.ErrPageOutOfRange):
			return nil, pdferrors.Wrap(pdferrors.ErrorTypePageOutOfRange, "cannot render page", err).WithFile(path)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			return nil, pdferrors.Wrap(pdferrors.ErrorTypeRender, "render failed", err).WithFile(path).WithPage(req.Page + 1)
		}
	}

	s.log.WithFields(logrus.Fields{
		"path":   path,
		"page":   req.Page,
		"dpi":    req.DPI,
		"width":  bitmap.Width,
		"height": bitmap.Height,
	}).Debug("Rendered page")
	return &RenderPageResult{Path: path, Page: req.Page, DPI: req.DPI, Bitmap: bitmap}, nil
}

// ValidateFile performs validation on a PDF file. Only path resolution
// failures are returned as errors; everything else is described in the result.
func (s *Service) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	path, err := s.pathValidator.Resolve(req.Path)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeSecurity, "security validation failed", err).WithFile(req.Path)
	}
	return s.validator.ValidateFile(path), nil
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// GetConfiguredDirectory returns the sandbox directory, or "" when unrestricted
func (s *Service) GetConfiguredDirectory() string {
	return s.pathValidator.GetConfiguredDirectory()
}

// CacheStats reports extraction cache usage
func (s *Service) CacheStats() cache.Stats {
	return s.results.Stats()
}
