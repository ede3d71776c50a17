package wrapper

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/sirupsen/logrus"
)

// FactoryConfig contains configuration options for the engine
type FactoryConfig struct {
	// StrictValidation switches pdfcpu from relaxed to strict validation
	StrictValidation bool `json:"strict_validation"`

	// DisableConfigDir stops pdfcpu from creating its config directory on disk
	DisableConfigDir bool `json:"disable_config_dir"`

	// DebugMode enables debug logging for library operations
	DebugMode bool `json:"debug_mode"`

	Logger logrus.FieldLogger `json:"-"`
}

// DefaultFactoryConfig returns the configuration used by the CLI and server
func DefaultFactoryConfig() FactoryConfig {
	return FactoryConfig{
		DisableConfigDir: true,
	}
}

// Engine is the process-wide handle over the PDF libraries. It implements
// Backend: glyphs come from ledongthuc, geometry and validation from pdfcpu.
type Engine struct {
	config     FactoryConfig
	log        logrus.FieldLogger
	ledongthuc *LedongthucLibrary
	pdfcpu     *PDFCPULibrary
}

var _ Backend = (*Engine)(nil)

// NewEngine builds an engine. Most callers want SharedEngine.
func NewEngine(config FactoryConfig) (*Engine, error) {
	log := config.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	if config.DisableConfigDir {
		api.DisableConfigDir()
	}

	e := &Engine{
		config:     config,
		log:        log.WithField("component", "engine"),
		ledongthuc: NewLedongthucLibrary(config),
		pdfcpu:     NewPDFCPULibrary(config),
	}
	e.log.WithFields(logrus.Fields{
		"glyphs":   e.ledongthuc.GetVersion(),
		"geometry": e.pdfcpu.GetVersion(),
	}).Debug("PDF engine initialized")
	return e, nil
}

var (
	sharedOnce   sync.Once
	sharedEngine *Engine
	sharedErr    error
)

// SharedEngine returns the process-wide engine, constructing it on first use.
// Later calls ignore config and return the same instance and the first error.
func SharedEngine(config FactoryConfig) (*Engine, error) {
	sharedOnce.Do(func() {
		sharedEngine, sharedErr = NewEngine(config)
	})
	return sharedEngine, sharedErr
}

// Config returns the configuration the engine was built with
func (e *Engine) Config() FactoryConfig {
	return e.config
}

// OpenDocument opens path as a glyph geometry source
func (e *Engine) OpenDocument(path string) (Document, error) {
	doc, err := e.ledongthuc.OpenFile(path)
	if err != nil {
		return nil, err
	}
	if e.config.DebugMode {
		e.log.WithFields(logrus.Fields{"path": path, "pages": doc.GetPageCount()}).Debug("Opened document")
	}
	return doc, nil
}

// PageDims returns every page's visible size in points. When pdfcpu rejects
// the file the boxes are read through ledongthuc instead.
func (e *Engine) PageDims(path string) ([]PageSize, error) {
	sizes, err := e.pdfcpu.PageDims(path)
	if err == nil {
		return sizes, nil
	}
	e.log.WithError(err).WithField("path", path).Debug("pdfcpu page dims failed, falling back to ledongthuc")

	sizes, fallbackErr := e.ledongthucPageDims(path)
	if fallbackErr != nil {
		return nil, err
	}
	return sizes, nil
}

func (e *Engine) ledongthucPageDims(path string) ([]PageSize, error) {
	doc, err := e.ledongthuc.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.PageSizes()
}

// PageCount returns the number of pages, preferring pdfcpu's page tree
func (e *Engine) PageCount(path string) (int, error) {
	n, err := e.pdfcpu.PageCount(path)
	if err == nil {
		return n, nil
	}
	e.log.WithError(err).WithField("path", path).Debug("pdfcpu page count failed, falling back to ledongthuc")

	doc, openErr := e.ledongthuc.OpenFile(path)
	if openErr != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.GetPageCount(), nil
}

// ValidateStructure checks the document with pdfcpu's validator
func (e *Engine) ValidateStructure(path string) error {
	return e.pdfcpu.ValidateStructure(path)
}
