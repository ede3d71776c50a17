package wrapper

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFCPULibrary reads page geometry and validates structure using pdfcpu
type PDFCPULibrary struct {
	config FactoryConfig
}

// NewPDFCPULibrary creates a new pdfcpu library wrapper
func NewPDFCPULibrary(config FactoryConfig) *PDFCPULibrary {
	return &PDFCPULibrary{config: config}
}

// GetLibraryType returns the library type
func (p *PDFCPULibrary) GetLibraryType() LibraryType {
	return LibraryPDFCPU
}

// GetVersion returns the pdfcpu version
func (p *PDFCPULibrary) GetVersion() string {
	return "pdfcpu-" + model.VersionStr
}

// configuration builds a fresh pdfcpu configuration for one operation
func (p *PDFCPULibrary) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	if p.config.StrictValidation {
		conf.ValidationMode = model.ValidationStrict
	} else {
		conf.ValidationMode = model.ValidationRelaxed
	}
	return conf
}

// readContext parses path into a pdfcpu context with its page tree resolved
func (p *PDFCPULibrary) readContext(op, path string) (*model.Context, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	ctx, err := api.ReadContext(file, p.configuration())
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      op,
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	return ctx, nil
}

// PageCount returns the number of pages
func (p *PDFCPULibrary) PageCount(path string) (int, error) {
	ctx, err := p.readContext("page_count", path)
	if err != nil {
		return 0, err
	}
	return ctx.PageCount, nil
}

// PageDims returns the visible size of every page in points: the CropBox
// clipped to the MediaBox, turned by the page rotation.
func (p *PDFCPULibrary) PageDims(path string) ([]PageSize, error) {
	ctx, err := p.readContext("page_dims", path)
	if err != nil {
		return nil, err
	}

	boundaries, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "page_dims",
			Err:     fmt.Errorf("failed to read page boundaries: %w", err),
		}
	}

	sizes := make([]PageSize, len(boundaries))
	for i, pb := range boundaries {
		media := pb.MediaBox()
		if media == nil {
			return nil, &WrapperError{
				Library: LibraryPDFCPU,
				Op:      "page_dims",
				Err:     fmt.Errorf("page %d has no MediaBox", i+1),
			}
		}
		sizes[i] = visibleSize(rectBox(media), cropBox(pb), pb.Rot)
	}
	return sizes, nil
}

func rectBox(r *types.Rectangle) box {
	return newBox(r.LL.X, r.LL.Y, r.UR.X, r.UR.Y)
}

// cropBox returns the page's own or inherited CropBox, or nil
func cropBox(pb model.PageBoundaries) *box {
	if pb.Crop == nil || pb.Crop.Rect == nil || !pb.Crop.Rect.Visible() {
		return nil
	}
	b := rectBox(pb.Crop.Rect)
	return &b
}

// ValidateStructure runs pdfcpu's validator over the whole object graph
func (p *PDFCPULibrary) ValidateStructure(path string) error {
	ctx, err := p.readContext("validate", path)
	if err != nil {
		return err
	}

	if err := api.ValidateContext(ctx); err != nil {
		return &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "validate",
			Err:     fmt.Errorf("validation failed: %w", err),
		}
	}
	return nil
}
