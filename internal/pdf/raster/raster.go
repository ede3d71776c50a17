// Package raster renders single PDF pages to packed RGB bitmaps.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/gen2brain/go-fitz"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"

	"github.com/a3tai/docparse/internal/pdf/wrapper"
)

// PointsPerInch is the fixed PDF user-space resolution
const PointsPerInch = 72

// ErrPageOutOfRange is returned for a page index outside the document
var ErrPageOutOfRange = errors.New("page out of range")

// Bitmap is a rendered page. Pix holds Width*Height RGB triples in row-major
// order with no row padding.
type Bitmap struct {
	Width  int
	Height int
	Pix    []byte
}

// Renderer rasterizes one page of a document
type Renderer interface {
	Render(ctx context.Context, path string, pageIndex int, dpi int) (*Bitmap, error)
}

// PageSizer reports page sizes in points
type PageSizer interface {
	PageDims(path string) ([]wrapper.PageSize, error)
}

// PixelDims converts a page size in points to a pixel size at dpi. The
// arithmetic is done in 32-bit floats and rounded half away from zero.
func PixelDims(widthPts, heightPts float64, dpi int) (int, int) {
	return toPixels(widthPts, dpi), toPixels(heightPts, dpi)
}

func toPixels(pts float64, dpi int) int {
	scaled := float32(float32(pts) * float32(dpi))
	v := float32(scaled / PointsPerInch)
	return int(math.Round(float64(v)))
}

// FitzRenderer renders pages with MuPDF through go-fitz
type FitzRenderer struct {
	sizer PageSizer
	log   logrus.FieldLogger
}

var _ Renderer = (*FitzRenderer)(nil)

// NewFitzRenderer creates a renderer that sizes its output from sizer
func NewFitzRenderer(sizer PageSizer, log logrus.FieldLogger) *FitzRenderer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FitzRenderer{sizer: sizer, log: log.WithField("component", "raster")}
}

// Render rasterizes the page at a zero-based index at dpi. The result is
// exactly PixelDims of the page's size.
func (r *FitzRenderer) Render(ctx context.Context, path string, pageIndex int, dpi int) (*Bitmap, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("dpi must be positive, got %d", dpi)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF '%s': %w", path, err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if pageIndex < 0 || pageIndex >= pageCount {
		return nil, fmt.Errorf("%w: page index %d out of range (0..%d)", ErrPageOutOfRange, pageIndex, pageCount)
	}

	dims, err := r.sizer.PageDims(path)
	if err != nil {
		return nil, fmt.Errorf("unable to get page %d: %w", pageIndex, err)
	}
	if pageIndex >= len(dims) {
		return nil, fmt.Errorf("%w: page index %d out of range (0..%d)", ErrPageOutOfRange, pageIndex, len(dims))
	}
	width, height := PixelDims(dims[pageIndex].Width, dims[pageIndex].Height, dpi)
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("page %d renders to an empty %dx%d bitmap at %d dpi", pageIndex, width, height, dpi)
	}

	img, err := doc.ImageDPI(pageIndex, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("render failed: %w", err)
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		r.log.WithFields(logrus.Fields{
			"page":   pageIndex,
			"dpi":    dpi,
			"got":    fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			"target": fmt.Sprintf("%dx%d", width, height),
		}).Debug("Resampling rendered page")
		img = scaleTo(img, width, height)
	}

	return FromImage(img), nil
}

// scaleTo resamples src to exactly width x height
func scaleTo(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// FromImage packs img into an RGB bitmap, dropping alpha
func FromImage(img image.Image) *Bitmap {
	b := img.Bounds()
	bm := &Bitmap{
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]byte, 0, b.Dx()*b.Dy()*3),
	}

	if rgba, ok := img.(*image.RGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := rgba.Pix[rgba.PixOffset(b.Min.X, y):rgba.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				bm.Pix = append(bm.Pix, row[i], row[i+1], row[i+2])
			}
		}
		return bm
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			bm.Pix = append(bm.Pix, c.R, c.G, c.B)
		}
	}
	return bm
}

// Image returns the bitmap as an opaque RGBA image
func (b *Bitmap) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for i, j := 0, 0; i+2 < len(b.Pix); i, j = i+3, j+4 {
		img.Pix[j] = b.Pix[i]
		img.Pix[j+1] = b.Pix[i+1]
		img.Pix[j+2] = b.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// EncodePNG writes the bitmap as a PNG image
func (b *Bitmap) EncodePNG(w io.Writer) error {
	if err := png.Encode(w, b.Image()); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

// WriteRaw writes the packed RGB bytes unchanged
func (b *Bitmap) WriteRaw(w io.Writer) error {
	if _, err := w.Write(b.Pix); err != nil {
		return fmt.Errorf("failed to write raw bitmap: %w", err)
	}
	return nil
}
