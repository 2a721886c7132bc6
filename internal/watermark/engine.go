// Package watermark composites an ownership mark onto gallery images before
// they leave the server. The mark is scaled slightly wider than the target
// image so it cannot be cropped away without losing picture content.
package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"

	// Registered for decoding only; their formats re-encode through the
	// switch in encode.
	_ "golang.org/x/image/webp"

	"github.com/amanksolutions/galleryguard/internal/config"
	"github.com/amanksolutions/galleryguard/internal/constants"
	"github.com/amanksolutions/galleryguard/internal/utils"
)

// Variant selects how prominently the mark is applied.
type Variant int

const (
	// VariantFull marks full-size images: one opaque instance on the left
	// and a subtle instance on the right.
	VariantFull Variant = iota

	// VariantSubtle marks reduced images with a single subtle instance.
	VariantSubtle
)

// Engine applies the watermark to decoded images.
type Engine struct {
	cfg config.WatermarkSettings

	markOnce sync.Once
	mark     image.Image
}

// NewEngine creates a watermark engine with the given settings.
func NewEngine(cfg config.WatermarkSettings) *Engine {
	return &Engine{cfg: cfg}
}

// Apply decodes the image, overlays the watermark per the variant, and
// re-encodes it in its original format. It returns the encoded bytes and
// the format name.
func (e *Engine) Apply(r io.Reader, variant Variant) ([]byte, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", utils.NewDecodeError(err)
	}

	marked := e.overlay(src, variant)

	data, err := e.encode(marked, format)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

// overlay composites the mark onto the image. The mark is resized to
// slightly more than the image width, sharpened to survive the resize, and
// anchored vertically centered.
func (e *Engine) overlay(src image.Image, variant Variant) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	markWidth := int(float64(width) * constants.WatermarkWidthRatio)
	if markWidth < 1 {
		markWidth = 1
	}

	mark := imaging.Resize(e.markImage(), markWidth, 0, imaging.Lanczos)
	mark = imaging.Sharpen(mark, 1.0)

	markHeight := mark.Bounds().Dy()
	overhang := mark.Bounds().Dx() - width
	y := (height - markHeight) / 2

	out := imaging.Clone(src)
	switch variant {
	case VariantFull:
		// Opaque on the left, subtle on the right.
		out = imaging.Overlay(out, mark, image.Pt(-overhang, y), constants.WatermarkFullOpacity)
		out = imaging.Overlay(out, mark, image.Pt(0, y), constants.WatermarkSubtleOpacity)
	default:
		out = imaging.Overlay(out, mark, image.Pt(-overhang/2, y), constants.WatermarkSubtleOpacity)
	}
	return out
}

// markImage returns the watermark source image, loading the configured
// asset on first use and falling back to rendered text when no asset is
// available.
func (e *Engine) markImage() image.Image {
	e.markOnce.Do(func() {
		if e.cfg.AssetPath != "" {
			asset, err := imaging.Open(e.cfg.AssetPath)
			if err == nil {
				e.mark = asset
				return
			}
			log.Warn().Err(err).Str("path", e.cfg.AssetPath).Msg("Watermark asset unreadable, using text mark")
		}
		e.mark = renderTextMark(e.cfg.Text)
	})
	return e.mark
}

// encode serializes the marked image back into its original format. Formats
// we can decode but not encode are refused rather than silently converted.
func (e *Engine) encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case "jpeg":
		quality := e.cfg.Quality
		if quality <= 0 {
			quality = constants.JPEGEncodeQuality
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality})
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, img)
	case "tiff":
		err = tiff.Encode(&buf, img, nil)
	default:
		return nil, utils.NewEncodeError(format)
	}

	if err != nil {
		return nil, utils.NewEncodeError(fmt.Sprintf("%s: %v", format, err))
	}
	return buf.Bytes(), nil
}

// renderTextMark draws the watermark text onto a transparent canvas sized
// to the text. The result is scaled up at overlay time, so the fixed-size
// face is sufficient.
func renderTextMark(text string) image.Image {
	if text == "" {
		text = constants.DefaultWatermarkText
	}

	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()
	if width < 1 {
		width = 1
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width+4, height+4))
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
		Face: face,
		Dot:  fixed.P(2, face.Metrics().Ascent.Ceil()+2),
	}
	drawer.DrawString(text)
	return canvas
}

// ContentType maps an image format name to its MIME type.
func ContentType(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "bmp":
		return "image/bmp"
	case "tiff":
		return "image/tiff"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
