// Package resizer loads originals, produces sized variants and persists
// them next to the original under the deterministic -{width}x{height}
// suffix naming scheme.
package resizer

import (
	"fmt"
	"image"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // decode support for webp originals

	internal_errors "github.com/lazythumb/lazythumb/internal/errors"

	"github.com/lazythumb/lazythumb/internal/domain"
)

// Result describes a produced (or, for Probe, producible) variant.
type Result struct {
	Path     string // absolute path of the variant; empty for Probe
	FileName string // bare variant file name, e.g. "photo-300x200.jpg"
	Width    int
	Height   int
	MimeType string
}

type Executor struct {
	jpegQuality int
}

func New(jpegQuality int) *Executor {
	if jpegQuality <= 0 || jpegQuality > 100 {
		jpegQuality = 82
	}
	return &Executor{jpegQuality: jpegQuality}
}

// VariantName derives a variant file name from the original's name and the
// variant's pixel dimensions.
func VariantName(origName string, w, h int) string {
	ext := filepath.Ext(origName)
	return fmt.Sprintf("%s-%dx%d%s", strings.TrimSuffix(origName, ext), w, h, ext)
}

// Resize loads the image at path, scales/crops it toward (w, h) and
// writes the result next to the original. After a successful write the
// file is decoded again: if its on-disk pixel dimensions differ from what
// the transform produced, the file is deleted and the call fails. A
// variant that survives Resize therefore always has the dimensions its
// Result (and any metadata recorded from it) claims.
func (e *Executor) Resize(path string, w, h int, crop domain.CropPolicy) (*Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internal_errors.ErrLoad, path, err)
	}

	out, err := transform(img, w, h, crop)
	if err != nil {
		return nil, err
	}
	outW := out.Bounds().Dx()
	outH := out.Bounds().Dy()

	name := VariantName(filepath.Base(path), outW, outH)
	dst := filepath.Join(filepath.Dir(path), name)

	if err := e.save(out, dst); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internal_errors.ErrSave, dst, err)
	}

	// Re-read what actually landed on disk. Never leave a file behind
	// whose pixels disagree with the dimensions we are about to report.
	gotW, gotH, err := decodeDimensions(dst)
	if err != nil {
		os.Remove(dst)
		return nil, fmt.Errorf("%w: %s: %v", internal_errors.ErrSave, dst, err)
	}
	if gotW != outW || gotH != outH {
		os.Remove(dst)
		return nil, fmt.Errorf("%w: encoded %dx%d, found %dx%d on disk",
			internal_errors.ErrSizeMismatch, outW, outH, gotW, gotH)
	}

	mimeType := mimeByExtension(name)
	if mt, err := mimetype.DetectFile(dst); err == nil {
		mimeType = mt.String()
	}

	return &Result{
		Path:     dst,
		FileName: name,
		Width:    gotW,
		Height:   gotH,
		MimeType: mimeType,
	}, nil
}

// EnsureExact verifies a produced variant against the dimensions the
// requester asked for. On mismatch the variant file is deleted before the
// error is returned, so storage never keeps a mis-sized file.
func (e *Executor) EnsureExact(res *Result, w, h int) error {
	if res.Width == w && res.Height == h {
		return nil
	}
	if res.Path != "" {
		os.Remove(res.Path)
	}
	return fmt.Errorf("%w: requested %dx%d, produced %dx%d",
		internal_errors.ErrSizeMismatch, w, h, res.Width, res.Height)
}

// Probe runs the same decode and transform pipeline as Resize but persists
// nothing. It reports the dimensions and file name a resize would produce,
// which is what the upload-time metadata precomputation needs.
func (e *Executor) Probe(path string, w, h int, crop domain.CropPolicy) (*Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internal_errors.ErrLoad, path, err)
	}

	out, err := transform(img, w, h, crop)
	if err != nil {
		return nil, err
	}
	outW := out.Bounds().Dx()
	outH := out.Bounds().Dy()

	name := VariantName(filepath.Base(path), outW, outH)
	return &Result{
		FileName: name,
		Width:    outW,
		Height:   outH,
		MimeType: mimeByExtension(name),
	}, nil
}

// transform applies the crop policy. Errors here are ErrResize: zero
// targets, upscaling under crop, or a transform that would change nothing
// (the original already serves that size).
func transform(img image.Image, w, h int, crop domain.CropPolicy) (image.Image, error) {
	origW := img.Bounds().Dx()
	origH := img.Bounds().Dy()
	if origW == 0 || origH == 0 {
		return nil, fmt.Errorf("%w: source image is empty", internal_errors.ErrResize)
	}
	if w == 0 && h == 0 {
		return nil, fmt.Errorf("%w: no target dimensions", internal_errors.ErrResize)
	}

	if crop.Enabled && w > 0 && h > 0 {
		if origW < w || origH < h {
			return nil, fmt.Errorf("%w: cannot crop %dx%d out of %dx%d",
				internal_errors.ErrResize, w, h, origW, origH)
		}
		if origW == w && origH == h {
			return nil, fmt.Errorf("%w: image is already %dx%d", internal_errors.ErrResize, w, h)
		}
		return imaging.Fill(img, w, h, anchor(crop), imaging.Lanczos), nil
	}

	// Proportional fit. A single unconstrained dimension scales by the
	// other; upscaling is never performed.
	var out image.Image
	switch {
	case w > 0 && h > 0:
		out = imaging.Fit(img, w, h, imaging.Lanczos)
	case w > 0:
		if w >= origW {
			return nil, fmt.Errorf("%w: image is only %d wide", internal_errors.ErrResize, origW)
		}
		out = imaging.Resize(img, w, 0, imaging.Lanczos)
	default:
		if h >= origH {
			return nil, fmt.Errorf("%w: image is only %d tall", internal_errors.ErrResize, origH)
		}
		out = imaging.Resize(img, 0, h, imaging.Lanczos)
	}

	if out.Bounds().Dx() == origW && out.Bounds().Dy() == origH {
		return nil, fmt.Errorf("%w: image is already within %dx%d", internal_errors.ErrResize, w, h)
	}
	return out, nil
}

// save writes atomically: encode into a temp file in the target directory,
// then rename over the final name. Readers never observe a partial file.
func (e *Executor) save(img image.Image, dst string) error {
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		return err
	}

	tmp := fmt.Sprintf("%s.%s.tmp", dst, uuid.NewString())
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(e.jpegQuality)); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func anchor(crop domain.CropPolicy) imaging.Anchor {
	switch crop.X + "/" + crop.Y {
	case "left/top":
		return imaging.TopLeft
	case "center/top":
		return imaging.Top
	case "right/top":
		return imaging.TopRight
	case "left/center":
		return imaging.Left
	case "right/center":
		return imaging.Right
	case "left/bottom":
		return imaging.BottomLeft
	case "center/bottom":
		return imaging.Bottom
	case "right/bottom":
		return imaging.BottomRight
	default:
		return imaging.Center
	}
}

func decodeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

func mimeByExtension(name string) string {
	if mt := mime.TypeByExtension(filepath.Ext(name)); mt != "" {
		return mt
	}
	return "application/octet-stream"
}
