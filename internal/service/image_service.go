// Package service implements the business rules behind the HTTP handlers.
package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"pantry/internal/config"
	"pantry/internal/middleware"
	"pantry/internal/models"
	"pantry/internal/observability"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultMediaRoot            = "/vol/web/media"
	DefaultMediaURL             = "/media/"
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	MaxSourcePixels             = 40_000_000
	JPEGQuality                 = 82
	WebPQuality                 = 70
	uploadsDir                  = "uploads"
)

// ImageKind names the entity an uploaded image belongs to. It doubles as the
// upload subdirectory.
type ImageKind string

const (
	ImageKindUser   ImageKind = "user"
	ImageKindRecipe ImageKind = "recipe"
)

// UploadImageInput is a raw uploaded file.
type UploadImageInput struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ImageService validates uploads and stores them under the media root.
type ImageService struct {
	mediaRoot          string
	mediaURL           string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	mediaRoot := DefaultMediaRoot
	mediaURL := DefaultMediaURL
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.MediaRoot != "" {
			mediaRoot = cfg.MediaRoot
		}
		if cfg.MediaURL != "" {
			mediaURL = cfg.MediaURL
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}
	if !strings.HasSuffix(mediaURL, "/") {
		mediaURL += "/"
	}

	return &ImageService{
		mediaRoot:          mediaRoot,
		mediaURL:           mediaURL,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// MediaRoot returns the directory uploads are written under.
func (s *ImageService) MediaRoot() string {
	return s.mediaRoot
}

// MaxUploadSizeBytes is the largest accepted upload.
func (s *ImageService) MaxUploadSizeBytes() int64 {
	return s.maxUploadSizeBytes
}

// URL maps a stored relative path to its public URL. Empty paths stay empty.
func (s *ImageService) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return s.mediaURL + rel
}

// Store validates the upload and writes a JPEG master plus a WebP sibling.
// It returns the JPEG path relative to the media root.
func (s *ImageService) Store(ctx context.Context, kind ImageKind, in UploadImageInput) (rel string, err error) {
	ctx, finish := observability.StartSpan(ctx, "image.store", attribute.String("image.kind", string(kind)))
	defer func() {
		result := "stored"
		if err != nil {
			result = "rejected"
			if !models.IsCode(err, models.CodeValidation) {
				result = "failed"
			}
		}
		observability.ImageUploads.WithLabelValues(string(kind), result).Inc()
		finish(err)
	}()

	if len(in.Content) == 0 {
		return "", models.NewFieldError("image", "No file was submitted.")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return "", models.NewFieldError("image", fmt.Sprintf("File too large (max %dMB).", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return "", invalidImageError()
	}

	// Dimensions come from the header alone, before any pixel buffer is allocated.
	header, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil {
		return "", invalidImageError()
	}
	if header.Width <= 0 || header.Height <= 0 {
		return "", invalidImageError()
	}
	if int64(header.Width)*int64(header.Height) > MaxSourcePixels {
		return "", models.NewFieldError("image",
			fmt.Sprintf("Image dimensions too large (max %d megapixels).", MaxSourcePixels/1_000_000))
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return "", invalidImageError()
	}
	sourceMimeType := decodedFormatToMime(format)
	if sourceMimeType == "" {
		return "", invalidImageError()
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return "", models.NewFieldError("image", "Image content type mismatch.")
	}

	master := resizeToFit(decoded, MasterMaxSize, MasterMaxSize)

	encodedJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	name := uuid.NewString()
	rel = path.Join(uploadsDir, string(kind), name+".jpg")
	jpgAbs := s.absPath(rel)
	webpAbs := webpSibling(jpgAbs)

	if err := writeBytesToFile(jpgAbs, encodedJPG); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(webpAbs, encodedWebP); err != nil {
		cleanupImageFiles([]string{jpgAbs, webpAbs})
		return "", models.NewInternalError(err)
	}

	b := master.Bounds()
	middleware.Logger.InfoContext(ctx, "image stored",
		slog.String("path", rel),
		slog.String("source_format", format),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
	)
	return rel, nil
}

// Remove deletes a stored image and its WebP sibling. Paths outside the
// uploads directory are ignored.
func (s *ImageService) Remove(ctx context.Context, rel string) {
	if rel == "" {
		return
	}
	clean := path.Clean(rel)
	if !strings.HasPrefix(clean, uploadsDir+"/") {
		middleware.Logger.WarnContext(ctx, "refusing to remove image outside uploads", slog.String("path", rel))
		return
	}
	abs := s.absPath(clean)
	cleanupImageFiles([]string{abs, webpSibling(abs)})
}

func (s *ImageService) absPath(rel string) string {
	return filepath.Join(s.mediaRoot, filepath.FromSlash(rel))
}

func invalidImageError() *models.AppError {
	return models.NewFieldError("image",
		"Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
}

func webpSibling(jpgPath string) string {
	return strings.TrimSuffix(jpgPath, filepath.Ext(jpgPath)) + ".webp"
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func writeBytesToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func cleanupImageFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
