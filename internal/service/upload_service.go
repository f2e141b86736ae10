package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"mime"
	"net/http"
	"strings"

	"packtrail/internal/config"
	"packtrail/internal/models"
	"packtrail/internal/observability"
	"packtrail/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MasterMaxSize bounds the longest edge of a stored image.
	MasterMaxSize = 2048
	// ThumbSize is the longest edge of the generated thumbnail.
	ThumbSize = 256

	JPEGQuality = 82
	WebPQuality = 70

	defaultUploadMaxMB = 10
)

// UploadInput carries one uploaded file.
type UploadInput struct {
	UserID      uint
	Filename    string
	ContentType string
	Content     []byte
}

// UploadResult points at the stored image and its thumbnail.
type UploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}

// UploadService validates, normalizes and stores user-submitted images.
type UploadService struct {
	store    storage.Store
	maxBytes int64
}

// NewUploadService returns a new UploadService.
func NewUploadService(store storage.Store, cfg *config.Config) *UploadService {
	maxMB := defaultUploadMaxMB
	if cfg != nil && cfg.UploadMaxMB > 0 {
		maxMB = cfg.UploadMaxMB
	}
	return &UploadService{store: store, maxBytes: int64(maxMB) * 1024 * 1024}
}

// Upload stores an image for the user. Oversized images are scaled down,
// re-encoded, and paired with a small webp thumbnail keyed `<key>.thumb.webp`.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detected) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") &&
		!isMatchingContentType(provided, decodedFormatToMime(format)) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	// The original bytes are kept as-is when they already fit; only
	// oversized images are re-encoded.
	data := in.Content
	master := decoded
	b := decoded.Bounds()
	if b.Dx() > MasterMaxSize || b.Dy() > MasterMaxSize {
		master = resizeToFit(decoded, MasterMaxSize, MasterMaxSize)
		data, err = reencode(master, format)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	thumbBytes, err := encodeWebP(resizeToFit(master, ThumbSize, ThumbSize), WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	key := storage.NewKey(in.Filename)
	thumbKey := storage.ThumbKey(key)

	if err := s.store.Put(ctx, key, data); err != nil {
		observability.RecordStorageOp("put", err)
		return nil, models.NewUpstreamError("Image upload failed", err)
	}
	observability.RecordStorageOp("put", nil)

	if err := s.store.Put(ctx, thumbKey, thumbBytes); err != nil {
		observability.RecordStorageOp("put", err)
		_ = s.store.Delete(ctx, key)
		return nil, models.NewUpstreamError("Image upload failed", err)
	}
	observability.RecordStorageOp("put", nil)

	return &UploadResult{
		Key:      key,
		URL:      s.store.URL(key),
		ThumbURL: s.store.URL(thumbKey),
	}, nil
}

// reencode writes the image back out in its source format, except webp and
// gif which re-encode lossily to webp and png respectively.
func reencode(img image.Image, format string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "png":
		buf := bytes.NewBuffer(nil)
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "gif":
		buf := bytes.NewBuffer(nil)
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "webp":
		return encodeWebP(img, WebPQuality)
	default:
		return encodeJPEG(img, JPEGQuality)
	}
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

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

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
