package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"net/http"
	"path"
	"strings"
	"time"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/storage"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 5
	DefaultImageMaxPixels       = 40_000_000
	ThumbWidth                  = 960
	ThumbHeight                 = 339
	JPEGQuality                 = 85
	WebPQuality                 = 80

	imagePrefix = "posts"
	thumbPrefix = "posts/thumbs"
)

// Field messages for the image input.
const (
	MsgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	MsgEmptyFile    = "The submitted file is empty."
)

// ImageUpload is a file posted with a form.
type ImageUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// DecodedImage is an upload that passed validation and is ready to store.
type DecodedImage struct {
	upload ImageUpload
	img    image.Image
	mime   string
}

// StoredImage holds the storage keys of an original and its thumbnails.
type StoredImage struct {
	Original  string
	Thumb     string
	ThumbWebP string
}

type ImageService struct {
	store              storage.Storage
	maxUploadSizeBytes int64
	maxPixels          int
}

func NewImageService(store storage.Storage, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	maxPixels := DefaultImageMaxPixels
	if cfg != nil && cfg.ImageMaxPixels > 0 {
		maxPixels = cfg.ImageMaxPixels
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
		maxPixels:          maxPixels,
	}
}

// URL returns the public address of a stored key.
func (s *ImageService) URL(key string) string {
	if key == "" {
		return ""
	}
	return s.store.URL(key)
}

// Decode validates an upload. Failures are validation errors on the "image" field.
func (s *ImageService) Decode(in ImageUpload) (*DecodedImage, error) {
	if len(in.Content) == 0 {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, models.NewFieldError("image", MsgEmptyFile)
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, models.NewFieldError("image",
			fmt.Sprintf("File too large (max %dMB).", s.maxUploadSizeBytes/(1024*1024)))
	}

	// Dimensions come from the header, so oversized images are refused
	// before any pixel buffer is allocated.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(in.Content))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(s.maxPixels) {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, models.NewFieldError("image", MsgInvalidImage)
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil || !isSupportedDecodedFormat(format) {
		observability.ImagesProcessed.WithLabelValues("rejected").Inc()
		return nil, models.NewFieldError("image", MsgInvalidImage)
	}

	return &DecodedImage{upload: in, img: decoded, mime: decodedFormatToMime(format)}, nil
}

// Save stores the original under posts/ and a center-cropped thumbnail as
// JPEG and WebP under posts/thumbs/.
func (s *ImageService) Save(ctx context.Context, d *DecodedImage) (_ *StoredImage, err error) {
	ctx, span := observability.StartServiceSpan(ctx, "ImageService", "Save")
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	defer func() {
		outcome := "stored"
		if err != nil {
			outcome = "failed"
		}
		observability.ImagesProcessed.WithLabelValues(outcome).Inc()
		observability.ImageProcessingLatency.Observe(time.Since(start).Seconds())
	}()

	thumb := thumbnail(d.img, ThumbWidth, ThumbHeight)
	thumbJPG, err := encodeJPEG(thumb, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thumbWebP, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	mime := d.mime
	if mime == "" {
		mime = http.DetectContentType(d.upload.Content)
	}
	name := storage.SanitizeFileName(d.upload.FileName)
	base := strings.TrimSuffix(name, path.Ext(name))

	res, err := s.store.BulkUpload(ctx, []*storage.UploadObject{
		{Prefix: imagePrefix, FileName: d.upload.FileName, Mime: mime, Data: d.upload.Content},
		{Prefix: thumbPrefix, FileName: base + ".jpg", Mime: "image/jpeg", Data: thumbJPG},
		{Prefix: thumbPrefix, FileName: base + ".webp", Mime: "image/webp", Data: thumbWebP},
	})
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("store image: %w", err))
	}
	if len(res) != 3 {
		return nil, models.NewInternalError(fmt.Errorf("store image: expected 3 objects, got %d", len(res)))
	}

	return &StoredImage{Original: res[0].Key, Thumb: res[1].Key, ThumbWebP: res[2].Key}, nil
}

// thumbnail crops the largest centered w:h region of src and scales it to
// exactly w x h. Small images are scaled up.
func thumbnail(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	cw, ch := b.Dx(), b.Dy()
	if int64(cw)*int64(h) > int64(ch)*int64(w) {
		cw = min(max(int((int64(ch)*int64(w)+int64(h)/2)/int64(h)), 1), b.Dx())
	} else {
		ch = min(max(int((int64(cw)*int64(h)+int64(w)/2)/int64(w)), 1), b.Dy())
	}
	x0 := b.Min.X + (b.Dx()-cw)/2
	y0 := b.Min.Y + (b.Dy()-ch)/2
	region := image.Rect(x0, y0, x0+cw, y0+ch)

	var cropped image.Image
	if sub, ok := src.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		cropped = sub.SubImage(region)
	} else {
		cropped = cropToRect(src, x0, y0, cw, ch)
	}

	// resize hands back its input when no scaling is needed, which may be a
	// sub-image with a non-zero origin.
	scaled := resize.Resize(uint(w), uint(h), cropped, resize.Lanczos3)
	sb := scaled.Bounds()
	if sb.Min == (image.Point{}) {
		return scaled
	}
	return cropToRect(scaled, sb.Min.X, sb.Min.Y, w, h)
}

func cropToRect(src image.Image, x, y, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
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

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg", "png", "gif", "webp":
		return true
	default:
		return false
	}
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
