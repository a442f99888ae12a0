package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

var (
	ErrNotAnImage     = errors.New("file is not a supported image")
	ErrImageTooLarge  = errors.New("image exceeds the maximum size")
	ErrUnsupportedFmt = errors.New("image format not allowed")
)

// ProcessedImage is a cover ready to upload.
type ProcessedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

type ImageProcessor struct {
	MaxSize   int64 // bytes
	MaxWidth  int   // wider images are scaled down, keeping aspect ratio
	MaxPixels int64 // declared width*height; checked before decoding
}

func NewImageProcessor(maxSize int64, maxWidth int, maxPixels int64) *ImageProcessor {
	return &ImageProcessor{MaxSize: maxSize, MaxWidth: maxWidth, MaxPixels: maxPixels}
}

// Process validates a cover image and downscales it when it is wider than
// MaxWidth. Images within bounds are returned byte-for-byte.
func (p *ImageProcessor) Process(data []byte) (*ProcessedImage, error) {
	if int64(len(data)) > p.MaxSize {
		return nil, fmt.Errorf("%w (%dMB)", ErrImageTooLarge, p.MaxSize>>20)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotAnImage
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); p.MaxPixels > 0 && pixels > p.MaxPixels {
		return nil, fmt.Errorf("%w (%dx%d)", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	var imgFormat imaging.Format
	switch format {
	case "jpeg":
		imgFormat = imaging.JPEG
	case "png":
		imgFormat = imaging.PNG
	case "gif":
		imgFormat = imaging.GIF
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFmt, format)
	}

	out := &ProcessedImage{Data: data, ContentType: "image/" + format, Ext: extensionFor(imgFormat)}
	if p.MaxWidth <= 0 || cfg.Width <= p.MaxWidth {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrNotAnImage
	}

	resized := imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imgFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	out.Data = buf.Bytes()

	return out, nil
}

func extensionFor(f imaging.Format) string {
	switch f {
	case imaging.PNG:
		return ".png"
	case imaging.GIF:
		return ".gif"
	default:
		return ".jpg"
	}
}
