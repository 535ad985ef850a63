package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

const DefaultMaxImageSize = 10 * 1024 * 1024

var (
	ErrNotDataURL    = errors.New("invalid image payload provided")
	ErrMalformedData = errors.New("malformed base64 image data")
	ErrUndecodable   = errors.New("image payload could not be decoded")
	ErrTooLarge      = errors.New("images must be 10MB or smaller")
	ErrUnsupported   = errors.New("uploaded image format is not supported")
)

// Image is a validated upload.
type Image struct {
	Data   []byte
	Format string // jpeg, png or gif
}

func (i Image) ContentType() string { return "image/" + i.Format }

func (i Image) Ext() string {
	if i.Format == "jpeg" {
		return "jpg"
	}
	return i.Format
}

type ImageProcessor struct {
	MaxSize int64
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: DefaultMaxImageSize}
}

// ValidateImage checks size and sniffs the format from the bytes.
func (p *ImageProcessor) ValidateImage(data []byte) (Image, error) {
	if int64(len(data)) > p.MaxSize {
		return Image{}, ErrTooLarge
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, ErrUnsupported
	}
	switch format {
	case "jpeg", "png", "gif":
		return Image{Data: data, Format: format}, nil
	default:
		return Image{}, ErrUnsupported
	}
}

// DecodeDataURL accepts "data:image/...;base64,<payload>".
func (p *ImageProcessor) DecodeDataURL(dataURL string) (Image, error) {
	if !strings.HasPrefix(dataURL, "data:image") {
		return Image{}, ErrNotDataURL
	}
	_, payload, _ := strings.Cut(dataURL, ",")
	if payload == "" {
		return Image{}, ErrMalformedData
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, ErrUndecodable
	}
	return p.ValidateImage(data)
}

// Variant widths for novel covers.
var coverVariants = map[string]int{"cover": 600, "large": 1200}

// ProcessCover returns JPEG variants keyed by name.
func (p *ImageProcessor) ProcessCover(data []byte) (map[string][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("cannot decode image: %w", err)
	}
	variants := make(map[string][]byte, len(coverVariants))
	for name, size := range coverVariants {
		resized := imaging.Fit(img, size, size, imaging.Lanczos)
		b := new(bytes.Buffer)
		if err := jpeg.Encode(b, resized, &jpeg.Options{Quality: 90}); err != nil {
			return nil, fmt.Errorf("cannot encode %s: %w", name, err)
		}
		variants[name] = b.Bytes()
	}
	return variants, nil
}
