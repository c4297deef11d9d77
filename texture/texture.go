// Package texture decodes texture sources found in Unity projects and
// encodes them to PNG.
package texture

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/blezek/tga"
	ftga "github.com/ftrvxmtrx/tga"
	"github.com/oov/psd"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/binzume/vrmimporter/unity"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Decode decodes an image file or a native Texture2D asset. name is used for the format hint.
func Decode(name string, data []byte) (image.Image, error) {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".asset" {
		t, err := unity.DecodeTexture2D(data)
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedFormat, "%s: %v", name, err)
		}
		img, err := t.Image()
		if errors.Cause(err) == unity.ErrUnsupportedTextureFormat {
			return nil, errors.Wrapf(ErrUnsupportedFormat, "%s: %v", name, err)
		}
		return img, err
	}
	format := sniff(data)
	if format == "" && ext == ".tga" {
		format = "tga"
	}
	if format == "" {
		return nil, errors.Wrap(ErrUnsupportedFormat, name)
	}
	img, err := decoders[format](data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", name)
	}
	return img, nil
}

// tga has no signature, so formats are picked here instead of by image.Decode.
var signatures = []struct {
	format string
	magic  string
}{
	{"png", "\x89PNG\r\n\x1a\n"},
	{"jpeg", "\xff\xd8"},
	{"gif", "GIF8"},
	{"bmp", "BM"},
	{"tiff", "II*\x00"},
	{"tiff", "MM\x00*"},
	{"psd", "8BPS"},
}

func sniff(data []byte) string {
	for _, s := range signatures {
		if bytes.HasPrefix(data, []byte(s.magic)) {
			return s.format
		}
	}
	if len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "webp"
	}
	return ""
}

var decoders = map[string]func([]byte) (image.Image, error){
	"png":  func(b []byte) (image.Image, error) { return png.Decode(bytes.NewReader(b)) },
	"jpeg": func(b []byte) (image.Image, error) { return jpeg.Decode(bytes.NewReader(b)) },
	"gif":  func(b []byte) (image.Image, error) { return gif.Decode(bytes.NewReader(b)) },
	"bmp":  func(b []byte) (image.Image, error) { return bmp.Decode(bytes.NewReader(b)) },
	"tiff": func(b []byte) (image.Image, error) { return tiff.Decode(bytes.NewReader(b)) },
	"webp": func(b []byte) (image.Image, error) { return webp.Decode(bytes.NewReader(b)) },
	"psd": func(b []byte) (image.Image, error) {
		doc, _, err := psd.Decode(bytes.NewReader(b), &psd.DecodeOptions{})
		if err != nil {
			return nil, err
		}
		return doc.Picker, nil
	},
	"tga": func(b []byte) (image.Image, error) {
		img, err := ftga.Decode(bytes.NewReader(b))
		if err != nil {
			// retry
			img, err = tga.Decode(bytes.NewReader(b))
		}
		return img, err
	},
}

// Normalize converts img to NRGBA with the origin at (0, 0).
func Normalize(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// EncodePNG encodes img as 8 bit PNG. Encoding a decoded result again gives the same bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(&buf, Normalize(img)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PNGCodec converts any supported source to PNG.
type PNGCodec struct{}

func (PNGCodec) EncodeToPNG(name string, data []byte) ([]byte, error) {
	img, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	return EncodePNG(img)
}

var DefaultNormalMapKeywords = []string{"normal"}

// IsNormalMap reports whether the asset path names a normal map.
func IsNormalMap(assetPath string, keywords []string) bool {
	p := strings.ToLower(assetPath)
	for _, k := range keywords {
		if k != "" && strings.Contains(p, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
