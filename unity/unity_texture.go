package unity

import (
	"encoding/hex"
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Texture is a loaded texture handle. A handle is never valid across a reimport
// of its asset; load it again by path to get the current one.
type Texture struct {
	Name     string
	Path     string
	GUID     string
	Ref      Ref
	Revision int
	Importer *TextureImporter
}

type TextureIdentity struct {
	Ref      Ref
	Revision int
}

func (t *Texture) Identity() TextureIdentity {
	return TextureIdentity{Ref: t.Ref, Revision: t.Revision}
}

func (t *Texture) String() string {
	return fmt.Sprintf("%s (%s rev %d)", t.Name, t.Path, t.Revision)
}

type TextureFormat int

const (
	TextureFormatAlpha8 TextureFormat = 1
	TextureFormatRGB24  TextureFormat = 3
	TextureFormatRGBA32 TextureFormat = 4
	TextureFormatARGB32 TextureFormat = 5
	TextureFormatDXT1   TextureFormat = 10
	TextureFormatDXT5   TextureFormat = 12
	TextureFormatBGRA32 TextureFormat = 14
	TextureFormatR8     TextureFormat = 63
)

var ErrUnsupportedTextureFormat = errors.New("unsupported texture format")

// Texture2D is a native texture asset (.asset).
type Texture2D struct {
	ObjectHideFlags   int           `yaml:"m_ObjectHideFlags"`
	Name              string        `yaml:"m_Name"`
	SerializedVersion int           `yaml:"serializedVersion"`
	Width             int           `yaml:"m_Width"`
	Height            int           `yaml:"m_Height"`
	CompleteImageSize int           `yaml:"m_CompleteImageSize"`
	TextureFormat     TextureFormat `yaml:"m_TextureFormat"`
	MipCount          int           `yaml:"m_MipCount"`
	IsReadable        int           `yaml:"m_IsReadable"`
	TextureDimension  int           `yaml:"m_TextureDimension"`
	ImageDataSize     int           `yaml:"image data"`
	TypelessData      string        `yaml:"_typelessdata"`
}

func DecodeTexture2D(data []byte) (*Texture2D, error) {
	doc := ParseYAMLFile(data).Find(ClassTexture2D)
	if doc == nil {
		return nil, ErrNotTexture
	}
	var t struct {
		Texture2D *Texture2D `yaml:"Texture2D"`
	}
	if err := doc.Decode(&t); err != nil {
		return nil, err
	}
	if t.Texture2D == nil {
		return nil, ErrNotTexture
	}
	return t.Texture2D, nil
}

// NewTexture2D stores img as an uncompressed RGBA32 texture.
func NewTexture2D(name string, img image.Image) *Texture2D {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]byte, 0, w*h*4)
	// rows are stored bottom-up
	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			pix = append(pix, c.R, c.G, c.B, c.A)
		}
	}
	return &Texture2D{
		Name:              name,
		SerializedVersion: 2,
		Width:             w,
		Height:            h,
		CompleteImageSize: len(pix),
		TextureFormat:     TextureFormatRGBA32,
		MipCount:          1,
		IsReadable:        1,
		TextureDimension:  2,
		ImageDataSize:     len(pix),
		TypelessData:      hex.EncodeToString(pix),
	}
}

func (t *Texture2D) Encode() ([]byte, error) {
	body, err := yaml.Marshal(map[string]*Texture2D{"Texture2D": t})
	if err != nil {
		return nil, err
	}
	return NewYAMLFile(ClassTexture2D, Texture2DFileID, body).Bytes(), nil
}

func (t *Texture2D) bytesPerPixel() int {
	switch t.TextureFormat {
	case TextureFormatAlpha8, TextureFormatR8:
		return 1
	case TextureFormatRGB24:
		return 3
	case TextureFormatRGBA32, TextureFormatARGB32, TextureFormatBGRA32:
		return 4
	}
	return 0
}

// Image decodes the top mip level.
func (t *Texture2D) Image() (image.Image, error) {
	bpp := t.bytesPerPixel()
	if bpp == 0 {
		return nil, errors.Wrapf(ErrUnsupportedTextureFormat, "%s: format %d", t.Name, t.TextureFormat)
	}
	pix, err := hex.DecodeString(t.TypelessData)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: image data", t.Name)
	}
	if t.Width <= 0 || t.Height <= 0 || len(pix) < t.Width*t.Height*bpp {
		return nil, errors.Errorf("%s: image data too short (%dx%d, %d bytes)", t.Name, t.Width, t.Height, len(pix))
	}
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	for y := 0; y < t.Height; y++ {
		row := pix[(t.Height-1-y)*t.Width*bpp:]
		for x := 0; x < t.Width; x++ {
			p := row[x*bpp : x*bpp+bpp]
			var c color.NRGBA
			switch t.TextureFormat {
			case TextureFormatAlpha8:
				c = color.NRGBA{R: 255, G: 255, B: 255, A: p[0]}
			case TextureFormatR8:
				c = color.NRGBA{R: p[0], G: 0, B: 0, A: 255}
			case TextureFormatRGB24:
				c = color.NRGBA{R: p[0], G: p[1], B: p[2], A: 255}
			case TextureFormatRGBA32:
				c = color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
			case TextureFormatARGB32:
				c = color.NRGBA{R: p[1], G: p[2], B: p[3], A: p[0]}
			case TextureFormatBGRA32:
				c = color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}
