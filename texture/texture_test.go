package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/image/bmp"

	"github.com/binzume/vrmimporter/unity"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 60), G: uint8(y * 60), B: 10, A: 255})
		}
	}
	return img
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	img, err := Decode("Assets/skin.bmp", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Error("bounds:", img.Bounds())
	}
	r, g, _, _ := img.At(3, 2).RGBA()
	if r>>8 != 180 || g>>8 != 120 {
		t.Error("pixel:", r>>8, g>>8)
	}
}

func TestDecodeNativeTexture(t *testing.T) {
	b, err := unity.NewTexture2D("face", testImage()).Encode()
	if err != nil {
		t.Fatal(err)
	}
	img, err := Decode("face.asset", b)
	if err != nil {
		t.Fatal(err)
	}
	r, _, _, _ := img.At(3, 0).RGBA()
	if r>>8 != 180 {
		t.Error("pixel:", r>>8)
	}

	dxt := &unity.Texture2D{Name: "dxt", Width: 4, Height: 4, TextureFormat: unity.TextureFormatDXT5, TypelessData: "00"}
	b, err = dxt.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode("dxt.asset", b); errors.Cause(err) != ErrUnsupportedFormat {
		t.Error("DXT5 must be unsupported:", err)
	}
}

func TestDecodeUnknown(t *testing.T) {
	if _, err := Decode("broken.png", []byte("not an image")); errors.Cause(err) != ErrUnsupportedFormat {
		t.Error("expected ErrUnsupportedFormat:", err)
	}
	if _, err := Decode("broken.tga", []byte("not an image")); err == nil {
		t.Error("broken tga must fail")
	}
}

func TestDecodePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(1, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	// the extension does not matter for formats with a signature
	for _, name := range []string{"a.png", "a.tga", "a"} {
		img, err := Decode(name, buf.Bytes())
		if err != nil {
			t.Fatal(name, err)
		}
		if c := color.NRGBAModel.Convert(img.At(1, 0)); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 40}) {
			t.Error(name, "pixel:", c)
		}
	}
}

func TestDecodeTGA(t *testing.T) {
	// uncompressed true color, 2x1, top-left origin, BGR pixels
	data := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 24, 0x20,
		30, 20, 10, 0, 0, 255}
	img, err := Decode("Assets/skin.tga", data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Fatal("bounds:", img.Bounds())
	}
	if c := color.NRGBAModel.Convert(img.At(0, 0)); c != (color.NRGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Error("pixel (0, 0):", c)
	}
	if c := color.NRGBAModel.Convert(img.At(1, 0)); c != (color.NRGBA{R: 255, A: 255}) {
		t.Error("pixel (1, 0):", c)
	}
}

func TestEncodePNGIdempotent(t *testing.T) {
	first, err := EncodePNG(testImage())
	if err != nil {
		t.Fatal(err)
	}
	second, err := PNGCodec{}.EncodeToPNG("first.png", first)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("re-encoding a PNG changed it")
	}
}

func TestIsNormalMap(t *testing.T) {
	cases := []struct {
		path   string
		normal bool
	}{
		{"Assets/Textures/body_normal.png", true},
		{"Assets/Textures/Body_Normal.png", true},
		{"Assets/Normals/body.png", true},
		{"Assets/Textures/body_main.png", false},
	}
	for _, c := range cases {
		if IsNormalMap(c.path, DefaultNormalMapKeywords) != c.normal {
			t.Error("IsNormalMap:", c.path)
		}
	}
	if !IsNormalMap("Assets/body_nrm.png", []string{"normal", "_nrm"}) {
		t.Error("custom keyword")
	}
}
