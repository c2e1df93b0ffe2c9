package palette

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// blocks draws a 64x64 image that is three quarters red and one quarter blue.
func blocks() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	red := color.RGBA{R: 230, G: 20, B: 30, A: 255}
	blue := color.RGBA{R: 10, G: 40, B: 220, A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if y >= 48 {
				img.Set(x, y, blue)
			} else {
				img.Set(x, y, red)
			}
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func channels(t *testing.T, hex string) (r, g, b int64) {
	t.Helper()
	v, err := strconv.ParseInt(hex[1:], 16, 64)
	require.NoError(t, err)
	return v >> 16 & 0xff, v >> 8 & 0xff, v & 0xff
}

func TestExtract_PNG(t *testing.T) {
	p, err := Extract(encodePNG(t, blocks()))
	require.NoError(t, err)

	assert.Equal(t, "image/png", p.MIMEType)
	require.NotEmpty(t, p.Colors)
	assert.LessOrEqual(t, len(p.Colors), MaxColors)
	for _, c := range p.Colors {
		assert.Regexp(t, hexColor, c)
	}

	r, g, b := channels(t, p.Colors[0])
	assert.Greater(t, r, g, "most prominent color should be the red block")
	assert.Greater(t, r, b)
}

func TestExtract_JPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, blocks(), &jpeg.Options{Quality: 90}))

	p, err := Extract(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", p.MIMEType)
	assert.NotEmpty(t, p.Colors)
}

func TestExtract_Rejections(t *testing.T) {
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, blocks(), nil))

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{name: "too large", data: make([]byte, MaxUploadBytes+1), want: ErrTooLarge},
		{name: "gif", data: gifBuf.Bytes(), want: ErrUnsupportedType},
		{name: "text", data: []byte("definitely not an image"), want: ErrUnsupportedType},
		{name: "empty", data: nil, want: ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(tt.data)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtract_CorruptPNG(t *testing.T) {
	data := encodePNG(t, blocks())
	_, err := Extract(data[:len(data)/2])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode image")
}

// withDimensions rewrites the IHDR width and height of a PNG.
func withDimensions(data []byte, w, h uint32) []byte {
	out := bytes.Clone(data)
	binary.BigEndian.PutUint32(out[16:20], w)
	binary.BigEndian.PutUint32(out[20:24], h)
	binary.BigEndian.PutUint32(out[29:33], crc32.ChecksumIEEE(out[12:29]))
	return out
}

func TestExtract_PixelBudget(t *testing.T) {
	small := encodePNG(t, image.NewRGBA(image.Rect(0, 0, 1, 1)))

	tests := []struct {
		name string
		w, h uint32
	}{
		{name: "square", w: 30000, h: 30000},
		{name: "wide strip", w: 1 << 30, h: 1},
		{name: "just over", w: 5001, h: 5000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := withDimensions(small, tt.w, tt.h)
			require.Less(t, len(data), 1024)

			_, err := Extract(data)
			assert.ErrorIs(t, err, ErrTooManyPixels)
		})
	}
}

func TestExtractReader_Limit(t *testing.T) {
	_, err := ExtractReader(bytes.NewReader(make([]byte, MaxUploadBytes+10)))
	assert.ErrorIs(t, err, ErrTooLarge)

	p, err := ExtractReader(bytes.NewReader(encodePNG(t, blocks())))
	require.NoError(t, err)
	assert.NotEmpty(t, p.Colors)
}

func TestCleanLabel(t *testing.T) {
	assert.Equal(t, "Acme &amp; Co", CleanLabel("  Acme & Co "))
	assert.Equal(t, "&lt;b&gt;Bold&lt;/b&gt;", CleanLabel("<b>Bold</b>"))
	assert.Equal(t, "", CleanLabel("   "))
}
