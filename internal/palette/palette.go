// Package palette extracts brand colors from an uploaded logo.
package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"slices"
	"sort"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
	"github.com/gabriel-vasile/mimetype"
)

const (
	// MaxUploadBytes is the largest accepted logo.
	MaxUploadBytes = 5 << 20
	// MaxColors is the largest palette returned.
	MaxColors = 5
	// MaxPixels bounds the decoded size of a logo (25 megapixels).
	MaxPixels = 25_000_000

	resizeTo uint = 80
)

// Errors returned by Extract
var (
	ErrTooLarge        = errors.New("image exceeds the 5MB limit")
	ErrTooManyPixels   = errors.New("image dimensions exceed the 25 megapixel limit")
	ErrUnsupportedType = errors.New("only PNG and JPEG images are supported")
	ErrNoColors        = errors.New("no colors could be extracted from the image")
)

var allowedTypes = []string{"image/png", "image/jpeg"}

// Palette is the set of prominent colors of an image, most prominent first.
type Palette struct {
	Colors   []string `json:"colors"`
	MIMEType string   `json:"mime_type"`
}

// Extract sniffs, decodes and clusters an image into at most MaxColors
// "#rrggbb" colors.
func Extract(data []byte) (*Palette, error) {
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}
	mtype := mimetype.Detect(data)
	if !slices.ContainsFunc(allowedTypes, mtype.Is) {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedType, mtype.String())
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: got %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	items, err := cluster(img)
	if err != nil {
		return nil, err
	}
	colors := toHex(items)
	if len(colors) == 0 {
		return nil, ErrNoColors
	}
	return &Palette{Colors: colors, MIMEType: mtype.String()}, nil
}

// ExtractReader reads at most MaxUploadBytes+1 bytes from r and extracts
// their palette.
func ExtractReader(r io.Reader) (*Palette, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return Extract(data)
}

// cluster runs k-means, first ignoring plain white/black backgrounds and then
// with every pixel, lowering k when the image has too few distinct colors.
func cluster(img image.Image) ([]prominentcolor.ColorItem, error) {
	var lastErr error
	for _, masks := range [][]prominentcolor.ColorBackgroundMask{prominentcolor.GetDefaultMasks(), nil} {
		for k := MaxColors; k >= 1; k-- {
			items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, resizeTo, masks)
			if err != nil {
				lastErr = err
				continue
			}
			if len(items) > 0 {
				return items, nil
			}
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoColors, lastErr)
	}
	return nil, ErrNoColors
}

func toHex(items []prominentcolor.ColorItem) []string {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Cnt > items[j].Cnt })

	colors := make([]string, 0, MaxColors)
	for _, item := range items {
		if item.Cnt <= 0 {
			continue
		}
		hex := fmt.Sprintf("#%02x%02x%02x", item.Color.R&0xff, item.Color.G&0xff, item.Color.B&0xff)
		if slices.Contains(colors, hex) {
			continue
		}
		colors = append(colors, hex)
		if len(colors) == MaxColors {
			break
		}
	}
	return colors
}

// CleanLabel trims and HTML-escapes a brand name or font before storage.
func CleanLabel(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
