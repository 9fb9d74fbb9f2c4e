// Package qrimage decodes the check-in QR code the API ships as a data URL
// and draws it with half-block characters.
package qrimage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrNotDataURL is returned for strings that are not data: URLs.
var ErrNotDataURL = errors.New("not a data URL")

// DecodeDataURL splits a data URL into its media type and payload.
func DecodeDataURL(s string) (string, []byte, error) {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrNotDataURL)
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if mediaType == "" {
		mediaType = "text/plain"
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	if !isBase64 {
		data, err := url.PathUnescape(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data URL: %w", err)
		}
		return mediaType, []byte(data), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(payload)
	}
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL: %w", err)
	}
	return mediaType, data, nil
}

// Extension returns the file extension for an image media type.
func Extension(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	default:
		return ".bin"
	}
}

// Decode decodes a raster image data URL.
func Decode(dataURL string) (image.Image, error) {
	_, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode QR image: %w", err)
	}
	return img, nil
}

// cell styles keyed by top and bottom darkness.
var (
	dark  = lipgloss.Color("#000000")
	light = lipgloss.Color("#ffffff")
)

func halfBlock(top, bottom bool) string {
	fg, bg := light, light
	if top {
		fg = dark
	}
	if bottom {
		bg = dark
	}
	return lipgloss.NewStyle().Foreground(fg).Background(bg).Render("▀")
}

// Render draws img at most width cells wide, two pixel rows per line.
// Colors are fixed black on white so the code stays scannable on dark
// terminals.
func Render(img image.Image, width int) string {
	b := img.Bounds()
	if b.Empty() {
		return ""
	}
	if width <= 0 || width > b.Dx() {
		width = b.Dx()
	}
	scale := float64(b.Dx()) / float64(width)
	rows := int(float64(b.Dy()) / scale)

	cells := map[[2]bool]string{}
	sample := func(x, y int) bool {
		px := b.Min.X + int((float64(x)+0.5)*scale)
		py := b.Min.Y + int((float64(y)+0.5)*scale)
		if py >= b.Max.Y {
			return false
		}
		return isDark(img.At(px, py))
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < width; x++ {
			k := [2]bool{sample(x, y), sample(x, y+1)}
			s, ok := cells[k]
			if !ok {
				s = halfBlock(k[0], k[1])
				cells[k] = s
			}
			sb.WriteString(s)
		}
	}
	return sb.String()
}

func isDark(c color.Color) bool {
	_, _, _, a := c.RGBA()
	if a < 0x8000 {
		return false
	}
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}
