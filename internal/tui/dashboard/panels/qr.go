package panels

import (
	"strings"

	"github.com/aiwars-hackathon/hackdash/internal/qrimage"
	"github.com/aiwars-hackathon/hackdash/internal/tui/layout"
	"github.com/aiwars-hackathon/hackdash/internal/tui/styles"
	"github.com/aiwars-hackathon/hackdash/internal/view"
)

// QRSaveHint points at the command that writes the QR image to disk.
const QRSaveHint = "Run `hackdash qr --out qr.png` to save it."

// QR renders the check-in code when the image is a raster data URL,
// otherwise the caption and a hint to save the image.
func QR(p view.QRPanel, width int) string {
	inner := Inner(width)
	if !p.Available {
		return styles.Muted(layout.Wrap(p.Caption, inner))
	}
	img, err := qrimage.Decode(p.Image)
	if err != nil {
		return strings.Join([]string{
			layout.Wrap(p.Caption, inner),
			styles.Muted(layout.Wrap(QRSaveHint, inner)),
		}, "\n")
	}
	return qrimage.Render(img, min(inner, 48)) + "\n" + layout.Wrap(p.Caption, inner)
}
