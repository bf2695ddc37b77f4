// Package preview renders a diagnostic image of a Zobrist table: an 8x8
// heat grid of per-square mean popcount and 64 bars showing how often each
// bit is set across all keys.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/hailam/zobristgen/internal/atomicfile"
	"github.com/hailam/zobristgen/internal/zobrist"
)

// Image size in pixels.
const (
	Width  = 640
	Height = 360
)

const (
	cell      = 36
	gridX     = 20
	gridY     = 40
	barsX     = 340
	barsY     = 40
	barsH     = 288
	barW      = 4
	barGap    = 0.5
	textColor = 0x20
)

// SVG returns the chart for rep as an SVG document.
func SVG(rep zobrist.Report) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		Width, Height, Width, Height)
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%d" height="%d" fill="#f4f1ea"/>`+"\n", Width, Height)

	// Board: rank 0 at the bottom. Popcount 32 is neutral grey; each unit of
	// deviation shifts the shade.
	for r := 0; r < zobrist.Ranks; r++ {
		for f := 0; f < zobrist.Files; f++ {
			dev := rep.SquarePopcount[r][f] - 32
			shade := clamp(128+dev*256, 0, 255)
			x := gridX + f*cell
			y := gridY + (zobrist.Ranks-1-r)*cell
			fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="#%02x%02x%02x" stroke="#555555" stroke-width="1"/>`+"\n",
				x, y, cell, cell, int(shade), int(shade), int(255-shade/2))
		}
	}

	// Bit balance bars; the 0.5 line marks an unbiased bit.
	fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#555555" stroke-width="1"/>`+"\n",
		barsX, barsY, 64*barW+2, barsH)
	for i := 0; i < 64; i++ {
		h := rep.BitBalance(i) * barsH
		x := float64(barsX+1) + float64(i*barW) + barGap
		y := float64(barsY+barsH) - h
		fmt.Fprintf(&buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#2f6f9f"/>`+"\n",
			x, y, barW-2*barGap, h)
	}
	mid := barsY + barsH/2
	fmt.Fprintf(&buf, `<path d="M %d %d L %d %d" stroke="#c03030" stroke-width="1" fill="none"/>`+"\n",
		barsX, mid, barsX+64*barW+2, mid)

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Render rasterizes the chart for t and labels it.
func Render(t *zobrist.Table) (*image.RGBA, error) {
	rep := zobrist.Analyze(t)

	icon, err := oksvg.ReadIconStream(bytes.NewReader(SVG(rep)))
	if err != nil {
		return nil, errors.Wrap(err, "preview: parse svg")
	}
	icon.SetTarget(0, 0, Width, Height)

	rgba := image.NewRGBA(image.Rect(0, 0, Width, Height))
	scanner := rasterx.NewScannerGV(Width, Height, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(Width, Height, scanner)
	icon.Draw(raster, 1.0)

	label(rgba, gridX, 24, "mean popcount per square")
	label(rgba, barsX, 24, "bit balance (line = 0.5)")
	label(rgba, gridX, Height-8, fmt.Sprintf("fingerprint %016x  max bias %.4f  dup %d  zero %d",
		t.Fingerprint(), rep.MaxBitBias(), rep.Duplicates, rep.Zeros))

	return rgba, nil
}

func label(dst *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.Gray{Y: textColor}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// WritePNG renders t and writes it to path, replacing any existing file.
func WritePNG(path string, t *zobrist.Table) error {
	img, err := Render(t)
	if err != nil {
		return err
	}
	err = atomicfile.Write(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	return errors.Wrap(err, "preview")
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
