// Package render draws game snapshots to images with fogleman/gg.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"tetris/internal/game"
)

// Options controls the layout of a rendered frame.
type Options struct {
	CellSize  int  // Pixel size of one board cell
	Margin    int  // Padding around the board and side panel
	ShowPanel bool // Draw next piece, score, lines and level to the right
	GridLines bool // Draw a faint grid over empty cells
}

// DefaultOptions returns a layout that fits a 640px tall frame.
func DefaultOptions() Options {
	return Options{
		CellSize:  28,
		Margin:    20,
		ShowPanel: true,
		GridLines: true,
	}
}

var (
	panelText   = color.RGBA{230, 230, 230, 255}
	gridColor   = color.RGBA{40, 40, 40, 255}
	borderColor = color.RGBA{90, 90, 90, 255}
	bannerColor = color.RGBA{0, 0, 0, 190}
)

const panelCells = 6 // Panel width in cells

// The font is parsed once. Faces cache glyphs and are not safe for
// concurrent use, so each render builds its own.
var (
	fontOnce   sync.Once
	parsedFont *opentype.Font
)

func loadFont() {
	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		log.Printf("⚠️ Failed to parse font: %v", err)
		return
	}
	parsedFont = parsed
}

// faces holds the font faces of one render call. Nil faces fall back to
// gg's built-in face.
type faces struct {
	small font.Face
	large font.Face
}

func newFaces() faces {
	fontOnce.Do(loadFont)
	if parsedFont == nil {
		return faces{}
	}
	return faces{
		small: newFace(parsedFont, 14),
		large: newFace(parsedFont, 28),
	}
}

func newFace(f *opentype.Font, size float64) font.Face {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		log.Printf("⚠️ Failed to create %.0fpt font face: %v", size, err)
		return nil
	}
	return face
}

func (f faces) Close() {
	if f.small != nil {
		f.small.Close()
	}
	if f.large != nil {
		f.large.Close()
	}
}

// Size returns the image dimensions produced for opts.
func Size(opts Options) (width, height int) {
	opts = normalize(opts)
	width = game.Width*opts.CellSize + 2*opts.Margin
	if opts.ShowPanel {
		width += panelCells*opts.CellSize + opts.Margin
	}
	height = game.Height*opts.CellSize + 2*opts.Margin
	return width, height
}

// Image renders s into a new image.
func Image(s *game.Snapshot, opts Options) image.Image {
	opts = normalize(opts)
	ff := newFaces()
	defer ff.Close()

	w, h := Size(opts)
	dc := gg.NewContext(w, h)

	dc.SetColor(color.Black)
	dc.Clear()

	drawBoard(dc, s, opts)
	if opts.ShowPanel {
		drawPanel(dc, s, opts, ff.small)
	}
	if s.GameOver {
		drawBanner(dc, opts, ff.large)
	}
	return dc.Image()
}

// RenderPNG writes s as a PNG image.
func RenderPNG(w io.Writer, s *game.Snapshot, opts Options) error {
	if s == nil {
		return fmt.Errorf("render: nil snapshot")
	}
	if err := png.Encode(w, Image(s, opts)); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

func normalize(opts Options) Options {
	def := DefaultOptions()
	if opts.CellSize <= 0 {
		opts.CellSize = def.CellSize
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}
	return opts
}

func drawBoard(dc *gg.Context, s *game.Snapshot, opts Options) {
	cs := float64(opts.CellSize)
	ox := float64(opts.Margin)
	oy := float64(opts.Margin)

	board := s.Composite()
	for y := 0; y < game.Height; y++ {
		for x := 0; x < game.Width; x++ {
			drawCell(dc, ox+float64(x)*cs, oy+float64(y)*cs, cs, board[y][x], opts.GridLines)
		}
	}

	dc.SetColor(borderColor)
	dc.SetLineWidth(2)
	dc.DrawRectangle(ox-1, oy-1, game.Width*cs+2, game.Height*cs+2)
	dc.Stroke()
}

func drawCell(dc *gg.Context, px, py, size float64, c game.Cell, grid bool) {
	dc.SetColor(game.ColorFor(c))
	dc.DrawRectangle(px, py, size, size)
	dc.Fill()

	if c.Empty() {
		if grid {
			dc.SetColor(gridColor)
			dc.SetLineWidth(1)
			dc.DrawRectangle(px+0.5, py+0.5, size-1, size-1)
			dc.Stroke()
		}
		return
	}

	// Darker inset edge so adjacent blocks stay distinct
	dc.SetColor(color.RGBA{0, 0, 0, 80})
	dc.SetLineWidth(2)
	dc.DrawRectangle(px+1, py+1, size-2, size-2)
	dc.Stroke()
}

func drawPanel(dc *gg.Context, s *game.Snapshot, opts Options, face font.Face) {
	cs := float64(opts.CellSize)
	left := float64(opts.Margin*2) + game.Width*cs
	top := float64(opts.Margin)

	if face != nil {
		dc.SetFontFace(face)
	}
	dc.SetColor(panelText)
	dc.DrawString("NEXT", left, top+14)

	preview := cs * 0.8
	s.Next.Cells(func(x, y int, c game.Cell) {
		drawCell(dc, left+float64(x)*preview, top+24+float64(y)*preview, preview, c, false)
	})

	lines := []string{
		"SCORE",
		humanize.Comma(int64(s.Score)),
		"",
		"LINES",
		humanize.Comma(int64(s.Lines)),
		"",
		"LEVEL",
		fmt.Sprintf("%d", s.Level),
		"",
		"BEST",
		humanize.Comma(int64(s.TopScore)),
		"",
		s.PlayerName,
	}

	y := top + 24 + 4*preview + 30
	dc.SetColor(panelText)
	for _, line := range lines {
		if line != "" {
			dc.DrawString(line, left, y)
		}
		y += 20
	}
}

func drawBanner(dc *gg.Context, opts Options, face font.Face) {
	cs := float64(opts.CellSize)
	ox := float64(opts.Margin)
	boardW := game.Width * cs
	cy := float64(opts.Margin) + game.Height*cs/2

	dc.SetColor(bannerColor)
	dc.DrawRectangle(ox, cy-30, boardW, 60)
	dc.Fill()

	if face != nil {
		dc.SetFontFace(face)
	}
	dc.SetColor(color.RGBA{255, 80, 80, 255})
	dc.DrawStringAnchored("GAME OVER", ox+boardW/2, cy, 0.5, 0.35)
}
