package game

import "image/color"

// Background is the color of an empty cell.
var Background = color.RGBA{R: 17, G: 17, B: 17, A: 255}

// Palette maps color indices to RGB. Index 0 is the background.
var Palette = [ShapeCount + 1]color.RGBA{
	Background,
	{R: 0, G: 255, B: 255, A: 255}, // I cyan
	{R: 0, G: 0, B: 255, A: 255},   // J blue
	{R: 255, G: 128, B: 0, A: 255}, // L orange
	{R: 255, G: 255, B: 0, A: 255}, // O yellow
	{R: 0, G: 255, B: 0, A: 255},   // S green
	{R: 128, G: 0, B: 128, A: 255}, // T purple
	{R: 255, G: 0, B: 0, A: 255},   // Z red
}

// ColorFor returns the display color of a cell value.
// Values outside the palette render as background.
func ColorFor(c Cell) color.RGBA {
	if int(c) >= len(Palette) {
		return Background
	}
	return Palette[c]
}
