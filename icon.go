package main

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// renderAppIcon draws the window icon: an orange coin with a "B"
func renderAppIcon(size int) ([]byte, error) {
	r, err := chart.PNG(size, size)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	center := size / 2
	radius := float64(size)/2 - 2
	r.SetFillColor(drawing.ColorFromHex("f7931a"))
	r.SetStrokeColor(drawing.ColorFromHex("c46f0c"))
	r.SetStrokeWidth(float64(size) / 32)
	r.Circle(radius, center, center)
	r.FillStroke()

	r.SetFont(font)
	r.SetFontColor(drawing.ColorWhite)
	r.SetFontSize(float64(size) * 0.45)
	box := r.MeasureText("B")
	r.Text("B", center-box.Width()/2, center+box.Height()/2)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
