// Package decoration derives the display attributes of calendar events.
package decoration

import (
	"fmt"
	"math"

	"vistoria/pkg/model"
)

const (
	DefaultColor = "#3b82f6"
	TrackColor   = "#cccccc"
)

// DefaultPalette maps equipment names to event colors.
var DefaultPalette = map[string]string{
	"Alimentador": "#3b82f6",
	"Correia":     "#10b981",
	"Silo":        "#f59e0b",
}

type Decoration struct {
	Color    string `json:"color"`
	Progress int    `json:"progress"`
	Gradient string `json:"gradient"`
}

type Decorator struct {
	palette  map[string]string
	fallback string
}

// NewDecorator copies palette; an empty palette falls back to DefaultPalette.
func NewDecorator(palette map[string]string, fallback string) *Decorator {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if fallback == "" {
		fallback = DefaultColor
	}
	p := make(map[string]string, len(palette))
	for k, v := range palette {
		p[k] = v
	}
	return &Decorator{palette: p, fallback: fallback}
}

func (d *Decorator) Color(equipmentName string) string {
	if c, ok := d.palette[equipmentName]; ok {
		return c
	}
	return d.fallback
}

// Progress is the consumed share of the budget as a whole percentage.
func Progress(e *model.Equipment) int {
	if e == nil || e.TotalDuration <= 0 {
		return 0
	}
	p := (1 - float64(e.RemainingDuration)/float64(e.TotalDuration)) * 100
	return int(math.Round(math.Max(0, math.Min(100, p))))
}

func Gradient(color string, progress int) string {
	return fmt.Sprintf("linear-gradient(90deg, %s %d%%, %s %d%%)", color, progress, TrackColor, progress)
}

// Decorate uses the booking's resource name for the color and the equipment
// ledger for the progress bar. e may be nil for a booking whose equipment is gone.
func (d *Decorator) Decorate(b *model.Booking, e *model.Equipment) Decoration {
	color := d.Color(b.EquipmentName)
	progress := Progress(e)
	return Decoration{
		Color:    color,
		Progress: progress,
		Gradient: Gradient(color, progress),
	}
}
