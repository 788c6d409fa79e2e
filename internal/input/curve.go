package input

import (
	"fmt"
	"math"
)

// Curve reshapes a normalized hardware velocity before it is scored
type Curve string

const (
	Linear Curve = "linear"
	Soft   Curve = "soft" // light touch reads louder
	Hard   Curve = "hard" // needs a firm strike to read loud
)

var curveExponents = map[Curve]float64{
	Linear: 1,
	Soft:   0.6,
	Hard:   1.6,
}

func ParseCurve(name string) (Curve, error) {
	c := Curve(name)
	if _, ok := curveExponents[c]; !ok {
		return Linear, fmt.Errorf("unknown velocity curve %q", name)
	}
	return c, nil
}

func (c Curve) Apply(velocity float64) float64 {
	if velocity <= 0 {
		return 0
	}
	if velocity >= 1 {
		return 1
	}
	exp, ok := curveExponents[c]
	if !ok {
		exp = 1
	}
	return math.Pow(velocity, exp)
}

// FromMIDI maps a 7 bit velocity to 0..1 through the curve
func (c Curve) FromMIDI(velocity uint8) float64 {
	return c.Apply(float64(velocity) / 127)
}
