// Package units converts weights between kilograms and pounds.
// Weights are stored in kilograms; pounds exist only at the edges.
package units

import (
	"fmt"
	"math"
	"strings"
)

// KgToLbsFactor is the number of pounds in one kilogram.
const KgToLbsFactor = 2.20462

// Unit is a display unit for weights.
type Unit string

const (
	Kilograms Unit = "kg"
	Pounds    Unit = "lbs"
)

// KgToLbs converts kilograms to pounds, rounded to one decimal place.
func KgToLbs(kg float64) float64 {
	return round1(kg * KgToLbsFactor)
}

// LbsToKg converts pounds to kilograms, rounded to one decimal place.
func LbsToKg(lbs float64) float64 {
	return round1(lbs / KgToLbsFactor)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ParseUnit accepts "kg" and "lbs" (case-insensitive, "lb" too). Empty means kilograms.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "kg", "kgs":
		return Kilograms, nil
	case "lb", "lbs":
		return Pounds, nil
	default:
		return "", fmt.Errorf("unknown weight unit %q", s)
	}
}

// ToKilograms converts a value given in unit to kilograms for storage.
// Kilogram values pass through unrounded.
func ToKilograms(value float64, unit Unit) float64 {
	if unit == Pounds {
		return LbsToKg(value)
	}
	return value
}

// FromKilograms converts a stored kilogram value for display in unit.
func FromKilograms(kg float64, unit Unit) float64 {
	if unit == Pounds {
		return KgToLbs(kg)
	}
	return kg
}
