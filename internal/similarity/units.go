// CocktailDB - Cocktail Recipe Similarity Analytics
// Copyright 2026 K. Thorn (kthorn)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kthorn/cocktaildb-sub001

package similarity

import "strings"

// UnitKind classifies how a unit contributes to a recipe's volume.
type UnitKind int

const (
	// UnitScaled units multiply the row amount by a milliliter factor.
	UnitScaled UnitKind = iota

	// UnitFixed units contribute a fixed nominal volume regardless of
	// the recorded amount (pour-to-top, rinse).
	UnitFixed

	// UnitDiscrete units (each, slice, sprig, ...) carry no measurable
	// volume. They are excluded from volume summation but the category
	// is retained rather than silently dropped.
	UnitDiscrete
)

// String returns a human-readable kind name.
func (k UnitKind) String() string {
	switch k {
	case UnitScaled:
		return "scaled"
	case UnitFixed:
		return "fixed"
	case UnitDiscrete:
		return "discrete"
	default:
		return "unknown"
	}
}

// UnitConversion describes one unit's contribution to canonical volume.
type UnitConversion struct {
	Kind UnitKind

	// Factor is milliliters per unit for UnitScaled.
	Factor float64

	// Fixed is the nominal milliliter contribution for UnitFixed.
	Fixed float64
}

// UnitTable maps canonical (lowercase, trimmed) unit names to their
// conversions.
type UnitTable map[string]UnitConversion

// Lookup resolves a raw unit string against the table.
func (t UnitTable) Lookup(unit string) (UnitConversion, bool) {
	conv, ok := t[strings.ToLower(strings.TrimSpace(unit))]
	return conv, ok
}

// Nominal volumes for units that contribute a fixed amount.
const (
	// TopUpVolumeML is the nominal contribution of a "pour-to-top"
	// entry (e.g. topping with soda).
	TopUpVolumeML = 90.0

	// RinseVolumeML is the nominal contribution of a glass rinse.
	RinseVolumeML = 5.0
)

// DefaultUnitTable returns the unit→milliliter conversion table for the
// catalog's unit vocabulary.
func DefaultUnitTable() UnitTable {
	return UnitTable{
		"ml":       {Kind: UnitScaled, Factor: 1},
		"cl":       {Kind: UnitScaled, Factor: 10},
		"oz":       {Kind: UnitScaled, Factor: 29.5735},
		"ounce":    {Kind: UnitScaled, Factor: 29.5735},
		"tsp":      {Kind: UnitScaled, Factor: 4.92892},
		"tbsp":     {Kind: UnitScaled, Factor: 14.7868},
		"cup":      {Kind: UnitScaled, Factor: 236.588},
		"dash":     {Kind: UnitScaled, Factor: 0.92},
		"drop":     {Kind: UnitScaled, Factor: 0.05},
		"barspoon": {Kind: UnitScaled, Factor: 5},

		"top":   {Kind: UnitFixed, Fixed: TopUpVolumeML},
		"rinse": {Kind: UnitFixed, Fixed: RinseVolumeML},

		"each":  {Kind: UnitDiscrete},
		"slice": {Kind: UnitDiscrete},
		"wedge": {Kind: UnitDiscrete},
		"sprig": {Kind: UnitDiscrete},
		"leaf":  {Kind: UnitDiscrete},
		"pinch": {Kind: UnitDiscrete},
		"twist": {Kind: UnitDiscrete},
	}
}
