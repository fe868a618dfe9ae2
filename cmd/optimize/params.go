// Package main provides CMA-ES optimization for pasture metabolism parameters.
package main

import (
	"math"

	"github.com/pthm-cable/pasture/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Digestion
			{Name: "sheep_digestion_rate", Path: "metabolism.digestion_rate.sheep", Min: 0.1, Max: 2.0, Default: 0.5},
			{Name: "wolf_digestion_rate", Path: "metabolism.digestion_rate.wolf", Min: 0.5, Max: 6.0, Default: 2.0},
			// Decay
			{Name: "sheep_rot_yield", Path: "metabolism.rot_yield.sheep", Min: 2, Max: 40, Default: 15},
			{Name: "wolf_rot_yield", Path: "metabolism.rot_yield.wolf", Min: 2, Max: 40, Default: 10},
			// Upkeep
			{Name: "stamina_refill", Path: "metabolism.stamina_refill", Min: 0.25, Max: 4.0, Default: 1.0},
			{Name: "starvation_damage", Path: "metabolism.starvation_damage", Min: 1, Max: 25, Default: 10},
			{Name: "heal_cost_divisor", Path: "metabolism.heal_cost_divisor", Min: 0.5, Max: 4.0, Default: 1.5},
			// World
			{Name: "grass_calories", Path: "world.grass_calories", Min: 0.5, Max: 6.0, Default: 2.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)

	m := &cfg.Metabolism
	m.DigestionRate.Sheep = clamped[0]
	m.DigestionRate.Wolf = clamped[1]
	m.RotYield.Sheep = clamped[2]
	m.RotYield.Wolf = clamped[3]
	m.StaminaRefill = clamped[4]
	m.StarvationDamage = int(math.Round(clamped[5]))
	m.HealCostDivisor = clamped[6]
	cfg.World.GrassCalories = clamped[7]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	m := cfg.Metabolism
	return []float64{
		m.DigestionRate.Sheep,
		m.DigestionRate.Wolf,
		m.RotYield.Sheep,
		m.RotYield.Wolf,
		m.StaminaRefill,
		float64(m.StarvationDamage),
		m.HealCostDivisor,
		cfg.World.GrassCalories,
	}
}
