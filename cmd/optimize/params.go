package main

import (
	"github.com/pthm-cable/antfarm/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	field func(cfg *config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Foraging
			{Name: "hunger_threshold", Path: "foraging.hunger_threshold", Min: 0.05, Max: 0.9, Default: 0.22,
				field: func(c *config.Config) *float64 { return &c.Foraging.HungerThreshold }},
			{Name: "eat_rate", Path: "foraging.eat_rate", Min: 0.05, Max: 1.0, Default: 0.25,
				field: func(c *config.Config) *float64 { return &c.Foraging.EatRate }},
			// Vitals
			{Name: "hunger_decay", Path: "vitals.hunger_decay", Min: 0.005, Max: 0.1, Default: 0.025,
				field: func(c *config.Config) *float64 { return &c.Vitals.HungerDecay }},
			// Exploration
			{Name: "goal_duration", Path: "ai.goal_duration", Min: 0.5, Max: 20.0, Default: 5.0,
				field: func(c *config.Config) *float64 { return &c.AI.GoalDuration }},
			{Name: "visible_range", Path: "colony.visible_range", Min: 1.0, Max: 15.0, Default: 5.0,
				field: func(c *config.Config) *float64 { return &c.Colony.VisibleRange }},
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
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for i, spec := range pv.Specs {
		*spec.field(cfg) = clamped[i]
	}
	cfg.ComputeDerived()
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
