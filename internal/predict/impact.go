// Package predict projects how a candidate session changes recovery over the following days.
package predict

import (
	"strings"

	"coach/internal/models"
	"coach/internal/recovery"
)

// IntensityLevel is the declared intensity of a candidate session
type IntensityLevel string

const (
	IntensityHigh     IntensityLevel = "high"
	IntensityModerate IntensityLevel = "moderate"
	IntensityLight    IntensityLevel = "light"
	IntensityVeryLow  IntensityLevel = "very_low"
)

// VolumeLevel is the declared volume of a candidate session
type VolumeLevel string

const (
	VolumeNormal  VolumeLevel = "normal"
	VolumeReduced VolumeLevel = "reduced"
	VolumeMinimal VolumeLevel = "minimal"
	VolumeNone    VolumeLevel = "none"
)

// Params describe a candidate session
type Params struct {
	Intensity     IntensityLevel `json:"intensity"`
	Volume        VolumeLevel    `json:"volume"`
	Methods       []string       `json:"methods,omitempty"`
	TargetMuscles []string       `json:"target_muscles,omitempty"`
}

// Session is an optional detailed exercise list for the candidate
type Session struct {
	Exercises []models.Exercise `json:"exercises"`
}

// Impact is the physiological cost of a session
type Impact struct {
	CNSDepletion    float64 `json:"cns_depletion"`   // percentage points
	MuscularDamage  float64 `json:"muscular_damage"` // 0..1
	MetabolicStress float64 `json:"metabolic_stress"`
}

var baseImpact = map[IntensityLevel]Impact{
	IntensityHigh:     {35, 0.7, 0.7},
	IntensityModerate: {22, 0.45, 0.5},
	IntensityLight:    {12, 0.25, 0.3},
	IntensityVeryLow:  {5, 0.1, 0.15},
}

var volumeFactor = map[VolumeLevel]float64{
	VolumeNormal:  1,
	VolumeReduced: 0.7,
	VolumeMinimal: 0.4,
	VolumeNone:    0,
}

// ComputeImpact derives the session cost from intensity, volume and methods.
// Unknown levels fall back to moderate intensity and normal volume.
func ComputeImpact(p Params) Impact {
	base, ok := baseImpact[p.Intensity]
	if !ok {
		base = baseImpact[IntensityModerate]
	}
	vf, ok := volumeFactor[p.Volume]
	if !ok {
		vf = 1
	}

	imp := Impact{
		CNSDepletion:    base.CNSDepletion * vf,
		MuscularDamage:  base.MuscularDamage * vf,
		MetabolicStress: base.MetabolicStress * vf,
	}

	for _, m := range p.Methods {
		switch strings.ToLower(m) {
		case "eccentric", "eccentric_focus":
			imp.MuscularDamage *= 1.4
		case "drop_set", "drop_sets", "rest_pause":
			imp.MuscularDamage *= 1.15
			imp.MetabolicStress *= 1.3
		case "circuit":
			imp.MetabolicStress *= 1.2
		}
	}

	if imp.MuscularDamage > 1 {
		imp.MuscularDamage = 1
	}
	if imp.MetabolicStress > 1 {
		imp.MetabolicStress = 1
	}
	return imp
}

// Tier maps the declared intensity onto the recovery table tier
func (l IntensityLevel) Tier() models.IntensityTier {
	switch l {
	case IntensityHigh:
		return models.Heavy
	case IntensityLight, IntensityVeryLow:
		return models.Light
	default:
		return models.Moderate
	}
}

// ParamsFromOption converts 0..1 intensity and volume targets into declared levels
func ParamsFromOption(intensity, volume float64, methods []string) Params {
	p := Params{Methods: methods}

	switch {
	case intensity >= 0.8:
		p.Intensity = IntensityHigh
	case intensity >= 0.55:
		p.Intensity = IntensityModerate
	case intensity >= 0.3:
		p.Intensity = IntensityLight
	default:
		p.Intensity = IntensityVeryLow
	}

	switch {
	case volume >= 0.8:
		p.Volume = VolumeNormal
	case volume >= 0.5:
		p.Volume = VolumeReduced
	case volume > 0:
		p.Volume = VolumeMinimal
	default:
		p.Volume = VolumeNone
	}

	return p
}

// targets resolves which muscles the session loads: the detailed session wins, then declared targets, then full body.
// A session without volume loads nothing.
func targets(p Params, s *Session) []string {
	if p.Volume == VolumeNone {
		return nil
	}
	if s != nil && len(s.Exercises) > 0 {
		set := make(map[string]bool)
		for _, ex := range s.Exercises {
			for _, m := range recovery.Classify(ex.Name) {
				set[m] = true
			}
		}
		if len(set) > 0 {
			var out []string
			for _, m := range recovery.MuscleGroups {
				if set[m] {
					out = append(out, m)
				}
			}
			return out
		}
	}
	if len(p.TargetMuscles) > 0 {
		return p.TargetMuscles
	}
	return recovery.MuscleGroups
}
