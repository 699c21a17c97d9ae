package exercise

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Override carries optional replacements for the tunable fields of a profile.
// Nil fields keep the built-in value.
type Override struct {
	Rest           *float64 `toml:"rest" json:"rest,omitempty"`
	Active         *float64 `toml:"active" json:"active,omitempty"`
	ActiveMax      *float64 `toml:"active_max" json:"active_max,omitempty"`
	SwingThreshold *float64 `toml:"swing_threshold" json:"swing_threshold,omitempty"`
	Alpha          *float64 `toml:"alpha" json:"alpha,omitempty"`
	Cooldown       *int     `toml:"cooldown" json:"cooldown,omitempty"`
	MinVisibility  *float64 `toml:"min_visibility" json:"min_visibility,omitempty"`
	Combine        *string  `toml:"combine" json:"combine,omitempty"`
	PositionFilter *bool    `toml:"position_filter" json:"position_filter,omitempty"`

	TorsoRatio       *float64 `toml:"torso_ratio" json:"torso_ratio,omitempty"`
	LegRatio         *float64 `toml:"leg_ratio" json:"leg_ratio,omitempty"`
	StabilizeMs      *int     `toml:"stabilize_ms" json:"stabilize_ms,omitempty"`
	OcclusionGraceMs *int     `toml:"occlusion_grace_ms" json:"occlusion_grace_ms,omitempty"`
}

// Apply returns p with every non-nil field of o replacing the profile value.
func (o Override) Apply(p Profile) Profile {
	if o.Rest != nil {
		p.Rest = *o.Rest
	}
	if o.Active != nil {
		p.Active = *o.Active
	}
	if o.ActiveMax != nil {
		p.ActiveMax = *o.ActiveMax
	}
	if o.SwingThreshold != nil {
		p.SwingThreshold = *o.SwingThreshold
	}
	if o.Alpha != nil {
		p.Alpha = *o.Alpha
	}
	if o.Cooldown != nil {
		p.Cooldown = *o.Cooldown
	}
	if o.MinVisibility != nil {
		p.MinVisibility = *o.MinVisibility
	}
	if o.Combine != nil {
		p.Combine = Combine(*o.Combine)
	}
	if o.PositionFilter != nil {
		p.PositionFilter = *o.PositionFilter
	}
	if o.TorsoRatio != nil {
		p.Hold.TorsoRatio = *o.TorsoRatio
	}
	if o.LegRatio != nil {
		p.Hold.LegRatio = *o.LegRatio
	}
	if o.StabilizeMs != nil {
		p.Hold.Stabilize = time.Duration(*o.StabilizeMs) * time.Millisecond
	}
	if o.OcclusionGraceMs != nil {
		p.Hold.OcclusionGrace = time.Duration(*o.OcclusionGraceMs) * time.Millisecond
	}
	return p
}

// IsZero reports whether o changes nothing.
func (o Override) IsZero() bool {
	return o == Override{}
}

type overrideFile struct {
	Profiles map[string]Override `toml:"profiles"`
}

// ApplyTOML applies the [profiles.<id>] tables of the TOML file at path.
func (r *Registry) ApplyTOML(path string) error {
	var f overrideFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return errors.Wrapf(err, "Can't read profile overrides from %s", path)
	}
	return r.ApplyOverrides(f.Profiles)
}
