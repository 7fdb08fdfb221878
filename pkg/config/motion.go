package config

import (
	"fmt"
	"strings"

	"stepsmooth/pkg/smoother"
)

// Option ranges follow the host conventions: damping ratios live in [0, 1],
// pressure advance smoothing is capped at 200ms, frequencies of 0 disable
// smoothing for that axis.
var (
	zero           = 0.
	one            = 1.
	maxSmoothTime  = 0.200
	defaultDamping = 0.1
)

// SmoothAxisSettings configures the xy axis smoothing decorator.
type SmoothAxisSettings struct {
	Profile            smoother.Profile
	FreqX, FreqY       float64
	DampingX, DampingY float64
}

// ExtruderSettings configures one extruder stepper.
type ExtruderSettings struct {
	Name            string
	PressureAdvance float64
	SmoothTime      float64
}

// StepperSettings configures one axis stepper.
type StepperSettings struct {
	Name string
	Kind string
}

// ServerSettings configures the motion report endpoint.
type ServerSettings struct {
	Host string
	Port int
}

// MotionConfig is the parsed configuration of the whole motion smoothing
// subsystem.
type MotionConfig struct {
	Steppers   []StepperSettings
	Extruders  []ExtruderSettings
	SmoothAxis *SmoothAxisSettings
	Server     ServerSettings
}

// LoadMotion maps the parsed config file onto the typed motion settings and
// rejects files carrying sections or options nothing consumed.
func LoadMotion(c *Config) (*MotionConfig, error) {
	mc := &MotionConfig{}
	if err := mc.loadSteppers(c); err != nil {
		return nil, err
	}
	if err := mc.loadExtruders(c); err != nil {
		return nil, err
	}
	if err := mc.loadSmoothAxis(c); err != nil {
		return nil, err
	}
	if err := mc.loadServer(c); err != nil {
		return nil, err
	}
	if err := c.CheckUnused(); err != nil {
		return nil, err
	}
	return mc, nil
}

func (mc *MotionConfig) loadSteppers(c *Config) error {
	for _, sec := range c.GetPrefixSections("stepper") {
		kind, err := sec.GetChoice("kinematics",
			[]string{"cartesian_x", "cartesian_y", "cartesian_z", "corexy+", "corexy-"})
		if err != nil {
			return err
		}
		mc.Steppers = append(mc.Steppers, StepperSettings{
			Name: sectionSuffix(sec.GetName(), "stepper"),
			Kind: kind,
		})
	}
	return nil
}

func (mc *MotionConfig) loadExtruders(c *Config) error {
	for _, sec := range c.GetPrefixSections("extruder") {
		pa, err := sec.GetFloatWithBounds("pressure_advance",
			FloatBounds{MinVal: &zero}, 0.)
		if err != nil {
			return err
		}
		st, err := sec.GetFloatWithBounds("pressure_advance_smooth_time",
			FloatBounds{MinVal: &zero, MaxVal: &maxSmoothTime}, 0.040)
		if err != nil {
			return err
		}
		if pa > 0. && st == 0. {
			return NewConfigError(sec.GetName(), "pressure_advance_smooth_time",
				"pressure advance requires a non-zero smooth time")
		}
		mc.Extruders = append(mc.Extruders, ExtruderSettings{
			Name:            sectionSuffix(sec.GetName(), "extruder"),
			PressureAdvance: pa,
			SmoothTime:      st,
		})
	}
	return nil
}

func (mc *MotionConfig) loadSmoothAxis(c *Config) error {
	sec := c.GetSectionOptional("smooth_axis")
	if sec == nil {
		return nil
	}
	// The box kernel has no frequency tuning and is reserved for pressure
	// advance smoothing.
	var choices []string
	for _, name := range smoother.ProfileNames() {
		if name != smoother.ProfileBox.String() {
			choices = append(choices, name)
		}
	}
	name, err := sec.GetChoice("smoother", choices, smoother.ProfileDFAF05.String())
	if err != nil {
		return err
	}
	profile, err := smoother.ParseProfile(name)
	if err != nil {
		return WrapError(sec.GetName(), "smoother", err)
	}
	s := &SmoothAxisSettings{Profile: profile}
	if s.FreqX, err = sec.GetFloatWithBounds("smoother_freq_x",
		FloatBounds{MinVal: &zero}, 0.); err != nil {
		return err
	}
	if s.FreqY, err = sec.GetFloatWithBounds("smoother_freq_y",
		FloatBounds{MinVal: &zero}, 0.); err != nil {
		return err
	}
	if s.DampingX, err = sec.GetFloatWithBounds("damping_ratio_x",
		FloatBounds{MinVal: &zero, MaxVal: &one}, defaultDamping); err != nil {
		return err
	}
	if s.DampingY, err = sec.GetFloatWithBounds("damping_ratio_y",
		FloatBounds{MinVal: &zero, MaxVal: &one}, defaultDamping); err != nil {
		return err
	}
	// Legacy smooth_time_x/y options set the kernel duration directly; the
	// equivalent target frequency follows from the profile's fixed hst*freq
	// product.
	for _, ax := range []struct {
		opt     string
		freq    *float64
		damping float64
	}{
		{"smooth_time_x", &s.FreqX, s.DampingX},
		{"smooth_time_y", &s.FreqY, s.DampingY},
	} {
		if !sec.HasOption(ax.opt) {
			continue
		}
		if *ax.freq > 0. {
			return NewConfigError(sec.GetName(), ax.opt,
				"conflicts with an explicit smoother frequency")
		}
		st, err := sec.GetFloatWithBounds(ax.opt,
			FloatBounds{Above: &zero, MaxVal: &maxSmoothTime}, 0.)
		if err != nil {
			return err
		}
		unitHst, err := smoother.HalfSmoothTime(profile, 1., ax.damping)
		if err != nil {
			return WrapError(sec.GetName(), ax.opt, err)
		}
		*ax.freq = unitHst / (st / 2.)
	}
	mc.SmoothAxis = s
	return nil
}

func (mc *MotionConfig) loadServer(c *Config) error {
	mc.Server = ServerSettings{Host: "localhost", Port: 7130}
	sec := c.GetSectionOptional("server")
	if sec == nil {
		return nil
	}
	var err error
	if mc.Server.Host, err = sec.Get("host", mc.Server.Host); err != nil {
		return err
	}
	if mc.Server.Port, err = sec.GetInt("port", mc.Server.Port); err != nil {
		return err
	}
	if mc.Server.Port < 1 || mc.Server.Port > 65535 {
		return NewConfigError(sec.GetName(), "port",
			fmt.Sprintf("port %d outside 1..65535", mc.Server.Port))
	}
	return nil
}

// sectionSuffix extracts the instance name of a prefixed section: "stepper x"
// yields "x", a bare "stepper" yields "".
func sectionSuffix(name, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(name, prefix))
}
