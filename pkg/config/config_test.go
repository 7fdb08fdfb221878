package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepsmooth/pkg/smoother"
)

func TestLoadStringBasics(t *testing.T) {
	c, err := LoadString(`
# toplevel comment
[stepper x]
kinematics: cartesian_x

[smooth_axis]
smoother = siaf_05  ; inline comment
smoother_freq_x: 48.6
`)
	require.NoError(t, err)
	assert.Equal(t, []string{"stepper x", "smooth_axis"}, c.GetSectionNames())

	sec, err := c.GetSection("smooth_axis")
	require.NoError(t, err)
	v, err := sec.Get("smoother")
	require.NoError(t, err)
	assert.Equal(t, "siaf_05", v)
	f, err := sec.GetFloat("smoother_freq_x")
	require.NoError(t, err)
	assert.Equal(t, 48.6, f)

	_, err = c.GetSection("extruder")
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoadStringMalformed(t *testing.T) {
	_, err := LoadString("[]\n")
	assert.Error(t, err)
	_, err = LoadString("orphan: 1\n")
	assert.Error(t, err)
	_, err = LoadString("[s]\nnot an option\n")
	assert.Error(t, err)
	_, err = LoadString("[include other.cfg]\n")
	assert.Error(t, err, "includes need a base directory")
}

func TestLoadWithInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.cfg")
	require.NoError(t, os.WriteFile(main, []byte(
		"[include extra.cfg]\n[server]\nport: 9000\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.cfg"), []byte(
		"[smooth_axis]\nsmoother_freq_x: 40\n"), 0o644))

	c, err := Load(main)
	require.NoError(t, err)
	assert.True(t, c.HasSection("smooth_axis"))
	sec, err := c.GetSection("server")
	require.NoError(t, err)
	port, err := sec.GetInt("port")
	require.NoError(t, err)
	assert.Equal(t, 9000, port)
}

func TestLoadRejectsMissingInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "main.cfg")
	require.NoError(t, os.WriteFile(main, []byte("[include nope.cfg]\n"), 0o644))
	_, err := Load(main)
	assert.Error(t, err)
}

func TestSectionBounds(t *testing.T) {
	c, err := LoadString("[s]\nratio: 1.5\nflag: yes\n")
	require.NoError(t, err)
	sec, err := c.GetSection("s")
	require.NoError(t, err)

	_, err = sec.GetFloatWithBounds("ratio", FloatBounds{MinVal: &zero, MaxVal: &one})
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "ratio", cerr.Option)

	b, err := sec.GetBool("flag")
	require.NoError(t, err)
	assert.True(t, b)

	// Fallbacks mark the option accessed
	f, err := sec.GetFloat("missing", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, f)
}

func TestLoadMotionFull(t *testing.T) {
	c, err := LoadString(`
[stepper a]
kinematics: corexy+
[stepper b]
kinematics: corexy-

[extruder]
pressure_advance: 0.045
pressure_advance_smooth_time: 0.030

[smooth_axis]
smoother: dfaf_02
smoother_freq_x: 52.5
smoother_freq_y: 39.0
damping_ratio_y: 0.05

[server]
host: 0.0.0.0
port: 7130
`)
	require.NoError(t, err)
	mc, err := LoadMotion(c)
	require.NoError(t, err)

	require.Len(t, mc.Steppers, 2)
	assert.Equal(t, StepperSettings{Name: "a", Kind: "corexy+"}, mc.Steppers[0])
	require.Len(t, mc.Extruders, 1)
	assert.Equal(t, "", mc.Extruders[0].Name)
	assert.Equal(t, 0.045, mc.Extruders[0].PressureAdvance)
	assert.Equal(t, 0.030, mc.Extruders[0].SmoothTime)

	require.NotNil(t, mc.SmoothAxis)
	assert.Equal(t, smoother.ProfileDFAF02, mc.SmoothAxis.Profile)
	assert.Equal(t, 52.5, mc.SmoothAxis.FreqX)
	assert.Equal(t, 0.1, mc.SmoothAxis.DampingX, "default damping")
	assert.Equal(t, 0.05, mc.SmoothAxis.DampingY)

	assert.Equal(t, ServerSettings{Host: "0.0.0.0", Port: 7130}, mc.Server)
}

func TestLoadMotionDefaults(t *testing.T) {
	c, err := LoadString("[stepper x]\nkinematics: cartesian_x\n")
	require.NoError(t, err)
	mc, err := LoadMotion(c)
	require.NoError(t, err)
	assert.Nil(t, mc.SmoothAxis)
	assert.Empty(t, mc.Extruders)
	assert.Equal(t, ServerSettings{Host: "localhost", Port: 7130}, mc.Server)
}

func TestLoadMotionLegacySmoothTime(t *testing.T) {
	c, err := LoadString("[smooth_axis]\nsmooth_time_x: 0.04\n")
	require.NoError(t, err)
	mc, err := LoadMotion(c)
	require.NoError(t, err)
	require.NotNil(t, mc.SmoothAxis)

	// The derived frequency must rebuild the requested kernel duration.
	hst, err := smoother.HalfSmoothTime(mc.SmoothAxis.Profile,
		mc.SmoothAxis.FreqX, mc.SmoothAxis.DampingX)
	require.NoError(t, err)
	assert.InDelta(t, 0.02, hst, 1e-12)
	assert.Zero(t, mc.SmoothAxis.FreqY)
}

func TestLoadMotionValidation(t *testing.T) {
	cases := []struct {
		name, cfg string
	}{
		{"unknown kinematics", "[stepper x]\nkinematics: polar\n"},
		{"box reserved", "[smooth_axis]\nsmoother: box\n"},
		{"damping range", "[smooth_axis]\ndamping_ratio_x: 1.2\n"},
		{"negative freq", "[smooth_axis]\nsmoother_freq_x: -5\n"},
		{"negative advance", "[extruder]\npressure_advance: -0.1\n"},
		{"smooth time cap", "[extruder]\npressure_advance_smooth_time: 0.5\n"},
		{"advance without smoothing",
			"[extruder]\npressure_advance: 0.04\npressure_advance_smooth_time: 0\n"},
		{"legacy zero smooth time", "[smooth_axis]\nsmooth_time_x: 0\n"},
		{"legacy smooth time cap", "[smooth_axis]\nsmooth_time_y: 0.3\n"},
		{"legacy freq conflict",
			"[smooth_axis]\nsmoother_freq_x: 50\nsmooth_time_x: 0.04\n"},
		{"bad port", "[server]\nport: 0\n"},
		{"unused section", "[stepper x]\nkinematics: cartesian_x\n[mcu]\nserial: /dev/null\n"},
		{"unused option", "[smooth_axis]\nshaper_freq_x: 50\n"},
	}
	for _, tc := range cases {
		c, err := LoadString(tc.cfg)
		require.NoError(t, err, tc.name)
		_, err = LoadMotion(c)
		assert.Error(t, err, tc.name)
	}
}
