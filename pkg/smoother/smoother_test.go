// Smoothing kernel tests
package smoother

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/integrate/quad"
)

var freqProfiles = []Profile{
	Profile2OrdShortest, Profile2OrdAllP,
	ProfileSIFP05, ProfileSIAF05,
	ProfileDFSF05, ProfileDFAF05, ProfileDFAF02, ProfileDFAF01,
}

func TestKernelUnitGain(t *testing.T) {
	for _, p := range freqProfiles {
		sm, err := NewSmoother(p, 35., 0.1)
		if err != nil {
			t.Fatalf("%v: NewSmoother failed: %v", p, err)
		}
		// Closed form
		hst := sm.hst
		gain := 2. * (sm.c0*hst + sm.c2*hst*hst*hst/3. +
			sm.c4*math.Pow(hst, 5)/5. + sm.c6*math.Pow(hst, 7)/7.)
		if !scalar.EqualWithinAbs(gain, 1., 1e-12) {
			t.Errorf("%v: closed-form gain = %.15f, want 1", p, gain)
		}
		// Independent quadrature
		numGain := quad.Fixed(sm.Weight, -hst, hst, 80, quad.Legendre{}, 0)
		if !scalar.EqualWithinAbs(numGain, 1., 1e-9) {
			t.Errorf("%v: quadrature gain = %.12f, want 1", p, numGain)
		}
	}
	box, err := NewBoxSmoother(0.05)
	if err != nil {
		t.Fatalf("NewBoxSmoother failed: %v", err)
	}
	numGain := quad.Fixed(box.Weight, -box.hst, box.hst, 8, quad.Legendre{}, 0)
	if !scalar.EqualWithinAbs(numGain, 1., 1e-12) {
		t.Errorf("box: quadrature gain = %.12f, want 1", numGain)
	}
}

func TestKernelIsEvenAndCompactlySupported(t *testing.T) {
	for _, p := range freqProfiles {
		sm, err := NewSmoother(p, 50., 0.)
		if err != nil {
			t.Fatalf("%v: NewSmoother failed: %v", p, err)
		}
		for _, x := range []float64{0.1, 0.35, 0.8, 1.} {
			tv := x * sm.hst
			if sm.Weight(tv) != sm.Weight(-tv) {
				t.Errorf("%v: Weight(%v) != Weight(%v)", p, tv, -tv)
			}
		}
		if w := sm.Weight(1.001 * sm.hst); w != 0. {
			t.Errorf("%v: Weight outside support = %v, want 0", p, w)
		}
	}
}

func TestResidualVibrationVanishesAtTargetFrequency(t *testing.T) {
	// The 2nd order profiles are exact nulls at the target frequency: the
	// Fourier cosine transform of the weight function vanishes there.
	const freq = 42.
	for _, p := range []Profile{Profile2OrdShortest, Profile2OrdAllP} {
		sm, err := NewSmoother(p, freq, 0.)
		if err != nil {
			t.Fatalf("%v: NewSmoother failed: %v", p, err)
		}
		resid := quad.Fixed(func(tv float64) float64 {
			return sm.Weight(tv) * math.Cos(2.*math.Pi*freq*tv)
		}, -sm.hst, sm.hst, 120, quad.Legendre{}, 0)
		if math.Abs(resid) > 1e-6 {
			t.Errorf("%v: residual at target frequency = %v, want ~0", p, resid)
		}
	}
}

func TestHalfSupportTimeMonotonicInFrequency(t *testing.T) {
	for _, p := range freqProfiles {
		prev := math.Inf(1)
		for _, freq := range []float64{10., 20., 40., 80.} {
			hst, err := HalfSmoothTime(p, freq, 0.)
			if err != nil {
				t.Fatalf("%v: HalfSmoothTime(%v) failed: %v", p, freq, err)
			}
			if hst <= 0. || hst >= prev {
				t.Errorf("%v: hst(%v Hz) = %v, previous %v; want positive and decreasing",
					p, freq, hst, prev)
			}
			prev = hst
		}
	}
}

func TestInvalidParametersRejected(t *testing.T) {
	if _, err := NewSmoother(ProfileDFAF05, 0., 0.); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero frequency: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSmoother(ProfileDFAF05, -10., 0.); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative frequency: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSmoother(ProfileDFAF05, 35., -0.1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative damping: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSmoother(ProfileDFAF05, 35., 1.5); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("damping above 1: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewSmoother(Profile(99), 35., 0.); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("unknown profile: err = %v, want ErrInvalidProfile", err)
	}
	if _, err := NewSmoother(ProfileBox, 35., 0.); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("box via NewSmoother: err = %v, want ErrInvalidParameter", err)
	}
	if _, err := NewBoxSmoother(0.); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero box window: err = %v, want ErrInvalidParameter", err)
	}
}

func TestParseProfileRoundTrip(t *testing.T) {
	for _, name := range ProfileNames() {
		p, err := ParseProfile(name)
		if err != nil {
			t.Errorf("ParseProfile(%q) failed: %v", name, err)
			continue
		}
		if p.String() != name {
			t.Errorf("ParseProfile(%q).String() = %q", name, p.String())
		}
	}
	if _, err := ParseProfile("zvd"); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("unknown name: err = %v, want ErrInvalidProfile", err)
	}
}

func TestHalfSmoothTimeMatchesKernel(t *testing.T) {
	sm, err := NewSmoother(ProfileSIAF05, 55., 0.)
	if err != nil {
		t.Fatalf("NewSmoother failed: %v", err)
	}
	hst, err := HalfSmoothTime(ProfileSIAF05, 55., 0.)
	if err != nil {
		t.Fatalf("HalfSmoothTime failed: %v", err)
	}
	if hst != sm.HalfSupportTime() {
		t.Errorf("HalfSmoothTime = %v, kernel hst = %v", hst, sm.HalfSupportTime())
	}
}
