// Delta kinematics and factory tests
package kinematics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stepsmooth/pkg/trapq"
)

func TestDeltaTowerPosition(t *testing.T) {
	d, err := NewDelta(200., 0., -100.)
	require.NoError(t, err)

	m := trapq.Move{MoveT: 1., StartPos: trapq.Coord{Z: 10.}}
	pos, err := d.CalcPosition(trapq.Synthetic(&m), 0.5)
	require.NoError(t, err)
	assert.InDelta(t, 10.+math.Sqrt(200.*200.-100.*100.), pos, 1e-12)
	assert.Equal(t, AxisFlagX|AxisFlagY|AxisFlagZ, d.ActiveFlags())
}

func TestDeltaOutOfReach(t *testing.T) {
	d, err := NewDelta(50., 0., 0.)
	require.NoError(t, err)
	m := trapq.Move{MoveT: 1., StartPos: trapq.Coord{X: 80.}}
	_, err = d.CalcPosition(trapq.Synthetic(&m), 0.5)
	assert.Error(t, err)

	_, err = NewDelta(0., 0., 0.)
	assert.Error(t, err)
}

func TestFactoryKinds(t *testing.T) {
	for _, kind := range SupportedKinds() {
		k, err := New(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.NotNil(t, k)
	}
	_, err := New("polar")
	assert.Error(t, err)
}
