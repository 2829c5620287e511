package libds

import (
	"testing"

	"github.com/2x3systems/go2ds/go2ds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

var roundTrips = []string{
	"<1.1:1:1,1,1:4,4>",
	"<1.1:1:1,1,1:7,3>",
	"<1.1:1:1,1,1:3,3>",
	"<1.1:1 2:1,1,1:6,3>",
	"<1.1:2:2,2,2:4,4>",
	"<1.1:2:2,1 2,1 2:4,4 4>",
	"<1.1:2:2,1 2,1 2:4,3 6>",
	"<1.1:2:1 2,1 2,2:4 4,4>",
	"<3.7:2:2,2,2:3,6>",
}

func TestParseRoundTrip(t *testing.T) {
	for _, text := range roundTrips {
		ds, err := Parse(text)
		require.NoError(t, err, text)
		assert.Equal(t, text, ds.String())
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		text string
		err  error
	}{
		{"<1.1:", go2ds.ErrUnmarshal},
		{"<1.1:1:1,1,1:4>", go2ds.ErrUnmarshal},
		{"<1.1:0:,,:,>", go2ds.ErrBadEncoding},
		{"<1.1:1 3:1,1,1:4,4>", go2ds.ErrBadEncoding},
		{"<1.1:2:1,1 2,1 2:4 4,4 4>", go2ds.ErrBadEncoding},
		{"<1.1:1:1 1,1,1:4,4>", go2ds.ErrBadEncoding},
		{"<1.1:1:1,1,1:4 4,4>", go2ds.ErrBadEncoding},
		{"<1.1:2:3,1 2,1 2:4,4 4>", go2ds.ErrBadIndex},
		{"<1.1:3:2 2,1 2 3,1 2 3:4 4,4 4 4>", go2ds.ErrBadInvolution},
		{"<1.1:2:2,1 2,1 2:3,4 4>", go2ds.ErrBadRotationOrder},
	}
	for _, tc := range cases {
		_, err := Parse(tc.text)
		require.Error(t, err, tc.text)
		assert.ErrorIs(t, err, tc.err, tc.text)
	}
}

func TestOrbits(t *testing.T) {
	ds := MustParse("<1.1:2:2,1 2,1 2:4,4 4>")

	assert.Equal(t, 1, ds.NumOrbits(0, 1))
	assert.Equal(t, 2, ds.NumOrbits(1, 2))
	assert.Equal(t, 1, ds.NumOrbits(0, 2))

	assert.Equal(t, []Flag{1, 2}, ds.Orbit(0, 1, 1))
	assert.Equal(t, int32(2), ds.R(0, 1, 1))
	assert.Equal(t, int32(2), ds.V(0, 1, 1))
	assert.Equal(t, int32(1), ds.R(1, 2, 2))
	assert.Equal(t, int32(4), ds.V(1, 2, 2))
	assert.Equal(t, int32(2), ds.M(0, 2, 1))
	assert.False(t, ds.IsLoop(0, 1, 1))

	end, op := ds.ChainEnd(0, 1, 1)
	assert.Equal(t, Flag(2), end)
	assert.Equal(t, 1, op)

	cone := MustParse("<1.1:2:2,2,2:4,4>")
	assert.True(t, cone.IsLoop(0, 1, 1))
	assert.Equal(t, []Flag{1, 2}, cone.Orbit(0, 1, 1))
	assert.Equal(t, int32(1), cone.R(0, 1, 1))
	assert.Equal(t, int32(4), cone.V(0, 1, 1))
	end, op = cone.ChainEnd(0, 1, 1)
	assert.Equal(t, Flag(0), end)
	assert.Equal(t, -1, op)
}

func TestEulerAndCurvature(t *testing.T) {
	cases := []struct {
		text string
		chr  int
		crv  float64
	}{
		{"<1.1:1:1,1,1:4,4>", 1, 0},
		{"<1.1:1:1,1,1:7,3>", 1, -1.0 / 42},
		{"<1.1:1:1,1,1:3,3>", 1, 1.0 / 6},
		{"<1.1:2:2,2,2:4,4>", 2, 0},
		{"<1.1:2:2,1 2,1 2:4,3 6>", 1, 0},
	}
	for _, tc := range cases {
		ds := MustParse(tc.text)
		assert.Equal(t, tc.chr, ds.EulerCharacteristic(), tc.text)
		assert.True(t, scalar.EqualWithinAbs(tc.crv, ds.Curvature(), 1e-12), tc.text)
	}
}

func TestOrientation(t *testing.T) {
	mirror := MustParse("<1.1:1:1,1,1:4,4>")
	assert.False(t, mirror.IsFixedPointFree())
	assert.True(t, mirror.IsOrientable())
	assert.False(t, mirror.IsOriented())

	rot := MustParse("<1.1:2:2,2,2:4,4>")
	assert.True(t, rot.IsFixedPointFree())
	assert.True(t, rot.IsOriented())

	ori, ok := rot.Orientation()
	require.True(t, ok)
	assert.Equal(t, []int8{1, -1}, ori)
	assert.True(t, rot.IsConnected())
}

func TestDual(t *testing.T) {
	ds := MustParse("<1.1:2:2,1 2,1 2:4,4 4>")
	dual := Dual(ds)
	assert.Equal(t, "<1.1:2:1 2,1 2,2:4 4,4>", dual.String())
	assert.Equal(t, ds.String(), Dual(dual).String())
	assert.True(t, ds.Equal(Dual(dual)))

	for _, text := range roundTrips {
		ds := MustParse(text)
		require.NoError(t, Dual(ds).Validate(), text)
		assert.True(t, ds.Equal(Dual(Dual(ds))), text)
	}
}

func TestOrientationCover(t *testing.T) {
	cov := OrientationCover(MustParse("<1.1:1:1,1,1:4,4>"))
	assert.Equal(t, "<1.1:2:2,2,2:4,4>", cov.String())
	assert.True(t, cov.IsOriented())

	// already oriented: unchanged
	rot := MustParse("<1.1:2:2,2,2:4,4>")
	assert.True(t, rot.Equal(Orientate(rot)))

	for _, text := range roundTrips {
		ds := MustParse(text)
		cov := Orientate(ds)
		require.NoError(t, cov.Validate(), text)
		assert.True(t, cov.IsOriented(), text)
	}
}

func TestMaxSymmetry(t *testing.T) {
	rot := MustParse("<1.1:2:2,2,2:4,4>")
	assert.False(t, IsMaximalSymmetry(rot))
	assert.Equal(t, "<1.1:1:1,1,1:4,4>", MaxSymmetry(rot).String())

	twice := MustParse("<1.1:2:2,1 2,1 2:4,4 4>")
	assert.Equal(t, "<1.1:1:1,1,1:4,4>", MaxSymmetry(twice).String())

	// distinct m12 values prevent any collapse
	asym := MustParse("<1.1:2:2,1 2,1 2:4,3 6>")
	assert.True(t, IsMaximalSymmetry(asym))
	assert.True(t, asym.Equal(MaxSymmetry(asym)))

	for _, text := range roundTrips {
		quo := MaxSymmetry(MustParse(text))
		require.NoError(t, quo.Validate(), text)
		assert.True(t, IsMaximalSymmetry(quo), text)
		assert.True(t, quo.Equal(MaxSymmetry(quo)), text)
	}
}

func TestCanonical(t *testing.T) {
	a := MustParse("<1.1:2:2,1 2,1 2:4,3 6>")
	b := MustParse("<1.1:2:2,1 2,1 2:4,6 3>")
	assert.False(t, a.Equal(b))
	assert.Equal(t, "<1.1:2:2,1 2,1 2:4,3 6>", Canonical(a).String())
	assert.Equal(t, Canonical(a).String(), Canonical(b).String())
}

func TestGroupName(t *testing.T) {
	cases := []struct {
		text string
		name string
	}{
		{"<1.1:1:1,1,1:4,4>", "*442"},
		{"<1.1:1:1,1,1:7,3>", "*732"},
		{"<1.1:1:1,1,1:3,3>", "*332"},
		{"<1.1:1 2:1,1,1:6,3>", "*632"},
		{"<1.1:2:2,2,2:4,4>", "442"},
		{"<1.1:2:2,1 2,1 2:4,4 4>", "*442"},
		{"<1.1:2:2,1 2,1 2:4,3 6>", "*632"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, GroupName(MustParse(tc.text)), tc.text)
	}
}

func TestOrbifoldChi(t *testing.T) {
	for _, text := range roundTrips {
		ds := MustParse(text)
		info := Orbifold(ds)
		assert.True(t, scalar.EqualWithinAbs(ds.Curvature()/2, info.Chi(), 1e-12), text)
	}
}

func TestSymbolSet(t *testing.T) {
	set := NewSymbolSet(SymbolSetOpts{})
	defer set.Close()

	assert.True(t, set.TryAdd(MustParse("<1.1:2:2,1 2,1 2:4,3 6>")))
	assert.False(t, set.TryAdd(MustParse("<1.1:2:2,1 2,1 2:4,6 3>")))
	assert.True(t, set.TryAdd(MustParse("<1.1:1:1,1,1:4,4>")))

	maxSet := NewSymbolSet(SymbolSetOpts{MaxSymmetry: true})
	defer maxSet.Close()
	assert.True(t, maxSet.TryAdd(MustParse("<1.1:1:1,1,1:4,4>")))
	assert.False(t, maxSet.TryAdd(MustParse("<1.1:2:2,2,2:4,4>")))
}

func TestDropDupes(t *testing.T) {
	dd := NewDropDupes(SymbolSetOpts{})
	defer dd.Close()

	entries := go2ds.StreamSymbols(
		"<1.1:2:2,1 2,1 2:4,3 6>",
		"<1.1:2:2,1 2,1 2:4,6 3>",
		"not a symbol",
		"<1.1:1:1,1,1:7,3>",
	).AddTo(dd).Collect()

	require.Len(t, entries, 2)
	assert.Equal(t, "<1.1:2:2,1 2,1 2:4,3 6>", entries[0].Text)
	assert.Equal(t, "<1.1:1:1,1,1:7,3>", entries[1].Text)
}
