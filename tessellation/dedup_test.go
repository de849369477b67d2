package tessellation

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
	"github.com/notargets/wbfold/wbcell"
)

var allDeduplicators = map[string]Deduplicator{
	DedupDense:    DenseDeduplicator{},
	DedupParallel: ParallelDeduplicator{ParallelDegree: 3},
	DedupKDTree:   KDTreeDeduplicator{},
}

func replicatedDefault(t *testing.T, nXPlus, nPhiPlus int) (*Replicated, float64) {
	g := mustGeometry(t, wbcell.DefaultWB4P())
	return mustReplicator(t, nXPlus, nPhiPlus).Replicate(g), MatchTolerance(g.MinLength)
}

func clusteredPoints(n int, seed uint64) (X []r3.Vec) {
	rnd := rand.New(rand.NewPCG(seed, 17))
	centers := make([]r3.Vec, n/4+1)
	for i := range centers {
		centers[i] = r3.Vec{X: 10 * rnd.Float64(), Y: 10 * rnd.Float64(), Z: 10 * rnd.Float64()}
	}
	X = make([]r3.Vec, n)
	for i := range X {
		c := centers[rnd.IntN(len(centers))]
		X[i] = r3.Add(c, r3.Vec{X: 0.01 * rnd.NormFloat64(), Y: 0.01 * rnd.NormFloat64(), Z: 0.01 * rnd.NormFloat64()})
	}
	return
}

func TestUniqueNodeMapChains(t *testing.T) {
	for name, dd := range allDeduplicators {
		{ // Test A-B close, B-C close, A-C far, in index order A, B, C
			X := []r3.Vec{{X: 0}, {X: 0.8}, {X: 1.6}}
			um := dd.UniqueNodeMap(X, 1)
			assert.Equal(t, []bool{true, false, false}, um.Keep, name)
			assert.Equal(t, []int{0, 0, 0}, um.Remap, name)
			assert.Equal(t, 1, um.NUnique, name)
			assert.NoError(t, um.Verify(), name)
		}
		{ // Test the same chain with the middle vertex last: A, C, B
			X := []r3.Vec{{X: 0}, {X: 1.6}, {X: 0.8}}
			um := dd.UniqueNodeMap(X, 1)
			assert.Equal(t, []bool{true, true, false}, um.Keep, name)
			assert.Equal(t, []int{0, 1, 0}, um.Remap, name)
			assert.NoError(t, um.Verify(), name)
		}
		{ // Test compacted indices are counted, not copied from the replicated index
			X := []r3.Vec{{X: 0}, {X: 0}, {X: 5}, {X: 5.0001}, {X: 9}}
			um := dd.UniqueNodeMap(X, 1.e-3)
			assert.Equal(t, []bool{true, false, true, false, true}, um.Keep, name)
			assert.Equal(t, []int{0, 0, 1, 1, 2}, um.Remap, name)
			assert.Equal(t, []r3.Vec{{X: 0}, {X: 5}, {X: 9}}, um.Compact(X), name)
		}
		{ // Test zero and negative tolerance keep everything
			X := []r3.Vec{{}, {}, {X: 1}}
			for _, tol := range []float64{0, -1} {
				um := dd.UniqueNodeMap(X, tol)
				assert.Equal(t, []bool{true, true, true}, um.Keep, name)
				assert.Equal(t, []int{0, 1, 2}, um.Remap, name)
				assert.Equal(t, 3, um.NUnique, name)
			}
		}
		{ // Test empty input
			um := dd.UniqueNodeMap(nil, 1)
			assert.Equal(t, 0, um.NUnique, name)
			assert.NoError(t, um.Verify(), name)
		}
	}
}

func TestUniqueNodeMapProperties(t *testing.T) {
	rep, tol := replicatedDefault(t, 3, 5)
	ref := DenseDeduplicator{}.UniqueNodeMap(rep.X, tol)
	require.NoError(t, ref.Verify())
	assert.Equal(t, 161, len(ref.Remap))
	assert.Equal(t, 89, ref.NUnique)
	{ // Test every implementation reproduces the dense reference
		for name, dd := range allDeduplicators {
			um := dd.UniqueNodeMap(rep.X, tol)
			if diff := cmp.Diff(ref, um); diff != "" {
				t.Errorf("%s differs from dense reference (-want +got):\n%s", name, diff)
			}
		}
		X := clusteredPoints(500, 3)
		want := DenseDeduplicator{}.UniqueNodeMap(X, 0.02)
		require.NoError(t, want.Verify())
		assert.Less(t, want.NUnique, len(X))
		for name, dd := range allDeduplicators {
			if diff := cmp.Diff(want, dd.UniqueNodeMap(X, 0.02)); diff != "" {
				t.Errorf("%s differs from dense reference on clustered points (-want +got):\n%s", name, diff)
			}
		}
		for _, degree := range []int{0, 1, 2, 7, 64} {
			got := ParallelDeduplicator{ParallelDegree: degree}.UniqueNodeMap(X, 0.02)
			assert.True(t, cmp.Equal(want, got), "parallel degree %d", degree)
		}
	}
	{ // Test conservation: each replicated vertex lands on a representative within tolerance
		XU := ref.Compact(rep.X)
		for j, r := range ref.Remap {
			assert.Less(t, geometry3D.Distance(rep.X[j], XU[r]), tol)
		}
	}
	{ // Test idempotence: merging the merged vertices is the identity
		XU := ref.Compact(rep.X)
		for name, dd := range allDeduplicators {
			um := dd.UniqueNodeMap(XU, tol)
			assert.Equal(t, identityNodeMap(len(XU)), um, name)
		}
	}
	{ // Test a larger tolerance never produces more vertices
		last := len(rep.X) + 1
		for _, tol := range []float64{-1, 0, 1.e-9, 1, 10, 100, 500, 1000, 2000, 5000} {
			um := DenseDeduplicator{}.UniqueNodeMap(rep.X, tol)
			assert.LessOrEqual(t, um.NUnique, last, "tol=%g", tol)
			last = um.NUnique
		}
	}
}

func TestUniqueNodeMapVerify(t *testing.T) {
	um := &UniqueNodeMap{Keep: []bool{true, false, true}, Remap: []int{0, 0, 1}, NUnique: 2}
	assert.NoError(t, um.Verify())
	for _, bad := range []*UniqueNodeMap{
		{Keep: []bool{true, false, true}, Remap: []int{0, 0, 0}, NUnique: 2},  // kept vertex not on its own slot
		{Keep: []bool{true, false, true}, Remap: []int{0, 2, 1}, NUnique: 2},  // out of range
		{Keep: []bool{true, false}, Remap: []int{0, 0, 1}, NUnique: 2},        // length mismatch
		{Keep: []bool{true, false, false}, Remap: []int{0, 0, 0}, NUnique: 2}, // count mismatch
	} {
		assert.ErrorIs(t, bad.Verify(), ErrInconsistentRemapState)
	}
}

func TestNewDeduplicator(t *testing.T) {
	for _, name := range []string{"", "dense", "Parallel", "KDTREE"} {
		dd, err := NewDeduplicator(name, 2)
		assert.NoError(t, err)
		assert.NotNil(t, dd)
	}
	dd, _ := NewDeduplicator(DedupParallel, 5)
	assert.Equal(t, ParallelDeduplicator{ParallelDegree: 5}, dd)
	_, err := NewDeduplicator("spatial-hash", 0)
	assert.Error(t, err)
}
