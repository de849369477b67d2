package tessellation

import (
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/geometry3D"
	"github.com/notargets/wbfold/utils"
)

// MatchToleranceFactor scales the smallest cell length into the vertex match tolerance
const MatchToleranceFactor = 1.e-3

func MatchTolerance(minLength float64) float64 {
	return minLength * MatchToleranceFactor
}

/*
UniqueNodeMap relates the replicated vertices to the merged ones.

Vertex j is kept when no lower indexed vertex lies strictly within the tolerance. Remap[j] is the compacted
index of the lowest indexed kept vertex within tolerance of j. If all of j's neighbours were themselves
merged away (a chain A-B-C with A and C apart) j takes the remap of its lowest neighbour, so the chain
collapses onto A.
*/
type UniqueNodeMap struct {
	Keep    []bool
	Remap   []int
	NUnique int
}

func identityNodeMap(n int) (um *UniqueNodeMap) {
	um = &UniqueNodeMap{Keep: make([]bool, n), Remap: make([]int, n), NUnique: n}
	for i := 0; i < n; i++ {
		um.Keep[i] = true
		um.Remap[i] = i
	}
	return
}

/*
resolveClasses builds the map from the neighbour lists. neighbors(j) must return, in ascending order, every
index i with |X[i]-X[j]| < tol, j itself included.
*/
func resolveClasses(n int, neighbors func(j int) []int) (um *UniqueNodeMap) {
	var (
		nbrs    = make([][]int, n)
		compact = make([]int, n)
	)
	um = &UniqueNodeMap{Keep: make([]bool, n), Remap: make([]int, n)}
	for j := 0; j < n; j++ {
		nbrs[j] = neighbors(j)
		um.Keep[j] = len(nbrs[j]) == 0 || nbrs[j][0] >= j
		if um.Keep[j] {
			compact[j] = um.NUnique
			um.NUnique++
		} else {
			compact[j] = -1
		}
	}
	for j := 0; j < n; j++ {
		if len(nbrs[j]) == 0 {
			um.Remap[j] = compact[j]
			continue
		}
		rep := -1
		for _, i := range nbrs[j] {
			if um.Keep[i] {
				rep = i
				break
			}
		}
		if rep >= 0 {
			um.Remap[j] = compact[rep]
		} else {
			// nbrs[j][0] < j, already resolved
			um.Remap[j] = um.Remap[nbrs[j][0]]
		}
	}
	return
}

// Verify checks that every kept vertex maps onto its own compacted position and all values are in range
func (um *UniqueNodeMap) Verify() error {
	if len(um.Keep) != len(um.Remap) {
		return fmt.Errorf("%w: keep mask has %d entries, remap has %d",
			ErrInconsistentRemapState, len(um.Keep), len(um.Remap))
	}
	var next int
	for j, keep := range um.Keep {
		r := um.Remap[j]
		if r < 0 || r >= um.NUnique {
			return fmt.Errorf("%w: vertex %d maps to %d, have %d unique vertices",
				ErrInconsistentRemapState, j, r, um.NUnique)
		}
		if keep {
			if r != next {
				return fmt.Errorf("%w: kept vertex %d maps to %d, expected %d",
					ErrInconsistentRemapState, j, r, next)
			}
			next++
		}
	}
	if next != um.NUnique {
		return fmt.Errorf("%w: %d kept vertices, %d unique", ErrInconsistentRemapState, next, um.NUnique)
	}
	return nil
}

// Compact returns the kept vertices in order
func (um *UniqueNodeMap) Compact(X []r3.Vec) (XU []r3.Vec) {
	XU = make([]r3.Vec, 0, um.NUnique)
	for i, keep := range um.Keep {
		if keep {
			XU = append(XU, X[i])
		}
	}
	return
}

// Deduplicator finds coincident vertices. All implementations produce identical maps for identical input.
type Deduplicator interface {
	UniqueNodeMap(X []r3.Vec, tol float64) *UniqueNodeMap
}

const (
	DedupDense    = "dense"
	DedupParallel = "parallel"
	DedupKDTree   = "kdtree"
)

func NewDeduplicator(method string, parallelDegree int) (dd Deduplicator, err error) {
	switch strings.ToLower(method) {
	case DedupDense, "":
		dd = DenseDeduplicator{}
	case DedupParallel:
		dd = ParallelDeduplicator{ParallelDegree: parallelDegree}
	case DedupKDTree:
		dd = KDTreeDeduplicator{}
	default:
		err = fmt.Errorf("unknown deduplication method %q, have %s, %s or %s",
			method, DedupDense, DedupParallel, DedupKDTree)
	}
	return
}

// DenseDeduplicator compares all vertex pairs through a full N x N distance matrix
type DenseDeduplicator struct{}

func (DenseDeduplicator) UniqueNodeMap(X []r3.Vec, tol float64) *UniqueNodeMap {
	if tol <= 0 || len(X) == 0 {
		return identityNodeMap(len(X))
	}
	D := mat.NewDense(len(X), len(X), nil)
	distanceRows(D, X, 0, len(X))
	return resolveClasses(len(X), matrixNeighbors(D, tol))
}

// ParallelDeduplicator fills the rows of the distance matrix concurrently
type ParallelDeduplicator struct {
	ParallelDegree int // runtime.NumCPU() when < 1
}

func (pd ParallelDeduplicator) UniqueNodeMap(X []r3.Vec, tol float64) *UniqueNodeMap {
	if tol <= 0 || len(X) == 0 {
		return identityNodeMap(len(X))
	}
	D := mat.NewDense(len(X), len(X), nil)
	pm := utils.NewPartitionMap(pd.ParallelDegree, len(X))
	pm.Run(func(_, kMin, kMax int) {
		distanceRows(D, X, kMin, kMax)
	})
	return resolveClasses(len(X), matrixNeighbors(D, tol))
}

func distanceRows(D *mat.Dense, X []r3.Vec, kMin, kMax int) {
	for i := kMin; i < kMax; i++ {
		row := D.RawRowView(i)
		for j := range X {
			row[j] = geometry3D.Distance(X[i], X[j])
		}
	}
}

func matrixNeighbors(D *mat.Dense, tol float64) func(j int) []int {
	return func(j int) (nbrs []int) {
		for i, d := range D.RawRowView(j) {
			if d < tol {
				nbrs = append(nbrs, i)
			}
		}
		return
	}
}

// KDTreeDeduplicator queries a k-d tree for the neighbours of each vertex
type KDTreeDeduplicator struct{}

func (KDTreeDeduplicator) UniqueNodeMap(X []r3.Vec, tol float64) *UniqueNodeMap {
	if tol <= 0 || len(X) == 0 {
		return identityNodeMap(len(X))
	}
	pts := make(indexedVecs, len(X))
	for i, x := range X {
		pts[i] = indexedVec{Vec: x, idx: i}
	}
	tree := kdtree.New(pts, false)
	// Padded squared radius for candidates, the exact distance test decides
	radius2 := tol * tol * (1 + 1.e-6)
	return resolveClasses(len(X), func(j int) (nbrs []int) {
		keep := kdtree.NewDistKeeper(radius2)
		tree.NearestSet(keep, indexedVec{Vec: X[j], idx: j})
		for _, c := range keep.Heap {
			if c.Comparable == nil { // sentinel
				continue
			}
			i := c.Comparable.(indexedVec).idx
			if geometry3D.Distance(X[i], X[j]) < tol {
				nbrs = append(nbrs, i)
			}
		}
		slices.Sort(nbrs)
		return
	})
}

type indexedVec struct {
	r3.Vec
	idx int
}

func (p indexedVec) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(indexedVec)
	switch d {
	case 0:
		return p.X - q.X
	case 1:
		return p.Y - q.Y
	case 2:
		return p.Z - q.Z
	}
	panic("illegal dimension")
}

func (p indexedVec) Dims() int { return 3 }

func (p indexedVec) Distance(c kdtree.Comparable) float64 {
	d := r3.Sub(p.Vec, c.(indexedVec).Vec)
	return r3.Dot(d, d)
}

type indexedVecs []indexedVec

func (p indexedVecs) Index(i int) kdtree.Comparable { return p[i] }
func (p indexedVecs) Len() int                      { return len(p) }
func (p indexedVecs) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p indexedVecs) Pivot(d kdtree.Dim) int {
	pl := kdPlane{dim: d, pts: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type kdPlane struct {
	dim kdtree.Dim
	pts indexedVecs
}

func (p kdPlane) Less(i, j int) bool { return p.pts[i].Compare(p.pts[j], p.dim) < 0 }
func (p kdPlane) Swap(i, j int)      { p.pts[i], p.pts[j] = p.pts[j], p.pts[i] }
func (p kdPlane) Len() int           { return len(p.pts) }
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.pts = p.pts[start:end]
	return p
}
