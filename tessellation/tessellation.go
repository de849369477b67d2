package tessellation

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/wbfold/foldfile"
	"github.com/notargets/wbfold/utils"
	"github.com/notargets/wbfold/wbcell"
)

var (
	ErrInvalidGridExtent      = errors.New("invalid grid extent")
	ErrInconsistentRemapState = errors.New("inconsistent remap state")
	ErrTrimUnsupported        = errors.New("cell does not support boundary trimming or alignment")
	ErrNoCell                 = errors.New("no cell back end")
)

const (
	DefaultNXPlus   = 3
	DefaultNPhiPlus = 5
)

type Parameters struct {
	NXPlus                int
	NPhiPlus              int
	TrimHalfCellsAlongX   bool
	TrimHalfCellsAlongY   bool
	AlignOuterNodesAlongX bool
}

func DefaultParameters() Parameters {
	return Parameters{NXPlus: DefaultNXPlus, NPhiPlus: DefaultNPhiPlus}
}

/*
Tessellation replicates a cell over the grid and merges it into a single mesh. Setters only mark the
tessellation dirty, the next call to Mesh recomputes every derived array from scratch. The cell is asked for its
geometry on every call, so a cell whose fields were changed in place is picked up too. Derived arrays are only
handed out as copies.
*/
type Tessellation struct {
	cell   wbcell.Cell
	params Parameters
	dedup  Deduplicator

	dirty          bool
	mesh           *Mesh
	recomputations int
}

func New(cell wbcell.Cell, params Parameters) (ts *Tessellation, err error) {
	if cell == nil {
		return nil, ErrNoCell
	}
	if err = checkGridExtent(params.NXPlus, params.NPhiPlus); err != nil {
		return
	}
	ts = &Tessellation{
		cell:   cell,
		params: params,
		dedup:  DenseDeduplicator{},
		dirty:  true,
	}
	return
}

func (ts *Tessellation) Parameters() Parameters { return ts.params }

func (ts *Tessellation) Cell() wbcell.Cell { return ts.cell }

func (ts *Tessellation) SetCell(cell wbcell.Cell) error {
	if cell == nil {
		return ErrNoCell
	}
	ts.cell = cell
	ts.dirty = true
	return nil
}

func (ts *Tessellation) SetGrid(nXPlus, nPhiPlus int) error {
	if err := checkGridExtent(nXPlus, nPhiPlus); err != nil {
		return err
	}
	ts.params.NXPlus, ts.params.NPhiPlus = nXPlus, nPhiPlus
	ts.dirty = true
	return nil
}

func (ts *Tessellation) SetTrim(alongX, alongY bool) {
	ts.params.TrimHalfCellsAlongX, ts.params.TrimHalfCellsAlongY = alongX, alongY
	ts.dirty = true
}

func (ts *Tessellation) SetAlign(alongX bool) {
	ts.params.AlignOuterNodesAlongX = alongX
	ts.dirty = true
}

func (ts *Tessellation) SetDeduplicator(dd Deduplicator) {
	if dd == nil {
		dd = DenseDeduplicator{}
	}
	ts.dedup = dd
	ts.dirty = true
}

// NumCells depends on the grid only
func (ts *Tessellation) NumCells() int {
	rp := &Replicator{NXPlus: ts.params.NXPlus, NPhiPlus: ts.params.NPhiPlus}
	return rp.CellMap().NCells()
}

// Mesh returns a copy of the current mesh, recomputing it when any input changed since the last call
func (ts *Tessellation) Mesh() (m *Mesh, err error) {
	if m, err = ts.current(); err != nil {
		return
	}
	return m.Clone(), nil
}

// current returns the cached mesh itself, rebuilt when a setter ran or the cell geometry moved
func (ts *Tessellation) current() (m *Mesh, err error) {
	var geo *wbcell.Geometry
	if geo, err = ts.cell.Geometry(); err != nil {
		return
	}
	if !ts.dirty && ts.mesh != nil && geo.Equal(ts.mesh.Geometry) {
		return ts.mesh, nil
	}
	if m, err = build(geo, ts.params, ts.dedup); err != nil {
		return nil, err
	}
	ts.mesh = m
	ts.dirty = false
	ts.recomputations++
	return
}

func (ts *Tessellation) Vertices() ([]r3.Vec, error) {
	m, err := ts.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.X), nil
}

func (ts *Tessellation) Faces() ([][3]int, error) {
	m, err := ts.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.Faces), nil
}

func (ts *Tessellation) Edges() ([][2]int, error) {
	m, err := ts.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.Edges), nil
}

func (ts *Tessellation) ValleyEdges() ([][2]int, error) {
	m, err := ts.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.ValleyEdges), nil
}

func (ts *Tessellation) MountainEdges() ([][2]int, error) {
	m, err := ts.current()
	if err != nil {
		return nil, err
	}
	return slices.Clone(m.MountainEdges), nil
}

func (ts *Tessellation) Verify() error {
	m, err := ts.current()
	if err != nil {
		return err
	}
	return m.Verify()
}

func (ts *Tessellation) PrintStatistics(w io.Writer) error {
	m, err := ts.current()
	if err != nil {
		return err
	}
	m.PrintStatistics(w)
	return nil
}

// Export writes the mesh as a FOLD file, an empty path is replaced by the time stamped default name
func (ts *Tessellation) Export(path string, now time.Time, withCreases bool) (written string, err error) {
	var m *Mesh
	if m, err = ts.current(); err != nil {
		return
	}
	if path == "" {
		path = foldfile.DefaultFileName(now)
	}
	doc := foldfile.NewDocument(m.X, m.Faces)
	if withCreases {
		doc.SetCreases(m.ValleyEdges, m.MountainEdges)
	}
	if err = foldfile.Write(path, doc); err != nil {
		return
	}
	written = path
	return
}

/*
Mesh is one result of the tessellation pipeline. All indices in Faces and the edge arrays refer to X.
*/
type Mesh struct {
	X             []r3.Vec
	Faces         [][3]int
	Edges         [][2]int
	ValleyEdges   [][2]int
	MountainEdges [][2]int
	NCells        int
	Tolerance     float64

	Geometry   *wbcell.Geometry
	Replicated *Replicated
	Partition  *Partition
	NodeMap    *UniqueNodeMap
	Projector  *Projector
	Params     Parameters
	// Untrimmed merged faces in cell order, NF per cell
	CellFaces [][3]int
}

// Build runs the pipeline: replicate, partition, merge vertices, project topology, trim, align
func Build(cell wbcell.Cell, params Parameters, dedup Deduplicator) (m *Mesh, err error) {
	var geo *wbcell.Geometry
	if cell == nil {
		return nil, ErrNoCell
	}
	if geo, err = cell.Geometry(); err != nil {
		return
	}
	return build(geo, params, dedup)
}

func build(geo *wbcell.Geometry, params Parameters, dedup Deduplicator) (m *Mesh, err error) {
	var (
		rp   *Replicator
		part *Partition
	)
	if dedup == nil {
		dedup = DenseDeduplicator{}
	}
	if rp, err = NewReplicator(params.NXPlus, params.NPhiPlus); err != nil {
		return
	}
	if part, err = NewPartition(params.NXPlus, params.NPhiPlus); err != nil {
		return
	}
	if err = geo.Validate(); err != nil {
		return
	}
	m = &Mesh{
		Geometry:  geo.Clone(),
		Partition: part,
		Params:    params,
		Tolerance: MatchTolerance(geo.MinLength),
	}
	m.Replicated = rp.Replicate(geo)
	m.NCells = m.Replicated.NCells()
	m.NodeMap = dedup.UniqueNodeMap(m.Replicated.X, m.Tolerance)
	if err = m.NodeMap.Verify(); err != nil {
		return nil, err
	}
	if m.Projector, err = NewProjector(part, m.NodeMap, m.Replicated); err != nil {
		return nil, err
	}
	pj := m.Projector
	m.CellFaces = pj.Faces(m.Replicated.Faces)
	if m.Faces, err = pj.Trim(m.CellFaces, params.TrimHalfCellsAlongX, params.TrimHalfCellsAlongY); err != nil {
		return nil, err
	}
	m.Edges = pj.Edges(m.Replicated.Edges)
	m.ValleyEdges = pj.Edges(m.Replicated.ValleyEdges)
	m.MountainEdges = pj.Edges(m.Replicated.MountainEdges)
	m.X = m.NodeMap.Compact(m.Replicated.X)
	if params.AlignOuterNodesAlongX {
		if m.X, err = pj.Align(m.X); err != nil {
			return nil, err
		}
	}
	return
}

func (m *Mesh) NumVertices() int { return len(m.X) }

// Clone copies every array of the mesh, the copy shares nothing with m
func (m *Mesh) Clone() (c *Mesh) {
	c = &Mesh{
		X:             slices.Clone(m.X),
		Faces:         slices.Clone(m.Faces),
		Edges:         slices.Clone(m.Edges),
		ValleyEdges:   slices.Clone(m.ValleyEdges),
		MountainEdges: slices.Clone(m.MountainEdges),
		NCells:        m.NCells,
		Tolerance:     m.Tolerance,
		Geometry:      m.Geometry.Clone(),
		Params:        m.Params,
		CellFaces:     slices.Clone(m.CellFaces),
	}
	part := *m.Partition
	c.Partition = &part
	rep := *m.Replicated
	rep.X = slices.Clone(rep.X)
	rep.Faces = slices.Clone(rep.Faces)
	rep.Edges = slices.Clone(rep.Edges)
	rep.ValleyEdges = slices.Clone(rep.ValleyEdges)
	rep.MountainEdges = slices.Clone(rep.MountainEdges)
	c.Replicated = &rep
	c.NodeMap = &UniqueNodeMap{
		Keep:    slices.Clone(m.NodeMap.Keep),
		Remap:   slices.Clone(m.NodeMap.Remap),
		NUnique: m.NodeMap.NUnique,
	}
	pj := *m.Projector
	pj.part, pj.nodeMap = c.Partition, c.NodeMap
	c.Projector = &pj
	return
}

// Verify checks the remap state and that every exposed index addresses a finite vertex of X
func (m *Mesh) Verify() (err error) {
	if err = m.NodeMap.Verify(); err != nil {
		return
	}
	if m.NodeMap.NUnique != len(m.X) {
		return fmt.Errorf("%w: %d unique vertices, %d coordinates", ErrInconsistentRemapState,
			m.NodeMap.NUnique, len(m.X))
	}
	if utils.IsNan(m.X) {
		return fmt.Errorf("%w: vertex coordinates contain NaN", wbcell.ErrDegenerateCell)
	}
	nV := len(m.X)
	for f, face := range m.Faces {
		for _, i := range face {
			if i < 0 || i >= nV {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrInconsistentRemapState, f, i, nV)
			}
		}
	}
	for _, edges := range [][][2]int{m.Edges, m.ValleyEdges, m.MountainEdges} {
		for e, edge := range edges {
			if edge[0] < 0 || edge[1] >= nV || edge[0] > edge[1] {
				return fmt.Errorf("%w: edge %d %v with %d vertices", ErrInconsistentRemapState, e, edge, nV)
			}
		}
	}
	return
}

// VertexMatrix returns X as an N x 3 matrix
func (m *Mesh) VertexMatrix() *mat.Dense {
	if len(m.X) == 0 {
		return nil
	}
	data := make([]float64, 0, 3*len(m.X))
	for _, x := range m.X {
		data = append(data, x.X, x.Y, x.Z)
	}
	return mat.NewDense(len(m.X), 3, data)
}

// BoundaryTable is the outer cell boundary table [y][x][pair][2] in replicated vertex indices
func (m *Mesh) BoundaryTable() [][][][2]int {
	return m.Projector.BoundaryTable(m.Geometry.Boundary)
}

/*
MarkerNodes returns the merged boundary nodes along the two angular ends of the shell: the first boundary pair
of every outer cell in the first angular row, and the last pair of every outer cell in the last angular row.
*/
func (m *Mesh) MarkerNodes() (first, last [][2]int) {
	table := m.BoundaryTable()
	nB := len(m.Geometry.Boundary)
	if nB == 0 {
		return
	}
	remap := m.NodeMap.Remap
	for _, pairs := range table[0] {
		first = append(first, [2]int{remap[pairs[0][0]], remap[pairs[0][1]]})
	}
	for _, pairs := range table[len(table)-1] {
		last = append(last, [2]int{remap[pairs[nB-1][0]], remap[pairs[nB-1][1]]})
	}
	return
}

// CrownNodes returns the merged nodes of the first boundary pair of each outer cell in the middle angular row
func (m *Mesh) CrownNodes() (nodes []int) {
	table := m.BoundaryTable()
	if len(m.Geometry.Boundary) == 0 {
		return
	}
	remap := m.NodeMap.Remap
	for _, pairs := range table[m.Params.NPhiPlus/2] {
		nodes = append(nodes, remap[pairs[0][0]], remap[pairs[0][1]])
	}
	return
}

func (m *Mesh) FaceAdjacency() [][2]int {
	return FaceAdjacency(m.Faces, len(m.X))
}

func (m *Mesh) PrintStatistics(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Tessellation Statistics:\n")
	fmt.Fprintf(w, "  Grid: n_x_plus=%d, n_phi_plus=%d\n", m.Params.NXPlus, m.Params.NPhiPlus)
	fmt.Fprintf(w, "  Cells: %d (%d inner, %d outer)\n", m.NCells, m.Partition.NInner(), m.Partition.NOuter())
	fmt.Fprintf(w, "  Replicated vertices: %d\n", len(m.Replicated.X))
	fmt.Fprintf(w, "  Vertices: %d\n", len(m.X))
	fmt.Fprintf(w, "  Faces: %d\n", len(m.Faces))
	fmt.Fprintf(w, "  Edges: %d (%d valley, %d mountain)\n", len(m.Edges), len(m.ValleyEdges), len(m.MountainEdges))
	fmt.Fprintf(w, "  Match tolerance: %g\n", m.Tolerance)
	fmt.Fprintf(w, "  Trim x/y: %v/%v, align x: %v\n",
		m.Params.TrimHalfCellsAlongX, m.Params.TrimHalfCellsAlongY, m.Params.AlignOuterNodesAlongX)
}
