package InputParameters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"

	"github.com/notargets/wbfold/tessellation"
	"github.com/notargets/wbfold/wbcell"
)

const (
	CellWB4P     = "wb4p"
	CellExplicit = "explicit"
)

var ErrInvalidParameters = errors.New("invalid input parameters")

// Parameters obtained from the YAML input file
type TessellationParameters struct {
	Title                 string  `json:"Title"`
	CellType              string  `json:"CellType"` // wb4p or explicit
	Gamma                 float64 `json:"Gamma"`
	A                     float64 `json:"A"`
	B                     float64 `json:"B"`
	C                     float64 `json:"C"`
	CellFile              string  `json:"CellFile"` // YAML cell definition when CellType is explicit
	NXPlus                int     `json:"NXPlus"`
	NPhiPlus              int     `json:"NPhiPlus"`
	TrimHalfCellsAlongX   bool    `json:"TrimHalfCellsAlongX"`
	TrimHalfCellsAlongY   bool    `json:"TrimHalfCellsAlongY"`
	AlignOuterNodesAlongX bool    `json:"AlignOuterNodesAlongX"`
	Dedup                 string  `json:"Dedup"` // dense, parallel or kdtree
	ParallelDegree        int     `json:"ParallelDegree"`
	Creases               bool    `json:"Creases"` // Write valley and mountain lines to the FOLD file
	OutputFile            string  `json:"OutputFile"`
}

const ExampleFile = `
########################################
Title: "Waterbomb shell"
CellType: wb4p      # Can be "explicit", then CellFile names the cell definition
Gamma: 1.25         # Fold angle in radians, 0 < Gamma < pi/2
A: 1000.
B: 1000.
C: 1000.
NXPlus: 3           # Cells along the axis: 2*NXPlus-1 grid positions
NPhiPlus: 5         # Cells around the axis: 2*NPhiPlus-1 grid positions
TrimHalfCellsAlongX: true
TrimHalfCellsAlongY: true
AlignOuterNodesAlongX: true
Dedup: dense        # Can be "parallel" or "kdtree"
ParallelDegree: 0   # Number of goroutines for "parallel", 0 uses every CPU
Creases: true
OutputFile: ""      # Empty writes <date>-<time>-shell.fold
########################################
`

func NewTessellationParameters() (ip *TessellationParameters) {
	ip = &TessellationParameters{}
	ip.Defaults()
	return
}

func (ip *TessellationParameters) Defaults() {
	*ip = TessellationParameters{
		Title:    "Waterbomb shell",
		CellType: CellWB4P,
		Gamma:    wbcell.DefaultGamma,
		A:        wbcell.DefaultA,
		B:        wbcell.DefaultB,
		C:        wbcell.DefaultC,
		NXPlus:   tessellation.DefaultNXPlus,
		NPhiPlus: tessellation.DefaultNPhiPlus,
		Dedup:    tessellation.DedupDense,
	}
}

// Parse overlays the keys present in data onto the current values
func (ip *TessellationParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *TessellationParameters) Validate() (err error) {
	switch strings.ToLower(ip.CellType) {
	case CellWB4P:
	case CellExplicit:
		if len(ip.CellFile) == 0 {
			return fmt.Errorf("%w: CellType %s needs a CellFile", ErrInvalidParameters, ip.CellType)
		}
	default:
		return fmt.Errorf("%w: unknown CellType [%s], must be %s or %s",
			ErrInvalidParameters, ip.CellType, CellWB4P, CellExplicit)
	}
	if ip.NXPlus < 1 || ip.NPhiPlus < 1 {
		return fmt.Errorf("%w: NXPlus=%d, NPhiPlus=%d, both must be at least 1",
			ErrInvalidParameters, ip.NXPlus, ip.NPhiPlus)
	}
	if ip.ParallelDegree < 0 {
		return fmt.Errorf("%w: ParallelDegree=%d is negative", ErrInvalidParameters, ip.ParallelDegree)
	}
	if _, err = tessellation.NewDeduplicator(ip.Dedup, ip.ParallelDegree); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return
}

// NewCell builds the cell back end named by CellType
func (ip *TessellationParameters) NewCell() (cell wbcell.Cell, err error) {
	switch strings.ToLower(ip.CellType) {
	case CellWB4P:
		cell = wbcell.NewWB4P(ip.Gamma, ip.A, ip.B, ip.C)
	case CellExplicit:
		cell, err = wbcell.LoadExplicit(ip.CellFile)
	default:
		err = fmt.Errorf("%w: unknown CellType [%s]", ErrInvalidParameters, ip.CellType)
	}
	return
}

func (ip *TessellationParameters) Parameters() tessellation.Parameters {
	return tessellation.Parameters{
		NXPlus:                ip.NXPlus,
		NPhiPlus:              ip.NPhiPlus,
		TrimHalfCellsAlongX:   ip.TrimHalfCellsAlongX,
		TrimHalfCellsAlongY:   ip.TrimHalfCellsAlongY,
		AlignOuterNodesAlongX: ip.AlignOuterNodesAlongX,
	}
}

func (ip *TessellationParameters) Deduplicator() (tessellation.Deduplicator, error) {
	return tessellation.NewDeduplicator(ip.Dedup, ip.ParallelDegree)
}

// NewTessellation validates the parameters and sets up a tessellation of the configured cell
func (ip *TessellationParameters) NewTessellation() (ts *tessellation.Tessellation, err error) {
	var (
		cell wbcell.Cell
		dd   tessellation.Deduplicator
	)
	if err = ip.Validate(); err != nil {
		return
	}
	if cell, err = ip.NewCell(); err != nil {
		return
	}
	if dd, err = ip.Deduplicator(); err != nil {
		return
	}
	if ts, err = tessellation.New(cell, ip.Parameters()); err != nil {
		return
	}
	ts.SetDeduplicator(dd)
	return
}

func (ip *TessellationParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Cell Type\n", ip.CellType)
	if strings.ToLower(ip.CellType) == CellExplicit {
		fmt.Printf("[%s]\t= Cell File\n", ip.CellFile)
	} else {
		fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
		fmt.Printf("%8.5f, %8.5f, %8.5f\t= A, B, C\n", ip.A, ip.B, ip.C)
	}
	fmt.Printf("[%d, %d]\t\t\t= NXPlus, NPhiPlus\n", ip.NXPlus, ip.NPhiPlus)
	fmt.Printf("[%v, %v]\t\t= Trim Half Cells Along X, Y\n", ip.TrimHalfCellsAlongX, ip.TrimHalfCellsAlongY)
	fmt.Printf("[%v]\t\t\t= Align Outer Nodes Along X\n", ip.AlignOuterNodesAlongX)
	fmt.Printf("[%s], %d\t\t= Dedup, Parallel Degree\n", ip.Dedup, ip.ParallelDegree)
	fmt.Printf("[%v]\t\t\t= Creases\n", ip.Creases)
	if len(ip.OutputFile) != 0 {
		fmt.Printf("[%s]\t= Output File\n", ip.OutputFile)
	}
}
