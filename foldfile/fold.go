package foldfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	FileSpec     = 1
	FileCreator  = "BMCS software suite"
	FileAuthor   = "RWTH Aachen - Institute of Structural Concrete"
	FileTitle    = "Preliminary Base"
	FileClass    = "singleModel"
	FrameTitle   = "Preliminary Base Crease Pattern"
	FrameClass   = "creasePattern"
	TimeLayout   = "20060102-150405"
	FileSuffix   = "-shell.fold"
	AssignValley = "V"
	AssignMount  = "M"
)

var ErrExport = errors.New("fold export failed")

// FileMode is the permission of written files, temporary files start out owner only
const FileMode os.FileMode = 0o644

/*
Document is the subset of the FOLD format written for a shell. Fields are declared in key order so the
encoded object has sorted keys.
*/
type Document struct {
	EdgesAssignment []string     `json:"edges_assignment,omitempty"`
	EdgesVertices   [][2]int     `json:"edges_vertices,omitempty"`
	FacesVertices   [][3]int     `json:"faces_vertices"`
	FileAuthor      string       `json:"file_author"`
	FileClasses     []string     `json:"file_classes"`
	FileCreator     string       `json:"file_creator"`
	FileSpec        int          `json:"file_spec"`
	FileTitle       string       `json:"file_title"`
	FrameClasses    []string     `json:"frame_classes"`
	FrameTitle      string       `json:"frame_title"`
	VerticesCoords  [][3]float64 `json:"vertices_coords"`
}

func NewDocument(X []r3.Vec, faces [][3]int) (doc *Document) {
	doc = &Document{
		FacesVertices:  append([][3]int{}, faces...),
		FileAuthor:     FileAuthor,
		FileClasses:    []string{FileClass},
		FileCreator:    FileCreator,
		FileSpec:       FileSpec,
		FileTitle:      FileTitle,
		FrameClasses:   []string{FrameClass},
		FrameTitle:     FrameTitle,
		VerticesCoords: make([][3]float64, len(X)),
	}
	for i, x := range X {
		doc.VerticesCoords[i] = [3]float64{x.X, x.Y, x.Z}
	}
	return
}

// SetCreases adds the crease lines with their valley/mountain assignment
func (doc *Document) SetCreases(valley, mountain [][2]int) {
	doc.EdgesVertices = make([][2]int, 0, len(valley)+len(mountain))
	doc.EdgesAssignment = make([]string, 0, len(valley)+len(mountain))
	for _, e := range valley {
		doc.EdgesVertices = append(doc.EdgesVertices, e)
		doc.EdgesAssignment = append(doc.EdgesAssignment, AssignValley)
	}
	for _, e := range mountain {
		doc.EdgesVertices = append(doc.EdgesVertices, e)
		doc.EdgesAssignment = append(doc.EdgesAssignment, AssignMount)
	}
}

func (doc *Document) Vertices() (X []r3.Vec) {
	X = make([]r3.Vec, len(doc.VerticesCoords))
	for i, c := range doc.VerticesCoords {
		X[i] = r3.Vec{X: c[0], Y: c[1], Z: c[2]}
	}
	return
}

func (doc *Document) Marshal() ([]byte, error) {
	return json.MarshalIndent(doc, "", "    ")
}

func DefaultFileName(now time.Time) string {
	return now.Format(TimeLayout) + FileSuffix
}

/*
Write stores the document at path. The data goes to a temporary file in the same directory which is renamed
over path once complete, a failed write leaves no partial file behind.
*/
func Write(path string, doc *Document) (err error) {
	var (
		data []byte
		tmp  *os.File
	)
	if data, err = doc.Marshal(); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrExport, path, err)
	}
	if tmp, err = os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp"); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrExport, tmp.Name(), err)
	}
	if err = tmp.Chmod(FileMode); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", ErrExport, tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %w", ErrExport, tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", ErrExport, tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("%w: renaming to %s: %w", ErrExport, path, err)
	}
	return
}

func Read(path string) (doc *Document, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	doc = &Document{}
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return
}
