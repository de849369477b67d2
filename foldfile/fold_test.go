package foldfile

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestFold(t *testing.T) {
	X := []r3.Vec{{}, {X: 1000, Y: 986.8255350438005, Z: 161.78801990727197}, {X: -1. / 3, Y: 1e-17, Z: -2932.8}}
	faces := [][3]int{{0, 1, 2}, {2, 1, 0}}
	{ // Test the default file name
		now := time.Date(2024, 3, 7, 9, 5, 1, 0, time.UTC)
		assert.Equal(t, "20240307-090501-shell.fold", DefaultFileName(now))
	}
	{ // Test the encoded keys and header values
		data, err := NewDocument(X, faces).Marshal()
		require.NoError(t, err)
		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &raw))
		keys := make([]string, 0, len(raw))
		for k := range raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		want := []string{"faces_vertices", "file_author", "file_classes", "file_creator", "file_spec",
			"file_title", "frame_classes", "frame_title", "vertices_coords"}
		if diff := cmp.Diff(want, keys); diff != "" {
			t.Errorf("keys mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, 1., raw["file_spec"])
		assert.Equal(t, "BMCS software suite", raw["file_creator"])
		assert.Equal(t, "RWTH Aachen - Institute of Structural Concrete", raw["file_author"])
		assert.Equal(t, "Preliminary Base", raw["file_title"])
		assert.Equal(t, []interface{}{"singleModel"}, raw["file_classes"])
		assert.Equal(t, "Preliminary Base Crease Pattern", raw["frame_title"])
		assert.Equal(t, []interface{}{"creasePattern"}, raw["frame_classes"])
		assert.Contains(t, string(data), "\n    \"faces_vertices\": [")
	}
	{ // Test round trip through a file
		path := filepath.Join(t.TempDir(), "shell.fold")
		doc := NewDocument(X, faces)
		doc.SetCreases([][2]int{{0, 1}}, [][2]int{{1, 2}, {0, 2}})
		require.NoError(t, Write(path, doc))
		back, err := Read(path)
		require.NoError(t, err)
		if diff := cmp.Diff(faces, back.FacesVertices); diff != "" {
			t.Errorf("faces mismatch (-want +got):\n%s", diff)
		}
		got := back.Vertices()
		require.Equal(t, len(X), len(got))
		for i := range X {
			assert.Equal(t, 0., r3.Norm(r3.Sub(X[i], got[i])))
		}
		assert.Equal(t, []string{"V", "M", "M"}, back.EdgesAssignment)
		assert.Equal(t, [][2]int{{0, 1}, {1, 2}, {0, 2}}, back.EdgesVertices)
		// No temporary files are left behind
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, 1, len(entries))
	}
	{ // Test written files are readable by group and others
		path := filepath.Join(t.TempDir(), "shell.fold")
		require.NoError(t, Write(path, NewDocument(X, faces)))
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, FileMode, info.Mode().Perm())
		// Overwriting resets the mode
		require.NoError(t, os.Chmod(path, 0o600))
		require.NoError(t, Write(path, NewDocument(X, faces)))
		info, err = os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, FileMode, info.Mode().Perm())
	}
	{ // Test a failing write leaves nothing behind
		dir := t.TempDir()
		path := filepath.Join(dir, "shell.fold")
		err := Write(path, NewDocument([]r3.Vec{{X: math.NaN()}}, nil))
		assert.ErrorIs(t, err, ErrExport)
		entries, _ := os.ReadDir(dir)
		assert.Equal(t, 0, len(entries))

		err = Write(filepath.Join(dir, "missing", "shell.fold"), NewDocument(X, faces))
		assert.ErrorIs(t, err, ErrExport)
		_, err = Read(filepath.Join(dir, "missing", "shell.fold"))
		assert.Error(t, err)
	}
}
