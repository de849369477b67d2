package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/wbfold/InputParameters"
	"github.com/notargets/wbfold/foldfile"
	"github.com/notargets/wbfold/wbcell"
)

func writeInput(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func newShellCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	addShellFlags(cmd)
	cmd.Flags().StringP("outputFile", "o", "", "")
	cmd.Flags().Bool("creases", false, "")
	return cmd
}

func TestExample(t *testing.T) {
	{ // Test the printed parameters file is a valid input
		var buf bytes.Buffer
		require.NoError(t, RunExample(false, &buf))
		ip := InputParameters.NewTessellationParameters()
		require.NoError(t, ip.Parse(buf.Bytes()))
		assert.NoError(t, ip.Validate())
	}
	{ // Test the printed cell file is a valid explicit cell
		var buf bytes.Buffer
		require.NoError(t, RunExample(true, &buf))
		ex, err := wbcell.ParseExplicit(buf.Bytes())
		require.NoError(t, err)
		g, err := ex.Geometry()
		require.NoError(t, err)
		assert.Equal(t, 7, g.NumVertices())
		assert.Equal(t, 6, g.NumFaces())
	}
}

func TestInput(t *testing.T) {
	path := writeInput(t, "Title: flags\nNXPlus: 3\nNPhiPlus: 5\nDedup: dense\n")
	{ // Test flags override the file only when given
		ip, err := readInput(path)
		require.NoError(t, err)
		cmd := newShellCommand()
		require.NoError(t, cmd.Flags().Set("nphiPlus", "2"))
		require.NoError(t, cmd.Flags().Set("trimY", "true"))
		require.NoError(t, cmd.Flags().Set("dedup", "kdtree"))
		require.NoError(t, cmd.Flags().Set("outputFile", "out.fold"))
		require.NoError(t, applyFlags(ip, cmd))
		assert.Equal(t, 3, ip.NXPlus)
		assert.Equal(t, 2, ip.NPhiPlus)
		assert.False(t, ip.TrimHalfCellsAlongX)
		assert.True(t, ip.TrimHalfCellsAlongY)
		assert.Equal(t, "kdtree", ip.Dedup)
		assert.Equal(t, "out.fold", ip.OutputFile)
		assert.False(t, ip.Creases)
	}
	{ // Test invalid flag values are refused
		ip, err := readInput(path)
		require.NoError(t, err)
		cmd := newShellCommand()
		require.NoError(t, cmd.Flags().Set("nxPlus", "0"))
		assert.ErrorIs(t, applyFlags(ip, cmd), InputParameters.ErrInvalidParameters)
	}
	{ // Test config file settings sit below the input file
		viper.Set("parallel-degree", 3)
		viper.Set("dedup", "parallel")
		defer func() {
			viper.Set("parallel-degree", 0)
			viper.Set("dedup", "")
		}()
		ip, err := readInput(path)
		require.NoError(t, err)
		assert.Equal(t, 3, ip.ParallelDegree)
		assert.Equal(t, "dense", ip.Dedup)
		ip, err = readInput(writeInput(t, "NXPlus: 2\n"))
		require.NoError(t, err)
		assert.Equal(t, "parallel", ip.Dedup)
	}
	{ // Test missing and malformed files
		_, err := readInput(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = readInput(writeInput(t, "NXPlus: [1"))
		assert.Error(t, err)
	}
}

func TestRunTessellate(t *testing.T) {
	now := time.Date(2026, 10, 18, 8, 30, 0, 0, time.UTC)
	ip, err := readInput(writeInput(t, InputParameters.ExampleFile))
	require.NoError(t, err)
	{ // Test the default file name lands in the output directory
		dir := t.TempDir()
		ms := &ModelShell{OutputDir: dir, Verbose: true}
		var buf bytes.Buffer
		written, err := RunTessellate(ms, ip, &buf, now)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "20261018-083000-shell.fold"), written)
		out := buf.String()
		assert.Contains(t, out, "Mesh built in")
		assert.Contains(t, out, "Vertices: 89")
		assert.Contains(t, out, "Faces: 104")
		assert.Contains(t, out, "Wrote "+written)
		doc, err := foldfile.Read(written)
		require.NoError(t, err)
		assert.Equal(t, 89, len(doc.VerticesCoords))
		assert.Equal(t, 104, len(doc.FacesVertices))
		assert.Equal(t, 226, len(doc.EdgesVertices))
	}
	{ // Test an absolute output file ignores the output directory
		path := filepath.Join(t.TempDir(), "shell.fold")
		ip.OutputFile = path
		ms := &ModelShell{OutputDir: t.TempDir()}
		var buf bytes.Buffer
		written, err := RunTessellate(ms, ip, &buf, now)
		require.NoError(t, err)
		assert.Equal(t, path, written)
		assert.NotContains(t, buf.String(), "Mesh built in")
	}
	{ // Test a degenerate cell fails before anything is written
		dir := t.TempDir()
		bad := *ip
		bad.OutputFile = ""
		bad.Gamma = 2
		_, err := RunTessellate(&ModelShell{OutputDir: dir}, &bad, &bytes.Buffer{}, now)
		assert.ErrorIs(t, err, wbcell.ErrDegenerateCell)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}

func TestRunInfo(t *testing.T) {
	ip := InputParameters.NewTessellationParameters()
	var buf bytes.Buffer
	require.NoError(t, RunInfo(ip, &buf))
	out := buf.String()
	assert.Contains(t, out, "Shell Statistics:")
	assert.Contains(t, out, "Vertices: 89")
	assert.Contains(t, out, "First angular row: [[45 6] [5 28] [27 72]]")
	assert.Contains(t, out, "Crown: [53 16 15 38 37 80]")
}

func TestStartProfile(t *testing.T) {
	stop, err := startProfile("")
	require.NoError(t, err)
	stop()
	_, err = startProfile("gpu")
	assert.Error(t, err)
	{ // Test a failed command still writes its profile
		dir := t.TempDir()
		t.Chdir(dir)
		err := run([]string{"tessellate", "-I", filepath.Join(dir, "missing.yaml"), "--profile", "cpu"})
		assert.ErrorIs(t, err, os.ErrNotExist)
		_, err = os.Stat(filepath.Join(dir, "cpu.pprof"))
		assert.NoError(t, err)
	}
	{ // Test a missing input file is reported as an error
		err := run([]string{"info", "--profile", ""})
		assert.ErrorIs(t, err, ErrNoInputFile)
	}
}
