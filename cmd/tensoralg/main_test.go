package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/born-ml/tensoralg/internal/config"
	"github.com/born-ml/tensoralg/internal/index"
	"github.com/born-ml/tensoralg/internal/serialization"
	"github.com/born-ml/tensoralg/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// findLine returns the fields of the first output line whose fields start with prefix.
func findLine(out string, prefix ...string) []string {
	for line := range strings.Lines(out) {
		f := strings.Fields(line)
		if len(f) >= len(prefix) && slices.Equal(f[:len(prefix)], prefix) {
			return f
		}
	}
	return nil
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "tensoralg "+serialization.Version+" (file format 1)\n", out)
}

func TestStorageSymmetric(t *testing.T) {
	out, _, err := execute(t, "storage", "--class", "symmetric", "--dim", "3", "--order", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "class symmetric, dims [3 3]: 6 stored of 9 components")

	// (0,1) and (1,0) share storage index 1.
	assert.Equal(t, []string{"[0", "1]", "1", "+1"}, findLine(out, "[0", "1]"))
	assert.Equal(t, []string{"[1", "0]", "1", "+1"}, findLine(out, "[1", "0]"))
}

func TestStorageAntisymmetric(t *testing.T) {
	out, _, err := execute(t, "storage", "--class", "antisymmetric", "--dim", "3", "--order", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "3 stored of 9 components")

	assert.Equal(t, []string{"[1", "1]", "-", "0"}, findLine(out, "[1", "1]"))
	lower := findLine(out, "[1", "0]")
	upper := findLine(out, "[0", "1]")
	require.Len(t, lower, 4)
	require.Len(t, upper, 4)
	assert.Equal(t, lower[2], upper[2])
	assert.Equal(t, "+1", lower[3])
	assert.Equal(t, "-1", upper[3])
}

func TestStorageErrors(t *testing.T) {
	_, _, err := execute(t, "storage", "--class", "banded")
	assert.ErrorIs(t, err, storage.ErrUnknownClass)

	_, _, err = execute(t, "storage", "--class", "nested")
	assert.ErrorIs(t, err, storage.ErrUnknownClass)

	_, _, err = execute(t, "storage", "--class", "diagonal", "--order", "3")
	assert.ErrorIs(t, err, errBadOrder)
}

func TestSelftest(t *testing.T) {
	out, _, err := execute(t, "--log-format", "json", "selftest", "--max-dim", "3", "--workers", "4")
	require.NoError(t, err)
	// 11 embeddable pairs per dimension plus 5 rejected pairs above dimension 1.
	assert.Equal(t, "ok: 43 pairs verified for dimensions 1..3\n", out)
}

const runJob = `
spaces:
  - id: V
    space: {kind: vector, name: V, dim: 3}
  - id: S
    space: {kind: symmetric, order: 2, factors: [{ref: V}]}
tensors:
  - name: g
    space: {ref: S}
    data: [1, 2, 3, 4, 5, 6]
  - name: x
    space: {ref: V}
    data: [1, 2, 3]
  - name: y
    space: {ref: V, dual: true}
    data: [4, 5, 6]
expressions:
  - name: xy
    equation: "i,i->"
    operands: [x, y]
  - name: outer
    equation: "i,j->ij"
    operands: [x, x]
  - name: full
    equation: "a->a"
    operands: [g]
    into: {kind: tensor, factors: [{ref: V}, {ref: V}]}
log:
  level: info
  format: json
`

func writeJob(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunWritesResults(t *testing.T) {
	job := writeJob(t, runJob)
	out := filepath.Join(t.TempDir(), "out.talg")

	stdout, stderr, err := execute(t, "run", "-f", job, "-o", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "[32]")
	assert.Contains(t, stderr, `"msg":"evaluated expression"`)
	assert.Contains(t, stderr, `"run":`)

	r, err := serialization.Open(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"xy", "outer", "full"}, r.Names())
	assert.Equal(t, "float64", r.Metadata()["dtype"])
	assert.NotEmpty(t, r.Metadata()["run_id"])

	xy, err := r.Record("xy")
	require.NoError(t, err)
	assert.Equal(t, []float64{32}, xy.Values())

	outer, err := r.Record("outer")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 2, 4, 6, 3, 6, 9}, outer.Values())

	full, err := r.Record("full")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 4, 2, 3, 5, 4, 5, 6}, full.Values())

	inspected, _, err := execute(t, "inspect", "--values", out)
	require.NoError(t, err)
	assert.Contains(t, inspected, "xy = [32]")
	assert.Equal(t, "9", findLine(inspected, "full", "float64")[3])
}

func TestRunFlagsOverrideJobLog(t *testing.T) {
	job := writeJob(t, runJob)
	_, stderr, err := execute(t, "--log-level", "warn", "run", "-f", job)
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestRunErrors(t *testing.T) {
	_, _, err := execute(t, "run")
	assert.Error(t, err)

	_, _, err = execute(t, "run", "-f", writeJob(t, "expressions: [{name: e, equation: i, operands: [a]}]"))
	assert.ErrorIs(t, err, config.ErrUnknownOperand)

	bad := writeJob(t, `
tensors:
  - name: x
    space: {kind: vector, name: V, dim: 3}
expressions:
  - name: xx
    equation: "i,i->"
    operands: [x, x]
`)
	_, _, err = execute(t, "run", "-f", bad)
	assert.ErrorIs(t, err, index.ErrNonDualPairing)
}
