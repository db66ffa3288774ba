package vm

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileTestdata(t *testing.T) {
	filepath.WalkDir("../testdata/exprs", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".expr") {
			return nil
		}
		name := filepath.Base(path)
		t.Run(name, fileTest(path))
		return nil
	})
}

func fileTest(path string) func(t *testing.T) {
	return func(t *testing.T) {
		p, err := CompilePath(path)
		require.NoError(t, err)
		require.NoError(t, p.Validate(2))
		p.DebugPrint(os.Stderr)
		t.Logf("%s", p)
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1", "1"},
		{"x", "x"},
		{"x + y", "x y +"},
		{"1 * (x + 2)", "1 x 2 + *"},
		{"x - y * 2", "x y 2 * -"},
		{"-0.5", "-0.5"},
		{"-x", "0 x -"},
		{"+y", "y"},
		{"cos(x)", "x cos"},
		{"atan(sin(y))", "y sin atan"},
		{"max(x, y)", "x y max"},
		{"min(x, y, 1)", "x y min 1 min"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			p, err := Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.String())
		})
	}
}

func TestCompileIndexedVariables(t *testing.T) {
	p, err := Compile("v0 + v3")
	require.NoError(t, err)
	assert.Equal(t, []Op{Var(0), Var(3), Inst(ADD)}, p.Code)
	assert.Equal(t, "v0 v3 +", p.Render(IndexedNames))
}

func TestCompileErrors(t *testing.T) {
	for _, src := range []string{
		"x / y",
		"z",
		"cos(x, y)",
		"max(x)",
		"tan(x)",
		"'hello'",
		"x.y",
		"x +",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Compile(src)
			assert.Error(t, err)
		})
	}
}
