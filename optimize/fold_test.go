package optimize

import (
	"math/rand"
	"testing"

	"github.com/pixapprox/pixapprox/interp"
	"github.com/pixapprox/pixapprox/mutate"
	"github.com/pixapprox/pixapprox/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFoldAdd(t *testing.T) {
	p := &vm.Program{Code: []vm.Op{vm.Const(0.46546388), vm.Const(1.0), vm.Inst(vm.ADD)}}
	got := Fold(p)
	require.Len(t, got.Code, 1)
	assert.Equal(t, vm.CONST, got.Code[0].Code)
	assert.InDelta(t, 1.46546388, got.Code[0].Value, 1e-6)
}

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"sub keeps order", "2 - 3", "-1"},
		{"nested", "(1 + 2) * x", "3 x *"},
		{"variables untouched", "x + y", "x y +"},
		{"partial", "x + 2 * 3", "x 6 +"},
		{"max", "max(0.25, 0.5)", "0.5"},
		{"min", "min(0.25, 0.5)", "0.25"},
		{"cos", "cos(0)", "1"},
		{"atan", "atan(0) + x", "0 x +"},
		{"right operand only", "x * (1 - 1)", "x 0 *"},
		{"left constant, right variable", "1 + x", "1 x +"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := vm.Compile(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Fold(p).String())
		})
	}
}

func TestFoldDup(t *testing.T) {
	p := &vm.Program{Code: []vm.Op{vm.Const(2), vm.Inst(vm.DUP), vm.Inst(vm.MUL)}}
	assert.Equal(t, "4", Fold(p).String())

	p = &vm.Program{Code: []vm.Op{vm.Var(0), vm.Inst(vm.DUP), vm.Inst(vm.MUL)}}
	assert.Equal(t, "x dup *", Fold(p).String())
}

func TestFoldDropPanics(t *testing.T) {
	p := &vm.Program{Code: []vm.Op{vm.Const(1), vm.Const(2), vm.Inst(vm.DROP)}}
	assert.PanicsWithError(t, interp.ErrUnimplemented.Error(), func() { Fold(p) })
}

func TestFoldIsPure(t *testing.T) {
	p := &vm.Program{Code: []vm.Op{vm.Const(1), vm.Const(2), vm.Inst(vm.ADD)}}
	_ = Fold(p)
	assert.Equal(t, "1 2 +", p.String())
}

func TestFoldPreservesSemantics(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	state := interp.NewState(2)
	for trial := 0; trial < 50; trial++ {
		p := vm.NewSeed()
		for i := 0; i < 40; i++ {
			mutate.Mutate(rng, p, 2)
		}
		folded, stats := FoldWithStats(p)
		require.LessOrEqual(t, stats.After, stats.Before)
		require.NoError(t, folded.Validate(2))
		for _, pt := range [][2]float32{{0, 0}, {-1, 0.5}, {0.75, -0.25}} {
			state.Set(pt[0], pt[1])
			assert.InDelta(t, interp.Eval(p, state), interp.Eval(folded, state), 1e-5, "program %s", p)
		}
	}
}
