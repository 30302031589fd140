// Package conformance checks every kernel against the reference autodiff
// engine: identical random inputs go through a graph node and through the
// reference engine, and the outputs and every gradient must agree within a
// floating-point tolerance.
package conformance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/graph"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/reference"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// DefaultTolerance is the absolute and relative tolerance used when
// Options.Tolerance is zero.
const DefaultTolerance = 1e-5

// Options configures a conformance run.
type Options struct {
	Seed      uint64
	DType     tensor.DataType // Float32 or Float64
	Tolerance float64
	Parallel  int            // concurrent cases; <= 0 means one at a time
	Backend   kernel.Backend // nil selects the CPU backend
	Kinds     []kernel.Kind  // nil selects every kernel
	Logger    *slog.Logger

	// DumpDir, when set, receives a SafeTensors file for every failing case
	// holding its inputs, outputs and gradients from both sides.
	DumpDir string
}

func (o Options) withDefaults() Options {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Parallel <= 0 {
		o.Parallel = 1
	}
	if o.Backend == nil {
		o.Backend = cpu.New()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Result is the outcome of one case.
type Result struct {
	Kind        kernel.Kind
	OutputShape tensor.Shape
	OutputErr   float64   // max |kernel - reference| over the output
	GradErrs    []float64 // same, per differentiable input
	Passed      bool
	Err         error  // set when the protocol itself failed
	DumpPath    string // set when a dump was written
}

// Run executes the selected cases concurrently. Every case owns its node and
// random source, so results do not depend on scheduling. The returned error
// is only set when ctx is cancelled.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	opts = opts.withDefaults()

	cases := Cases()
	if opts.Kinds != nil {
		cases = slices.DeleteFunc(cases, func(c Case) bool {
			return !slices.Contains(opts.Kinds, c.Kind)
		})
	}

	results := make([]Result, len(cases))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for i, c := range cases {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = RunCase(c, opts)
			opts.Logger.Info("conformance case",
				"kernel", c.Kind.String(),
				"passed", results[i].Passed,
				"output_err", results[i].OutputErr,
				"grad_errs", results[i].GradErrs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunCase runs a single case.
func RunCase(c Case, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Kind: c.Kind}
	var tr trace

	if err := runCase(c, opts, &res, &tr); err != nil {
		res.Err = err
		res.Passed = false
	}

	if !res.Passed && opts.DumpDir != "" {
		path, err := dump(opts, c.Kind, &tr)
		if err != nil {
			opts.Logger.Warn("conformance dump failed", "kernel", c.Kind.String(), "error", err)
		} else {
			res.DumpPath = path
		}
	}
	return res
}

func runCase(c Case, opts Options, res *Result, tr *trace) error {
	rng := rand.New(rand.NewPCG(opts.Seed, uint64(c.Kind)))
	inputs, err := c.Inputs(rng, opts.DType)
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	tr.inputs = inputs

	node, err := graph.NewNode(c.Kind,
		graph.WithBackend(opts.Backend),
		graph.WithBuckets(c.Buckets),
		graph.WithLogger(opts.Logger))
	if err != nil {
		return err
	}

	// Kernel side: backward is seeded with the forward output itself.
	out, err := node.Apply(inputs...)
	if err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	tr.out = out
	grads, err := node.Gradient(out.Clone())
	if err != nil {
		return fmt.Errorf("backward: %w", err)
	}
	tr.grads = grads
	if _, err := node.Gradient(out); !errors.Is(err, kernel.ErrState) {
		return fmt.Errorf("second backward: want %v, got %v", kernel.ErrState, err)
	}

	// Reference side, seeded the same way.
	desc := node.Descriptor()
	ref := make([]reference.Tensor, len(inputs))
	for i, in := range inputs {
		if desc.Differentiable[i] {
			ref[i] = reference.FromRaw(in)
		}
	}
	refOut, err := c.Reference(ref, inputs)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if err := refOut.Backward(refOut.Values()); err != nil {
		return fmt.Errorf("reference backward: %w", err)
	}
	tr.ref, tr.refOut = ref, refOut

	res.OutputShape = out.Shape()
	res.Passed = true

	if !out.Shape().Equal(refOut.Shape) {
		return fmt.Errorf("output shape %v, reference %v", out.Shape(), refOut.Shape)
	}
	var ok bool
	res.OutputErr, ok = compare(out.Float64s(), refOut.Values(), opts.Tolerance)
	res.Passed = res.Passed && ok

	res.GradErrs = make([]float64, len(grads))
	for i, g := range grads {
		if !g.Grad.Shape().Equal(inputs[g.Index].Shape()) {
			return fmt.Errorf("gradient %s shape %v, input %v", g.Name, g.Grad.Shape(), inputs[g.Index].Shape())
		}
		res.GradErrs[i], ok = compare(g.Grad.Float64s(), ref[g.Index].Grads(), opts.Tolerance)
		res.Passed = res.Passed && ok
	}
	return nil
}

// compare returns the largest absolute difference and whether every pair
// is equal within tol, absolutely or relatively.
func compare(got, want []float64, tol float64) (float64, bool) {
	if len(got) != len(want) {
		return math.Inf(1), false
	}
	maxErr := 0.0
	ok := true
	for i := range got {
		maxErr = math.Max(maxErr, math.Abs(got[i]-want[i]))
		if !scalar.EqualWithinAbsOrRel(got[i], want[i], tol, tol) {
			ok = false
		}
	}
	return maxErr, ok
}
