package conformance

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/born-ml/kernelgrad/internal/graph"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/reference"
	"github.com/born-ml/kernelgrad/internal/serialization"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// trace collects whatever a case produced before it finished or failed.
type trace struct {
	inputs []*tensor.RawTensor
	out    *tensor.RawTensor
	grads  []graph.InputGrad
	ref    []reference.Tensor
	refOut reference.Tensor
}

// tensors names every collected tensor. Reference values are always float64.
func (tr *trace) tensors() (map[string]*tensor.RawTensor, error) {
	m := make(map[string]*tensor.RawTensor)
	for i, in := range tr.inputs {
		m["input."+strconv.Itoa(i)] = in
	}
	if tr.out != nil {
		m["output"] = tr.out
	}
	for _, g := range tr.grads {
		m["grad."+g.Name] = g.Grad
	}

	if tr.refOut.Data != nil {
		out, err := tensor.FromSlice(tr.refOut.Values(), tr.refOut.Shape)
		if err != nil {
			return nil, fmt.Errorf("reference output: %w", err)
		}
		m["reference.output"] = out
	}
	for _, g := range tr.grads {
		if g.Index >= len(tr.ref) || tr.ref[g.Index].Data == nil {
			continue
		}
		r := tr.ref[g.Index]
		grad, err := tensor.FromSlice(r.Grads(), r.Shape)
		if err != nil {
			return nil, fmt.Errorf("reference grad %s: %w", g.Name, err)
		}
		m["reference.grad."+g.Name] = grad
	}
	return m, nil
}

// dump writes tr to <DumpDir>/<kernel>-<dtype>.safetensors.
func dump(opts Options, kind kernel.Kind, tr *trace) (string, error) {
	tensors, err := tr.tensors()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(opts.DumpDir, 0o750); err != nil {
		return "", err
	}

	path := filepath.Join(opts.DumpDir, fmt.Sprintf("%s-%s.safetensors", kind, opts.DType))
	metadata := map[string]string{
		"kernel":    kind.String(),
		"dtype":     opts.DType.String(),
		"seed":      strconv.FormatUint(opts.Seed, 10),
		"tolerance": strconv.FormatFloat(opts.Tolerance, 'g', -1, 64),
		"backend":   opts.Backend.Name(),
	}
	if err := serialization.WriteSafeTensors(path, tensors, metadata); err != nil {
		return "", err
	}
	return path, nil
}
