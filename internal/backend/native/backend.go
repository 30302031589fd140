// Package native routes element-wise kernels to a precompiled shared library
// loaded at runtime without cgo.
//
// The library exports float32 entry points named <prefix>_<op>_f32:
//
//	void <prefix>_add_f32(const float* a, const float* b, float* out, int64_t n);
//	void <prefix>_sub_f32(...);
//	void <prefix>_mul_f32(...);
//	void <prefix>_div_f32(...);
//	void <prefix>_sqrt_f32(const float* a, float* out, int64_t n);
//
// Missing symbols are tolerated. Any operation the library does not cover,
// and any call that is not an equal-shape float32 call, runs on the embedded
// CPU backend.
package native

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/purego"

	"github.com/born-ml/kernelgrad/internal/backend/cpu"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

var _ kernel.Backend = (*Backend)(nil)

// ErrNoSymbols is returned by Open when the library exports none of the
// expected entry points.
var ErrNoSymbols = errors.New("native: no kernel symbols found")

type (
	binaryFunc func(a, b, out *float32, n int64)
	unaryFunc  func(a, out *float32, n int64)
)

var binaryOps = []string{"add", "sub", "mul", "div"}

// Backend is a kernel.Backend backed by a native library.
type Backend struct {
	*cpu.CPUBackend

	mu     sync.RWMutex // held for reading across native calls
	handle uintptr
	path   string
	binary map[string]binaryFunc
	unary  map[string]unaryFunc
}

// Open loads the library at path and binds the entry points with the given
// symbol prefix.
func Open(path, prefix string) (*Backend, error) {
	handle, err := loadLibrary(path)
	if err != nil {
		return nil, fmt.Errorf("native: load %s: %w", path, err)
	}
	if handle == 0 {
		return nil, fmt.Errorf("native: load %s: null handle", path)
	}

	b := newBackend()
	b.handle = handle
	b.path = path

	for _, op := range binaryOps {
		sym, err := getSymbol(handle, symbolName(prefix, op))
		if err != nil || sym == 0 {
			slog.Debug("native symbol missing, using cpu", "library", path, "op", op)
			continue
		}
		var fn binaryFunc
		purego.RegisterFunc(&fn, sym)
		b.binary[op] = fn
	}
	if sym, err := getSymbol(handle, symbolName(prefix, "sqrt")); err == nil && sym != 0 {
		var fn unaryFunc
		purego.RegisterFunc(&fn, sym)
		b.unary["sqrt"] = fn
	} else {
		slog.Debug("native symbol missing, using cpu", "library", path, "op", "sqrt")
	}

	if len(b.binary)+len(b.unary) == 0 {
		_ = closeLibrary(handle)
		return nil, fmt.Errorf("%w: %s (prefix %q)", ErrNoSymbols, path, prefix)
	}

	slog.Info("native kernels loaded", "library", path, "ops", b.Ops())
	return b, nil
}

func newBackend() *Backend {
	return &Backend{
		CPUBackend: cpu.New(),
		binary:     make(map[string]binaryFunc),
		unary:      make(map[string]unaryFunc),
	}
}

func symbolName(prefix, op string) string {
	return prefix + "_" + op + "_f32"
}

// Close unloads the library. Operations after Close run on the CPU.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.binary)
	clear(b.unary)
	handle := b.handle
	b.handle = 0
	return closeLibrary(handle)
}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "Native"
}

// Ops lists the operations bound to native code.
func (b *Backend) Ops() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ops []string
	for _, op := range binaryOps {
		if _, ok := b.binary[op]; ok {
			ops = append(ops, op)
		}
	}
	if _, ok := b.unary["sqrt"]; ok {
		ops = append(ops, "sqrt")
	}
	return ops
}

// Add adds element-wise.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	if out := b.callBinary("add", x, y); out != nil {
		return out
	}
	return b.CPUBackend.Add(x, y)
}

// Sub subtracts element-wise.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	if out := b.callBinary("sub", x, y); out != nil {
		return out
	}
	return b.CPUBackend.Sub(x, y)
}

// Mul multiplies element-wise.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	if out := b.callBinary("mul", x, y); out != nil {
		return out
	}
	return b.CPUBackend.Mul(x, y)
}

// Div divides element-wise.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	if out := b.callBinary("div", x, y); out != nil {
		return out
	}
	return b.CPUBackend.Div(x, y)
}

// Sqrt computes the element-wise square root.
func (b *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() == tensor.Float32 {
		b.mu.RLock()
		defer b.mu.RUnlock()
		if fn, ok := b.unary["sqrt"]; ok {
			out := tensor.MustRaw(x.Shape(), tensor.Float32)
			if n := x.NumElements(); n > 0 {
				fn(&x.AsFloat32()[0], &out.AsFloat32()[0], int64(n))
			}
			return out
		}
	}
	return b.CPUBackend.Sqrt(x)
}

// callBinary runs op natively, or returns nil when the call must fall back.
func (b *Backend) callBinary(op string, x, y *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 || y.DType() != tensor.Float32 || !x.Shape().Equal(y.Shape()) {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	fn, ok := b.binary[op]
	if !ok {
		return nil
	}

	out := tensor.MustRaw(x.Shape(), tensor.Float32)
	if n := x.NumElements(); n > 0 {
		fn(&x.AsFloat32()[0], &y.AsFloat32()[0], &out.AsFloat32()[0], int64(n))
	}
	return out
}
