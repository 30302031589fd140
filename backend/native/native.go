// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package native loads precompiled element-wise kernels from a shared
// library at runtime, without cgo.
//
// The library exports float32 entry points named <prefix>_<op>_f32 for add,
// sub, mul, div and sqrt. Operations the library does not export, and calls
// that are not equal-shape float32, run on the CPU backend.
//
// Example:
//
//	b, err := native.Open("/opt/lib/libloma.so", "loma")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Close()
//	node, _ := graph.NewNode(kernel.Add, graph.WithBackend(b))
package native

import (
	internalnative "github.com/born-ml/kernelgrad/internal/backend/native"
	"github.com/born-ml/kernelgrad/kernel"
)

// Backend is a CPU backend with native overrides.
type Backend = internalnative.Backend

var _ kernel.Backend = (*Backend)(nil)

// ErrNoSymbols is returned when a library exports no kernel symbols.
var ErrNoSymbols = internalnative.ErrNoSymbols

// Open loads the library at path and binds symbols with the given prefix.
func Open(path, prefix string) (*Backend, error) {
	return internalnative.Open(path, prefix)
}
