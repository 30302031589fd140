// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go implementation (no CGO)
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
//   - gonum BLAS matrix multiplication
//
// Every operation allocates its result and never modifies its inputs.
package cpu
