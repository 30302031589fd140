// Package serialization reads and writes tensors in the SafeTensors format.
//
// The conformance harness uses it to dump the inputs, outputs and gradients
// of failing cases so they can be inspected with any SafeTensors reader:
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes, names in sorted order]
//
// The optional "__metadata__" header entry holds string key/value pairs.
package serialization
