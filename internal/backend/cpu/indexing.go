package cpu

import (
	"fmt"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// IndexAdd accumulates the rows of src into buckets rows of a new tensor:
//
//	result[index[r]] += src[r]
//
// src has shape [R, ...], index is a 1-D integer tensor of length R and the
// result has shape [buckets, ...]. Panics on out-of-range indices.
func (cpu *CPUBackend) IndexAdd(src, index *tensor.RawTensor, buckets int) *tensor.RawTensor {
	rows, rowSize := rowLayout("index_add", src, index)

	outShape := src.Shape().Clone()
	outShape[0] = buckets
	result := tensor.MustRaw(outShape, src.DType())
	idx := index.Ints()

	for r := 0; r < rows; r++ {
		if idx[r] < 0 || idx[r] >= buckets {
			panic(fmt.Sprintf("index_add: index %d at row %d out of range [0, %d)", idx[r], r, buckets))
		}
	}

	switch src.DType() {
	case tensor.Float32:
		indexAdd(result.AsFloat32(), src.AsFloat32(), idx, rowSize)
	case tensor.Float64:
		indexAdd(result.AsFloat64(), src.AsFloat64(), idx, rowSize)
	default:
		panic(fmt.Sprintf("index_add: unsupported dtype %s", src.DType()))
	}

	return result
}

// IndexSelect gathers rows of src: result[r] = src[index[r]].
//
// src has shape [B, ...], index is a 1-D integer tensor of length R and the
// result has shape [R, ...]. Panics on out-of-range indices.
func (cpu *CPUBackend) IndexSelect(src, index *tensor.RawTensor) *tensor.RawTensor {
	if len(src.Shape()) == 0 || len(index.Shape()) != 1 || !index.DType().IsInteger() {
		panic(fmt.Sprintf("index_select: want src [B, ...] and 1-D integer index, got %v and %s%v",
			src.Shape(), index.DType(), index.Shape()))
	}

	buckets := src.Shape()[0]
	rowSize := src.NumElements() / buckets
	idx := index.Ints()

	outShape := src.Shape().Clone()
	outShape[0] = len(idx)
	result := tensor.MustRaw(outShape, src.DType())

	for r, b := range idx {
		if b < 0 || b >= buckets {
			panic(fmt.Sprintf("index_select: index %d at row %d out of range [0, %d)", b, r, buckets))
		}
	}

	switch src.DType() {
	case tensor.Float32:
		indexSelect(result.AsFloat32(), src.AsFloat32(), idx, rowSize)
	case tensor.Float64:
		indexSelect(result.AsFloat64(), src.AsFloat64(), idx, rowSize)
	default:
		panic(fmt.Sprintf("index_select: unsupported dtype %s", src.DType()))
	}

	return result
}

// rowLayout validates a [R, ...] source against a 1-D index of length R and
// returns R and the number of elements per row.
func rowLayout(name string, src, index *tensor.RawTensor) (rows, rowSize int) {
	if len(src.Shape()) == 0 || len(index.Shape()) != 1 || !index.DType().IsInteger() {
		panic(fmt.Sprintf("%s: want src [R, ...] and 1-D integer index, got %v and %s%v",
			name, src.Shape(), index.DType(), index.Shape()))
	}
	rows = src.Shape()[0]
	if index.Shape()[0] != rows {
		panic(fmt.Sprintf("%s: index length %d does not match %d rows", name, index.Shape()[0], rows))
	}
	return rows, src.NumElements() / rows
}

func indexAdd[T float](dst, src []T, idx []int, rowSize int) {
	for r, b := range idx {
		row := src[r*rowSize : (r+1)*rowSize]
		out := dst[b*rowSize : (b+1)*rowSize]
		for i, v := range row {
			out[i] += v
		}
	}
}

func indexSelect[T float](dst, src []T, idx []int, rowSize int) {
	for r, b := range idx {
		copy(dst[r*rowSize:(r+1)*rowSize], src[b*rowSize:(b+1)*rowSize])
	}
}
