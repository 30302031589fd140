package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// metadataKey is the reserved header entry for free-form metadata.
const metadataKey = "__metadata__"

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes tensors to a SafeTensors file at path.
func WriteSafeTensors(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) (err error) {
	//nolint:gosec // G304: dump paths are chosen by the user.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()

	return Encode(file, tensors, metadata)
}

// Encode writes tensors in SafeTensors layout to w.
//
// Tensors are written in alphabetical order by name.
func Encode(w io.Writer, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		if err := ValidateTensorName(name); err != nil {
			return err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		raw := tensors[name]
		dtype, err := dtypeToSafeTensors(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}

		size := int64(raw.ByteSize())
		header[name] = SafeTensorHeader{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		if _, err := w.Write(tensors[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}

	return nil
}

func dtypeToSafeTensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	case tensor.Int32:
		return "I32", nil
	case tensor.Int64:
		return "I64", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

func dtypeFromSafeTensors(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	case "I32":
		return tensor.Int32, nil
	case "I64":
		return tensor.Int64, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedDType, s)
	}
}
