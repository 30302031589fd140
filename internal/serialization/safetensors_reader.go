package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/kernelgrad/internal/tensor"
)

// ReadSafeTensors loads every tensor and the metadata from a SafeTensors file.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: dump paths are chosen by the user.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(bytes.NewReader(data), int64(len(data)))
}

// Decode parses a SafeTensors stream of total length size.
func Decode(r io.Reader, size int64) (map[string]*tensor.RawTensor, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize || int64(headerSize) > size-8 {
		return nil, nil, &ValidationError{
			Err:     ErrHeaderTooLarge,
			Details: fmt.Sprintf("header size %d, file size %d", headerSize, size),
		}
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	var metadata map[string]string
	headers := make(map[string]SafeTensorHeader, len(entries))
	spans := make([]tensorSpan, 0, len(entries))
	for name, entry := range entries {
		if name == metadataKey {
			if err := json.Unmarshal(entry, &metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to parse metadata: %w", err)
			}
			continue
		}
		if err := ValidateTensorName(name); err != nil {
			return nil, nil, err
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(entry, &h); err != nil {
			return nil, nil, fmt.Errorf("tensor %s: %w", name, err)
		}
		headers[name] = h
		spans = append(spans, tensorSpan{
			Name:   name,
			Offset: h.DataOffsets[0],
			Size:   h.DataOffsets[1] - h.DataOffsets[0],
		})
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}
	if err := validateSpans(spans, int64(len(body))); err != nil {
		return nil, nil, err
	}

	tensors := make(map[string]*tensor.RawTensor, len(headers))
	for name, h := range headers {
		raw, err := decodeTensor(name, h, body)
		if err != nil {
			return nil, nil, err
		}
		tensors[name] = raw
	}
	return tensors, metadata, nil
}

func decodeTensor(name string, h SafeTensorHeader, body []byte) (*tensor.RawTensor, error) {
	dtype, err := dtypeFromSafeTensors(h.DType)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}

	span := body[h.DataOffsets[0]:h.DataOffsets[1]]

	// Check the claimed shape against the span before allocating.
	shape := make(tensor.Shape, len(h.Shape))
	want := int64(dtype.Size())
	for i, dim := range h.Shape {
		if dim <= 0 || want*dim > int64(len(span)) {
			return nil, &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  name,
				Details: fmt.Sprintf("shape %v %s does not fit %d bytes", h.Shape, dtype, len(span)),
			}
		}
		want *= dim
		shape[i] = int(dim)
	}
	if want != int64(len(span)) {
		return nil, &ValidationError{
			Err:     ErrOutOfBounds,
			Tensor:  name,
			Details: fmt.Sprintf("%d bytes for shape %v %s", len(span), shape, dtype),
		}
	}

	raw, err := tensor.NewRaw(shape, dtype)
	if err != nil {
		return nil, fmt.Errorf("tensor %s: %w", name, err)
	}
	copy(raw.Data(), span)
	return raw, nil
}
