package serialization

import (
	"fmt"
	"sort"
	"strings"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize    = 16 * 1024 * 1024
	MaxTensorCount   = 10_000
	MaxTensorNameLen = 1024
)

// tensorSpan is the byte range a header entry claims in the data section.
type tensorSpan struct {
	Name   string
	Offset int64
	Size   int64
}

// validateSpans checks for negative, overlapping and out-of-bounds ranges.
func validateSpans(spans []tensorSpan, dataSize int64) error {
	if len(spans) > MaxTensorCount {
		return &ValidationError{
			Err:     ErrTooManyTensors,
			Details: fmt.Sprintf("got %d, max %d", len(spans), MaxTensorCount),
		}
	}

	sorted := make([]tensorSpan, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, t := range sorted {
		if t.Offset < 0 || t.Size < 0 {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset=%d, size=%d", t.Offset, t.Size),
			}
		}

		if t.Offset+t.Size > dataSize {
			return &ValidationError{
				Err:     ErrOutOfBounds,
				Tensor:  t.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", t.Offset, t.Size, dataSize),
			}
		}

		if i < len(sorted)-1 {
			next := sorted[i+1]
			if t.Offset+t.Size > next.Offset {
				return &ValidationError{
					Err:     ErrOffsetOverlap,
					Tensor:  t.Name,
					Tensor2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						t.Offset, t.Offset+t.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}

	return nil
}

// ValidateTensorName rejects names that could escape a directory when used
// as a file name, or that are unreasonably long.
func ValidateTensorName(name string) error {
	if name == "" || len(name) > MaxTensorNameLen {
		return &ValidationError{
			Err:     ErrInvalidTensorName,
			Tensor:  name,
			Details: fmt.Sprintf("length %d not in [1, %d]", len(name), MaxTensorNameLen),
		}
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, "/\\\x00") {
		return &ValidationError{
			Err:     ErrInvalidTensorName,
			Tensor:  name,
			Details: "contains '..', a path separator or a null byte",
		}
	}
	return nil
}
