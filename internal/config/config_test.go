package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"KERNELGRAD_DEBUG", "KERNELGRAD_SEED", "KERNELGRAD_TOLERANCE",
		"KERNELGRAD_PARALLEL", "KERNELGRAD_NATIVE_LIB", "KERNELGRAD_NATIVE_PREFIX",
		"KERNELGRAD_DUMP_DIR",
	} {
		t.Setenv(k, "")
	}

	assert.Equal(t, slog.LevelInfo, LogLevel())
	assert.Equal(t, uint64(0), Seed())
	assert.InDelta(t, 1e-5, Tolerance(), 0)
	assert.Equal(t, uint(4), Parallel())
	assert.Empty(t, NativeLib())
	assert.Equal(t, "loma", NativePrefix())
	assert.Empty(t, DumpDir())
}

func TestOverrides(t *testing.T) {
	t.Setenv("KERNELGRAD_SEED", "42")
	t.Setenv("KERNELGRAD_TOLERANCE", "1e-3")
	t.Setenv("KERNELGRAD_PARALLEL", " 8 ")
	t.Setenv("KERNELGRAD_NATIVE_LIB", `"/opt/lib/libloma.so"`)
	t.Setenv("KERNELGRAD_NATIVE_PREFIX", "kg")

	assert.Equal(t, uint64(42), Seed())
	assert.InDelta(t, 1e-3, Tolerance(), 0)
	assert.Equal(t, uint(8), Parallel())
	assert.Equal(t, "/opt/lib/libloma.so", NativeLib())
	assert.Equal(t, "kg", NativePrefix())
}

func TestInvalidFallsBack(t *testing.T) {
	t.Setenv("KERNELGRAD_SEED", "-1")
	t.Setenv("KERNELGRAD_TOLERANCE", "zero")
	t.Setenv("KERNELGRAD_PARALLEL", "many")

	assert.Equal(t, uint64(0), Seed())
	assert.InDelta(t, 1e-5, Tolerance(), 0)
	assert.Equal(t, uint(4), Parallel())

	t.Setenv("KERNELGRAD_TOLERANCE", "-0.5")
	assert.InDelta(t, 1e-5, Tolerance(), 0)
}

func TestLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"false": slog.LevelInfo,
		"0":     slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
		"2":     slog.Level(-8),
	}
	for v, want := range cases {
		t.Run(v, func(t *testing.T) {
			t.Setenv("KERNELGRAD_DEBUG", v)
			assert.Equal(t, want, LogLevel())
		})
	}
}

func TestValues(t *testing.T) {
	t.Setenv("KERNELGRAD_SEED", "7")
	vals := Values()
	assert.Equal(t, "7", vals["KERNELGRAD_SEED"])
	assert.Len(t, vals, 7)
}
