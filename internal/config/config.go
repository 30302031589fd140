// Package config reads kernelgrad settings from the environment.
//
// Every setting is a getter evaluated on each call, so tests and the CLI can
// change the environment between runs. Invalid values fall back to the
// default with a warning.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// LogLevel returns the log level selected by KERNELGRAD_DEBUG.
// 0/false is INFO (default), 1/true is DEBUG, larger integers go lower.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("KERNELGRAD_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

var (
	// Seed seeds the conformance input generator.
	Seed = Uint64("KERNELGRAD_SEED", 0)
	// Tolerance is the absolute and relative conformance tolerance.
	Tolerance = Float("KERNELGRAD_TOLERANCE", 1e-5)
	// Parallel bounds how many conformance cases run at once.
	Parallel = Uint("KERNELGRAD_PARALLEL", 4)
	// NativeLib is the path of an optional native kernel library.
	NativeLib = String("KERNELGRAD_NATIVE_LIB")
	// NativePrefix is the symbol prefix of the native kernel library.
	NativePrefix = StringWithDefault("KERNELGRAD_NATIVE_PREFIX", "loma")
	// DumpDir receives SafeTensors dumps of failing conformance cases.
	DumpDir = String("KERNELGRAD_DUMP_DIR")
)

// String returns a getter for a plain string variable.
func String(key string) func() string {
	return func() string {
		return Var(key)
	}
}

// StringWithDefault returns a getter that falls back to defaultValue when
// the variable is unset or empty.
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// Uint returns a getter for an unsigned integer variable.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Uint64 returns a getter for a 64-bit unsigned integer variable.
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// Float returns a getter for a positive float variable.
func Float(key string, defaultValue float64) func() float64 {
	return func() float64 {
		if s := Var(key); s != "" {
			if f, err := strconv.ParseFloat(s, 64); err != nil || f <= 0 {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return f
			}
		}
		return defaultValue
	}
}

// EnvVar describes one setting.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every setting with its current value.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"KERNELGRAD_DEBUG":         {"KERNELGRAD_DEBUG", LogLevel(), "Show additional debug information (e.g. KERNELGRAD_DEBUG=1)"},
		"KERNELGRAD_SEED":          {"KERNELGRAD_SEED", Seed(), "Seed for conformance inputs (default 0)"},
		"KERNELGRAD_TOLERANCE":     {"KERNELGRAD_TOLERANCE", Tolerance(), "Absolute and relative conformance tolerance (default 1e-5)"},
		"KERNELGRAD_PARALLEL":      {"KERNELGRAD_PARALLEL", Parallel(), "Maximum number of conformance cases run at once (default 4)"},
		"KERNELGRAD_NATIVE_LIB":    {"KERNELGRAD_NATIVE_LIB", NativeLib(), "Path to a native kernel library"},
		"KERNELGRAD_NATIVE_PREFIX": {"KERNELGRAD_NATIVE_PREFIX", NativePrefix(), "Symbol prefix of the native kernel library (default \"loma\")"},
		"KERNELGRAD_DUMP_DIR":      {"KERNELGRAD_DUMP_DIR", DumpDir(), "Directory for SafeTensors dumps of failing conformance cases"},
	}
}

// Values returns every setting formatted as a string.
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}

// Var returns an environment variable stripped of whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
