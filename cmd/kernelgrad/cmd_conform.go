package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/kernelgrad/internal/backend/native"
	"github.com/born-ml/kernelgrad/internal/config"
	"github.com/born-ml/kernelgrad/internal/conformance"
	"github.com/born-ml/kernelgrad/internal/kernel"
	"github.com/born-ml/kernelgrad/internal/tensor"
)

// errConformance reports that at least one case failed.
var errConformance = errors.New("conformance check failed")

// ConformHandler runs the conformance cases and prints one row per kernel
// and dtype.
func ConformHandler(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	seed, _ := flags.GetUint64("seed")
	tol, _ := flags.GetFloat64("tol")
	parallel, _ := flags.GetInt("parallel")
	names, _ := flags.GetStringSlice("kernel")
	dtypeName, _ := flags.GetString("dtype")
	libPath, _ := flags.GetString("native-lib")
	prefix, _ := flags.GetString("native-prefix")
	dumpDir, _ := flags.GetString("dump")

	kinds, err := parseKinds(names)
	if err != nil {
		return err
	}
	dtypes, err := parseDTypes(dtypeName)
	if err != nil {
		return err
	}

	opts := conformance.Options{
		Seed:      seed,
		Tolerance: tol,
		Parallel:  parallel,
		Kinds:     kinds,
		DumpDir:   dumpDir,
	}
	if libPath != "" {
		b, err := native.Open(libPath, prefix)
		if err != nil {
			return err
		}
		defer b.Close()
		opts.Backend = b
	}

	var data [][]string
	failed := 0
	for _, dt := range dtypes {
		opts.DType = dt
		results, err := conformance.Run(cmd.Context(), opts)
		if err != nil {
			return err
		}
		for _, r := range results {
			status := "ok"
			switch {
			case r.Err != nil:
				status = "error: " + r.Err.Error()
				failed++
			case !r.Passed:
				status = "FAIL"
				failed++
			}
			if r.DumpPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", r.DumpPath)
			}
			data = append(data, []string{
				r.Kind.String(),
				dt.String(),
				fmt.Sprint(r.OutputShape),
				formatErr(r.OutputErr),
				formatErrs(r.GradErrs),
				status,
			})
		}
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"KERNEL", "DTYPE", "SHAPE", "OUTPUT ERR", "GRAD ERR", "RESULT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases", errConformance, failed, len(data))
	}
	return nil
}

func parseKinds(names []string) ([]kernel.Kind, error) {
	if len(names) == 0 {
		return nil, nil
	}
	kinds := make([]kernel.Kind, 0, len(names))
	for _, name := range names {
		k, err := kernel.ParseKind(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func parseDTypes(name string) ([]tensor.DataType, error) {
	switch strings.ToLower(name) {
	case "float32", "f32":
		return []tensor.DataType{tensor.Float32}, nil
	case "float64", "f64":
		return []tensor.DataType{tensor.Float64}, nil
	case "all", "":
		return []tensor.DataType{tensor.Float32, tensor.Float64}, nil
	default:
		return nil, fmt.Errorf("unknown dtype %q (want float32, float64 or all)", name)
	}
}

func formatErr(e float64) string {
	return strconv.FormatFloat(e, 'e', 2, 64)
}

func formatErrs(errs []float64) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = formatErr(e)
	}
	return strings.Join(parts, " ")
}

func newConformCmd() *cobra.Command {
	conformCmd := &cobra.Command{
		Use:   "conform",
		Short: "Check kernels against the reference autodiff engine",
		Args:  cobra.NoArgs,
		RunE:  ConformHandler,
	}

	conformCmd.Flags().Uint64("seed", config.Seed(), "Seed for random inputs")
	conformCmd.Flags().Float64("tol", config.Tolerance(), "Absolute and relative tolerance")
	conformCmd.Flags().Int("parallel", int(config.Parallel()), "Maximum cases run at once")
	conformCmd.Flags().StringSlice("kernel", nil, "Kernels to check (default all)")
	conformCmd.Flags().String("dtype", "all", "Data type: float32, float64 or all")
	conformCmd.Flags().String("native-lib", config.NativeLib(), "Native kernel library to check instead of the CPU backend")
	conformCmd.Flags().String("native-prefix", config.NativePrefix(), "Symbol prefix of the native kernel library")
	conformCmd.Flags().String("dump", config.DumpDir(), "Directory for SafeTensors dumps of failing cases")

	return conformCmd
}
