package main

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/kernelgrad/internal/config"
	"github.com/born-ml/kernelgrad/internal/kernel"
)

// ListHandler prints the descriptor of every kernel, optionally filtered by
// a name prefix.
func ListHandler(cmd *cobra.Command, args []string) error {
	var data [][]string

	for _, kind := range kernel.Kinds() {
		d, err := kernel.Describe(kind)
		if err != nil {
			return err
		}
		if len(args) > 0 && !strings.HasPrefix(d.Name, strings.ToLower(args[0])) {
			continue
		}

		grads := make([]string, 0, len(d.InputNames))
		for _, i := range d.DifferentiableInputs() {
			grads = append(grads, d.InputNames[i])
		}
		data = append(data, []string{
			d.Name,
			strconv.Itoa(d.Arity),
			strings.Join(d.InputNames, ", "),
			strings.Join(grads, ", "),
			strconv.FormatBool(d.Broadcast),
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "ARITY", "INPUTS", "GRADIENTS", "BROADCAST"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

// EnvHandler prints every setting and its current value.
func EnvHandler(cmd *cobra.Command, _ []string) error {
	vars := config.AsMap()
	values := config.Values()

	var data [][]string
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		v := vars[name]
		data = append(data, []string{v.Name, values[name], v.Description})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "VALUE", "DESCRIPTION"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List kernels",
		Args:    cobra.MaximumNArgs(1),
		RunE:    ListHandler,
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show environment settings",
		Args:  cobra.NoArgs,
		RunE:  EnvHandler,
	}
}
