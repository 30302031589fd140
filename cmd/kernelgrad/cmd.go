package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/born-ml/kernelgrad/internal/config"
)

const version = "v0.1.0-dev"

func appendEnvDocs(cmd *cobra.Command, envs []config.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-26s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// setupLogging installs a text handler on w at the level from KERNELGRAD_DEBUG.
func setupLogging(w io.Writer) {
	level := config.LogLevel()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level < slog.LevelInfo,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	})
	slog.SetDefault(slog.New(handler))
}

// NewCLI builds the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "kernelgrad",
		Short:         "Differentiable kernel adapter and conformance checker",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr())
		},
		Run: func(cmd *cobra.Command, args []string) {
			if v, _ := cmd.Flags().GetBool("version"); v {
				versionHandler(cmd, args)
				return
			}
			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	listCmd := newListCmd()
	conformCmd := newConformCmd()
	envCmd := newEnvCmd()

	envVars := config.AsMap()
	appendEnvDocs(conformCmd, []config.EnvVar{
		envVars["KERNELGRAD_DEBUG"],
		envVars["KERNELGRAD_SEED"],
		envVars["KERNELGRAD_TOLERANCE"],
		envVars["KERNELGRAD_PARALLEL"],
		envVars["KERNELGRAD_NATIVE_LIB"],
		envVars["KERNELGRAD_NATIVE_PREFIX"],
		envVars["KERNELGRAD_DUMP_DIR"],
	})

	rootCmd.AddCommand(
		listCmd,
		conformCmd,
		envCmd,
		newVersionCmd(),
	)

	return rootCmd
}

func versionHandler(cmd *cobra.Command, _ []string) {
	cmd.Printf("kernelgrad version %s\n", version)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run:   versionHandler,
	}
}
