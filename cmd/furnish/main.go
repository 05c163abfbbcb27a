package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Urbanninja1/2DHD-sub001/internal/config"
)

// flags are the command-line overrides shared by every subcommand. Only
// flags the user actually set replace config values.
type flags struct {
	assets    string
	output    string
	format    string
	density   string
	logLevel  string
	logFormat string
	seed      int64
	strict    bool
	json      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	rootCmd := &cobra.Command{
		Use:          "furnish",
		Short:        "Room furnishing pipeline: resolve placements, check guardrails, write scene modules",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&f.assets, "assets", "", "asset directory for feature models (default <project>/assets)")
	pf.StringVar(&f.density, "density", "", "density tier override ("+strings.Join(config.TierNames(), ", ")+")")
	pf.Int64Var(&f.seed, "seed", 0, "seed for scattered placement (0 derives one from the room id)")
	pf.BoolVar(&f.strict, "strict", false, "treat guardrail warnings as errors")
	pf.BoolVar(&f.json, "json", false, "print machine-readable JSON")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (text, json)")

	rootCmd.AddCommand(resolveCmd(f))
	rootCmd.AddCommand(validateCmd(f))
	rootCmd.AddCommand(generateCmd(f))
	rootCmd.AddCommand(boundsCmd(f))
	return rootCmd
}

func resolveCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [project-path]",
		Short: "Resolve placement rules to concrete positions and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, f, args[0])
		},
	}
}

func validateCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Resolve and check a room against the lighting, budget and spatial guardrails",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, f, args[0])
		},
	}
}

func generateCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [project-path...]",
		Short: "Run the full pipeline and write a scene module for each room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output directory (default <project>/generated)")
	cmd.Flags().StringVar(&f.format, "format", "", "scene layout (compact, expanded)")
	return cmd
}

func boundsCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "bounds [model.glb...]",
		Short: "Print the bounding box declared by GLB models",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBounds(cmd, f, args)
		},
	}
}
