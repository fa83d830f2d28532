package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"klee-compare/internal/errx"
	"klee-compare/internal/ir"
	"klee-compare/internal/irtext"
	"klee-compare/internal/match"
	"klee-compare/internal/priority"
)

// newAnalyzeCommand exposes the priority pipeline (C2-C5) standalone, over
// two textual IR modules, without launching an executor — useful for
// inspecting block weights and instruction priorities directly.
func newAnalyzeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "compute block weights and instruction priorities for patched vs original",
		RunE: func(cmd *cobra.Command, args []string) error {
			patchedPath := v.GetString("patched")
			originalPath := v.GetString("original")
			if patchedPath == "" || originalPath == "" {
				return errx.ConfigError(fmt.Errorf("both --patched and --original are required"))
			}

			patched, err := loadModule(patchedPath)
			if err != nil {
				return err
			}
			original, err := loadModule(originalPath)
			if err != nil {
				return err
			}

			weights := match.Run(patched, original)
			priorities := priority.Run(patched, weights)

			printReport(cmd, patched, weights, priorities)
			return nil
		},
	}
}

func loadModule(path string) (*ir.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errx.FilesystemError(fmt.Errorf("analyze: reading %s: %w", path, err), true)
	}
	m, err := irtext.Load(path, string(src))
	if err != nil {
		return nil, err
	}
	return m, nil
}

func printReport(cmd *cobra.Command, patched *ir.Module, weights match.Weights, priorities priority.Priorities) {
	out := cmd.OutOrStdout()
	bold := color.New(color.Bold).SprintFunc()
	for _, f := range patched.Functions() {
		fmt.Fprintln(out, bold(fmt.Sprintf("function %s", f.Name)))
		for _, b := range f.Blocks {
			fmt.Fprintf(out, "  block %s weight=%d\n", b.Label, weights[b])
			for _, inst := range b.Instructions {
				fmt.Fprintf(out, "    %s  priority=%d\n", inst.Text(), priorities.Priority(inst))
			}
		}
	}
}
