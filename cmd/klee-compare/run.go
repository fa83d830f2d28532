package main

import (
	"github.com/spf13/cobra"

	"klee-compare/internal/config"
	"klee-compare/internal/errx"
	"klee-compare/internal/executor"
	"klee-compare/internal/supervisor"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "launch the executor and differentially replay every test it generates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(v)
			if err != nil {
				return err
			}

			exec := executor.New(cfg.ExecutorHome, cfg.ExecutorName, cfg.LibC)
			if _, err := exec.Path(); err != nil {
				return err
			}

			s := supervisor.New(cfg, exec, newLogger())
			if code := s.Run(cmd.Context()); code != 0 {
				return errx.FilesystemError(errRunFailed, true)
			}
			return nil
		},
	}
}

var errRunFailed = runError("campaign exited with a non-zero status; see klee_out.txt")

type runError string

func (e runError) Error() string { return string(e) }
