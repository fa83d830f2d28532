package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"klee-compare/internal/config"
	"klee-compare/internal/errx"
)

var v = viper.New()

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "klee-compare",
		Short:         "Patch-directed differential symbolic execution harness",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("patched", "", "path to the patched IR module")
	root.PersistentFlags().String("original", "", "path to the original IR module")
	root.PersistentFlags().String("executor-name", "", "executor binary name under $KLEE_HOME/bin (default klee)")
	root.PersistentFlags().String("libc", "", "libc passed to the executor's --libc flag (default uclibc)")
	root.PersistentFlags().String("output-root", "", "directory under which out-N/ is created (default .)")
	root.PersistentFlags().Int("replay-poll-ms", 0, "replay driver empty-queue poll interval in ms (default 500)")
	root.PersistentFlags().String("dump-scratch-path", "", "fixed scratch path the replayed program's dump stream is written to")
	root.PersistentFlags().StringSlice("program-args", nil, "arguments forwarded to the target program")

	_ = v.BindPFlags(root.PersistentFlags())
	v.SetEnvPrefix("")
	_ = v.BindEnv(config.EnvExecutorHome(), config.EnvExecutorHome())

	root.AddCommand(newRunCommand())
	root.AddCommand(newAnalyzeCommand())

	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// main is the sole entry point; it owns the top-level recovery boundary for
// the category-3 "IR shape surprise" panics the analyzer raises (spec §7):
// anything internal/equiv or internal/irtext classifies as a shape error is
// rendered and turned into a clean exit rather than a bare stack trace.
func main() {
	os.Exit(run())
}

func run() (code int) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := errx.Classify(r); ok {
			fmt.Fprintln(os.Stderr, errx.Render(e))
			code = 1
			return
		}
		panic(r) // not one of ours: a real bug, let it crash loudly
	}()

	if err := newRootCommand().Execute(); err != nil {
		if e, ok := err.(*errx.Error); ok {
			fmt.Fprintln(os.Stderr, errx.Render(e))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
