// Package config is this module's typed configuration layer: a single
// Config struct populated once at startup from CLI flags (bound by cobra in
// cmd/klee-compare) and the environment variable spec §6 "Environment"
// requires, via github.com/spf13/viper — the teacher has no configuration
// layer of its own (a single-file compiler invoked positionally), so this
// package is grounded on the rest of the corpus's viper usage rather than
// on kanso.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"klee-compare/internal/errx"
)

// envExecutorHome is the required environment variable naming the
// executor's installation directory (spec §6 "Environment"). The executor
// binary is resolved as <ExecutorHome>/bin/<ExecutorName>.
const envExecutorHome = "KLEE_HOME"

// Config is the fully-resolved, validated configuration for one run of the
// Supervisor (spec §4.8). The "analyze" command does not build one.
type Config struct {
	// ExecutorHome is $KLEE_HOME: the directory internal/executor resolves
	// the executor binary under.
	ExecutorHome string
	// ExecutorName is the executable's name within ExecutorHome/bin.
	ExecutorName string
	// LibC is the value passed to the executor's --libc flag.
	LibC string

	// PatchedPath and OriginalPath are the two input IR files (spec §6
	// "Input"): the patch target and the comparison baseline.
	PatchedPath  string
	OriginalPath string
	// ProgramArgs are the target program's own arguments, forwarded to the
	// primary executor invocation between --compare-bitcode's two modules.
	ProgramArgs []string

	// OutputRoot is the directory under which out-N/ (spec §4.8) is
	// created. Defaults to the working directory.
	OutputRoot string

	// ReplayPollInterval governs how long the driver (§4.7) sleeps between
	// empty-queue polls; spec §4.7 says "≈500ms".
	ReplayPollInterval int

	// DumpScratchPath is the fixed path the replay-side POSIX model writes
	// its dump stream to (spec §6 "Dump-file contract"). The driver moves
	// whatever is there into each replay's output directory.
	DumpScratchPath string
}

// New builds a Config from v, which the caller has already populated from
// CLI flags and defaults (see cmd/klee-compare). The executor's
// installation directory always comes from the environment, never from a
// flag or config file, matching spec §6 exactly.
func New(v *viper.Viper) (*Config, error) {
	home := v.GetString(envExecutorHome)
	if home == "" {
		return nil, errx.ConfigError(fmt.Errorf("%s is not set; it must name the executor's installation directory", envExecutorHome))
	}

	patched := v.GetString("patched")
	original := v.GetString("original")
	if patched == "" || original == "" {
		return nil, errx.ConfigError(fmt.Errorf("both a patched and an original IR module path are required"))
	}

	cfg := &Config{
		ExecutorHome:       home,
		ExecutorName:       v.GetString("executor-name"),
		LibC:               v.GetString("libc"),
		PatchedPath:        patched,
		OriginalPath:       original,
		ProgramArgs:        v.GetStringSlice("program-args"),
		OutputRoot:         v.GetString("output-root"),
		ReplayPollInterval: v.GetInt("replay-poll-ms"),
		DumpScratchPath:    v.GetString("dump-scratch-path"),
	}
	if cfg.ExecutorName == "" {
		cfg.ExecutorName = "klee"
	}
	if cfg.LibC == "" {
		cfg.LibC = "uclibc"
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = "."
	}
	if cfg.ReplayPollInterval <= 0 {
		cfg.ReplayPollInterval = 500
	}
	if cfg.DumpScratchPath == "" {
		cfg.DumpScratchPath = filepath.Join(os.TempDir(), "klee-posix-dump")
	}
	return cfg, nil
}

// EnvExecutorHome exposes the environment variable name for viper binding
// (cmd/klee-compare calls v.BindEnv(config.EnvExecutorHome(),
// config.EnvExecutorHome())), so the name is defined exactly once.
func EnvExecutorHome() string { return envExecutorHome }
