// Command gokernel boots the runtime, reads a source file, evaluates each
// top-level form in the ground environment, and prints the result of the
// last one. Its shape — resolve the source path, read it, hand it to the
// runtime, run to completion, report the outcome — follows
// cmd/console/main.go's boot sequence; compilation, VFS persistence, and the
// disk-sync ticker are replaced with pkg/config's flag/viper loading and
// pkg/reader/pkg/printer's read/print pair.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"gokernel/pkg/config"
	"gokernel/pkg/kernel"
	"gokernel/pkg/printer"
	"gokernel/pkg/reader"
	"gokernel/pkg/utils"
)

func main() {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gokernel: %v\n", err)
		os.Exit(2)
	}
	if opts.SourcePath == "" {
		fmt.Fprintln(os.Stderr, "usage: gokernel [flags] <source.kl>")
		os.Exit(2)
	}

	level, err := zerolog.ParseLevel(opts.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := kernel.NewLogger(os.Stderr, level)

	fullPath, baseDir, err := utils.GetPathInfo(opts.SourcePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve source path")
	}
	logger.Debug().Str("path", fullPath).Str("base_dir", baseDir).Msg("resolved source file")

	sourceBytes, err := os.ReadFile(fullPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read source file")
	}

	kcfg := opts.KernelConfig()
	kcfg.Logger = logger
	rt, err := kernel.Boot(kcfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to boot runtime")
	}

	forms, err := reader.ReadAll(rt, string(sourceBytes))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to read source")
	}
	if len(forms) == 0 {
		logger.Warn().Msg("source file contained no forms")
		return
	}

	result := rt.Unit()
	for i, form := range forms {
		collector, cerr := rt.NewCollector()
		if cerr != nil {
			logger.Fatal().Err(cerr).Msg("failed to create result collector")
		}
		if eerr := rt.EnqueueEval(collector, form, rt.GroundEnv()); eerr != nil {
			logger.Fatal().Err(eerr).Int("form", i).Msg("failed to enqueue top-level form")
		}
		if rerr := rt.Run(); rerr != nil {
			logger.Fatal().Err(rerr).Int("form", i).Msg("runtime error draining event queue")
		}
		v, verr := rt.CollectorValue(collector)
		if verr != nil {
			logger.Fatal().Err(verr).Int("form", i).Msg("failed to read collector result")
		}
		result = v
	}

	fmt.Println(printer.Sprint(rt, result))
}
