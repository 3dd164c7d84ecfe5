// Package config loads the boot options spec.md §6 names (heap_limit,
// symbol_buffer_size, gc_mode, gc_skip) from command-line flags, a config
// file, and environment variables. It replaces the teacher's compile-time
// preprocessor macros (pkg/compiler/preprocessor.go's #define table) with a
// runtime configuration layer, following the dependency profile recorded for
// webitel-im-delivery-service in the corpus manifest
// (_examples/other_examples/manifests/webitel-im-delivery-service/go.mod):
// github.com/spf13/pflag for flag parsing, github.com/spf13/viper layered on
// top for file/env overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gokernel/pkg/kernel"
)

// Options mirrors kernel.Config's boot-relevant fields plus the CLI-only
// concerns (source path, log level) that do not belong inside the kernel
// package itself.
type Options struct {
	HeapLimit        int
	SymbolBufferSize int
	GCMode           string
	GCSkip           int
	LogLevel         string
	SourcePath       string
}

// Load parses args (normally os.Args[1:]) with pflag, then layers a
// gokernel.yaml config file and GOKERNEL_-prefixed environment variables on
// top via viper, in viper's usual precedence: flag > env > file > default.
func Load(args []string) (Options, error) {
	fs := pflag.NewFlagSet("gokernel", pflag.ContinueOnError)
	fs.Int("heap-limit", kernel.DefaultConfig().HeapLimit, "cell heap capacity")
	fs.Int("symbol-buffer-size", kernel.DefaultConfig().SymbolBufferSize, "symbol table byte buffer capacity")
	fs.String("gc-mode", string(kernel.DefaultConfig().GCMode), "stop-the-world | concurrent-multiphase | concurrent-single-pass")
	fs.Int("gc-skip", kernel.DefaultConfig().GCSkip, "dispatches skipped between concurrent GC steps")
	fs.String("log-level", "info", "trace|debug|info|warn|error")
	fs.String("config", "", "path to an optional gokernel.yaml config file")
	if err := fs.Parse(args); err != nil {
		return Options{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("GOKERNEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Options{}, err
	}

	if cfgPath, _ := fs.GetString("config"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("config: reading %s: %w", cfgPath, err)
		}
	}

	opts := Options{
		HeapLimit:        v.GetInt("heap-limit"),
		SymbolBufferSize: v.GetInt("symbol-buffer-size"),
		GCMode:           v.GetString("gc-mode"),
		GCSkip:           v.GetInt("gc-skip"),
		LogLevel:         v.GetString("log-level"),
	}
	if rest := fs.Args(); len(rest) > 0 {
		opts.SourcePath = rest[0]
	}
	return opts, nil
}

// KernelConfig translates Options into a kernel.Config, defaulting Logger to
// the caller's choice (cmd/gokernel wires this to a zerolog.Logger built
// from LogLevel).
func (o Options) KernelConfig() kernel.Config {
	cfg := kernel.DefaultConfig()
	if o.HeapLimit > 0 {
		cfg.HeapLimit = o.HeapLimit
	}
	if o.SymbolBufferSize > 0 {
		cfg.SymbolBufferSize = o.SymbolBufferSize
	}
	if o.GCMode != "" {
		cfg.GCMode = kernel.GCMode(o.GCMode)
	}
	cfg.GCSkip = o.GCSkip
	return cfg
}
