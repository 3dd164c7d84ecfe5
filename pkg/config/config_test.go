package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	opts, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.HeapLimit <= 0 {
		t.Errorf("HeapLimit = %d, want > 0", opts.HeapLimit)
	}
	if opts.GCMode != "stop-the-world" {
		t.Errorf("GCMode = %q, want %q", opts.GCMode, "stop-the-world")
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	opts, err := Load([]string{
		"--heap-limit=4096",
		"--gc-mode=concurrent-multiphase",
		"--gc-skip=3",
		"source.kl",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.HeapLimit != 4096 {
		t.Errorf("HeapLimit = %d, want 4096", opts.HeapLimit)
	}
	if opts.GCMode != "concurrent-multiphase" {
		t.Errorf("GCMode = %q, want %q", opts.GCMode, "concurrent-multiphase")
	}
	if opts.GCSkip != 3 {
		t.Errorf("GCSkip = %d, want 3", opts.GCSkip)
	}
	if opts.SourcePath != "source.kl" {
		t.Errorf("SourcePath = %q, want %q", opts.SourcePath, "source.kl")
	}
}

func TestKernelConfigTranslation(t *testing.T) {
	opts := Options{HeapLimit: 8192, SymbolBufferSize: 2048, GCMode: "concurrent-single-pass", GCSkip: 1}
	cfg := opts.KernelConfig()
	if cfg.HeapLimit != 8192 || cfg.SymbolBufferSize != 2048 || cfg.GCSkip != 1 {
		t.Errorf("unexpected KernelConfig translation: %+v", cfg)
	}
	if string(cfg.GCMode) != "concurrent-single-pass" {
		t.Errorf("GCMode = %q, want %q", cfg.GCMode, "concurrent-single-pass")
	}
}
