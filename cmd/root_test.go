package cmd

import (
	"testing"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"extract", "svgs", "api", "serve"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	for _, name := range []string{"format", "pretty", "config", "verbose"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("expected persistent flag %q not found", name)
		}
	}
}

func TestExtractCommand_Flags(t *testing.T) {
	flags := extractCmd.Flags()

	tests := []struct {
		name     string
		flagType string
	}{
		{"engine", "string"},
		{"remote", "string"},
		{"headful", "bool"},
		{"no-previews", "bool"},
		{"cookies", "bool"},
		{"cookie-text", "string"},
		{"kind", "string"},
		{"text", "string"},
		{"bbox", "string"},
		{"screenshot", "string"},
		{"annotate", "string"},
		{"kind-labels", "bool"},
		{"timeout", "duration"},
	}

	for _, tt := range tests {
		f := flags.Lookup(tt.name)
		if f == nil {
			t.Errorf("expected flag %q not found", tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("flag %q: expected type %q, got %q", tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestServeCommand_Flags(t *testing.T) {
	for _, name := range []string{"transport", "port", "cache-ttl", "engine"} {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag %q not found", name)
		}
	}
	for _, name := range []string{"addr", "cache-ttl", "engine"} {
		if apiCmd.Flags().Lookup(name) == nil {
			t.Errorf("api: expected flag %q not found", name)
		}
	}
}
