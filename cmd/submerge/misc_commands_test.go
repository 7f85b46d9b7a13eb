package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLanguagesCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"languages"}, "", "")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	requireContains(t, out, "eng")
	requireContains(t, out, "English")
	requireContains(t, out, "deu")
}

func TestConfigInitAndValidate(t *testing.T) {
	_, configPath := newCLIConfig(t, stubMergeSucceeds)

	out, _, err := runCLI(t, []string{"config", "validate"}, "", configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+configPath)
	requireContains(t, out, "mkvmerge")
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestYesNo(t *testing.T) {
	if yesNo(true) != "yes" || yesNo(false) != "no" {
		t.Fatal("unexpected yesNo output")
	}
}
