package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func TestServerConfigMissingWordsFile(t *testing.T) {
	m := mainFlags{addr: ":0"}
	if _, _, err := serverConfig(context.Background(), m, log.New(io.Discard, "", 0)); err == nil {
		t.Error("want error when no words file is configured")
	}
}

func TestServerConfigLoadsDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.txt")
	if err := os.WriteFile(path, []byte("hi\nbye\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	m := mainFlags{addr: ":0", wordsFile: path}
	cfg, g, err := serverConfig(context.Background(), m, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("serverConfig: %v", err)
	}
	if cfg.Addr != ":0" {
		t.Errorf("cfg.Addr = %q, want %q", cfg.Addr, ":0")
	}
	if g == nil {
		t.Error("want non-nil game")
	}
}
