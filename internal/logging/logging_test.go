package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got: %s", cfg.Level)
	}
	if cfg.FilePath != "" {
		t.Errorf("expected no log file by default, got: %s", cfg.FilePath)
	}
	if cfg.MaxSizeMB != 10 || cfg.MaxFiles != 5 {
		t.Errorf("unexpected rotation defaults: %d MB, %d files", cfg.MaxSizeMB, cfg.MaxFiles)
	}
}

func TestSetup_ConsoleJSONWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	logger, cleanup, err := Setup(Config{Level: "info", Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer cleanup()

	logger.Debug("hidden")
	logger.Warn("visible", "code", "INDEX003")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("console output is not JSON: %v", err)
	}
	if entry["msg"] != "visible" || entry["code"] != "INDEX003" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestSetup_WithFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "preflight.log")
	var console bytes.Buffer

	logger, cleanup, err := Setup(Config{
		Level:     "debug",
		FilePath:  logPath,
		MaxSizeMB: 1,
		MaxFiles:  3,
		Stderr:    &console,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger.With("validator", "search_index").Debug("retrying")
	cleanup()

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file was not created: %v", err)
	}
	if !strings.Contains(string(content), `"validator":"search_index"`) {
		t.Errorf("file entry missing attrs: %s", content)
	}
	if !strings.Contains(console.String(), "retrying") {
		t.Errorf("console entry missing: %s", console.String())
	}
}

func TestSetup_BadFilePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Setup(Config{FilePath: filepath.Join(blocker, "sub", "x.log"), Stderr: &bytes.Buffer{}})
	if err == nil {
		t.Error("expected error when the log directory cannot be created")
	}
}

func TestLevelFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"bogus", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := LevelFromString(tt.input).String(); got != tt.expected {
				t.Errorf("LevelFromString(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRotatingWriter_Rotation(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "rotate.log")

	// 0 MB rotates before every write after the first
	w, err := NewRotatingWriter(logPath, 0, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	data := bytes.Repeat([]byte("x"), 2048)
	if _, err := w.Write(data); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	if _, err := w.Write(data); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Error("main log file should exist")
	}
	if _, err := os.Stat(logPath + ".1"); os.IsNotExist(err) {
		t.Error("rotated file .1 should exist")
	}
}

func TestRotatingWriter_MaxFilesLimit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "maxfiles.log")

	w, err := NewRotatingWriter(logPath, 0, 2)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	for i := 0; i < 5; i++ {
		_, _ = w.Write([]byte(fmt.Sprintf("entry %d\n", i)))
	}

	if _, err := os.Stat(logPath + ".2"); err != nil {
		t.Errorf("rotated file .2 should exist: %v", err)
	}
	if _, err := os.Stat(logPath + ".3"); !os.IsNotExist(err) {
		t.Error("rotated file .3 should not exist (beyond maxFiles)")
	}

	newest, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(newest) != "entry 4\n" {
		t.Errorf("current file should hold the last entry, got %q", newest)
	}
}

func TestRotatingWriter_CloseTwice(t *testing.T) {
	w, err := NewRotatingWriter(filepath.Join(t.TempDir(), "close.log"), 1, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	if _, err := w.Write([]byte("test data\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close failed: %v", err)
	}
	if err := w.Sync(); err != nil {
		t.Errorf("sync after close failed: %v", err)
	}
}

func TestRotatingWriter_AppendsToExisting(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "append.log")
	if err := os.WriteFile(logPath, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewRotatingWriter(logPath, 1, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	_, _ = w.Write([]byte("new\n"))
	_ = w.Close()

	content, _ := os.ReadFile(logPath)
	if string(content) != "old\nnew\n" {
		t.Errorf("expected append, got %q", content)
	}
}

func TestRotatingWriter_ConcurrentWrites(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "concurrent.log")

	w, err := NewRotatingWriter(logPath, 10, 3)
	if err != nil {
		t.Fatalf("failed to create writer: %v", err)
	}
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				msg := fmt.Sprintf(`{"id":%d,"iter":%d,"msg":"test"}`, id, j) + "\n"
				_, _ = w.Write([]byte(msg))
			}
		}(i)
	}
	wg.Wait()

	info, err := os.Stat(logPath)
	if err != nil {
		t.Fatalf("log file should exist: %v", err)
	}
	if info.Size() == 0 {
		t.Error("log file should have content")
	}
}
