package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestSetupAndOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := Setup(logPath); err != nil {
		t.Fatalf("Failed to set up logging: %v", err)
	}
	defer Close()

	log.Info("first entry")
	fmt.Fprintln(Output(), "subprocess line")
	log.Info("second entry")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	s := string(content)

	for _, want := range []string{"first entry", "subprocess line", "second entry"} {
		if !strings.Contains(s, want) {
			t.Errorf("Log file missing %q:\n%s", want, s)
		}
	}

	// Order must be preserved across log entries and subprocess output.
	first := strings.Index(s, "first entry")
	sub := strings.Index(s, "subprocess line")
	second := strings.Index(s, "second entry")
	if !(first < sub && sub < second) {
		t.Errorf("Log file out of order:\n%s", s)
	}

	// The file copy must stay free of color escapes.
	if strings.Contains(s, "\x1b[") {
		t.Errorf("Log file contains color escape sequences:\n%s", s)
	}
}

func TestSetupAppends(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(logPath, []byte("previous run\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log file: %v", err)
	}
	if err := Setup(logPath); err != nil {
		t.Fatalf("Failed to set up logging: %v", err)
	}
	defer Close()

	fmt.Fprintln(Output(), "new line")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.HasPrefix(string(content), "previous run\n") {
		t.Errorf("Expected log file to be appended, got:\n%s", content)
	}
	if !strings.Contains(string(content), "new line") {
		t.Errorf("Expected new line in log file, got:\n%s", content)
	}
}
