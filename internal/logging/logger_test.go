package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestHelpersAreNoOpsBeforeInit(t *testing.T) {
	SetOutput(nil, log.InfoLevel)

	// Must not panic.
	Debug("d")
	Info("i")
	Warn("w")
	Error("e")
	if WithPrefix("x") != nil {
		t.Error("WithPrefix should be nil before Init")
	}
}

func TestSetOutputWritesKeyvals(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, log.InfoLevel)
	t.Cleanup(func() { SetOutput(nil, log.InfoLevel) })

	Warn("analytics update failed", "term", "batman")
	Debug("hidden below level")

	out := buf.String()
	if !strings.Contains(out, "analytics update failed") || !strings.Contains(out, "term=batman") {
		t.Errorf("unexpected output: %q", out)
	}
	if strings.Contains(out, "hidden below level") {
		t.Error("debug line written at info level")
	}
}

func TestInitCreatesDatedFile(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, log.DebugLevel); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("hello")
	Close()

	path := filepath.Join(dir, "logs", "cinescope-"+time.Now().Format("2006-01-02")+".log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{"CineScope started", "hello", "CineScope shutting down"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log missing %q:\n%s", want, data)
		}
	}
}
