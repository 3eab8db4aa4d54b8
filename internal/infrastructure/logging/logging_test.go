package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupWithWriters(t *testing.T) {
	t.Run("fans out to both writers", func(t *testing.T) {
		var stderr, file bytes.Buffer
		logger := SetupWithWriters(&stderr, &file, slog.LevelInfo)

		logger.Info("sync batch finished", "successful", 3)

		if !strings.Contains(stderr.String(), "sync batch finished") {
			t.Fatalf("expected message on stderr writer, got %q", stderr.String())
		}

		var record map[string]any
		if err := json.Unmarshal(file.Bytes(), &record); err != nil {
			t.Fatalf("file writer did not receive valid JSON: %v", err)
		}
		if record["msg"] != "sync batch finished" {
			t.Fatalf("expected msg in JSON record, got %v", record["msg"])
		}
		if record["successful"] != float64(3) {
			t.Fatalf("expected attribute in JSON record, got %v", record["successful"])
		}
	})

	t.Run("level filters both outputs", func(t *testing.T) {
		var stderr, file bytes.Buffer
		logger := SetupWithWriters(&stderr, &file, slog.LevelWarn)

		logger.Info("below the threshold")

		if stderr.Len() != 0 || file.Len() != 0 {
			t.Fatalf("expected no output below level, got %q / %q", stderr.String(), file.String())
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("no file configured", func(t *testing.T) {
		logger, cleanup := Setup("", slog.LevelInfo)
		if logger == nil {
			t.Fatal("expected a logger")
		}
		if err := cleanup(); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	})

	t.Run("writes JSON records to the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fieldops.log")
		logger, cleanup := Setup(path, slog.LevelInfo)

		logger.Info("assignment created", "assignment_id", "a1")
		if err := cleanup(); err != nil {
			t.Fatalf("cleanup: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			t.Fatalf("log file is not valid JSON: %v", err)
		}
		if record["assignment_id"] != "a1" {
			t.Fatalf("expected assignment_id attribute, got %v", record["assignment_id"])
		}
	})
}
