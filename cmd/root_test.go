package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cleartag/cleartag/internal/panel"
)

func writeLabel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "label.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatal(err)
	}
	return path
}

func scanServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScanCommandJSON(t *testing.T) {
	srv := scanServer(t, `{"compliance_score": 100, "compliance_status": "Fully Compliant", "details": {}}`)
	// Flags win over the environment
	t.Setenv("CLEARTAG_SERVER_URL", "http://127.0.0.1:1")

	out, err := execute(t, "scan", "--server", srv.URL, "--image", writeLabel(t), "--format", "json", "--log-level", "error")
	if err != nil {
		t.Fatalf("scan returned error: %v\n%s", err, out)
	}

	var snap panel.Snapshot
	if err := json.Unmarshal([]byte(out), &snap); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if snap.State != panel.StateRendered {
		t.Errorf("Expected rendered state, got %s", snap.State)
	}
	if snap.Content == nil || snap.Content.Indicator == nil || snap.Content.Indicator.Text != "100%" {
		t.Errorf("Expected 100%% indicator, got %+v", snap.Content)
	}
}

func TestScanCommandFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := execute(t, "scan", "--server", srv.URL, "--image", writeLabel(t), "--format", "text", "--no-color", "--log-level", "error")
	if err == nil {
		t.Error("Expected error when the scan fails")
	}
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := execute(t, "scan", "--mode", "sideways", "--log-level", "error")
	if err == nil {
		t.Error("Expected error for invalid mode")
	}
}

func TestBatchCommand(t *testing.T) {
	srv := scanServer(t, `{"product_name": "Tea", "compliance_status": "Compliant", "details": {"mrp": "10"}}`)
	dir := filepath.Dir(writeLabel(t))
	out := filepath.Join(t.TempDir(), "results.parquet")

	stdout, err := execute(t, "batch", "--server", srv.URL, "--dir", dir, "--out", out, "--log-level", "error")
	if err != nil {
		t.Fatalf("batch returned error: %v\n%s", err, stdout)
	}
	for _, path := range []string{out, filepath.Join(filepath.Dir(out), "results.yaml")} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}
}
