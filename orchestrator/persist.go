package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maastricht-university/clip-sentiment/analytics"
)

// ExportBundle is the report written next to a finished session.
type ExportBundle struct {
	SessionID   string         `json:"session_id"`
	JobID       string         `json:"job_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Report      analytics.View `json:"report"`
}

func mkSessionDir(outputsRoot, sessionID string) (string, error) {
	dir := filepath.Join(outputsRoot, "session_"+time.Now().Format("20060102-150405")+"_"+sessionID[:min(8, len(sessionID))])
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Export derives the report for a Ready view and writes it under outputsRoot.
// It returns the written file's path.
func Export(outputsRoot string, v View) (string, error) {
	if v.Phase != PhaseReady || v.Result == nil {
		return "", errors.New("orchestrator: export needs a ready view")
	}
	dir, err := mkSessionDir(outputsRoot, v.SessionID)
	if err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(dir, "report.json")
	bundle := ExportBundle{
		SessionID:   v.SessionID,
		JobID:       v.JobID,
		GeneratedAt: time.Now().UTC(),
		Report:      analytics.Derive(v.Result),
	}
	if err := writeJSON(path, bundle); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}
