package interfaces

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	ingest "campus-energy/internal/ingest/domain"
)

// ManifestFile records what a run read and wrote.
const ManifestFile = "run_manifest.json"

// FileEntry is the manifest view of one load report.
type FileEntry struct {
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	Columns   []string       `json:"columns,omitempty"`
	Fallbacks []string       `json:"fallbacks,omitempty"`
	Malformed int            `json:"malformed_lines"`
	RowsRead  int            `json:"rows_read"`
	RowsKept  int            `json:"rows_kept"`
	Drops     map[string]int `json:"drops,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Manifest is the machine-readable run record.
type Manifest struct {
	RunID       string         `json:"run_id"`
	Status      string         `json:"status"`
	InputDir    string         `json:"input_dir"`
	GeneratedAt string         `json:"generated_at"`
	CorpusRows  int            `json:"corpus_rows"`
	Buildings   int            `json:"buildings"`
	RowFailures int            `json:"row_failures"`
	Drops       map[string]int `json:"drops"`
	Files       []FileEntry    `json:"files"`
	Artifacts   []string       `json:"artifacts"`
}

// NewFileEntries converts load reports for the manifest.
func NewFileEntries(reports []ingest.LoadReport) []FileEntry {
	entries := make([]FileEntry, 0, len(reports))
	for _, r := range reports {
		entry := FileEntry{
			Source:    r.Source,
			Status:    string(r.Status),
			Columns:   r.Columns,
			Fallbacks: r.FallbackUsed,
			Malformed: r.Malformed,
			RowsRead:  r.RowsRead,
			RowsKept:  r.RowsKept,
			Error:     r.ErrorString(),
		}
		if len(r.Drops) > 0 {
			entry.Drops = dropMap(r.Drops)
		}
		entries = append(entries, entry)
	}
	return entries
}

// DropSummary flattens drop totals for the manifest.
func DropSummary(reports []ingest.LoadReport) map[string]int {
	return dropMap(ingest.DropTotals(reports))
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(outDir string, manifest Manifest, generatedAt time.Time) error {
	manifest.GeneratedAt = generatedAt.UTC().Format(time.RFC3339)
	file, err := os.Create(filepath.Join(outDir, ManifestFile))
	if err != nil {
		return err
	}
	defer file.Close()
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(manifest)
}

func dropMap(drops map[ingest.DropReason]int) map[string]int {
	out := make(map[string]int, len(drops))
	for reason, count := range drops {
		out[string(reason)] = count
	}
	return out
}
