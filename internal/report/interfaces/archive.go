package interfaces

import (
	"archive/zip"
	"os"
	"path/filepath"
)

// ArchiveFile bundles the written artifacts.
const ArchiveFile = "report.zip"

// WriteArchive zips the named files from outDir. Missing entries are skipped.
func WriteArchive(outDir string, entries []string) (string, error) {
	archivePath := filepath.Join(outDir, ArchiveFile)
	file, err := os.Create(archivePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	zipWriter := zip.NewWriter(file)

	for _, name := range entries {
		path := filepath.Join(outDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fw, err := zipWriter.Create(name)
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		if _, err := fw.Write(data); err != nil {
			return "", err
		}
	}
	if err := zipWriter.Close(); err != nil {
		return "", err
	}
	return archivePath, file.Close()
}
