// =============================================================================
// Sales Report Engine - File Manager Utility
// =============================================================================
//
// This module provides the file handling around report runs:
//   - Directory management
//   - Output file naming
//   - Atomic writes (no half-written PDF is ever visible)
//   - Archival of replaced reports and imported files
//   - Run summary logs
//
// ARCHIVAL STRATEGY:
//   - A report that would overwrite an earlier file moves the earlier file
//     to the archive directory first
//   - Import files are moved to the import archive after a successful import
//   - Failed imports stay where they are
//   - Archives older than the retention period can be pruned
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for report and import runs.
type FileManager struct {
	// OutputDir is where reports and backups are written.
	OutputDir string

	// ArchiveDir receives reports replaced by a newer file of the same name.
	ArchiveDir string

	// ImportArchiveDir receives import files once they are loaded.
	ImportArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in archives.
	// Example: output_archive/2024/01/15/daily.pdf
	UseTimestampSubdirs bool

	// Now is the clock used for names and archive subdirectories.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, archiveDir, importArchiveDir string) *FileManager {
	return &FileManager{
		OutputDir:        outputDir,
		ArchiveDir:       archiveDir,
		ImportArchiveDir: importArchiveDir,
		Now:              time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all configured directories. Empty entries are
// skipped.
func (fm *FileManager) EnsureDirectories(extra ...string) error {
	dirs := append([]string{fm.OutputDir, fm.ArchiveDir, fm.ImportArchiveDir}, extra...)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// WriteOutput writes data to name inside OutputDir. An existing file of the
// same name is archived first.
//
// RETURNS:
//   - The path written.
//   - An error if archival or writing fails; the earlier file is then left
//     in the archive and no partial output exists.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	path := filepath.Join(fm.OutputDir, name)

	if FileExists(path) && fm.ArchiveDir != "" {
		if _, err := fm.moveToArchive(fm.ArchiveDir, path); err != nil {
			return "", fmt.Errorf("failed to archive previous %s: %w", name, err)
		}
	}

	if err := WriteFileAtomic(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteFileAtomic writes data to a temporary file in the target directory
// and renames it into place.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveImportFile moves an imported file to ImportArchiveDir.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveImportFile(filePath string) (string, error) {
	if fm.ImportArchiveDir == "" {
		return filePath, nil
	}
	return fm.moveToArchive(fm.ImportArchiveDir, filePath)
}

// moveToArchive moves filePath below archiveDir. An archived file of the
// same name gets a time suffix instead of being overwritten.
func (fm *FileManager) moveToArchive(archiveDir, filePath string) (string, error) {
	archivePath := fm.getArchivePath(archiveDir, filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		archivePath = strings.TrimSuffix(archivePath, ext) + "_" + fm.now().Format("150405.000000000") + ext
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// If rename fails (e.g., cross-device), try copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath constructs the archive path for a file.
func (fm *FileManager) getArchivePath(archiveDir, filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			archiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(archiveDir, fileName)
}

// CleanOldArchives removes archive files older than maxAge.
//
// RETURNS:
//   - The number of files removed.
//   - An error if cleaning fails. A missing directory removes nothing.
func CleanOldArchives(archiveDir string, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	if !FileExists(archiveDir) {
		return 0, nil
	}

	err := filepath.Walk(archiveDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		return nil
	})

	if err != nil {
		return removed, fmt.Errorf("failed to clean archives: %w", err)
	}

	return removed, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a name format.
//
// PARAMETERS:
//   - format: the name pattern. Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - YYYYMMDD_HHMMSS
//     {date}      - YYYYMMDD
//     {time}      - HHMMSS
//     plus any key of params, e.g. {variant} or {profile}
//   - ext: the extension to ensure, e.g. ".pdf"
//   - now: the time used for the time placeholders
//   - params: extra placeholder values
//
// EXAMPLE:
//
//	format: "{variant}_{timestamp}"
//	params: {"variant": "daily"}
//	output: "daily_20240115_143022.pdf"
func GenerateOutputFileName(format, ext string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = sanitizeName(value)
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// sanitizeName keeps placeholder values from escaping the output directory.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(s))
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary describes one "report" invocation covering several variants.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Generated []GeneratedReport
	Failed    []FailedReport
}

// GeneratedReport is a report written to disk.
type GeneratedReport struct {
	Variant string
	Path    string
	RunID   string
	Pages   int
	Rows    int
}

// FailedReport is a variant that could not be produced.
type FailedReport struct {
	Variant      string
	ErrorMessage string
}

// WriteSummaryLog writes a run summary next to the reports.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("report_summary_%s.txt", summary.StartTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"

	fmt.Fprintf(w, "Sales Report Engine - Run Summary\n%s\n", rule)
	fmt.Fprintf(w, "Run Information:\n")
	fmt.Fprintf(w, "  Start Time:  %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  End Time:    %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:    %s\n\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(w, "  Generated:   %d\n", len(summary.Generated))
	fmt.Fprintf(w, "  Failed:      %d\n\n", len(summary.Failed))

	if len(summary.Generated) > 0 {
		fmt.Fprintf(w, "Generated Reports:\n%s\n", strings.Repeat("-", 80))
		for _, g := range summary.Generated {
			fmt.Fprintf(w, "  Variant: %s\n", g.Variant)
			fmt.Fprintf(w, "  File:    %s\n", g.Path)
			fmt.Fprintf(w, "  Run ID:  %s\n", g.RunID)
			fmt.Fprintf(w, "  Rows:    %d\n", g.Rows)
			fmt.Fprintf(w, "  Pages:   %d\n\n", g.Pages)
		}
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintf(w, "Failed Reports:\n%s\n", strings.Repeat("-", 80))
		for _, f := range summary.Failed {
			fmt.Fprintf(w, "  Variant: %s\n", f.Variant)
			fmt.Fprintf(w, "  Error:   %s\n\n", f.ErrorMessage)
		}
	}

	fmt.Fprintf(w, "%sEnd of Summary\n", rule)

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}

	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
