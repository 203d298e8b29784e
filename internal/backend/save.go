package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Downloader fetches stored files
type Downloader interface {
	Download(ctx context.Context, filename string, w io.Writer) (int64, error)
}

// SaveFile downloads filename into dest, which may be a directory or a file
// path, and returns the path written
func SaveFile(ctx context.Context, d Downloader, filename, dest string) (string, int64, error) {
	if dest == "" {
		dest = "."
	}

	target := dest
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		target = filepath.Join(dest, filepath.Base(filename))
	}

	// Write to a partial file so a failed download never leaves a truncated target
	tempPath := target + ".part"
	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := d.Download(ctx, filename, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write file: %w", closeErr)
	}
	if err != nil {
		os.Remove(tempPath)
		return "", 0, err
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return "", 0, fmt.Errorf("failed to rename temp file: %w", err)
	}
	return target, n, nil
}
