package blm

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// CompanionZipPath returns the path of the zip archive shipped alongside a BLM
// file: the same name with a .zip extension
func CompanionZipPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".zip"
}

// Attachment is one entry of a companion archive, open for reading
type Attachment struct {
	io.ReadCloser
	Name string
	Size int64
}

// OpenAttachment opens the entry called name in the archive at zipPath.
// The caller closes the returned attachment.
func OpenAttachment(zipPath, name string) (*Attachment, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	entry := findEntry(&archive.Reader, name)
	if entry == nil {
		archive.Close()
		return nil, fmt.Errorf("%w: %s", os.ErrNotExist, name)
	}
	rc, err := entry.Open()
	if err != nil {
		archive.Close()
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	return &Attachment{
		ReadCloser: &attachmentCloser{ReadCloser: rc, archive: archive},
		Name:       entry.Name,
		Size:       int64(entry.UncompressedSize64),
	}, nil
}

// ExtractAttachments writes the comma-separated entries in names from the archive
// at zipPath into destDir. The result has one path per name, in order; names with
// no matching entry yield "".
func ExtractAttachments(zipPath, names, destDir string) ([]string, error) {
	archive, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer archive.Close()

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	var paths []string
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		entry := findEntry(&archive.Reader, name)
		if name == "" || entry == nil {
			paths = append(paths, "")
			continue
		}

		path, err := extract(entry, destDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func findEntry(r *zip.Reader, name string) *zip.File {
	for _, f := range r.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// extract copies entry into dir, keeping the entry's folders. The name is cleaned
// as if rooted so it cannot climb out of dir.
func extract(entry *zip.File, dir string) (string, error) {
	rel := path.Clean("/" + strings.ReplaceAll(entry.Name, "\\", "/"))
	if rel == "/" {
		return "", fmt.Errorf("invalid entry name %q", entry.Name)
	}
	target := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
	}

	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", entry.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}
	return target, out.Close()
}

// attachmentCloser closes the archive along with the entry
type attachmentCloser struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (c *attachmentCloser) Close() error {
	err := c.ReadCloser.Close()
	if cerr := c.archive.Close(); err == nil {
		err = cerr
	}
	return err
}
