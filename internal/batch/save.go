package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	docimaging "github.com/ironsheep/docscan/internal/imaging"
)

// maxNameAttempts bounds the suffixes tried for one crop before giving up.
const maxNameAttempts = 1000

// SaveDocuments writes each crop of r into dir as <base>_<n><ext>, where
// base is the source file name without extension and n counts from 1 in
// result order. Existing files are never replaced: when a name is taken
// the crop is written as <base>_<n>-2<ext>, <base>_<n>-3<ext> and so on.
// It returns the written paths.
func SaveDocuments(dir string, r Result) ([]string, error) {
	if len(r.Documents) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path))
	paths := make([]string, 0, len(r.Documents))
	for i, doc := range r.Documents {
		ext := docimaging.JPEG.Ext()
		if doc.MimeType == docimaging.PNG.MimeType() {
			ext = docimaging.PNG.Ext()
		}
		out, err := writeNew(dir, fmt.Sprintf("%s_%d", base, i+1), ext, doc.ImageData)
		if err != nil {
			return paths, err
		}
		paths = append(paths, out)
	}
	return paths, nil
}

// writeNew creates the first free name among stem+ext, stem-2+ext, ...
// in dir and writes data to it.
func writeNew(dir, stem, ext string, data []byte) (string, error) {
	for n := 1; n <= maxNameAttempts; n++ {
		name := stem + ext
		if n > 1 {
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		out := filepath.Join(dir, name)
		f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", out, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", out, err)
		}
		return out, nil
	}
	return "", fmt.Errorf("no free file name for %s%s in %s", stem, ext, dir)
}
