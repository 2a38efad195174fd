package filex

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// ReadUpload reads a file that is about to be uploaded, refusing anything
// larger than maxSize bytes. The content type is sniffed from the data.
func ReadUpload(path string, maxSize int64) (name, contentType string, data []byte, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", "", nil, err
	}
	if fi.IsDir() {
		return "", "", nil, fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && fi.Size() > maxSize {
		return "", "", nil, fmt.Errorf("%s is %d bytes, limit is %d", path, fi.Size(), maxSize)
	}
	data, err = os.ReadFile(path)
	if err != nil {
		return "", "", nil, err
	}
	return filepath.Base(path), http.DetectContentType(data), data, nil
}
