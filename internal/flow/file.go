package flow

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DefaultAllowedExtensions lists the domain list formats the backend accepts
var DefaultAllowedExtensions = []string{".txt", ".csv"}

// SelectedFile is a user-chosen domains file
type SelectedFile struct {
	Name     string
	Content  []byte
	MIMEType string
}

// FileInfo describes a selected file without its content
type FileInfo struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mime_type"`
}

// Size is the content length in bytes
func (f SelectedFile) Size() int64 {
	return int64(len(f.Content))
}

// Info returns the file's metadata
func (f SelectedFile) Info() *FileInfo {
	return &FileInfo{Name: f.Name, Size: f.Size(), MIMEType: f.MIMEType}
}

// OpenFile reads a local file into a SelectedFile
func OpenFile(path string) (SelectedFile, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))

	info, err := os.Stat(cleanPath)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("cannot access file: %w", err)
	}
	if info.IsDir() {
		return SelectedFile{}, fmt.Errorf("%s is a directory, select a file", cleanPath)
	}

	// #nosec G304 - the user picks the file to upload
	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return SelectedFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	return SelectedFile{
		Name:     filepath.Base(cleanPath),
		Content:  content,
		MIMEType: detectMIMEType(cleanPath, content),
	}, nil
}

func detectMIMEType(path string, content []byte) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return http.DetectContentType(content)
}

// validateSelection applies the drop rules: exactly one file with an
// allowed extension.
func validateSelection(files []SelectedFile, allowed []string) (SelectedFile, error) {
	switch {
	case len(files) == 0:
		return SelectedFile{}, NewValidationError("file", "", "No file selected")
	case len(files) > 1:
		return SelectedFile{}, NewValidationError("file", fmt.Sprintf("%d files", len(files)), "Please drop a single file")
	}

	file := files[0]
	ext := strings.ToLower(filepath.Ext(file.Name))
	for _, a := range allowed {
		if ext == strings.ToLower(a) {
			return file, nil
		}
	}

	shown := ext
	if shown == "" {
		shown = "no extension"
	}
	return SelectedFile{}, NewValidationError("file", file.Name,
		fmt.Sprintf("Invalid file type: %s (allowed: %s)", shown, strings.Join(allowed, ", ")))
}
