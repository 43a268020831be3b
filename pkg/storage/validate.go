package storage

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// ErrInvalidFile is wrapped by every validation failure
var ErrInvalidFile = errors.New("invalid file")

// magicBytes maps an allowed extension to its possible signatures
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF header
	".pdf":  {{0x25, 0x50, 0x44, 0x46}}, // %PDF
}

// strictMIMETypes never includes application/octet-stream
var strictMIMETypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// FileCheck is the outcome of ValidateFile
type FileCheck struct {
	Extension   string
	ContentType string
	IsImage     bool
}

// ValidateFile checks an upload in three layers: extension whitelist, magic
// bytes matching the extension, and the sniffed MIME type.
func ValidateFile(filename string, data []byte, detectedMIME string) (FileCheck, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return FileCheck{}, invalid("file has no extension")
	}
	want, ok := strictMIMETypes[ext]
	if !ok {
		return FileCheck{}, invalid("file extension not allowed: " + ext)
	}
	if !hasMagicBytes(ext, data) {
		return FileCheck{}, invalid("file content does not match extension")
	}
	// http.DetectContentType does not know webp in older runtimes
	if detectedMIME != want && !(ext == ".webp" && detectedMIME == "application/octet-stream") {
		return FileCheck{}, invalid("MIME type not allowed: " + detectedMIME)
	}

	return FileCheck{
		Extension:   ext,
		ContentType: want,
		IsImage:     strings.HasPrefix(want, "image/"),
	}, nil
}

func hasMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false
	}
	for _, sig := range magicBytes[ext] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// AllowedExtensions lists accepted extensions for error messages
func AllowedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"}
}

func invalid(msg string) error {
	return &validationError{msg: msg}
}

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrInvalidFile }

// SanitizeFilename reduces a client filename to ASCII letters, digits,
// underscores and dashes, keeping the lower-cased extension.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.ReplaceAll(strings.TrimSuffix(filename, filepath.Ext(filename)), " ", "_")

	var result strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		result.WriteString("file")
	}
	if _, ok := strictMIMETypes[ext]; ok {
		result.WriteString(ext)
	}
	return result.String()
}
