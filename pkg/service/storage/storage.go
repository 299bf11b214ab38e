package storage

import (
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrEmptyFile       = goerr.New("file is empty")
	ErrMissingFilename = goerr.New("filename is required")
)

// Context keys for error values
const (
	BucketKey   = "bucket"
	ObjectKey   = "object"
	FilenameKey = "filename"
)

func checkUpload(data []byte, filename string) error {
	if strings.TrimSpace(filename) == "" {
		return goerr.Wrap(ErrMissingFilename, "upload rejected")
	}
	if len(data) == 0 {
		return goerr.Wrap(ErrEmptyFile, "upload rejected", goerr.V(FilenameKey, filename))
	}
	return nil
}

// contentType prefers the extension and falls back to sniffing the data
func contentType(filename string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}
