// Package media resolves local media files and produces JPEG frames for the
// live stream.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/haloguard/haloguard-cli/internal/domain"
)

const sniffLen = 512

// extensionTypes covers containers the platform mime tables often lack.
var extensionTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
}

// Open checks that path is a readable regular file and resolves its declared
// content type from the extension, falling back to content sniffing.
func Open(path string) (domain.MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.MediaFile{}, fmt.Errorf("stat media %q: %w", path, err)
	}
	if info.IsDir() {
		return domain.MediaFile{}, fmt.Errorf("media %q is a directory", path)
	}

	contentType, err := ContentType(path)
	if err != nil {
		return domain.MediaFile{}, err
	}

	return domain.NewMediaFile(path, contentType), nil
}

func ContentType(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return stripParams(byExt), nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open media %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read media %q: %w", path, err)
	}

	sniffed := stripParams(http.DetectContentType(head[:n]))
	if sniffed == "application/octet-stream" || strings.HasPrefix(sniffed, "text/plain") {
		if known, ok := extensionTypes[ext]; ok {
			return known, nil
		}
	}

	return sniffed, nil
}

func stripParams(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mediaType
}
