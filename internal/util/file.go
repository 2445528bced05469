package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType sniffs the content type from the first 512 bytes and
// checks it against the allowed prefixes or exact types.
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsAudio reports whether the sniffed MIME type is playable audio.
// Browsers upload some audio containers (ogg, mp4) as video/*.
func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") ||
		mimeType == "video/ogg" || mimeType == "video/mp4" ||
		mimeType == "application/octet-stream"
}
