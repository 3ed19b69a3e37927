// Package imageinput validates uploaded images before they reach the
// classifier.
package imageinput

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxBytes is the largest accepted upload, 5 MiB.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

var (
	ErrEmptyImage = errors.New("image is empty")
	ErrTooLarge   = errors.New("image is too large")
	ErrNotImage   = errors.New("file is not an image")
)

// Validate checks size and content type and returns the detected MIME type.
// A non-positive maxBytes means DefaultMaxBytes.
func Validate(data []byte, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return "", ErrEmptyImage
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}
	return mtype.String(), nil
}

// Read reads an image from r and validates it. At most maxBytes+1 bytes are
// consumed, so an oversized body is rejected without buffering all of it.
func Read(r io.Reader, maxBytes int64) ([]byte, string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	mime, err := Validate(data, maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, mime, nil
}

// DataURL encodes the image as a data URL suitable for vision model input.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
