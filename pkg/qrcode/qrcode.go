// Package qrcode generates QR code images, primarily for presenting
// authenticator enrollment URIs, either as raw PNG bytes or as a
// data-URI string that can be embedded directly into HTML pages.
//
// The package is a thin wrapper around github.com/skip2/go-qrcode that
// adds defaults and input validation.
//
// # Usage
//
//	png, err := qrcode.Generate("otpauth://totp/...", 256)
//
//	dataURI, err := qrcode.DataURI("otpauth://totp/...", 256)
//	// <img src="{{dataURI}}" alt="Scan with your authenticator app">
package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty or only whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrGenerationFailed is returned when the underlying library fails.
	ErrGenerationFailed = errors.New("failed to generate QR code")
)

// defaultSize is the size in pixels used when no size is specified
const defaultSize = 256

// Generate creates a QR code image in PNG format with the given content.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrGenerationFailed, err)
	}
	return png, nil
}

// DataURI creates a base64 data-URI representation of a QR code image
// with the given content, suitable for an <img> src attribute.
func DataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
