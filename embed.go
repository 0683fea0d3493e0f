package htmlrender

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ImageEmbedder turns opaque content into an image reference that can be
// placed in an HTML attribute, typically a data URI.
type ImageEmbedder interface {
	Embed(content string, size int) (string, error)
}

// QREmbedder renders content as a PNG QR code data URI.
type QREmbedder struct {
	Level qrcode.RecoveryLevel
}

// Embed implements [ImageEmbedder].
func (q QREmbedder) Embed(content string, size int) (string, error) {
	png, err := qrcode.Encode(content, q.Level, size)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// embedImages replaces every occurrence of the QR placeholder in html. A
// document without the placeholder is returned unchanged.
func embedImages(html string, qr *QRCode, e ImageEmbedder) (string, error) {
	if qr == nil || !strings.Contains(html, qr.Placeholder) {
		return html, nil
	}
	ref, err := e.Embed(qr.Content, qr.Size)
	if err != nil {
		return "", newError(KindValidation, err, "qr code")
	}
	return strings.ReplaceAll(html, qr.Placeholder, ref), nil
}
