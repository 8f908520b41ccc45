// Package qr renders QR codes as PNG data URLs.
package qr

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

// PNG encodes content into a square PNG of Size pixels.
type PNG struct {
	Size  int
	Level qrcode.RecoveryLevel
}

// Default is a 256px code with medium error correction.
var Default = PNG{Size: 256, Level: qrcode.Medium}

// DataURL returns content as a base64 PNG data URL.
func (p PNG) DataURL(content string) (string, error) {
	size := p.Size
	if size <= 0 {
		size = Default.Size
	}
	png, err := qrcode.Encode(content, p.Level, size)
	if err != nil {
		return "", err
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
