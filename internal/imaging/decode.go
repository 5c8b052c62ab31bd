// Package imaging turns encoded image payloads into normalized model input
// tensors.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// ErrDecode marks payloads that could not be turned into an image: empty
// input, invalid base64, or bytes that are not a recognized image container.
var ErrDecode = errors.New("image decode failed")

// Decode parses a base64-encoded image payload. A data-URL header
// ("data:image/png;base64,...") is stripped when present, since browser
// canvas exports carry one.
func Decode(payload string) (image.Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	if strings.HasPrefix(payload, "data:") {
		comma := strings.Index(payload, ",")
		if comma < 0 {
			return nil, fmt.Errorf("%w: data URL has no payload", ErrDecode)
		}
		payload = payload[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64: %v", ErrDecode, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: unrecognized image data: %v", ErrDecode, err)
	}
	return img, nil
}
