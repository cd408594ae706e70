package export

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

	"github.com/audithq/safety-audit/log"
	"github.com/audithq/safety-audit/model"
)

// Display bounds for embedded photos, in logical units (px for Word, pt for PDF).
const (
	MaxImageWidth  = 400
	MaxImageHeight = 300
)

var ErrUnknownImage = errors.New("could not determine image type")

// Photo is a validated, decodable image: raw bytes plus detected MIME type
// and intrinsic pixel dimensions.
type Photo struct {
	MIME   string
	Data   []byte
	Width  int
	Height int
}

func (p Photo) DataURI() string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Classification rules, evaluated in priority order: well-known base64 text
// prefixes first, decoded magic numbers as fallback.
var base64Prefixes = []struct {
	prefix string
	mime   string
}{
	{"iVBOR", "image/png"},
	{"/9j/", "image/jpeg"},
	{"R0lGOD", "image/gif"},
}

var byteMagics = []struct {
	magic []byte
	mime  string
}{
	{[]byte{0x89, 0x50}, "image/png"},
	{[]byte{0xFF, 0xD8}, "image/jpeg"},
}

// classify resolves a photo payload to a MIME type and its bare base64 data.
// A payload already carrying a data-URI declaration is trusted as-is.
func classify(payload string) (mime, data string, err error) {
	if strings.HasPrefix(payload, "data:image/") {
		comma := strings.Index(payload, ",")
		semi := strings.Index(payload, ";")
		if comma < 0 || semi < 0 || semi > comma {
			return "", "", fmt.Errorf("%w: malformed data URI", ErrUnknownImage)
		}
		return payload[len("data:"):semi], payload[comma+1:], nil
	}

	for _, rule := range base64Prefixes {
		if strings.HasPrefix(payload, rule.prefix) {
			return rule.mime, payload, nil
		}
	}

	raw, decodeErr := base64.StdEncoding.DecodeString(payload)
	if decodeErr != nil {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownImage, decodeErr)
	}
	for _, rule := range byteMagics {
		if bytes.HasPrefix(raw, rule.magic) {
			return rule.mime, payload, nil
		}
	}

	return "", "", ErrUnknownImage
}

// NormalizePhoto validates one photo payload, returning its decoded bytes,
// detected MIME type and intrinsic dimensions, or an error if the payload
// cannot be classified or decoded.
func NormalizePhoto(payload string) (Photo, error) {
	if payload == "" {
		return Photo{}, fmt.Errorf("%w: empty payload", ErrUnknownImage)
	}

	mime, data, err := classify(payload)
	if err != nil {
		return Photo{}, err
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %s", ErrUnknownImage, err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return Photo{}, fmt.Errorf("%w: %s", ErrUnknownImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Photo{}, fmt.Errorf("%w: invalid dimensions", ErrUnknownImage)
	}

	return Photo{MIME: mime, Data: raw, Width: cfg.Width, Height: cfg.Height}, nil
}

// NormalizeResponses validates every photo of every response. Invalid photos
// are dropped, never fatal; the returned counts record drops per field.
func NormalizeResponses(responses map[string]model.Response) (photos map[string][]Photo, dropped map[string]int) {
	photos = map[string][]Photo{}
	dropped = map[string]int{}

	for fieldId, resp := range responses {
		for _, payload := range resp.Photos {
			photo, err := NormalizePhoto(payload)
			if err != nil {
				log.Warnf("export.normalize_photo: field %s: %s", fieldId, err)
				dropped[fieldId]++
				continue
			}
			photos[fieldId] = append(photos[fieldId], photo)
		}
		if n := dropped[fieldId]; n > 0 {
			log.Warnf("export.normalize_photo: skipped %d invalid photos in field %s", n, fieldId)
		}
	}

	return photos, dropped
}
