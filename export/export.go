// Package export turns a filled-in audit into a downloadable document. The
// pipeline is strictly sequential and pure: normalize photo payloads, build
// format-agnostic content blocks, serialize into the target format. Photo
// failures drop the photo and continue; packaging failures abort.
package export

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	MIMEWord = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEPDF  = "application/pdf"
	MIMECSV  = "text/csv"
)

// ErrCorrupt marks a generated buffer that failed the post-generation
// integrity check. The partial buffer is never handed to the caller.
var ErrCorrupt = errors.New("generated document failed integrity check")

const minDocumentSize = 100

// zip local-file-header magic; every valid docx starts with it
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// Word generates the .docx rendition of the audit.
func Word(req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	photos, _ := NormalizeResponses(req.Responses)
	buf, err := renderWord(BuildBlocks(req, photos))
	if err != nil {
		return nil, fmt.Errorf("export.word: %w", err)
	}
	if err := VerifyWord(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// PDF generates the PDF rendition of the audit.
func PDF(req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	photos, _ := NormalizeResponses(req.Responses)
	buf, err := renderPDF(req, BuildBlocks(req, photos))
	if err != nil {
		return nil, fmt.Errorf("export.pdf: %w", err)
	}
	return buf, nil
}

// CSV generates the flat tabular rendition of the audit.
func CSV(req Request) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	buf, err := renderCSV(req)
	if err != nil {
		return nil, fmt.Errorf("export.csv: %w", err)
	}
	return buf, nil
}

// VerifyWord runs the integrity checks a caller must apply before returning
// a Word buffer: plausible size and the zip magic number prefix.
func VerifyWord(buf []byte) error {
	if len(buf) < minDocumentSize {
		return fmt.Errorf("%w: implausible size %d", ErrCorrupt, len(buf))
	}
	if !bytes.HasPrefix(buf, zipMagic) {
		return fmt.Errorf("%w: bad magic number", ErrCorrupt)
	}
	return nil
}
