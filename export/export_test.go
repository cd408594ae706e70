package export

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audithq/safety-audit/model"
)

func TestWordStartsWithZipMagic(t *testing.T) {
	buf, err := Word(inspectionRequest())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(buf), minDocumentSize)
	assert.True(t, bytes.HasPrefix(buf, zipMagic))
}

func TestWordDocumentContent(t *testing.T) {
	req := inspectionRequest()
	req.Responses["f1"] = model.Response{Value: "yes", Photos: []string{tinyPNG}}

	buf, err := Word(req)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	assert.True(t, names["[Content_Types].xml"])
	assert.True(t, names["word/document.xml"])
	assert.True(t, names["word/media/image1.png"])

	doc := readZipEntry(t, zr, "word/document.xml")
	assert.Contains(t, doc, "Monthly Fire Inspection")
	assert.Contains(t, doc, "General")
	assert.Contains(t, doc, "Is the exit clear?")
	assert.Contains(t, doc, ">yes<")
}

func TestWordDeterministic(t *testing.T) {
	req := inspectionRequest()
	a, err := Word(req)
	require.NoError(t, err)
	b, err := Word(req)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWordRejectsInvalidRequest(t *testing.T) {
	req := inspectionRequest()
	req.ClientName = ""
	_, err := Word(req)
	assert.ErrorIs(t, err, ErrInvalid)

	req = inspectionRequest()
	req.Fields[0].Question = ""
	_, err = Word(req)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyWord(t *testing.T) {
	assert.ErrorIs(t, VerifyWord([]byte("PK\x03\x04 too short")), ErrCorrupt)

	notZip := append([]byte("%PDF"), bytes.Repeat([]byte{0}, minDocumentSize)...)
	assert.ErrorIs(t, VerifyWord(notZip), ErrCorrupt)

	ok := append([]byte{0x50, 0x4B, 0x03, 0x04}, bytes.Repeat([]byte{0}, minDocumentSize)...)
	assert.NoError(t, VerifyWord(ok))
}

func TestPDFSmoke(t *testing.T) {
	req := inspectionRequest()
	req.Responses["f1"] = model.Response{Value: "yes", Photos: []string{tinyPNG}}

	buf, err := PDF(req)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf, []byte("%PDF-1.4")))
	assert.Contains(t, string(buf), "%%EOF")
	assert.Contains(t, string(buf), "/XObject")
}

func TestCSVRows(t *testing.T) {
	req := inspectionRequest()
	req.Fields[0].Scoring = &model.FieldScoring{Enabled: true, Points: 10}
	req.Responses["f1"] = model.Response{
		Value: "yes",
		Notes: "checked at 10am",
	}

	buf, err := CSV(req)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(buf)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"Is the exit clear?", "yes", "", "General", "checked at 10am", "10"}, rows[1])
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "acme-corp--q1-audit--", SanitizeFilename("Acme Corp: Q1 Audit!!"))
	assert.Equal(t, "acme-corp--q1-audit---2026-03-15.docx", Filename("Acme Corp: Q1 Audit!!", at, "docx"))
	assert.Equal(t, "audit-report-2026-03-15.pdf", Filename("", at, "pdf"))

	long := strings.Repeat("a", 80)
	assert.Len(t, SanitizeFilename(long), 50)
}

func readZipEntry(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(data)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}
