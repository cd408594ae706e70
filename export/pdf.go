package export

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"strings"
)

// PDF renderer. Unlike the Word path there is no container format to fill
// in, just sequential drawing commands: the file is a flat object table
// (catalog, page tree, fonts, image XObjects, per-page content streams)
// plus a cross-reference table locating every object.

const (
	pdfPageW  = 595.28 // A4 portrait, points
	pdfPageH  = 841.89
	pdfMargin = 50.0

	pdfFontRegular = "F1" // Helvetica
	pdfFontBold    = "F2" // Helvetica-Bold
)

type pdfImageRef struct {
	name  string
	photo Photo
}

type pdfLayout struct {
	pages  []*bytes.Buffer
	cur    *bytes.Buffer
	y      float64
	images []pdfImageRef
}

func newPDFLayout() *pdfLayout {
	l := &pdfLayout{}
	l.newPage()
	return l
}

func (l *pdfLayout) newPage() {
	l.cur = &bytes.Buffer{}
	l.pages = append(l.pages, l.cur)
	l.y = pdfPageH - pdfMargin
}

func (l *pdfLayout) ensure(height float64) {
	if l.y-height < pdfMargin {
		l.newPage()
	}
}

// Helvetica has no metrics here; 0.5em per char is a serviceable estimate
// for wrapping and centering.
func approxTextWidth(s string, size float64) float64 {
	return float64(len(s)) * size * 0.5
}

func wrapText(s string, size, width float64) []string {
	maxChars := int(width / (size * 0.5))
	if maxChars < 1 {
		maxChars = 1
	}

	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len(line)+1+len(word) > maxChars {
				lines = append(lines, line)
				line = word
				continue
			}
			line += " " + word
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

var pdfTextEscaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func (l *pdfLayout) text(font string, size, indent float64, s string, center bool) {
	width := pdfPageW - 2*pdfMargin - indent
	for _, line := range wrapText(s, size, width) {
		l.ensure(size * 1.4)
		l.y -= size * 1.2

		x := pdfMargin + indent
		if center {
			if w := approxTextWidth(line, size); w < pdfPageW {
				x = (pdfPageW - w) / 2
			}
		}
		fmt.Fprintf(l.cur, "BT /%s %.1f Tf %.2f %.2f Td (%s) Tj ET\n",
			font, size, x, l.y, pdfTextEscaper.Replace(line))
	}
}

func (l *pdfLayout) space(pts float64) {
	l.y -= pts
}

func (l *pdfLayout) image(photo Photo) {
	w, h := ScaleToFit(photo.Width, photo.Height)
	fw, fh := float64(w), float64(h)
	l.ensure(fh + 10)
	l.y -= fh

	name := fmt.Sprintf("Im%d", len(l.images)+1)
	l.images = append(l.images, pdfImageRef{name: name, photo: photo})

	x := (pdfPageW - fw) / 2
	fmt.Fprintf(l.cur, "q\n%.2f 0 0 %.2f %.2f %.2f cm\n/%s Do\nQ\n", fw, fh, x, l.y, name)
	l.y -= 10
}

func renderPDF(req Request, blocks []Block) ([]byte, error) {
	l := newPDFLayout()

	firstSection := true
	for _, block := range blocks {
		switch block.Kind {
		case BlockTitle:
			l.text(pdfFontBold, 18, 0, block.Text, true)
			l.space(10)
			l.text(pdfFontRegular, 12, 0, "Client: "+SanitizeText(req.ClientName), false)
			l.text(pdfFontRegular, 12, 0, "Auditor: "+SanitizeText(req.AuditorName), false)
			l.text(pdfFontRegular, 12, 0, "Date: "+datePart(req.CompletedAt), false)
			l.space(10)

		case BlockSectionHeading:
			if !firstSection {
				l.newPage()
			}
			firstSection = false
			l.text(pdfFontBold, 14, 0, block.Text, false)
			l.space(8)

		case BlockQuestion:
			l.space(4)
			l.text(pdfFontBold, 12, 0, block.Text, false)

		case BlockAnswer:
			l.text(pdfFontRegular, 11, 20, block.Text, false)
			l.space(4)

		case BlockPhotoGrid:
			for _, photo := range block.Photos {
				l.image(photo)
			}
		}
	}

	return assemblePDF(l)
}

func datePart(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

// Object layout: 1 catalog, 2 page tree, 3-4 fonts, 5 shared resources,
// then one object per image, then content stream + page pairs.
func assemblePDF(l *pdfLayout) ([]byte, error) {
	const firstImageObj = 6
	firstPageObj := firstImageObj + len(l.images)

	contentObj := func(page int) int { return firstPageObj + 2*page }
	pageObj := func(page int) int { return firstPageObj + 2*page + 1 }

	var kids []string
	for i := range l.pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObj(i)))
	}

	var xobjects strings.Builder
	for i, img := range l.images {
		fmt.Fprintf(&xobjects, "/%s %d 0 R ", img.name, firstImageObj+i)
	}

	objects := [][]byte{
		[]byte("<< /Type /Catalog /Pages 2 0 R >>"),
		[]byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(l.pages))),
		[]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"),
		[]byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold >>"),
		[]byte(fmt.Sprintf("<< /Font << /%s 3 0 R /%s 4 0 R >> /XObject << %s>> >>",
			pdfFontRegular, pdfFontBold, xobjects.String())),
	}

	for _, img := range l.images {
		obj, err := pdfImageObject(img.photo)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	for i, page := range l.pages {
		compressed, err := zlibCompress(page.Bytes())
		if err != nil {
			return nil, fmt.Errorf("pdf content stream: %w", err)
		}
		stream := fmt.Sprintf("<< /Length %d /Filter /FlateDecode >>\nstream\n", len(compressed))
		content := append([]byte(stream), compressed...)
		content = append(content, []byte("\nendstream")...)
		objects = append(objects, content)

		objects = append(objects, []byte(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources 5 0 R /Contents %d 0 R >>",
			pdfPageW, pdfPageH, contentObj(i))))
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(obj)
		buf.WriteString("\nendobj\n")
	}

	xrefPos := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefPos)

	return buf.Bytes(), nil
}

// JPEG bytes embed verbatim behind DCTDecode; PNG and GIF are decoded and
// re-emitted as zlib-compressed raw RGB, which every PDF reader accepts
// without the PNG predictor machinery.
func pdfImageObject(photo Photo) ([]byte, error) {
	if photo.MIME == "image/jpeg" {
		header := fmt.Sprintf(
			"<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /DCTDecode /Length %d >>\nstream\n",
			photo.Width, photo.Height, len(photo.Data))
		obj := append([]byte(header), photo.Data...)
		return append(obj, []byte("\nendstream")...), nil
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		return nil, fmt.Errorf("pdf image decode: %w", err)
	}

	bounds := img.Bounds()
	rgb := make([]byte, 0, bounds.Dx()*bounds.Dy()*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	compressed, err := zlibCompress(rgb)
	if err != nil {
		return nil, fmt.Errorf("pdf image compress: %w", err)
	}

	header := fmt.Sprintf(
		"<< /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter /FlateDecode /Length %d >>\nstream\n",
		bounds.Dx(), bounds.Dy(), len(compressed))
	obj := append([]byte(header), compressed...)
	return append(obj, []byte("\nendstream")...), nil
}

func zlibCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
