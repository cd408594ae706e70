package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// Word packager. A .docx file is a zip package holding the document XML,
// a styles part, embedded media and the relationship files stitching them
// together. The package is written part by part into one in-memory buffer;
// identical block sequences produce byte-identical paragraph structure.

const (
	twipsPerInch = 1440
	emuPerPixel  = 9525
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Default Extension="png" ContentType="image/png"/><Default Extension="jpeg" ContentType="image/jpeg"/><Default Extension="gif" ContentType="image/gif"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/><Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/></Types>`

const docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// Default run font plus the single heading style the section titles use.
const docxStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Segoe UI" w:hAnsi="Segoe UI" w:cs="Segoe UI"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults><w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:pPr><w:keepNext/><w:outlineLvl w:val="0"/></w:pPr><w:rPr><w:b/><w:sz w:val="32"/></w:rPr></w:style></w:styles>`

type docxMedia struct {
	name string // media/imageN.ext
	data []byte
}

func renderWord(blocks []Block) ([]byte, error) {
	var body strings.Builder
	var media []docxMedia
	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	rels.WriteString("\n")
	rels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)

	imageCount := 0
	firstSection := true
	for _, block := range blocks {
		switch block.Kind {
		case BlockTitle:
			body.WriteString(`<w:p><w:pPr><w:jc w:val="center"/><w:spacing w:after="400"/></w:pPr><w:r><w:rPr><w:b/><w:sz w:val="32"/></w:rPr><w:t xml:space="preserve">`)
			body.WriteString(xmlEsc(block.Text))
			body.WriteString(`</w:t></w:r></w:p>`)

		case BlockSectionHeading:
			body.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading1"/>`)
			if !firstSection {
				body.WriteString(`<w:pageBreakBefore/>`)
			}
			firstSection = false
			body.WriteString(`<w:spacing w:before="400" w:after="200"/></w:pPr><w:r><w:t xml:space="preserve">`)
			body.WriteString(xmlEsc(block.Text))
			body.WriteString(`</w:t></w:r></w:p>`)

		case BlockQuestion:
			body.WriteString(`<w:p><w:pPr><w:spacing w:before="200" w:after="100"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
			body.WriteString(xmlEsc(block.Text))
			body.WriteString(`</w:t></w:r></w:p>`)

		case BlockAnswer:
			body.WriteString(`<w:p><w:pPr><w:spacing w:before="100" w:after="200"/><w:ind w:left="720"/></w:pPr><w:r><w:t xml:space="preserve">`)
			body.WriteString(xmlEsc(block.Text))
			body.WriteString(`</w:t></w:r></w:p>`)

		case BlockPhotoGrid:
			if len(block.Photos) == 0 {
				continue
			}
			body.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/><w:jc w:val="center"/><w:tblBorders><w:top w:val="none"/><w:bottom w:val="none"/><w:left w:val="none"/><w:right w:val="none"/><w:insideH w:val="none"/><w:insideV w:val="none"/></w:tblBorders><w:tblLayout w:type="fixed"/></w:tblPr>`)
			for _, photo := range block.Photos {
				imageCount++
				name := fmt.Sprintf("media/image%d.%s", imageCount, mediaExt(photo.MIME))
				relId := fmt.Sprintf("rId%d", imageCount+1)
				media = append(media, docxMedia{name: name, data: photo.Data})
				rels.WriteString(fmt.Sprintf(`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="%s"/>`, relId, name))

				w, h := ScaleToFit(photo.Width, photo.Height)
				body.WriteString(`<w:tr><w:tc><w:tcPr><w:tcW w:w="5000" w:type="pct"/><w:vAlign w:val="center"/></w:tcPr>`)
				body.WriteString(`<w:p><w:pPr><w:jc w:val="center"/><w:spacing w:after="200"/></w:pPr><w:r>`)
				body.WriteString(inlineImageXML(relId, imageCount, w, h))
				body.WriteString(`</w:r></w:p></w:tc></w:tr>`)
			}
			body.WriteString(`</w:tbl>`)
		}
	}
	rels.WriteString(`</Relationships>`)

	var document strings.Builder
	document.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	document.WriteString("\n")
	document.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"><w:body>`)
	document.WriteString(body.String())
	document.WriteString(fmt.Sprintf(`<w:sectPr><w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d"/></w:sectPr>`,
		twipsPerInch, twipsPerInch, twipsPerInch, twipsPerInch))
	document.WriteString(`</w:body></w:document>`)

	return writeDocxPackage(document.String(), rels.String(), media)
}

func inlineImageXML(relId string, id, width, height int) string {
	cx := width * emuPerPixel
	cy := height * emuPerPixel
	return fmt.Sprintf(`<w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/><a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr><pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill><pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>`,
		cx, cy, id, id, id, id, relId, cx, cy)
}

func mediaExt(mime string) string {
	switch mime {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "jpeg"
	}
}

func writeDocxPackage(document, documentRels string, media []docxMedia) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRootRels)},
		{"word/document.xml", []byte(document)},
		{"word/_rels/document.xml.rels", []byte(documentRels)},
		{"word/styles.xml", []byte(docxStyles)},
	}
	for _, m := range media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/" + m.name, m.data})
	}

	for _, part := range parts {
		// fixed header keeps output deterministic across runs
		w, err := zw.CreateHeader(&zip.FileHeader{Name: part.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, fmt.Errorf("docx part %s: %w", part.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx package: %w", err)
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func xmlEsc(s string) string {
	return xmlEscaper.Replace(s)
}
