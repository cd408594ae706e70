package export

// Content blocks are the format-agnostic middle stage of the pipeline: the
// Word, PDF and CSV renderers all consume the same ordered sequence.

type BlockKind int

const (
	BlockTitle BlockKind = iota
	BlockSectionHeading
	BlockQuestion
	BlockAnswer
	BlockPhotoGrid
)

type Block struct {
	Kind   BlockKind
	Text   string
	Photos []Photo
}

const defaultTitle = "Audit Report"

// BuildBlocks walks sections in template order and, within each section,
// fields in their original relative order. A field with no response still
// renders its question; answer and photo blocks are emitted only when there
// is a non-empty value or at least one surviving photo. A section with no
// fields still renders its heading.
func BuildBlocks(req Request, photos map[string][]Photo) []Block {
	title := SanitizeText(req.TemplateName)
	if title == "" {
		title = defaultTitle
	}
	blocks := []Block{{Kind: BlockTitle, Text: title}}

	for _, section := range req.Sections {
		blocks = append(blocks, Block{Kind: BlockSectionHeading, Text: SanitizeText(section.Title)})

		for _, field := range req.Fields {
			if field.SectionID != section.ID {
				continue
			}

			blocks = append(blocks, Block{Kind: BlockQuestion, Text: SanitizeText(field.Question)})

			resp, ok := req.Responses[field.ID]
			if !ok {
				continue
			}
			if value := SanitizeText(resp.Value); value != "" {
				blocks = append(blocks, Block{Kind: BlockAnswer, Text: value})
			}
			if ph := photos[field.ID]; len(ph) > 0 {
				blocks = append(blocks, Block{Kind: BlockPhotoGrid, Photos: ph})
			}
		}
	}

	return blocks
}
