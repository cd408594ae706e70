package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

var csvHeader = []string{"Question", "Response", "AI Recommendation", "Section", "Notes", "Score"}

// renderCSV flattens the audit into one row per field, in section order,
// using the same traversal as the document builders.
func renderCSV(req Request) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, section := range req.Sections {
		for _, field := range req.Fields {
			if field.SectionID != section.ID {
				continue
			}

			resp := req.Responses[field.ID]
			score := ""
			if field.Scoring != nil && field.Scoring.Enabled {
				score = strconv.FormatFloat(field.Scoring.Points, 'f', -1, 64)
			}

			err := w.Write([]string{
				SanitizeText(field.Question),
				SanitizeText(resp.Value),
				SanitizeText(resp.AIRecommendation),
				SanitizeText(section.Title),
				SanitizeText(resp.Notes),
				score,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
