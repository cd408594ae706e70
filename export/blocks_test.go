package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audithq/safety-audit/model"
)

func inspectionRequest() Request {
	return Request{
		TemplateName: "Monthly Fire Inspection",
		ClientName:   "Acme Corp",
		AuditorName:  "Jane Doe",
		CompletedAt:  "2026-03-15T10:00:00Z",
		Sections: []model.SectionRef{
			{ID: "s1", Title: "General"},
		},
		Fields: []model.FieldRef{
			{ID: "f1", SectionID: "s1", Question: "Is the exit clear?", Type: model.FieldYesNo},
		},
		Responses: map[string]model.Response{
			"f1": {Value: "yes"},
		},
	}
}

func TestBuildBlocksScenario(t *testing.T) {
	req := inspectionRequest()
	blocks := BuildBlocks(req, nil)

	require.Len(t, blocks, 4)
	assert.Equal(t, Block{Kind: BlockTitle, Text: "Monthly Fire Inspection"}, blocks[0])
	assert.Equal(t, Block{Kind: BlockSectionHeading, Text: "General"}, blocks[1])
	assert.Equal(t, Block{Kind: BlockQuestion, Text: "Is the exit clear?"}, blocks[2])
	assert.Equal(t, Block{Kind: BlockAnswer, Text: "yes"}, blocks[3])
}

func TestBuildBlocksDefaultTitle(t *testing.T) {
	req := inspectionRequest()
	req.TemplateName = "   "
	blocks := BuildBlocks(req, nil)
	assert.Equal(t, Block{Kind: BlockTitle, Text: "Audit Report"}, blocks[0])
}

func TestBuildBlocksQuestionWithoutResponse(t *testing.T) {
	req := inspectionRequest()
	req.Responses = nil
	blocks := BuildBlocks(req, nil)

	require.Len(t, blocks, 3)
	assert.Equal(t, BlockQuestion, blocks[2].Kind)
}

func TestBuildBlocksSkipsBlankAnswer(t *testing.T) {
	req := inspectionRequest()
	req.Responses = map[string]model.Response{"f1": {Value: "  <p></p>  "}}
	blocks := BuildBlocks(req, nil)

	for _, b := range blocks {
		assert.NotEqual(t, BlockAnswer, b.Kind)
	}
}

func TestBuildBlocksOmitsEmptyPhotoGrid(t *testing.T) {
	req := inspectionRequest()
	req.Responses = map[string]model.Response{
		"f1": {Value: "yes", Photos: []string{"garbage!!", "also-garbage"}},
	}

	photos, dropped := NormalizeResponses(req.Responses)
	assert.Equal(t, 2, dropped["f1"])

	blocks := BuildBlocks(req, photos)
	for _, b := range blocks {
		assert.NotEqual(t, BlockPhotoGrid, b.Kind)
	}
}

func TestBuildBlocksPhotoGridAfterAnswer(t *testing.T) {
	req := inspectionRequest()
	req.Responses = map[string]model.Response{
		"f1": {Value: "yes", Photos: []string{tinyPNG}},
	}

	photos, dropped := NormalizeResponses(req.Responses)
	assert.Empty(t, dropped)

	blocks := BuildBlocks(req, photos)
	require.Len(t, blocks, 5)
	assert.Equal(t, BlockPhotoGrid, blocks[4].Kind)
	assert.Len(t, blocks[4].Photos, 1)
}

// Field order within a section follows the request's relative field order,
// regardless of how fields of different sections are interleaved.
func TestBuildBlocksStableUnderFieldInterleaving(t *testing.T) {
	req := inspectionRequest()
	req.Sections = []model.SectionRef{
		{ID: "s1", Title: "General"},
		{ID: "s2", Title: "Electrical"},
	}
	f1 := model.FieldRef{ID: "f1", SectionID: "s1", Question: "Is the exit clear?", Type: model.FieldYesNo}
	f2 := model.FieldRef{ID: "f2", SectionID: "s1", Question: "Are extinguishers charged?", Type: model.FieldYesNo}
	f3 := model.FieldRef{ID: "f3", SectionID: "s2", Question: "Any exposed wiring?", Type: model.FieldText}

	req.Fields = []model.FieldRef{f1, f2, f3}
	ordered := BuildBlocks(req, nil)

	req.Fields = []model.FieldRef{f3, f1, f2}
	interleaved := BuildBlocks(req, nil)

	assert.Equal(t, ordered, interleaved)
}
