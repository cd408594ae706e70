package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldTypeValid(t *testing.T) {
	for _, ft := range []FieldType{FieldText, FieldNumber, FieldYesNo, FieldMultipleChoice,
		FieldChecklist, FieldDate, FieldSlider, FieldInstruction} {
		assert.True(t, ft.Valid(), string(ft))
	}
	assert.False(t, FieldType("SIGNATURE").Valid())
	assert.False(t, FieldType("").Valid())
}

func TestFieldTypeExpectsResponse(t *testing.T) {
	assert.False(t, FieldInstruction.ExpectsResponse())
	assert.True(t, FieldYesNo.ExpectsResponse())
	assert.True(t, FieldText.ExpectsResponse())
}

func TestOverallScore(t *testing.T) {
	audit := Audit{
		Fields: []FieldRef{
			{ID: "f1", Type: FieldYesNo, Scoring: &FieldScoring{Enabled: true, Points: 10}},
			{ID: "f2", Type: FieldYesNo, Scoring: &FieldScoring{Enabled: true, Points: 10}},
			{ID: "f3", Type: FieldText}, // unscored, ignored
		},
		Responses: map[string]Response{
			"f1": {Value: "yes"},
			"f2": {Value: "no"},
			"f3": {Value: "anything"},
		},
	}
	assert.Equal(t, 50, audit.OverallScore())
}

func TestOverallScoreWeighted(t *testing.T) {
	audit := Audit{
		Fields: []FieldRef{
			{ID: "f1", Type: FieldYesNo, Scoring: &FieldScoring{Enabled: true, Points: 10, Weight: 3}},
			{ID: "f2", Type: FieldYesNo, Scoring: &FieldScoring{Enabled: true, Points: 10}},
		},
		Responses: map[string]Response{
			"f1": {Value: "yes"},
			"f2": {Value: "no"},
		},
	}
	assert.Equal(t, 75, audit.OverallScore())
}

func TestOverallScoreChoiceOptions(t *testing.T) {
	audit := Audit{
		Fields: []FieldRef{
			{ID: "f1", Type: FieldMultipleChoice, Scoring: &FieldScoring{
				Enabled: true,
				Points:  10,
				Options: map[string]float64{"good": 10, "fair": 5, "poor": 0},
			}},
		},
		Responses: map[string]Response{
			"f1": {Value: "fair"},
		},
	}
	assert.Equal(t, 50, audit.OverallScore())
}

func TestOverallScoreNoScoredFields(t *testing.T) {
	audit := Audit{
		Fields:    []FieldRef{{ID: "f1", Type: FieldText}},
		Responses: map[string]Response{"f1": {Value: "x"}},
	}
	assert.Equal(t, 0, audit.OverallScore())
}
