package model

import "time"

type FieldType string

const (
	FieldText           FieldType = "TEXT"
	FieldNumber         FieldType = "NUMBER"
	FieldYesNo          FieldType = "YES_NO"
	FieldMultipleChoice FieldType = "MULTIPLE_CHOICE"
	FieldChecklist      FieldType = "CHECKLIST"
	FieldDate           FieldType = "DATE"
	FieldSlider         FieldType = "SLIDER"
	FieldInstruction    FieldType = "INSTRUCTION"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldYesNo, FieldMultipleChoice,
		FieldChecklist, FieldDate, FieldSlider, FieldInstruction:
		return true
	}
	return false
}

// Instruction fields are display-only and never carry a response.
func (t FieldType) ExpectsResponse() bool {
	return t != FieldInstruction
}

type AuditStatus string

const (
	StatusDraft     AuditStatus = "draft"
	StatusCompleted AuditStatus = "completed"
)

type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Title string `json:"title"`
}

type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

type Client struct {
	ID                   string     `json:"id,omitempty"`
	Name                 string     `json:"name"`
	Industry             string     `json:"industry"`
	SubIndustry          string     `json:"subIndustry,omitempty"`
	EmployeeCount        int        `json:"employeeCount"`
	Locations            int        `json:"locations"`
	RiskLevel            string     `json:"riskLevel"`
	PrimaryContact       Contact    `json:"primaryContact"`
	Address              Address    `json:"address"`
	Notes                string     `json:"notes,omitempty"`
	LogoURL              string     `json:"logoUrl,omitempty"`
	AssignedTemplateIDs  []string   `json:"assignedTemplateIds"`
	TotalAuditsCompleted int        `json:"totalAuditsCompleted"`
	LastAuditDate        *time.Time `json:"lastAuditDate,omitempty"`
	CreatedAt            time.Time  `json:"createdAt,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt,omitempty"`
}

type Tag struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Template struct {
	ID          string    `json:"id,omitempty"`
	Version     int       `json:"version,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

type Section struct {
	ID          string  `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight,omitempty"`
	Fields      []Field `json:"fields"`
}

type Field struct {
	ID        string         `json:"id,omitempty"`
	SectionID string         `json:"sectionId,omitempty"`
	Type      FieldType      `json:"type"`
	Question  string         `json:"question"`
	Required  bool           `json:"required"`
	AIEnabled bool           `json:"aiEnabled,omitempty"`
	Options   any            `json:"options,omitempty"`
	Settings  *FieldSettings `json:"settings,omitempty"`
	Scoring   *FieldScoring  `json:"scoring,omitempty"`
}

type FieldSettings struct {
	AllowNotes  bool `json:"allowNotes,omitempty"`
	AllowPhotos bool `json:"allowPhotos,omitempty"`
	SliderMin   int  `json:"sliderMin,omitempty"`
	SliderMax   int  `json:"sliderMax,omitempty"`
}

type FieldScoring struct {
	Enabled bool               `json:"enabled"`
	Points  float64            `json:"points"`
	Weight  float64            `json:"weight,omitempty"`
	Options map[string]float64 `json:"options,omitempty"`
}

type Audit struct {
	ID           string              `json:"id,omitempty"`
	ClientID     string              `json:"clientId"`
	TemplateID   string              `json:"templateId"`
	TemplateName string              `json:"templateName"`
	AuditorName  string              `json:"auditorName"`
	AuditorTitle string              `json:"auditorTitle,omitempty"`
	AuditorEmail string              `json:"auditorEmail,omitempty"`
	Status       AuditStatus         `json:"status"`
	Sections     []SectionRef        `json:"sections"`
	Fields       []FieldRef          `json:"fields"`
	Responses    map[string]Response `json:"responses"`
	Score        *int                `json:"score,omitempty"`
	CompletedAt  *time.Time          `json:"completedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt,omitempty"`
	UpdatedAt    time.Time           `json:"updatedAt,omitempty"`
}

// SectionRef and FieldRef are the flattened template snapshot stored on an
// audit, so completed audits keep rendering after the template changes.
type SectionRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type FieldRef struct {
	ID        string        `json:"id"`
	SectionID string        `json:"sectionId"`
	Question  string        `json:"question"`
	Type      FieldType     `json:"type"`
	Required  bool          `json:"required,omitempty"`
	HasPhoto  bool          `json:"hasPhoto,omitempty"`
	HasNotes  bool          `json:"hasNotes,omitempty"`
	Scoring   *FieldScoring `json:"scoring,omitempty"`
}

type Response struct {
	FieldID          string   `json:"fieldId,omitempty"`
	Value            string   `json:"value,omitempty"`
	Notes            string   `json:"notes,omitempty"`
	Photos           []string `json:"photos,omitempty"`
	AIRecommendation string   `json:"aiRecommendation,omitempty"`
}

// OverallScore computes the weighted percent score of an audit from its
// field snapshots and responses. Only fields with scoring enabled count.
func (a Audit) OverallScore() int {
	var total, max float64
	for _, f := range a.Fields {
		if f.Scoring == nil || !f.Scoring.Enabled {
			continue
		}
		resp, ok := a.Responses[f.ID]
		if !ok {
			continue
		}

		weight := f.Scoring.Weight
		if weight == 0 {
			weight = 1
		}
		max += f.Scoring.Points * weight

		var earned float64
		switch f.Type {
		case FieldYesNo:
			if resp.Value == "yes" || resp.Value == "true" {
				earned = f.Scoring.Points
			}
		case FieldMultipleChoice, FieldChecklist:
			earned = f.Scoring.Options[resp.Value]
		default:
			if resp.Value != "" {
				earned = f.Scoring.Points
			}
		}
		total += earned * weight
	}

	if max == 0 {
		return 0
	}
	return int(total/max*100 + 0.5)
}
