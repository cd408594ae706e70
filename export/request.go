package export

import (
	"errors"
	"fmt"

	"github.com/audithq/safety-audit/model"
)

// Request is the input contract of the document pipeline: a flattened audit
// ready to render. The sections slice drives ordering; fields associate to
// sections by SectionID and may arrive in any global order.
type Request struct {
	TemplateName string                    `json:"templateName"`
	ClientName   string                    `json:"clientName"`
	AuditorName  string                    `json:"auditorName"`
	AuditorTitle string                    `json:"auditorTitle,omitempty"`
	AuditorEmail string                    `json:"auditorEmail,omitempty"`
	CompletedAt  string                    `json:"completedAt"`
	Sections     []model.SectionRef        `json:"sections"`
	Fields       []model.FieldRef          `json:"fields"`
	Responses    map[string]model.Response `json:"responses"`
}

// ErrInvalid marks request-shape problems, detected before any generation
// work starts. Handlers map it to a client error.
var ErrInvalid = errors.New("invalid document request")

func (req Request) Validate() error {
	if req.TemplateName == "" || req.ClientName == "" {
		return fmt.Errorf("%w: missing required fields", ErrInvalid)
	}
	for _, s := range req.Sections {
		if s.ID == "" || s.Title == "" {
			return fmt.Errorf("%w: invalid section structure", ErrInvalid)
		}
	}
	for _, f := range req.Fields {
		if f.ID == "" || f.SectionID == "" || f.Question == "" {
			return fmt.Errorf("%w: invalid field structure", ErrInvalid)
		}
	}
	return nil
}
