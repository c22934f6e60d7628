package handler

import (
	"encoding/json"
	"strings"

	"presence/internal/attendance/models"
)

// SaveRequest is the body of POST /attendance: a bare JSON array of
// payloads.
type SaveRequest struct {
	Payloads []models.SavePayload `validate:"required,min=1,max=52,dive"`
}

// UnmarshalJSON decodes the array and trims free-text fields so the tag
// rules see the values the service will store.
func (r *SaveRequest) UnmarshalJSON(b []byte) error {
	if err := json.Unmarshal(b, &r.Payloads); err != nil {
		return err
	}
	for i := range r.Payloads {
		p := &r.Payloads[i]
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		p.PersonIdentifier = strings.TrimSpace(p.PersonIdentifier)
		p.WeekStart = strings.TrimSpace(p.WeekStart)
	}
	return nil
}

// Validate has nothing to add to the tag rules. Day labels and week
// alignment are checked by the service.
func (r *SaveRequest) Validate() error {
	return nil
}
