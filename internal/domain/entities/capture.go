package entities

import (
	"fmt"
	"time"
)

// CaptureStatus is the status projection an assignment writes onto its
// linked capture record as the work moves through the lifecycle.
type CaptureStatus string

const (
	CaptureStatusDraft      CaptureStatus = "draft"
	CaptureStatusAssigned   CaptureStatus = "assigned"
	CaptureStatusInProgress CaptureStatus = "in_progress"
	CaptureStatusCaptured   CaptureStatus = "captured"
)

// Capture is the field-capture record documenting what was observed and
// installed at a site. Exactly one assignment may reference a capture.
//
// Storage model (DynamoDB):
//   - PK: id
//
// The capture pipeline (photo compression, wizard flow) lives outside this
// service; we only hold the fields the assignment lifecycle depends on.
type Capture struct {
	ID           string        `json:"id"`
	PoleID       string        `json:"pole_id"`
	AssignmentID string        `json:"assignment_id,omitempty"`
	Status       CaptureStatus `json:"status"`

	Customer Customer `json:"customer"`

	PhotoCount     int      `json:"photo_count"`
	RequiredPhotos int      `json:"required_photos"`
	MissingFields  []string `json:"missing_fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompletenessViolations returns the reasons this capture cannot back a
// completed assignment. An empty slice means the capture is complete.
func (c Capture) CompletenessViolations() []string {
	var violations []string
	for _, f := range c.MissingFields {
		violations = append(violations, "missing field: "+f)
	}
	if c.PhotoCount < c.RequiredPhotos {
		violations = append(violations, fmt.Sprintf("missing photos: have %d of %d", c.PhotoCount, c.RequiredPhotos))
	}
	return violations
}
