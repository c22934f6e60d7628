package domain

import (
	"github.com/google/uuid"

	dErrors "presence/pkg/domain-errors"
)

// RecordID is the server-assigned identifier of an attendance record.
type RecordID uuid.UUID

// NewRecordID returns a fresh random identifier.
func NewRecordID() RecordID {
	return RecordID(uuid.New())
}

// ParseRecordID validates an identifier from external input.
func ParseRecordID(s string) (RecordID, error) {
	if s == "" {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "record id is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	if parsed == uuid.Nil {
		return RecordID{}, dErrors.New(dErrors.CodeInvalidInput, "record id cannot be nil")
	}
	return RecordID(parsed), nil
}

func (id RecordID) String() string {
	return uuid.UUID(id).String()
}

func (id RecordID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}

func (id RecordID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText accepts what MarshalText produces: an empty string or the
// nil UUID decode to the zero value, which IsNil reports.
func (id *RecordID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = RecordID{}
		return nil
	}
	parsed, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid record id")
	}
	*id = RecordID(parsed)
	return nil
}
