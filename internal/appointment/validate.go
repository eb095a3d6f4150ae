package appointment

import (
	"regexp"
	"strings"

	"github.com/turnoshq/turnos-api/internal/datekey"
)

// Loose phone charset: digits, plus sign, spaces and dashes.
var phonePattern = regexp.MustCompile(`^[+0-9\s-]*$`)

const (
	maxNameLen  = 120
	maxPhoneLen = 30
	maxNotesLen = 500
)

// CreateInput is a raw creation payload before validation. Empty optional
// strings mean "not provided".
type CreateInput struct {
	Date  string
	Name  string
	Phone string
	Notes string
}

// ValidateCreate checks and normalizes a creation payload. On success it
// returns an unsaved Appointment with canonical field values; the store
// assigns ID and CreatedAt. The date is checked in three distinct steps so
// each failure keeps its own message: shape, normalization, weekday.
func ValidateCreate(in CreateInput) (*Appointment, error) {
	date := strings.TrimSpace(in.Date)
	if date == "" {
		return nil, ErrDateRequired
	}
	if !datekey.IsValid(date) {
		return nil, ErrDateFormat
	}
	normalized, err := datekey.Normalize(date)
	if err != nil {
		return nil, ErrDateFormat
	}
	if !datekey.IsWeekday(normalized) {
		return nil, ErrDateNotWeekday
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len([]rune(name)) > maxNameLen {
		return nil, ErrNameTooLong
	}

	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}
	notes, err := normalizeNotes(in.Notes)
	if err != nil {
		return nil, err
	}

	return &Appointment{
		Date:  normalized,
		Name:  name,
		Phone: phone,
		Notes: notes,
	}, nil
}

// UpdateInput is a raw partial-update payload; nil means the field was not
// supplied. Date is deliberately absent: it is immutable after creation.
type UpdateInput struct {
	Name  *string
	Phone *string
	Notes *string
}

// Update is a validated partial update carrying at least one field.
type Update struct {
	Name  *string
	Phone *string
	Notes *string
}

// ValidateUpdate applies the creation field rules to whichever fields are
// present and rejects payloads that normalize down to nothing. An empty
// optional string counts as absent, same as on creation.
func ValidateUpdate(in UpdateInput) (*Update, error) {
	var upd Update

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		if len([]rune(name)) > maxNameLen {
			return nil, ErrNameTooLong
		}
		upd.Name = &name
	}
	if in.Phone != nil {
		phone, err := normalizePhone(*in.Phone)
		if err != nil {
			return nil, err
		}
		upd.Phone = phone
	}
	if in.Notes != nil {
		notes, err := normalizeNotes(*in.Notes)
		if err != nil {
			return nil, err
		}
		upd.Notes = notes
	}

	if upd.Name == nil && upd.Phone == nil && upd.Notes == nil {
		return nil, ErrEmptyUpdate
	}
	return &upd, nil
}

func normalizePhone(raw string) (*string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return nil, nil
	}
	if len([]rune(phone)) > maxPhoneLen {
		return nil, ErrPhoneTooLong
	}
	if !phonePattern.MatchString(phone) {
		return nil, ErrPhoneInvalid
	}
	return &phone, nil
}

func normalizeNotes(raw string) (*string, error) {
	notes := strings.TrimSpace(raw)
	if notes == "" {
		return nil, nil
	}
	if len([]rune(notes)) > maxNotesLen {
		return nil, ErrNotesTooLong
	}
	return &notes, nil
}
