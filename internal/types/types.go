package types

import (
	"strings"
	"time"
)

// Draft holds the editable fields of a student record (everything except the id)
type Draft struct {
	FirstName   string `json:"fname" yaml:"fname" validate:"required"`
	LastName    string `json:"lname" yaml:"lname" validate:"required"`
	Birthdate   string `json:"birthdate" yaml:"birthdate" validate:"required"`
	Address     string `json:"address" yaml:"address"`
	PhoneNumber string `json:"phone_number" yaml:"phone_number" validate:"required"`
}

// Student is a record as returned by the server
type Student struct {
	ID    string `json:"id" yaml:"id"`
	Draft `yaml:",inline"`
}

// IsDraft reports whether the record has not been created on the server yet
func (s Student) IsDraft() bool {
	return s.ID == ""
}

// BirthdateDay returns the birthdate as YYYY-MM-DD.
// Servers may send a full RFC 3339 timestamp; anything unparseable is returned as-is.
func (s Student) BirthdateDay() string {
	return DateOnly(s.Birthdate)
}

// DateOnly trims an ISO timestamp down to its calendar date
func DateOnly(value string) string {
	if value == "" {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, value); err == nil {
		return value
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	if i := strings.IndexByte(value, 'T'); i == len(time.DateOnly) {
		if _, err := time.Parse(time.DateOnly, value[:i]); err == nil {
			return value[:i]
		}
	}
	return value
}

// Patch is a partial record sent on update. Nil fields are left untouched by the server.
type Patch struct {
	FirstName   *string `json:"fname,omitempty" yaml:"fname,omitempty"`
	LastName    *string `json:"lname,omitempty" yaml:"lname,omitempty"`
	Birthdate   *string `json:"birthdate,omitempty" yaml:"birthdate,omitempty"`
	Address     *string `json:"address,omitempty" yaml:"address,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
}

// PatchFromDraft builds a patch that sets every field of the draft
func PatchFromDraft(d Draft) Patch {
	return Patch{
		FirstName:   &d.FirstName,
		LastName:    &d.LastName,
		Birthdate:   &d.Birthdate,
		Address:     &d.Address,
		PhoneNumber: &d.PhoneNumber,
	}
}

// IsEmpty reports whether the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Birthdate == nil &&
		p.Address == nil && p.PhoneNumber == nil
}

// Apply merges the patch over s. The id is never changed.
func (p Patch) Apply(s Student) Student {
	if p.FirstName != nil {
		s.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		s.LastName = *p.LastName
	}
	if p.Birthdate != nil {
		s.Birthdate = *p.Birthdate
	}
	if p.Address != nil {
		s.Address = *p.Address
	}
	if p.PhoneNumber != nil {
		s.PhoneNumber = *p.PhoneNumber
	}
	return s
}

// TLSConfig holds TLS/mTLS settings for the remote endpoint
type TLSConfig struct {
	CertFile           string `json:"certFile,omitempty" yaml:"cert_file,omitempty" env:"STUDENTCRUD_TLS_CERT"`
	KeyFile            string `json:"keyFile,omitempty" yaml:"key_file,omitempty" env:"STUDENTCRUD_TLS_KEY"`
	CAFile             string `json:"caFile,omitempty" yaml:"ca_file,omitempty" env:"STUDENTCRUD_TLS_CA"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty" yaml:"insecure_skip_verify,omitempty" env:"STUDENTCRUD_TLS_INSECURE"`
}

// IsZero reports whether no TLS option is set
func (c TLSConfig) IsZero() bool {
	return c == TLSConfig{}
}

// HistoryEntry is one recorded mutation
type HistoryEntry struct {
	ID          int64     `json:"id" yaml:"id"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	Operation   string    `json:"operation" yaml:"operation"`
	StudentID   string    `json:"studentId,omitempty" yaml:"student_id,omitempty"`
	StudentName string    `json:"studentName,omitempty" yaml:"student_name,omitempty"`
	Method      string    `json:"method" yaml:"method"`
	URL         string    `json:"url" yaml:"url"`
	Status      int       `json:"status" yaml:"status"`
	DurationMs  int64     `json:"durationMs" yaml:"duration_ms"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the recorded call completed with a 2xx status
func (e HistoryEntry) Succeeded() bool {
	return e.Error == "" && e.Status >= 200 && e.Status < 300
}

// FullName joins first and last name for display
func (d Draft) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}
