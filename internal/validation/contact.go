// Package validation holds the contact form rules shared by the browser-side
// form model and the API. Both sides call the same predicates so a submission
// accepted locally is never rejected by the server for a different reason.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinMessageLength is the minimum trimmed length of a message, in runes.
const MinMessageLength = 10

// Field names as they appear in JSON payloads and error maps.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

// FieldOrder is the order fields are checked and reported in.
var FieldOrder = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Fields is the user-editable part of a contact submission.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Get returns the value of the named field, or "" for an unknown name.
func (f Fields) Get(field string) string {
	switch field {
	case FieldName:
		return f.Name
	case FieldEmail:
		return f.Email
	case FieldSubject:
		return f.Subject
	case FieldMessage:
		return f.Message
	}
	return ""
}

// With returns a copy of f with the named field set. Unknown names are ignored.
func (f Fields) With(field, value string) Fields {
	switch field {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldSubject:
		f.Subject = value
	case FieldMessage:
		f.Message = value
	}
	return f
}

// Errors maps a field name to a human readable message.
type Errors map[string]string

// Empty reports whether no field failed.
func (e Errors) Empty() bool { return len(e) == 0 }

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate applies the full rule set and returns one message per failing field.
func Validate(f Fields) Errors {
	errs := Errors{}

	if strings.TrimSpace(f.Name) == "" {
		errs[FieldName] = "Name is required"
	}

	if strings.TrimSpace(f.Email) == "" {
		errs[FieldEmail] = "Email is required"
	} else if !IsEmail(f.Email) {
		errs[FieldEmail] = "Email is invalid"
	}

	if strings.TrimSpace(f.Subject) == "" {
		errs[FieldSubject] = "Subject is required"
	}

	msg := strings.TrimSpace(f.Message)
	if msg == "" {
		errs[FieldMessage] = "Message is required"
	} else if utf8.RuneCountInString(msg) < MinMessageLength {
		errs[FieldMessage] = "Message must be at least 10 characters"
	}

	return errs
}

// MissingRequired returns the names of fields that are empty after trimming,
// in FieldOrder. Format rules are not checked here.
func MissingRequired(f Fields) []string {
	var missing []string
	for _, name := range FieldOrder {
		if strings.TrimSpace(f.Get(name)) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Normalize trims every field and lowercases the email address.
func Normalize(f Fields) Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.ToLower(strings.TrimSpace(f.Email)),
		Subject: strings.TrimSpace(f.Subject),
		Message: strings.TrimSpace(f.Message),
	}
}
