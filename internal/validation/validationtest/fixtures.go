// Package validationtest provides the contact rule fixtures shared by the
// server-side and form-side test suites.
package validationtest

import "github.com/portfolio/backend/internal/validation"

// Case is one input and the field errors it must produce.
type Case struct {
	Name   string
	Fields validation.Fields
	Want   validation.Errors
}

// Valid is a submission every rule accepts.
var Valid = validation.Fields{
	Name:    "Ann",
	Email:   "ann@x.com",
	Subject: "Hi",
	Message: "Hello there, testing",
}

func with(field, value string) validation.Fields {
	return Valid.With(field, value)
}

// Cases covers every rule, including the boundaries of the message length.
var Cases = []Case{
	{Name: "valid", Fields: Valid, Want: validation.Errors{}},
	{Name: "empty name", Fields: with("name", ""), Want: validation.Errors{"name": "Name is required"}},
	{Name: "blank name", Fields: with("name", "   \t"), Want: validation.Errors{"name": "Name is required"}},
	{Name: "empty email", Fields: with("email", ""), Want: validation.Errors{"email": "Email is required"}},
	{Name: "blank email", Fields: with("email", "  "), Want: validation.Errors{"email": "Email is required"}},
	{Name: "email without at", Fields: with("email", "ann.x.com"), Want: validation.Errors{"email": "Email is invalid"}},
	{Name: "email without dot", Fields: with("email", "ann@x"), Want: validation.Errors{"email": "Email is invalid"}},
	{Name: "email without domain", Fields: with("email", "annxcom"), Want: validation.Errors{"email": "Email is invalid"}},
	{Name: "email with space", Fields: with("email", "a nn@x.com"), Want: validation.Errors{"email": "Email is invalid"}},
	{Name: "empty subject", Fields: with("subject", ""), Want: validation.Errors{"subject": "Subject is required"}},
	{Name: "empty message", Fields: with("message", ""), Want: validation.Errors{"message": "Message is required"}},
	{Name: "message of 9", Fields: with("message", "123456789"), Want: validation.Errors{"message": "Message must be at least 10 characters"}},
	{Name: "message of 9 padded", Fields: with("message", "   123456789    "), Want: validation.Errors{"message": "Message must be at least 10 characters"}},
	{Name: "message of exactly 10", Fields: with("message", "1234567890"), Want: validation.Errors{}},
	{Name: "message of 10 runes", Fields: with("message", "héllo wörl"), Want: validation.Errors{}},
	{
		Name:   "everything empty",
		Fields: validation.Fields{},
		Want: validation.Errors{
			"name":    "Name is required",
			"email":   "Email is required",
			"subject": "Subject is required",
			"message": "Message is required",
		},
	},
}
