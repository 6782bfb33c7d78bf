package mailer

import (
	"bytes"
	"html/template"

	"github.com/portfolio/backend/internal/validation"
)

// Subject line of the confirmation sent back to the submitter.
const ConfirmationSubject = "Thank you for contacting us"

// OwnerSubjectPrefix is prepended to the submitted subject for the owner copy.
const OwnerSubjectPrefix = "New Contact: "

var ownerTmpl = template.Must(template.New("owner").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<h2>Thank you for contacting us</h2>
<p>Hi {{.Name}},</p>
<p>We've received your message and will get back to you as soon as possible.</p>
<p>Your message:</p>
<blockquote>{{.Message}}</blockquote>
<p>Best regards,</p>
<p>Portfolio Team</p>
`))

// OwnerNotification builds the copy sent to the site owner. Replies go to the
// submitter.
func OwnerNotification(owner string, f validation.Fields) (Message, error) {
	body, err := render(ownerTmpl, f)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      owner,
		Subject: OwnerSubjectPrefix + f.Subject,
		HTML:    body,
		ReplyTo: f.Email,
	}, nil
}

// SenderConfirmation builds the thank-you note sent to the submitter.
func SenderConfirmation(f validation.Fields) (Message, error) {
	body, err := render(confirmationTmpl, f)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      f.Email,
		Subject: ConfirmationSubject,
		HTML:    body,
	}, nil
}

func render(t *template.Template, f validation.Fields) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, f); err != nil {
		return "", err
	}
	return buf.String(), nil
}
