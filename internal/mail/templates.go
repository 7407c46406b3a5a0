package mail

import (
	"fmt"
	"net/mail"
)

const verificationSubject = "Verify your email - Online Exam System"

// VerificationMessage builds the email sent after registration or on resend.
func VerificationMessage(username, email, link string) Message {
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thanks for registering at Online Exam System. Please verify your email by clicking the link below:\n\n"+
			"%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		username, link)

	return Message{
		To:      mail.Address{Name: username, Address: email},
		Subject: verificationSubject,
		Body:    body,
	}
}
