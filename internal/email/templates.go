package email

import (
	"fmt"
	"strings"
)

func PaymentApprovedMail(to, name, contestTitle string) EmailRequest {
	return EmailRequest{
		To:      []string{to},
		Subject: fmt.Sprintf("Registration confirmed: %s", contestTitle),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour payment for %s has been verified. You can attempt the contest once it goes live.\n",
			name, contestTitle,
		),
		BodyType: KeyEmailBodyPlain,
		Purpose:  PurposePaymentApproved,
	}
}

func ResultsPublishedMail(to []string, contestTitle string) EmailRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "Results for %s are now published.\n", contestTitle)
	b.WriteString("Log in to view your rank and score.\n")
	return EmailRequest{
		To:       to,
		Subject:  fmt.Sprintf("Results published: %s", contestTitle),
		Body:     b.String(),
		BodyType: KeyEmailBodyPlain,
		Purpose:  PurposeResultsPublished,
	}
}
