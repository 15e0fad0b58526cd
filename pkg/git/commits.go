package git

import "strings"

// Change types for conventional change messages.
const (
	ChangeAdd    = "feat"
	ChangeEdit   = "fix"
	ChangeDelete = "chore"
	ChangeImport = "data"
	ChangeReset  = "data"
)

// Footer marks commits written by knowhub.
const Footer = "Recorded-by: knowhub"

// FormatChangeReason builds a Conventional Commit style message:
//
//	<type>(<scope>): <subject>
//
//	<body>
//
//	Recorded-by: knowhub
func FormatChangeReason(ctype, scope, subject, body string) string {
	var sb strings.Builder

	if ctype == "" {
		ctype = "chore"
	}
	sb.WriteString(ctype)

	if scope != "" {
		sb.WriteString("(")
		sb.WriteString(scope)
		sb.WriteString(")")
	}

	sb.WriteString(": ")
	sb.WriteString(subject)

	if body != "" {
		sb.WriteString("\n\n")
		sb.WriteString(strings.TrimSpace(body))
	}

	sb.WriteString("\n\n")
	sb.WriteString(Footer)

	return sb.String()
}

// AppendFooter appends the knowhub footer to a free-form message if absent.
func AppendFooter(msg string) string {
	if strings.Contains(msg, Footer) {
		return msg
	}
	msg = strings.TrimRight(msg, "\n")
	return msg + "\n\n" + Footer
}
