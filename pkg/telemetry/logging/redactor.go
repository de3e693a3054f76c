package logging

import (
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys are attribute keys whose values are always masked.
// They cover respondent identity and free-text answer payloads.
var sensitiveKeys = map[string]bool{
	"answers":       true,
	"answer":        true,
	"value":         true,
	"respondent":    true,
	"respondent_id": true,
	"email":         true,
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

const mask = "[redacted]"

// redactAttr is a slog ReplaceAttr hook that masks respondent data.
// Sensitive keys are masked wholesale; other string values only have
// embedded email addresses masked.
func redactAttr(groups []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, mask)
	}

	if a.Value.Kind() == slog.KindString {
		s := a.Value.String()
		if emailPattern.MatchString(s) {
			return slog.String(a.Key, RedactEmails(s))
		}
	}
	return a
}

// RedactEmails masks email addresses in s, keeping the first character
// of the local part so operators can still correlate entries.
func RedactEmails(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, func(addr string) string {
		at := strings.IndexByte(addr, '@')
		if at <= 0 {
			return mask
		}
		return addr[:1] + "***" + addr[at:]
	})
}
