package logutil

import (
	"io"
	"regexp"
	"strings"
)

const (
	Redaction = "***"
)

type (
	// RedactingWriter masks the values of sensitive fields in every JSON
	// log line written through it.
	RedactingWriter struct {
		out io.Writer
		re  *regexp.Regexp
	}
)

var (
	// PIIFields are the fields that must never reach the logs in clear text.
	PIIFields = []string{"name", "email", "phone", "ssn", "password"}
)

// FilterDatum replaces the value of each field in a "field=value<sep>"
// formatted message with redaction.
func FilterDatum(fields []string, redaction, message, separator string) string {
	for _, f := range fields {
		re := regexp.MustCompile(regexp.QuoteMeta(f) + `=[^` + regexp.QuoteMeta(separator) + `]*`)
		message = re.ReplaceAllLiteralString(message, f+"="+redaction)
	}
	return message
}

func NewRedactingWriter(out io.Writer, fields ...string) *RedactingWriter {
	if len(fields) == 0 {
		fields = PIIFields
	}
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	re := regexp.MustCompile(`"(` + strings.Join(quoted, "|") + `)":"(?:[^"\\]|\\.)*"`)
	return &RedactingWriter{out: out, re: re}
}

// Write always reports len(p) on success, even though fewer bytes may be
// written once values are masked.
func (r *RedactingWriter) Write(p []byte) (int, error) {
	masked := r.re.ReplaceAll(p, []byte(`"$1":"`+Redaction+`"`))
	_, err := r.out.Write(masked)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}
