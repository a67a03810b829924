package digest

import (
	"strings"
	"time"
)

// ExpandVars substitutes placeholders in config-provided text such as the
// digest title, preface and postscript.
//
// Supported variables:
// - {.CurrentDate} => YYYY-MM-DD (UTC)
// - {.Name}        => the digest name
func ExpandVars(s, name string, now time.Time) string {
	if strings.TrimSpace(s) == "" {
		return s
	}
	r := strings.NewReplacer(
		"{.CurrentDate}", now.UTC().Format("2006-01-02"),
		"{.Name}", name,
	)
	return r.Replace(s)
}
