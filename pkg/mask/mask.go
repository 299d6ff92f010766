// Package mask redacts email addresses embedded in provider error text
// before it is stored or shown to an operator.
package mask

import (
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// Emails replaces every email address in s with a masked form that keeps at
// most the first two characters of the local part: jo***@example.com.
func Emails(s string) string {
	return emailPattern.ReplaceAllStringFunc(s, func(addr string) string {
		at := strings.Index(addr, "@")
		local, domain := addr[:at], addr[at:]
		keep := 2
		if len(local) < keep {
			keep = len(local)
		}
		return local[:keep] + "***" + domain
	})
}
