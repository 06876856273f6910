package rules

import (
	"regexp"
	"strings"
)

// Patient-responsibility and other-adjustment prefixes that fold into
// the contractual-obligation group. PIB is listed before PI so the
// longer prefix wins.
var groupPrefix = regexp.MustCompile(`^(PR|PIB|PI|OA)(\d.*)$`)

// NormalizePrefix rewrites PR/PI/PIB/OA codes followed by digits to
// their CO-prefixed canonical form. Other codes pass through unchanged
// apart from trimming and uppercasing, so the function is idempotent
// for already-normalized codes.
func NormalizePrefix(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	if m := groupPrefix.FindStringSubmatch(c); m != nil {
		return "CO" + m[2]
	}
	return c
}
