package auth

import (
	"strings"
)

// authSchemes are scheme prefixes stripped from the Authorization header
// before the key itself is extracted.
var authSchemes = []string{"basic", "bearer"}

// KeyFromHeader extracts the presented API key from an Authorization
// header value. The credential is expected as "<scheme> <key>" but a bare
// key is also accepted; in either case the first whitespace-delimited
// token after scheme stripping is the key.
func KeyFromHeader(header string) string {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return ""
	}

	if len(fields) > 1 {
		for _, scheme := range authSchemes {
			if strings.EqualFold(fields[0], scheme) {
				return fields[1]
			}
		}
	}

	return fields[0]
}
