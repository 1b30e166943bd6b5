package blog

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"unicode"
)

// Slugify turns a title into a URL-safe slug: lowercased, runs of
// non-alphanumeric characters collapsed to a single hyphen, plus a short
// random suffix so two posts with the same title don't collide.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	base := strings.Trim(b.String(), "-")
	suffix := randomSuffix()
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

func randomSuffix() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		return "000000"
	}
	return hex.EncodeToString(buf)
}
