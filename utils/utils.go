package utils

import (
	"math/rand"
	"regexp"
	"strings"
)

const runIdAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// RunId returns a short random identifier stamped onto each persisted
// onboarding row.
func RunId() string {
	id := make([]byte, 6)
	for i := range id {
		id[i] = runIdAlphabet[rand.Intn(len(runIdAlphabet))]
	}
	return string(id)
}

// Truncate shortens s to max characters, marking the cut with an
// ellipsis.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

var usernameCleaner = regexp.MustCompile(`[^a-zA-Z0-9]`)

// CleanUsername lowercases a Discord username and strips everything
// outside [a-zA-Z0-9], for use in channel names.
func CleanUsername(username string) string {
	return strings.ToLower(usernameCleaner.ReplaceAllString(username, ""))
}
