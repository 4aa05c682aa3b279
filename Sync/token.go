package Sync

import (
	"regexp"
)

// Parsing rules for the raw change feed. The feed format is vendor
// specific; the monitor only ever needs these two facts extracted from it,
// so the rules stay swappable without touching the polling logic.
var (
	ChangeTokenRe  = regexp.MustCompile(`LastChangeToken=['"](.*?)['"]`)
	ChangeRowRe    = regexp.MustCompile(`<.?:row`)
	ChangeDeleteRe = regexp.MustCompile(`ChangeType="Delete"`)
)

// TokenState holds the last seen change token for one monitored collection.
type TokenState struct {
	LastToken string
}

// ProcessChangeResult inspects a raw change feed response, advances the
// token and reports whether anything changed since the previous call.
//
// The first call only establishes the baseline and always reports no
// change, regardless of feed content. Every later call overwrites the token
// whether or not a change was detected, so drift cannot accumulate. A
// response the token cannot be extracted from is treated as changed: the
// failure mode is an extra refresh, never a silently missed update.
func ProcessChangeResult(result string, state *TokenState) bool {
	match := ChangeTokenRe.FindStringSubmatch(result)
	if match == nil {
		return state.LastToken != ""
	}
	newToken := match[1]
	if state.LastToken == "" {
		state.LastToken = newToken
		return false
	}
	state.LastToken = newToken
	return ChangeRowRe.MatchString(result) || ChangeDeleteRe.MatchString(result)
}
