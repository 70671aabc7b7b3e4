// Package validation checks user input before it is stored. Every check
// returns a Result instead of an error so callers can show the message inline.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	EmailMaxLength    = 254
	PasswordMinLength = 8
	PasswordMaxLength = 64
	NoteMaxLength     = 500
)

// Result is the outcome of a single validation. Message is empty when Valid.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func ok() Result { return Result{Valid: true} }

func fail(format string, args ...any) Result {
	return Result{Valid: false, Message: fmt.Sprintf(format, args...)}
}

const atext = "a-z0-9!#$%&'*+/=?^_`{|}~-"

var (
	emailLocal = `(?:[` + atext + `]+(?:\.[` + atext + `]+)*` +
		`|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*")`
	emailDomain = `(?:(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?` +
		`|\[(?:(?:25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9])\.){3}` +
		`(?:25[0-5]|2[0-4][0-9]|1[0-9][0-9]|[1-9]?[0-9]` +
		`|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`

	emailPattern = regexp.MustCompile(`(?i)^` + emailLocal + `@` + emailDomain + `$`)

	upperPattern   = regexp.MustCompile(`[A-Z]`)
	lowerPattern   = regexp.MustCompile(`[a-z]`)
	digitPattern   = regexp.MustCompile(`\d`)
	specialPattern = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	spacePattern   = regexp.MustCompile(`\s`)

	noteCharsPattern = regexp.MustCompile(`^[a-zA-Z0-9\s.,;!?()'"*\-:\[\]@&%#^_+=|~` + "`" + `$]*$`)
	emojiPattern     = regexp.MustCompile(`[\x{10000}-\x{10FFFF}\x{2600}-\x{27BF}\x{2B50}\x{231A}]`)
)

// Email checks length and address structure of a trimmed email.
func Email(email string) Result {
	trimmed := strings.TrimSpace(email)

	if utf8.RuneCountInString(trimmed) > EmailMaxLength {
		return fail("Email exceeds maximum length of %d characters.", EmailMaxLength)
	}
	if !emailPattern.MatchString(trimmed) {
		return fail("Invalid email format.")
	}
	return ok()
}

// Password enforces length and character-class composition. Checks run in a
// fixed order and the first failure wins.
func Password(password string) Result {
	n := utf8.RuneCountInString(password)

	switch {
	case n < PasswordMinLength:
		return fail("Password must be at least %d characters long.", PasswordMinLength)
	case n > PasswordMaxLength:
		return fail("Password must be no more than %d characters long.", PasswordMaxLength)
	case !upperPattern.MatchString(password):
		return fail("Password must include at least one uppercase letter.")
	case !lowerPattern.MatchString(password):
		return fail("Password must include at least one lowercase letter.")
	case !digitPattern.MatchString(password):
		return fail("Password must include at least one number.")
	case !specialPattern.MatchString(password):
		return fail("Password must include at least one special character i.e.,!@#.")
	case spacePattern.MatchString(password):
		return fail("Password cannot contain spaces.")
	}
	return ok()
}

// Note validates one free-text field of a journal section or a mood note.
func Note(input string) Result {
	trimmed := strings.TrimSpace(input)

	if utf8.RuneCountInString(trimmed) > NoteMaxLength {
		return fail("Exceeds the %d characters limit.", NoteMaxLength)
	}
	if strings.ContainsAny(trimmed, "<>{}") {
		return fail("<> and {} are not allowed.")
	}
	if !noteCharsPattern.MatchString(trimmed) && !emojiPattern.MatchString(trimmed) {
		return fail("Please enter a valid note. Only letters, numbers, spaces, emojis, common punctuation and symbols are allowed.")
	}
	return ok()
}
