// Package validate holds the pure input predicates used at registration.
package validate

import "regexp"

var (
	// First character uppercase, letter runs separated by single spaces,
	// apostrophes or hyphens ("Mary-Jane", "O'Brien").
	nameRe = regexp.MustCompile(`^[A-Z][a-zA-Z]*(?:[ '-][a-zA-Z]+)*$`)

	// local@domain.tld with at least one dot and a 2+ letter TLD.
	emailRe = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

	passwordCharsRe = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*]{8,20}$`)
	lowerRe         = regexp.MustCompile(`[a-z]`)
	upperRe         = regexp.MustCompile(`[A-Z]`)
	digitRe         = regexp.MustCompile(`[0-9]`)
	specialRe       = regexp.MustCompile(`[!@#$%^&*]`)
)

// Name accepts 2-30 characters starting with an uppercase letter.
func Name(name string) bool {
	if len(name) < 2 || len(name) > 30 {
		return false
	}
	return nameRe.MatchString(name)
}

// Email accepts a non-empty address of at most 254 characters.
func Email(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	return emailRe.MatchString(email)
}

// Password accepts 8-20 characters containing at least one lowercase
// letter, one uppercase letter, one digit and one of !@#$%^&*, with no
// other characters permitted.
func Password(password string) bool {
	return passwordCharsRe.MatchString(password) &&
		lowerRe.MatchString(password) &&
		upperRe.MatchString(password) &&
		digitRe.MatchString(password) &&
		specialRe.MatchString(password)
}
