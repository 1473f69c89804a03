package auth

import "regexp"

// identifierPattern is the e-mail shape the portal accepts as a login.
// Lowercase only; mixed-case addresses are rejected.
var identifierPattern = regexp.MustCompile(`^[a-z0-9]+[._]?[a-z0-9]+@\w+\.\w{2,3}$`)

// Credential holds the two fields the portal login form needs
type Credential struct {
	Identifier string `yaml:"username" json:"username"`
	Secret     string `yaml:"password" json:"-"`
}

// String hides the secret so a credential can be passed to a logger safely
func (c Credential) String() string {
	return c.Identifier + ":***"
}

// ValidIdentifier reports whether s looks like a portal login e-mail
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ValidSecret reports whether s can be used as a password
func ValidSecret(s string) bool {
	return s != ""
}

// Valid reports whether both fields pass validation
func (c Credential) Valid() bool {
	return ValidIdentifier(c.Identifier) && ValidSecret(c.Secret)
}
