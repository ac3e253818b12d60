package security

import (
	"fmt"
	"math"
	"strings"
	"unicode"
)

// Policy declares password strength rules. A zero value disables the
// corresponding check, so partial policies are valid.
type Policy struct {
	MinLength       int
	MinUppercase    int
	MinNumbers      int
	MinSpecial      int
	AllowedSpecials string
	MinEntropy      float64
	CheckPwned      bool
}

// DefaultPolicy is the baseline applied to new accounts.
var DefaultPolicy = Policy{
	MinLength:       8,
	MinUppercase:    1,
	MinNumbers:      1,
	MinSpecial:      1,
	AllowedSpecials: "!@#$%^*-_=+.,",
	MinEntropy:      0.5,
	CheckPwned:      true,
}

// PolicyViolationError carries the human-readable reason for the first
// failing rule.
type PolicyViolationError struct {
	Reason string
}

func (e *PolicyViolationError) Error() string { return e.Reason }

// Validator validates passwords against a Policy. The pwned lookup is
// optional; when nil and the policy asks for it, the check fails closed.
type Validator struct {
	pwned *PwnedClient
}

func NewValidator(pwned *PwnedClient) *Validator {
	return &Validator{pwned: pwned}
}

// Validate runs the policy checks in declared order and short-circuits on
// the first failure, returned as a *PolicyViolationError. A nil return
// means the password passed every enabled rule.
func (v *Validator) Validate(password string, p Policy) error {
	checks := []func(string, Policy) string{
		checkLength,
		checkUppercase,
		checkNumbers,
		checkSpecials,
		v.checkPwned,
		checkEntropy,
	}
	for _, check := range checks {
		if reason := check(password, p); reason != "" {
			return &PolicyViolationError{Reason: reason}
		}
	}
	return nil
}

func checkLength(password string, p Policy) string {
	if p.MinLength > 0 && len(password) < p.MinLength {
		return fmt.Sprintf("The password must be at least %d characters long.", p.MinLength)
	}
	return ""
}

func checkUppercase(password string, p Policy) string {
	if p.MinUppercase <= 0 {
		return ""
	}
	n := 0
	for _, c := range password {
		if unicode.IsUpper(c) {
			n++
		}
	}
	if n < p.MinUppercase {
		return fmt.Sprintf("Password must include at least %d uppercase letter(s).", p.MinUppercase)
	}
	return ""
}

func checkNumbers(password string, p Policy) string {
	if p.MinNumbers <= 0 {
		return ""
	}
	n := 0
	for _, c := range password {
		if unicode.IsDigit(c) {
			n++
		}
	}
	if n < p.MinNumbers {
		return fmt.Sprintf("Password must include at least %d number(s).", p.MinNumbers)
	}
	return ""
}

func checkSpecials(password string, p Policy) string {
	if p.MinSpecial <= 0 || p.AllowedSpecials == "" {
		return ""
	}
	n := 0
	for _, c := range password {
		if strings.ContainsRune(p.AllowedSpecials, c) {
			n++
		}
	}
	if n < p.MinSpecial {
		return fmt.Sprintf("Password must include at least %d special character(s) from the set: %s",
			p.MinSpecial, p.AllowedSpecials)
	}
	return ""
}

func (v *Validator) checkPwned(password string, p Policy) string {
	if !p.CheckPwned {
		return ""
	}
	if v.pwned == nil {
		return "Unable to verify if the password has been pwned. Please try again later."
	}
	count, err := v.pwned.Count(password)
	if err != nil {
		// Fail closed: an unreachable breach database never waves a
		// password through.
		return "Unable to verify if the password has been pwned. Please try again later."
	}
	if count > 0 {
		return fmt.Sprintf("The password you entered has appeared in %d data breaches. "+
			"Please choose a more secure password to protect your account.", count)
	}
	return ""
}

// checkEntropy computes Shannon entropy over the character frequency
// distribution of the password.
func checkEntropy(password string, p Policy) string {
	if p.MinEntropy <= 0 {
		return ""
	}
	if password == "" {
		return "Password cannot be empty."
	}
	freq := map[rune]int{}
	total := 0
	for _, c := range password {
		freq[c]++
		total++
	}
	entropy := 0.0
	for _, count := range freq {
		ratio := float64(count) / float64(total)
		entropy -= ratio * math.Log2(ratio)
	}
	if entropy < p.MinEntropy {
		return fmt.Sprintf("The password is too weak. Entropy: %.2f bits (min: %g bits).",
			entropy, p.MinEntropy)
	}
	return ""
}
