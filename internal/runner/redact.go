package runner

import (
	"sort"
	"strings"
)

const redactedMask = "****"

type redactor struct {
	secrets []string
}

func newRedactor(creds Credentials) *redactor {
	var secrets []string

	for _, secret := range []string{creds.SudoPassword, creds.SSHPassphrase} {
		if secret != "" {
			secrets = append(secrets, secret)
		}
	}

	// longest first, so a secret containing another is masked whole
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })

	return &redactor{secrets: secrets}
}

func (r *redactor) Redact(s string) string {
	for _, secret := range r.secrets {
		s = strings.ReplaceAll(s, secret, redactedMask)
	}
	return s
}

// Redact masks every credential value found in s.
func Redact(s string, creds Credentials) string {
	return newRedactor(creds).Redact(s)
}

// safeCut returns how much of s can be redacted and released now: a secret
// may still be completing in the remaining tail.
func (r *redactor) safeCut(s string) int {
	if len(r.secrets) == 0 {
		return len(s)
	}

	// secrets are sorted longest first
	cut := len(s) - (len(r.secrets[0]) - 1)
	if cut <= 0 {
		return 0
	}

	// do not split a complete secret that straddles the cut
	for moved := true; moved; {
		moved = false
		for _, secret := range r.secrets {
			for from := 0; ; {
				idx := strings.Index(s[from:], secret)
				if idx < 0 {
					break
				}
				idx += from
				if idx < cut && idx+len(secret) > cut {
					cut = idx
					moved = true
				}
				from = idx + 1
			}
		}
	}

	return cut
}
