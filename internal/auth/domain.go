package auth

import "strings"

// DomainPolicy restricts registration and login to email addresses under a
// single organizational domain.
type DomainPolicy struct {
	domain string
}

// NewDomainPolicy builds a policy for the given organizational domain.
func NewDomainPolicy(domain string) DomainPolicy {
	return DomainPolicy{domain: strings.ToLower(strings.TrimSpace(domain))}
}

// Allows reports whether the email's domain suffix matches the
// organizational domain, case-insensitively. The local part is never
// inspected.
func (p DomainPolicy) Allows(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), p.domain)
}

// Domain returns the configured organizational domain.
func (p DomainPolicy) Domain() string {
	return p.domain
}
