package service

import (
	"golang.org/x/crypto/bcrypt"
)

// Default credential policy values.
const (
	DefaultInstitutionalDomain = "policiapenal.pr.gov.br"
	DefaultTemporaryCredential = "deppen2026"
	DefaultMinPasswordLength   = 6
	MinJustificationLength     = 5
)

// Policy holds the credential rules shared by the account directory and the
// authentication gate.
type Policy struct {
	// InstitutionalDomain is the mandatory email suffix (without "@").
	// Empty disables the check.
	InstitutionalDomain string
	// DefaultCredential is the shared temporary secret of every new account.
	DefaultCredential string
	MinPasswordLength int
	BcryptCost        int
}

func (p Policy) withDefaults() Policy {
	if p.DefaultCredential == "" {
		p.DefaultCredential = DefaultTemporaryCredential
	}
	if p.MinPasswordLength <= 0 {
		p.MinPasswordLength = DefaultMinPasswordLength
	}
	if p.BcryptCost < bcrypt.MinCost || p.BcryptCost > bcrypt.MaxCost {
		p.BcryptCost = bcrypt.DefaultCost
	}
	return p
}

func (p Policy) hash(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), p.BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func verifySecret(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
