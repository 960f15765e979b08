package auth

import "time"

// Claim is the verified identity extracted from a bearer token.
type Claim struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	Provider  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
