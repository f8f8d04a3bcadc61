package models

// TokenPair bundles a short-lived access token and a long-lived refresh
// token, both HS256-signed JWTs. A pair is minted fresh on every issuance
// and never mutated.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RequestContext carries metadata about the originating request. It is
// persisted with every refresh session for audit and binding, and is opaque
// to the issuance logic itself.
type RequestContext struct {
	UserAgent string
	IPAddress string
}
