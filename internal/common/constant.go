package common

// Cookie names form the wire contract with browser clients: both are set on
// every successful session issuance and read back on refresh.
const (
	AccessTokenCookieName  = "auth_access_token"
	RefreshTokenCookieName = "auth_refresh_token"
)

// AuthUserIDHeaderName is set by the upstream authentication proxy on
// requests that already passed authentication.
const AuthUserIDHeaderName = "X-Auth-User-ID"
