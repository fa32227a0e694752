package domain

// TokenPair is what the token endpoints return: the short-lived signed
// access token (JWT) and the opaque refresh token. The pair is immutable
// once issued; a later login supersedes it rather than mutating it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
