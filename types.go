package tokenward

// Identity is the caller-supplied payload carried unchanged through both
// token kinds. It is immutable once issued; Role may be empty, in which
// case issuance applies [TokenConfig.DefaultRole].
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// TokenPair is the result of issuance and rotation: a short-lived access
// token and the identity's single active refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Introspection is the diagnostic view of a token returned by
// [Authority.Introspect]. It is best-effort and must never be used for
// authorization decisions.
type Introspection struct {
	Header map[string]any
	Claims map[string]any
	Valid  bool
	Error  string
}
