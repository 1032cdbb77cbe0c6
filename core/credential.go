package core

// Credential holds an API bearer token with protection against accidental
// logging. The token is never exposed through String(), GoString(), or
// JSON/text marshaling.
//
//	cred := NewCredential("sk-abc123")
//	fmt.Println(cred)               // [REDACTED]
//	cred.AuthorizationHeader()      // "Bearer sk-abc123"
type Credential struct {
	token string
}

// NewCredential wraps a bearer token.
func NewCredential(token string) Credential {
	return Credential{token: token}
}

// String returns a redacted placeholder.
func (c Credential) String() string {
	return "[REDACTED]"
}

// GoString returns a redacted placeholder for %#v formatting.
func (c Credential) GoString() string {
	return "core.Credential{[REDACTED]}"
}

// MarshalJSON returns a redacted JSON string.
func (c Credential) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText returns a redacted text representation, which also covers YAML.
func (c Credential) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the raw token.
// Be careful not to log or serialize the returned value.
func (c Credential) Expose() string {
	return c.token
}

// IsEmpty reports whether no token is configured.
func (c Credential) IsEmpty() bool {
	return c.token == ""
}

// AuthorizationHeader returns the value for the Authorization header.
// Callers must check IsEmpty first; an empty credential yields "".
func (c Credential) AuthorizationHeader() string {
	if c.token == "" {
		return ""
	}
	return "Bearer " + c.token
}
