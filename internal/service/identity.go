package service

// GuestScope is the scope key used when no user is signed in.
const GuestScope = "guest"

// IdentityProvider supplies the scope key carts and orders persist under.
type IdentityProvider interface {
	CurrentScopeKey() string
}

// StaticIdentity is a fixed identity, e.g. one dev user or the guest.
type StaticIdentity struct {
	Scope string
}

func (s StaticIdentity) CurrentScopeKey() string {
	if s.Scope == "" {
		return GuestScope
	}
	return s.Scope
}
