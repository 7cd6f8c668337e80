package rest

import "asyncrest/await"

// Authenticator attempts to establish the identity behind a request.
// Returning (nil, nil) means the authenticator does not claim the request
// and the next one in the chain is tried. An error aborts dispatch and is
// rendered through the usual error mapping.
type Authenticator interface {
	Authenticate(c *Context) (*User, error)
}

// AsyncAuthenticator is the awaitable authenticator form. When implemented,
// dispatch awaits AuthenticateAsync and never calls Authenticate.
type AsyncAuthenticator interface {
	Authenticator
	AuthenticateAsync(c *Context) *await.Promise[*User]
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(c *Context) (*User, error)

func (f AuthenticatorFunc) Authenticate(c *Context) (*User, error) { return f(c) }

// AsyncAuthenticatorFunc adapts a promise-returning function to the
// AsyncAuthenticator interface. Its synchronous form awaits the same
// promise, so both forms authenticate identically.
type AsyncAuthenticatorFunc func(c *Context) *await.Promise[*User]

func (f AsyncAuthenticatorFunc) Authenticate(c *Context) (*User, error) {
	return f(c).Await(c.RequestContext())
}

func (f AsyncAuthenticatorFunc) AuthenticateAsync(c *Context) *await.Promise[*User] {
	return f(c)
}

func authenticate(c *Context, authenticators []Authenticator) (*User, error) {
	for _, a := range authenticators {
		var (
			user *User
			err  error
		)
		if aa, ok := a.(AsyncAuthenticator); ok {
			user, err = aa.AuthenticateAsync(c).Await(c.RequestContext())
		} else {
			user, err = a.Authenticate(c)
		}
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return Anonymous, nil
}
