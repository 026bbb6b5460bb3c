package identity

import (
	"errors"
	"net/url"
)

var ErrSignInRequired = errors.New("sign in required")

// SignInRequiredError carries where the user should go to sign in.
type SignInRequiredError struct {
	SignInPath string
}

func (e *SignInRequiredError) Error() string {
	return "please sign in to continue (" + e.SignInPath + ")"
}

func (e *SignInRequiredError) Is(target error) bool { return target == ErrSignInRequired }

// Gate guards personalized features. Check is cheap and is meant to run on
// every access, never cached.
type Gate struct {
	SignInPath string
}

func (g Gate) Check(s *Session) error {
	if s != nil && s.State() == Authenticated {
		return nil
	}
	return &SignInRequiredError{SignInPath: g.SignInPath}
}

// RedirectURL returns the sign-in location that returns the user to next.
func (g Gate) RedirectURL(next string) string {
	if next == "" {
		return g.SignInPath
	}
	return g.SignInPath + "?next=" + url.QueryEscape(next)
}
