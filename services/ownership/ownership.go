// Package ownership decides whether an authenticated identity may mutate a
// resource. Callers must have loaded the resource first so that a missing
// resource is reported as not found rather than forbidden.
package ownership

import "errors"

var ErrForbidden = errors.New("forbidden")

type Identity struct {
	UserID string
}

func Authorize(identity Identity, ownerID string) error {
	if identity.UserID == "" || identity.UserID != ownerID {
		return ErrForbidden
	}
	return nil
}
