package images

import (
	"github.com/lehigh-university-libraries/shopik/internal/apperr"
)

// Unavailable stands in for an image that could not be loaded. Reading it
// returns the load error, so the analysis pipeline records a failed result in
// its place.
type Unavailable struct {
	Ref string
	Err error
}

func (u Unavailable) Filename() string {
	return u.Ref
}

func (u Unavailable) Bytes() ([]byte, error) {
	return nil, apperr.Wrap(apperr.KindBadRequest, "", "Image unavailable: "+u.Ref, u.Err)
}

func (u Unavailable) Release() error {
	return nil
}
