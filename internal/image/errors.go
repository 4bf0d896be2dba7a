package image

import "errors"

// ErrImage indicates preparing or building an image layer failed.
var ErrImage = errors.New("image build failed")
