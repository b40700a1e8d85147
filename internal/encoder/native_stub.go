//go:build !native

package encoder

import "errors"

// ErrNativeUnavailable is returned when a caller asks for the native
// accelerator backend in a binary built without it.
var ErrNativeUnavailable = errors.New("encoder: native backend not built into this binary")

// NativeAvailable reports whether this binary was built with the native
// accelerator runtime linked in. No accelerator SDK binding exists in the
// reference pack, so no "native" build tag is ever actually exercised;
// this stays false until a real binding is wired in.
func NativeAvailable() bool { return false }

func newNativeClient(modelPath string) (Client, error) {
	return nil, ErrNativeUnavailable
}
