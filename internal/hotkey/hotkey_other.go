//go:build !linux && !darwin

package hotkey

import "errors"

// New fails on platforms without a global hotkey backend.
func New() (Manager, error) {
	return nil, errors.New("global hotkeys are not supported on this platform")
}
