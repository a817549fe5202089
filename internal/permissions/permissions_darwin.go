//go:build darwin

package permissions

/*
#cgo CFLAGS: -x objective-c -fobjc-arc
#cgo LDFLAGS: -framework AVFoundation -framework Cocoa
#import <AVFoundation/AVFoundation.h>
#import <Cocoa/Cocoa.h>

static int checkMicrophonePermission() {
    AVAuthorizationStatus status = [AVCaptureDevice authorizationStatusForMediaType:AVMediaTypeAudio];
    return (int)status;
}

static void requestMicrophonePermission() {
    [AVCaptureDevice requestAccessForMediaType:AVMediaTypeAudio completionHandler:^(BOOL granted) {}];
}

static int checkAccessibilityPermission() {
    NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import (
	"errors"

	"github.com/rs/zerolog"
)

const (
	PermissionNotDetermined = 0
	PermissionRestricted    = 1
	PermissionDenied        = 2
	PermissionAuthorized    = 3
)

var (
	ErrMicrophone    = errors.New("microphone permission not granted")
	ErrAccessibility = errors.New("accessibility permission not granted")
)

// CheckMicrophone returns the current microphone permission status
func CheckMicrophone() int {
	return int(C.checkMicrophonePermission())
}

// RequestMicrophone triggers the system microphone permission dialog
func RequestMicrophone() {
	C.requestMicrophonePermission()
}

// CheckAccessibility reports whether global hotkeys may be registered. It
// shows the system prompt when they may not.
func CheckAccessibility() bool {
	return C.checkAccessibilityPermission() == 1
}

// EnsurePermissions checks the microphone and, when a global hotkey is
// configured, accessibility. A missing grant triggers the system prompt.
func EnsurePermissions(log zerolog.Logger, needHotkey bool) error {
	switch CheckMicrophone() {
	case PermissionAuthorized:
	case PermissionNotDetermined:
		log.Warn().Msg("Microphone permission required, approve the system prompt and restart")
		RequestMicrophone()
		return ErrMicrophone
	default:
		log.Warn().Msg("Microphone access denied: System Settings → Privacy & Security → Microphone")
		return ErrMicrophone
	}

	if needHotkey && !CheckAccessibility() {
		log.Warn().Msg("Accessibility permission required for hotkeys: System Settings → Privacy & Security → Accessibility")
		return ErrAccessibility
	}

	return nil
}
