package wxwork

import (
	"errors"
	"fmt"
)

// Errors returned by this package. Check them with errors.Is.
var (
	// ErrConfig is returned when required local configuration is missing or
	// a message fails validation. It is always a caller bug.
	ErrConfig = errors.New("wxwork: invalid configuration")

	// ErrAuth is returned when the access token could not be obtained.
	ErrAuth = errors.New("wxwork: access token request failed")

	// ErrSend is returned when the send request could not be completed.
	// A platform rejection is reported through Result instead.
	ErrSend = errors.New("wxwork: send failed")

	// ErrUpload is returned when a media upload failed.
	ErrUpload = errors.New("wxwork: media upload failed")

	// ErrIO is returned when a local file cannot be read.
	ErrIO = errors.New("wxwork: read file failed")
)

// Platform errcodes that mean the access token itself was refused.
const (
	CodeInvalidToken = 40014
	CodeExpiredToken = 42001
)

// RemoteError is a non-zero errcode returned by the platform.
type RemoteError struct {
	// Op is the endpoint that failed: "gettoken", "send" or "upload".
	Op   string
	Code int
	Msg  string
}

func (e *RemoteError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: errcode %d", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: errcode %d: %s", e.Op, e.Code, e.Msg)
}

// TokenRejected reports whether the platform refused the access token.
func (e *RemoteError) TokenRejected() bool {
	return e.Code == CodeInvalidToken || e.Code == CodeExpiredToken
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}
