package wxwork

import (
	"encoding/json"
	"fmt"

	"github.com/bft-labs/wxnotify/internal/api"
)

// Result is the outcome of a completed send call. Success is true iff the
// platform answered errcode 0. A rejected message is not an error: Send
// returns it with Success false and the full response in Raw.
type Result struct {
	Success bool
	ErrCode int
	ErrMsg  string

	// MsgID identifies the delivered message (usable for recall).
	MsgID string

	// Recipients the platform could not deliver to, "|" separated.
	InvalidUser    string
	InvalidParty   string
	InvalidTag     string
	UnlicensedUser string

	// Raw is the full response body.
	Raw json.RawMessage
}

func newResult(resp api.SendResponse) Result {
	return Result{
		Success:        resp.OK(),
		ErrCode:        resp.Code(),
		ErrMsg:         resp.ErrMsg,
		MsgID:          resp.MsgID,
		InvalidUser:    resp.InvalidUser,
		InvalidParty:   resp.InvalidParty,
		InvalidTag:     resp.InvalidTag,
		UnlicensedUser: resp.UnlicensedUser,
		Raw:            resp.Raw,
	}
}

// Err returns nil for a successful result, and otherwise an ErrSend
// wrapping a *RemoteError, for callers that treat rejection as failure.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrSend, &RemoteError{Op: "send", Code: r.ErrCode, Msg: r.ErrMsg})
}

// TokenRejected reports whether the send failed because the platform
// refused the access token. Invalidate the token and send again to recover.
func (r Result) TokenRejected() bool {
	return !r.Success && (r.ErrCode == CodeInvalidToken || r.ErrCode == CodeExpiredToken)
}
