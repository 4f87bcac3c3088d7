// Package wxnotify sends WeCom (WeChat Work) application messages.
//
// Example usage:
//
//	res, err := wxnotify.NewSender().
//	    SetAuth(wxnotify.Auth{CorpID: "ww...", Secret: secret, AgentID: 1000002}).
//	    SetTextMessage("backup finished").
//	    Send(context.Background())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !res.Success {
//	    log.Printf("rejected: %d %s", res.ErrCode, res.ErrMsg)
//	}
//
// The full API lives in pkg/wxwork; pkg/message holds the message model.
package wxnotify

import (
	"github.com/bft-labs/wxnotify/pkg/wxwork"
)

// Auth is the (corp id, secret, agent id) triple that identifies an app.
type Auth = wxwork.Auth

// Client holds the token provider and media uploader shared by senders.
type Client = wxwork.Client

// Sender accumulates auth and one message, then sends it.
type Sender = wxwork.Sender

// Result is the outcome of a completed send call.
type Result = wxwork.Result

// Option configures a Client.
type Option = wxwork.Option

// Errors returned by the send pipeline.
var (
	ErrConfig = wxwork.ErrConfig
	ErrAuth   = wxwork.ErrAuth
	ErrSend   = wxwork.ErrSend
	ErrUpload = wxwork.ErrUpload
	ErrIO     = wxwork.ErrIO
)

// NewClient returns a Client that shares the process-wide token cache.
func NewClient(opts ...Option) *Client {
	return wxwork.NewClient(opts...)
}

// NewSender returns a Sender backed by a default Client.
func NewSender() *Sender {
	return wxwork.NewClient().NewSender()
}

// DefaultBaseURL is the public WeCom API host.
const DefaultBaseURL = wxwork.DefaultBaseURL
