// Package wxwork sends application messages through the WeCom (WeChat
// Work) API.
//
// The send pipeline is: resolve an access token (from the credential cache
// when possible), upload the image for image messages, validate and encode
// the message, POST it, and turn the response into a [Result].
//
// # Basic Usage
//
//	client := wxwork.NewClient()
//	res, err := client.NewSender().
//	    SetAuth(wxwork.Auth{CorpID: "wwbefbb2e3cdd824b6", Secret: secret, AgentID: 1000002}).
//	    SetTextMessage("deploy finished").
//	    Send(ctx)
//	if err != nil {
//	    return err // ErrConfig, ErrAuth, ErrIO, ErrUpload or ErrSend
//	}
//	if !res.Success {
//	    log.Printf("rejected: %d %s", res.ErrCode, res.ErrMsg)
//	}
//
// # Tokens
//
// Access tokens are cached for [DefaultTokenTTL] under a key derived from
// the (corp id, secret, agent id) triple. By default every Client shares
// the process-wide cache.Shared() instance, so senders with identical
// credentials reuse one token. Nothing is retried: if the platform refuses
// a cached token ([Result.TokenRejected]), call [TokenProvider.Invalidate]
// and send again.
//
// # Errors
//
// Failures that prevent a send are returned as errors matching one of
// [ErrConfig], [ErrAuth], [ErrIO], [ErrUpload] or [ErrSend]. A non-zero
// platform errcode on a token or upload call is also available as a
// [*RemoteError]. A message the platform rejects is not an error; see
// [Result.Err] to treat it as one.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package wxwork
