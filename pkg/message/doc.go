// Package message models the application messages accepted by the WeCom
// (WeChat Work) message send endpoint.
//
// A [Message] is one of a closed set of variants: [Text], [Markdown],
// [TextCard] and [Image]. Every variant embeds a [Header] with the recipient
// selector, the agent id and the duplicate check settings. The set is sealed;
// [Encode] switches over it exhaustively, so the msgtype discriminator and
// the payload shape cannot drift apart.
//
// Two construction styles produce the same field set. The terse form
// takes the commonly set fields and defaults the recipients to everyone:
//
//	m := message.NewText("deploy finished")            // touser=@all
//	m := message.NewText("ping", message.ToUsers("zhangsan", "lisi"))
//
// The full form is a plain struct literal:
//
//	m := &message.TextCard{
//	    Header:        message.Header{ToParty: "2|3"},
//	    Title:         "Build #42",
//	    Description:   "passed",
//	    URL:           "https://ci.example.com/42",
//	    EnableIDTrans: message.Bool(true),
//	}
//
// Optional flags are pointers; a nil pointer is omitted from the wire
// payload entirely.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package message
