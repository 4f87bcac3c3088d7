package wxwork

import (
	"context"
	"fmt"

	"github.com/bft-labs/wxnotify/pkg/log"
	"github.com/bft-labs/wxnotify/pkg/message"
)

// Sender accumulates auth configuration and one message, then sends it.
// Auth settings accumulate across calls; setting a message replaces the
// previous one. A Sender must not be used from several goroutines at once.
//
//	res, err := client.NewSender().
//	    SetAuth(wxwork.Auth{CorpID: "ww...", Secret: "...", AgentID: 1000002}).
//	    SetTextMessage("deploy finished").
//	    Send(ctx)
type Sender struct {
	client    *Client
	auth      Auth
	msg       message.Message
	imagePath string
}

// SetAuth merges the non-zero fields of a into the configured auth.
func (s *Sender) SetAuth(a Auth) *Sender {
	s.auth = s.auth.Merge(a)
	return s
}

// SetAuthFunc lets fn edit the configured auth in place.
func (s *Sender) SetAuthFunc(fn func(*Auth)) *Sender {
	fn(&s.auth)
	return s
}

// SetMessage replaces the current message with a copy of m. If m has no
// agent id, the configured auth's agent id is stamped onto the copy.
func (s *Sender) SetMessage(m message.Message) *Sender {
	s.imagePath = ""
	s.msg = message.Clone(m)
	if s.msg != nil && s.msg.Head().AgentID == 0 {
		s.msg.Head().AgentID = s.auth.AgentID
	}
	return s
}

// SetTextMessage sets a text message. Without recipient options it goes to
// everyone.
func (s *Sender) SetTextMessage(content string, opts ...message.RecipientOption) *Sender {
	return s.set(message.NewText(content, opts...), "")
}

// SetTextMessageFunc sets a text message populated by fn. The agent id is
// stamped before fn runs; recipients are not defaulted.
func (s *Sender) SetTextMessageFunc(fn func(*message.Text)) *Sender {
	m := &message.Text{}
	m.AgentID = s.auth.AgentID
	fn(m)
	s.imagePath = ""
	s.msg = m
	return s
}

// SetMarkdownMessage sets a markdown message. Without recipient options it
// goes to everyone.
func (s *Sender) SetMarkdownMessage(content string, opts ...message.RecipientOption) *Sender {
	return s.set(message.NewMarkdown(content, opts...), "")
}

// SetMarkdownMessageFunc sets a markdown message populated by fn.
func (s *Sender) SetMarkdownMessageFunc(fn func(*message.Markdown)) *Sender {
	m := &message.Markdown{}
	m.AgentID = s.auth.AgentID
	fn(m)
	s.imagePath = ""
	s.msg = m
	return s
}

// SetTextCardMessage sets a text card. buttonText may be empty.
func (s *Sender) SetTextCardMessage(title, description, url, buttonText string, opts ...message.RecipientOption) *Sender {
	return s.set(message.NewTextCard(title, description, url, buttonText, opts...), "")
}

// SetTextCardMessageFunc sets a text card populated by fn.
func (s *Sender) SetTextCardMessageFunc(fn func(*message.TextCard)) *Sender {
	m := &message.TextCard{}
	m.AgentID = s.auth.AgentID
	fn(m)
	s.imagePath = ""
	s.msg = m
	return s
}

// SetImageMessage sets an image message for the file at path. The file is
// uploaded during Send.
func (s *Sender) SetImageMessage(path string, opts ...message.RecipientOption) *Sender {
	return s.set(message.NewImage("", opts...), path)
}

// SetImageMessageFunc sets an image message for the file at path, populated
// by fn. The media id set by fn is replaced by the upload result.
func (s *Sender) SetImageMessageFunc(path string, fn func(*message.Image)) *Sender {
	m := &message.Image{}
	m.AgentID = s.auth.AgentID
	fn(m)
	s.imagePath = path
	s.msg = m
	return s
}

func (s *Sender) set(m message.Message, imagePath string) *Sender {
	m.Head().AgentID = s.auth.AgentID
	s.msg = m
	s.imagePath = imagePath
	return s
}

// Build snapshots the configured auth and message into an immutable
// Request. It fails with ErrConfig when auth is incomplete or no message
// is set.
func (s *Sender) Build() (Request, error) {
	if err := s.auth.Validate(); err != nil {
		return Request{}, err
	}
	if s.msg == nil {
		return Request{}, configError("no message set")
	}
	return Request{
		auth:      s.auth,
		msg:       message.Clone(s.msg),
		imagePath: s.imagePath,
	}, nil
}

// Send builds the request and sends it with the Sender's client.
func (s *Sender) Send(ctx context.Context) (Result, error) {
	req, err := s.Build()
	if err != nil {
		return Result{}, err
	}
	return s.client.Send(ctx, req)
}

// Request is an immutable auth + message pair ready to send.
type Request struct {
	auth      Auth
	msg       message.Message
	imagePath string
}

// NewRequest builds a Request from auth and a copy of m.
func NewRequest(auth Auth, m message.Message) Request {
	return Request{auth: auth, msg: message.Clone(m)}
}

// Auth returns the request's credentials.
func (r Request) Auth() Auth { return r.auth }

// Message returns a copy of the request's message.
func (r Request) Message() message.Message { return message.Clone(r.msg) }

// ImagePath returns the file uploaded for an image message, if any.
func (r Request) ImagePath() string { return r.imagePath }

// Send resolves a token, uploads the pending image if there is one,
// validates and encodes the message, and posts it.
//
// Local problems yield ErrConfig, token problems ErrAuth, upload problems
// ErrIO or ErrUpload, and a send request that could not complete ErrSend.
// Once the platform answers, Send returns a Result and a nil error, even
// when the platform rejected the message.
func (c *Client) Send(ctx context.Context, req Request) (Result, error) {
	if err := req.auth.Validate(); err != nil {
		return Result{}, err
	}
	msg := message.Clone(req.msg)
	if msg == nil {
		return Result{}, configError("no message set")
	}

	// A pending image is validated with a placeholder media id so that a
	// bad message fails before anything is uploaded.
	probe := msg
	var img *message.Image
	if req.imagePath != "" {
		var ok bool
		if img, ok = msg.(*message.Image); !ok {
			return Result{}, configError("image path set on %s message", msg.Kind())
		}
		pending := *img
		pending.MediaID = "pending-upload"
		probe = &pending
	}
	if err := message.Validate(probe); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	token, err := c.tokens.Resolve(ctx, req.auth)
	if err != nil {
		return Result{}, err
	}

	if img != nil {
		mediaID, err := c.media.Upload(ctx, req.imagePath, req.auth)
		if err != nil {
			return Result{}, err
		}
		img.MediaID = mediaID
	}

	payload, err := message.Encode(msg)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	resp, err := c.api.SendMessage(ctx, token, payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrSend, err)
	}

	result := newResult(resp)
	if result.Success {
		c.logger.Debug("message sent",
			log.String("msgtype", string(msg.Kind())),
			log.String("msgid", result.MsgID),
		)
	} else {
		c.logger.Warn("message rejected",
			log.String("msgtype", string(msg.Kind())),
			log.Int("errcode", result.ErrCode),
			log.String("errmsg", result.ErrMsg),
		)
	}
	return result, nil
}
