package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"
)

// ErrInvalid is returned for messages that cannot be sent as built.
var ErrInvalid = errors.New("message: invalid")

// Platform limits checked by Validate.
const (
	MaxMarkdownBytes   = 2048
	MaxCardTitleBytes  = 128
	MaxCardDescBytes   = 512
	MaxCardURLBytes    = 2048
	MaxCardButtonRunes = 4
)

// wireMessage is the JSON body of the message send endpoint.
type wireMessage struct {
	ToUser  string `json:"touser,omitempty"`
	ToParty string `json:"toparty,omitempty"`
	ToTag   string `json:"totag,omitempty"`
	MsgType Kind   `json:"msgtype"`
	AgentID int    `json:"agentid"`

	Text     *wireContent  `json:"text,omitempty"`
	Markdown *wireContent  `json:"markdown,omitempty"`
	TextCard *wireTextCard `json:"textcard,omitempty"`
	Image    *wireImage    `json:"image,omitempty"`

	Safe                   *int `json:"safe,omitempty"`
	EnableIDTrans          *int `json:"enable_id_trans,omitempty"`
	EnableDuplicateCheck   *int `json:"enable_duplicate_check,omitempty"`
	DuplicateCheckInterval *int `json:"duplicate_check_interval,omitempty"`
}

type wireContent struct {
	Content string `json:"content"`
}

type wireTextCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	BtnTxt      string `json:"btntxt,omitempty"`
}

type wireImage struct {
	MediaID string `json:"media_id"`
}

// Encode serializes m into the platform's JSON shape. Unset optional fields
// are omitted; msgtype and the variant's required fields are always present.
func Encode(m Message) ([]byte, error) {
	w, err := toWire(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func toWire(m Message) (*wireMessage, error) {
	if isNil(m) {
		return nil, fmt.Errorf("%w: no message", ErrInvalid)
	}

	h := m.Head()
	w := &wireMessage{
		ToUser:                 h.ToUser,
		ToParty:                h.ToParty,
		ToTag:                  h.ToTag,
		MsgType:                m.Kind(),
		AgentID:                h.AgentID,
		EnableDuplicateCheck:   flag(h.EnableDuplicateCheck),
		DuplicateCheckInterval: h.DuplicateCheckInterval,
	}

	switch v := m.(type) {
	case *Text:
		w.Text = &wireContent{Content: v.Content}
		w.Safe = flag(v.Safe)
		w.EnableIDTrans = flag(v.EnableIDTrans)
	case *Markdown:
		w.Markdown = &wireContent{Content: v.Content}
	case *TextCard:
		w.TextCard = &wireTextCard{
			Title:       v.Title,
			Description: v.Description,
			URL:         v.URL,
			BtnTxt:      v.ButtonText,
		}
		w.EnableIDTrans = flag(v.EnableIDTrans)
	case *Image:
		w.Image = &wireImage{MediaID: v.MediaID}
		w.Safe = flag(v.Safe)
	default:
		return nil, fmt.Errorf("%w: unsupported message type %T", ErrInvalid, m)
	}
	return w, nil
}

// Validate checks m against the recipient rule and the platform's field
// limits. Text content length and the duplicate check interval are left to
// the platform.
func Validate(m Message) error {
	if isNil(m) {
		return fmt.Errorf("%w: no message", ErrInvalid)
	}

	h := m.Head()
	if !h.HasRecipients() {
		return fmt.Errorf("%w: one of touser, toparty or totag is required", ErrInvalid)
	}
	if h.AgentID <= 0 {
		return fmt.Errorf("%w: agentid is required", ErrInvalid)
	}

	switch v := m.(type) {
	case *Text:
		if v.Content == "" {
			return fmt.Errorf("%w: text content is required", ErrInvalid)
		}
	case *Markdown:
		if v.Content == "" {
			return fmt.Errorf("%w: markdown content is required", ErrInvalid)
		}
		if len(v.Content) > MaxMarkdownBytes {
			return fmt.Errorf("%w: markdown content exceeds %d bytes", ErrInvalid, MaxMarkdownBytes)
		}
	case *TextCard:
		return validateTextCard(v)
	case *Image:
		if v.MediaID == "" {
			return fmt.Errorf("%w: image media_id is required", ErrInvalid)
		}
	}
	return nil
}

func validateTextCard(v *TextCard) error {
	switch {
	case v.Title == "":
		return fmt.Errorf("%w: textcard title is required", ErrInvalid)
	case len(v.Title) > MaxCardTitleBytes:
		return fmt.Errorf("%w: textcard title exceeds %d bytes", ErrInvalid, MaxCardTitleBytes)
	case v.Description == "":
		return fmt.Errorf("%w: textcard description is required", ErrInvalid)
	case len(v.Description) > MaxCardDescBytes:
		return fmt.Errorf("%w: textcard description exceeds %d bytes", ErrInvalid, MaxCardDescBytes)
	case v.URL == "":
		return fmt.Errorf("%w: textcard url is required", ErrInvalid)
	case len(v.URL) > MaxCardURLBytes:
		return fmt.Errorf("%w: textcard url exceeds %d bytes", ErrInvalid, MaxCardURLBytes)
	case utf8.RuneCountInString(v.ButtonText) > MaxCardButtonRunes:
		return fmt.Errorf("%w: textcard button text exceeds %d characters", ErrInvalid, MaxCardButtonRunes)
	}

	u, err := url.Parse(v.URL)
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("%w: textcard url %q must include a scheme", ErrInvalid, v.URL)
	}
	return nil
}

// isNil also catches typed nil pointers stored in the interface.
func isNil(m Message) bool {
	switch v := m.(type) {
	case nil:
		return true
	case *Text:
		return v == nil
	case *Markdown:
		return v == nil
	case *TextCard:
		return v == nil
	case *Image:
		return v == nil
	}
	return false
}

func flag(b *bool) *int {
	if b == nil {
		return nil
	}
	v := 0
	if *b {
		v = 1
	}
	return &v
}
