package message

import "strings"

// Kind is the msgtype discriminator of a message.
type Kind string

const (
	KindText     Kind = "text"
	KindMarkdown Kind = "markdown"
	KindTextCard Kind = "textcard"
	KindImage    Kind = "image"
)

// AllRecipients addresses every member visible to the application.
// When ToUser is AllRecipients the platform ignores ToParty and ToTag.
const AllRecipients = "@all"

// Message is implemented by Text, Markdown, TextCard and Image only.
type Message interface {
	// Kind returns the fixed msgtype of the variant.
	Kind() Kind
	// Head returns the fields shared by every variant.
	Head() *Header
	sealed()
}

// Header holds the addressing fields common to every variant.
type Header struct {
	// ToUser is a "|" separated list of member ids, or AllRecipients.
	ToUser string
	// ToParty is a "|" separated list of department ids.
	ToParty string
	// ToTag is a "|" separated list of tag ids.
	ToTag string

	AgentID int

	EnableDuplicateCheck *bool
	// DuplicateCheckInterval is in seconds. The platform defaults to 1800
	// and caps it at 14400.
	DuplicateCheckInterval *int
}

// Head returns h itself so that embedding types satisfy Message.
func (h *Header) Head() *Header { return h }

// HasRecipients reports whether at least one selector is set.
func (h *Header) HasRecipients() bool {
	return h.ToUser != "" || h.ToParty != "" || h.ToTag != ""
}

// RecipientOption sets part of the recipient selector.
type RecipientOption func(*Header)

// ToUsers addresses the given member ids.
func ToUsers(ids ...string) RecipientOption {
	return func(h *Header) { h.ToUser = strings.Join(ids, "|") }
}

// ToParties addresses the given department ids.
func ToParties(ids ...string) RecipientOption {
	return func(h *Header) { h.ToParty = strings.Join(ids, "|") }
}

// ToTags addresses the given tag ids.
func ToTags(ids ...string) RecipientOption {
	return func(h *Header) { h.ToTag = strings.Join(ids, "|") }
}

// ToAll addresses every member visible to the application.
func ToAll() RecipientOption {
	return func(h *Header) { h.ToUser = AllRecipients }
}

// apply sets the recipients, falling back to AllRecipients when no
// option selected anybody.
func (h *Header) apply(opts []RecipientOption) {
	for _, opt := range opts {
		opt(h)
	}
	if !h.HasRecipients() {
		h.ToUser = AllRecipients
	}
}

// Bool returns a pointer to v, for optional flags.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for optional numeric settings.
func Int(v int) *int { return &v }
