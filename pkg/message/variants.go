package message

// Text is a plain text message. Content may contain "\n" and <a> links and
// should stay within 2048 bytes; the platform truncates longer content.
type Text struct {
	Header

	Content string

	// Safe marks the message confidential (watermarked, not forwardable).
	Safe          *bool
	EnableIDTrans *bool
}

// Markdown is a message using the platform's markdown subset.
type Markdown struct {
	Header

	// Content is at most 2048 bytes of UTF-8.
	Content string
}

// TextCard is a card with a title, a short description and a link.
type TextCard struct {
	Header

	Title       string // at most 128 bytes
	Description string // at most 512 bytes
	URL         string // at most 2048 bytes, scheme required
	// ButtonText is at most 4 characters. Empty lets the platform render
	// its default ("Details").
	ButtonText string

	EnableIDTrans *bool
}

// Image shows a previously uploaded image referenced by media id.
type Image struct {
	Header

	MediaID string

	Safe *bool
}

func (*Text) Kind() Kind     { return KindText }
func (*Markdown) Kind() Kind { return KindMarkdown }
func (*TextCard) Kind() Kind { return KindTextCard }
func (*Image) Kind() Kind    { return KindImage }

func (*Text) sealed()     {}
func (*Markdown) sealed() {}
func (*TextCard) sealed() {}
func (*Image) sealed()    {}

// NewText builds a text message. Without recipient options it is sent to
// everyone.
func NewText(content string, opts ...RecipientOption) *Text {
	m := &Text{Content: content}
	m.apply(opts)
	return m
}

// NewMarkdown builds a markdown message. Without recipient options it is
// sent to everyone.
func NewMarkdown(content string, opts ...RecipientOption) *Markdown {
	m := &Markdown{Content: content}
	m.apply(opts)
	return m
}

// NewTextCard builds a text card. buttonText may be empty.
func NewTextCard(title, description, url, buttonText string, opts ...RecipientOption) *TextCard {
	m := &TextCard{
		Title:       title,
		Description: description,
		URL:         url,
		ButtonText:  buttonText,
	}
	m.apply(opts)
	return m
}

// NewImage builds an image message around an uploaded media id.
func NewImage(mediaID string, opts ...RecipientOption) *Image {
	m := &Image{MediaID: mediaID}
	m.apply(opts)
	return m
}

// Clone returns a deep copy of m. It returns nil for a nil message.
func Clone(m Message) Message {
	switch v := m.(type) {
	case *Text:
		if v == nil {
			return nil
		}
		c := *v
		c.Header = cloneHeader(v.Header)
		c.Safe = cloneBool(v.Safe)
		c.EnableIDTrans = cloneBool(v.EnableIDTrans)
		return &c
	case *Markdown:
		if v == nil {
			return nil
		}
		c := *v
		c.Header = cloneHeader(v.Header)
		return &c
	case *TextCard:
		if v == nil {
			return nil
		}
		c := *v
		c.Header = cloneHeader(v.Header)
		c.EnableIDTrans = cloneBool(v.EnableIDTrans)
		return &c
	case *Image:
		if v == nil {
			return nil
		}
		c := *v
		c.Header = cloneHeader(v.Header)
		c.Safe = cloneBool(v.Safe)
		return &c
	}
	return nil
}

func cloneHeader(h Header) Header {
	h.EnableDuplicateCheck = cloneBool(h.EnableDuplicateCheck)
	if h.DuplicateCheckInterval != nil {
		h.DuplicateCheckInterval = Int(*h.DuplicateCheckInterval)
	}
	return h
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	return Bool(*b)
}
