package telegram

import (
	"encoding/json"
	"fmt"
)

// Update is an incoming webhook update. At most one of the message fields is set.
type Update struct {
	UpdateID          int64    `json:"update_id"`
	Message           *Message `json:"message,omitempty"`
	EditedMessage     *Message `json:"edited_message,omitempty"`
	ChannelPost       *Message `json:"channel_post,omitempty"`
	EditedChannelPost *Message `json:"edited_channel_post,omitempty"`
}

// Message carries only the fields tgdocs reads.
type Message struct {
	MessageID int64     `json:"message_id"`
	Date      int64     `json:"date"`
	Chat      Chat      `json:"chat"`
	From      *User     `json:"from,omitempty"`
	Caption   *string   `json:"caption,omitempty"`
	Document  *Document `json:"document,omitempty"`
}

type Chat struct {
	ID       int64   `json:"id"`
	Type     string  `json:"type"`
	Title    *string `json:"title,omitempty"`
	Username *string `json:"username,omitempty"`
}

type User struct {
	ID        int64   `json:"id"`
	IsBot     bool    `json:"is_bot"`
	FirstName string  `json:"first_name"`
	Username  *string `json:"username,omitempty"`
}

// DecodeUpdate decodes an update and binds every document in it to bot.
// Absent, null or empty input yields nil, nil.
func DecodeUpdate(data json.RawMessage, bot FileGetter) (*Update, error) {
	if isEmpty(data) {
		return nil, nil
	}
	var u Update
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("decode update: %w", err)
	}
	for _, m := range []*Message{u.Message, u.EditedMessage, u.ChannelPost, u.EditedChannelPost} {
		if m != nil && m.Document != nil {
			m.Document.Bind(bot)
		}
	}
	return &u, nil
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message
	var w struct {
		alias
		Document json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	doc, err := DecodeDocument(w.Document, nil)
	if err != nil {
		return fmt.Errorf("message.document: %w", err)
	}
	*m = Message(w.alias)
	m.Document = doc
	return nil
}

// EffectiveMessage returns whichever message variant the update carries.
func (u *Update) EffectiveMessage() *Message {
	switch {
	case u.Message != nil:
		return u.Message
	case u.EditedMessage != nil:
		return u.EditedMessage
	case u.ChannelPost != nil:
		return u.ChannelPost
	default:
		return u.EditedChannelPost
	}
}
