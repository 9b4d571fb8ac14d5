package telegram

// Update is one event delivered by getUpdates. Non-message updates are
// filtered server-side via allowed_updates, but Message stays a pointer
// because the API may still omit it.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an incoming chat message. Text is nil for non-text content
// (stickers, photos, voice notes).
type Message struct {
	From *User   `json:"from,omitempty"`
	Chat Chat    `json:"chat"`
	Text *string `json:"text,omitempty"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// User identifies a message sender.
type User struct {
	ID int64 `json:"id"`
}

// ExtractTextReply returns the text of u when it is a private-chat text
// message from userID. Both the sender and the chat must match: the bot may
// be visible to other users, and only the configured correspondent counts.
func ExtractTextReply(u Update, userID int64) (string, bool) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.Text == nil {
		return "", false
	}
	if msg.From.ID != userID || msg.Chat.ID != userID {
		return "", false
	}
	return *msg.Text, true
}
