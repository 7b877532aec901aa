package chatui

import (
	"encoding/json"

	"github.com/lojasmm/smoky/internal/dialogflow"
)

// Position says which side of the conversation a message is rendered on.
type Position string

const (
	PositionLeft  Position = "left"  // agent
	PositionRight Position = "right" // user
)

// Message is one flat, independently renderable chat bubble.
// The renderer dispatches on Type.
type Message struct {
	ID       string                 `json:"_id"`
	Type     dialogflow.MessageKind `json:"type"`
	Content  Content                `json:"content"`
	Position Position               `json:"position"`
}

type Content struct {
	Text        string          `json:"text,omitempty"`
	Items       []Item          `json:"items,omitempty"`
	ActionLink  string          `json:"actionLink,omitempty"`
	Description string          `json:"description,omitempty"`
	ImgURL      string          `json:"imgUrl,omitempty"`
	Event       json.RawMessage `json:"event,omitempty"`
}

// Item is one entry of a list-like message (list rows, accordion panels, chips).
type Item struct {
	ID          string                 `json:"_id"`
	Type        dialogflow.MessageKind `json:"type,omitempty"`
	Text        string                 `json:"text,omitempty"`
	ActionLink  string                 `json:"actionLink,omitempty"`
	Description string                 `json:"description,omitempty"`
	ImgURL      string                 `json:"imgUrl,omitempty"`
	Event       json.RawMessage        `json:"event,omitempty"`
}

// TextMessage builds a plain text bubble. Used for user messages and
// canned bot lines that never pass through Normalize.
func TextMessage(id, text string, pos Position) Message {
	return Message{
		ID:       id,
		Type:     dialogflow.KindText,
		Content:  Content{Text: text},
		Position: pos,
	}
}
