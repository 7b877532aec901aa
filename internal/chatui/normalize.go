// Package chatui flattens agent responses into the message records the
// chat widget renders.
package chatui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lojasmm/smoky/internal/dialogflow"
)

// ErrMissingResponseID is returned when a response carries no responseId.
// Every message id derives from it, so nothing can be emitted.
var ErrMissingResponseID = errors.New("chatui: response has no responseId")

// Normalize converts one agent response into an ordered list of messages.
//
// Ids are the responseId followed by the index path of the node
// (message, row, column, item), joined with "_". Dropped cells keep their
// index, so sibling ids never shift.
func Normalize(resp *dialogflow.DetectIntentResponse) ([]Message, error) {
	if resp == nil || resp.ResponseID == "" {
		return nil, ErrMissingResponseID
	}

	msgs := resp.Messages()
	out := make([]Message, 0, len(msgs))
	for i, msg := range msgs {
		p := path{resp.ResponseID, strconv.Itoa(i)}
		switch {
		case msg.Text != nil:
			out = append(out, textMessage(p, msg.Text))
		case msg.Payload != nil:
			out = appendPayload(out, p, msg.Payload)
		default:
			out = append(out, Message{
				ID:       p.id(),
				Type:     dialogflow.KindText,
				Position: PositionLeft,
			})
		}
	}
	return out, nil
}

// path is the list of id segments leading to a node.
type path []string

func (p path) id() string { return strings.Join(p, "_") }

func (p path) child(i int) path {
	c := make(path, len(p), len(p)+1)
	copy(c, p)
	return append(c, strconv.Itoa(i))
}

func textMessage(p path, node *dialogflow.TextNode) Message {
	m := Message{ID: p.id(), Type: dialogflow.KindText, Position: PositionLeft}
	if len(node.Text) > 0 {
		m.Content.Text = node.Text[0]
	}
	return m
}

func appendPayload(out []Message, p path, node *dialogflow.PayloadNode) []Message {
	for r, row := range node.RichContent {
		rp := p.child(r)
		for c, cell := range row {
			cp := rp.child(c)
			switch v := cell.(type) {
			case *dialogflow.Chips:
				out = append(out, chipsMessage(cp, v))
			case *dialogflow.Card:
				out = append(out, cardMessage(cp, v))
			}
		}
	}
	return out
}

// chipsMessage groups every option of a chips cell into a single message.
func chipsMessage(p path, chips *dialogflow.Chips) Message {
	items := make([]Item, len(chips.Options))
	for i, opt := range chips.Options {
		items[i] = Item{
			ID:         p.child(i).id(),
			Type:       dialogflow.KindChips,
			Text:       opt.Text,
			ActionLink: opt.Link,
			ImgURL:     opt.ImageURL,
		}
	}
	return Message{
		ID:       p.id(),
		Type:     dialogflow.KindChips,
		Content:  Content{Items: items},
		Position: PositionLeft,
	}
}

func cardMessage(p path, card *dialogflow.Card) Message {
	m := Message{
		ID:   p.id(),
		Type: card.Type,
		Content: Content{
			Text:        card.Title,
			ActionLink:  card.Link,
			Description: card.Subtitle,
			ImgURL:      card.ImageURL,
			Event:       card.Event,
		},
		Position: PositionLeft,
	}

	// A text array takes the place of the items list.
	if card.Lines != nil {
		m.Content.Items = make([]Item, len(card.Lines))
		for i, line := range card.Lines {
			m.Content.Items[i] = Item{ID: p.child(i).id(), Text: line}
		}
		return m
	}

	if len(card.Entries) > 0 {
		m.Content.Items = make([]Item, len(card.Entries))
		for i, e := range card.Entries {
			m.Content.Items[i] = Item{
				ID:          p.child(i).id(),
				Type:        card.Type,
				Text:        e.Title,
				ActionLink:  e.Link,
				Description: e.Subtitle,
				ImgURL:      e.ImageURL,
				Event:       e.Event,
			}
		}
	}
	return m
}
