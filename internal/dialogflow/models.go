package dialogflow

import (
	"bytes"
	"encoding/json"
)

// --- detectIntent response ---
// Reference: https://cloud.google.com/dialogflow/cx/docs/reference/rest/v3/DetectIntentResponse

type DetectIntentResponse struct {
	ResponseID  string       `json:"responseId"`
	QueryResult *QueryResult `json:"queryResult,omitempty"`
}

type QueryResult struct {
	Text             string            `json:"text,omitempty"`
	LanguageCode     string            `json:"languageCode,omitempty"`
	ResponseMessages []ResponseMessage `json:"responseMessages,omitempty"`
}

// UnmarshalJSON never fails on the message list: a list of the wrong type
// reads as no messages, and each element decodes on its own.
func (q *QueryResult) UnmarshalJSON(data []byte) error {
	f := objectFields(data)
	*q = QueryResult{
		Text:         deref(f.str("text")),
		LanguageCode: deref(f.str("languageCode")),
	}
	for _, raw := range f.list("responseMessages") {
		var m ResponseMessage
		_ = m.UnmarshalJSON(raw)
		q.ResponseMessages = append(q.ResponseMessages, m)
	}
	return nil
}

// Messages returns the response messages, or nil when the query result is absent.
func (r *DetectIntentResponse) Messages() []ResponseMessage {
	if r == nil || r.QueryResult == nil {
		return nil
	}
	return r.QueryResult.ResponseMessages
}

// ResponseMessage carries either a text node or a custom payload.
// Both nil means the agent sent a message kind we don't render.
type ResponseMessage struct {
	Text    *TextNode    `json:"text,omitempty"`
	Payload *PayloadNode `json:"payload,omitempty"`
}

// UnmarshalJSON never fails. A text node whose list is unreadable becomes
// an empty text node; a payload without a readable richContent matrix is
// left nil so the message keeps its slot as a bare one.
func (m *ResponseMessage) UnmarshalJSON(data []byte) error {
	*m = ResponseMessage{}
	f := objectFields(data)

	if text, ok := f["text"]; ok && isObject(text) {
		node := &TextNode{}
		if lines, ok := objectFields(text).strings("text"); ok {
			node.Text = lines
		}
		m.Text = node
	}

	if payload, ok := f["payload"]; ok && isObject(payload) {
		if rows, ok := objectFields(payload)["richContent"]; ok && isArray(rows) {
			node := &PayloadNode{}
			for _, raw := range elements(rows) {
				var row Row
				_ = row.UnmarshalJSON(raw)
				node.RichContent = append(node.RichContent, row)
			}
			m.Payload = node
		}
	}
	return nil
}

type TextNode struct {
	Text []string `json:"text"`
}

// PayloadNode is the custom payload used by the Dialogflow Messenger
// rich content format: rows of cells.
type PayloadNode struct {
	RichContent []Row `json:"richContent"`
}

// Row is one row of rich content. Cells that are null or not JSON
// objects decode to nil so that sibling positions are preserved. A row
// that is not an array decodes as empty.
type Row []Cell

func (r *Row) UnmarshalJSON(data []byte) error {
	raw := elements(data)
	row := make(Row, len(raw))
	for i, elem := range raw {
		row[i] = decodeCell(elem)
	}
	*r = row
	return nil
}

// MessageKind tags a rich content cell.
type MessageKind string

const (
	KindText        MessageKind = "text"
	KindButton      MessageKind = "button"
	KindImage       MessageKind = "image"
	KindInfo        MessageKind = "info"
	KindDescription MessageKind = "description"
	KindList        MessageKind = "list"
	KindAccordion   MessageKind = "accordion"
	KindChips       MessageKind = "chips"
)

// Cell is one rich content cell, already resolved into a concrete variant.
type Cell interface {
	Kind() MessageKind
}

// Card is every cell kind except chips-with-options. Field names that the
// agent platform spells differently across kinds are resolved into these.
type Card struct {
	Type     MessageKind
	Title    string   // title, else scalar text
	Lines    []string // text when sent as an array of strings
	Link     string   // actionLink, else link
	Subtitle string   // subtitle, else description
	ImageURL string   // rawUrl, else image.src
	Event    json.RawMessage
	Entries  []Entry
}

func (c *Card) Kind() MessageKind { return c.Type }

// Entry is one element of a card's items list.
type Entry struct {
	Title    string
	Link     string
	Subtitle string
	ImageURL string
	Event    json.RawMessage
}

// Chips is a chips cell carrying options.
type Chips struct {
	Options []ChipOption
}

func (c *Chips) Kind() MessageKind { return KindChips }

type ChipOption struct {
	Text     string
	Link     string
	ImageURL string
}

// --- lenient field access ---

// fields is a JSON object split into its members. Every accessor ignores
// members of the wrong type instead of failing the whole object.
type fields map[string]json.RawMessage

func objectFields(data []byte) fields {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	return f
}

// str returns the member when it is a JSON string, nil otherwise.
func (f fields) str(key string) *string {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || !isString(raw) {
		return nil
	}
	return &s
}

// strings returns the member when it is an array whose elements are all
// strings or null.
func (f fields) strings(key string) ([]string, bool) {
	raw, ok := f[key]
	if !ok || !isArray(raw) {
		return nil, false
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, false
	}
	return lines, true
}

// list returns the elements of an array member, or nil for any other type.
func (f fields) list(key string) []json.RawMessage {
	return elements(f[key])
}

func elements(raw json.RawMessage) []json.RawMessage {
	if !isArray(raw) {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil
	}
	return elems
}

// text reads "text" as either a string or an array of strings.
func (f fields) text() (*string, []string) {
	if s := f.str("text"); s != nil {
		return s, nil
	}
	if lines, ok := f.strings("text"); ok && lines != nil {
		return nil, lines
	}
	return nil, nil
}

// image reads image.src, which is a plain URL for some kinds and
// {"rawUrl": ...} for others.
func (f fields) image() *string {
	img := objectFields(f["image"])
	if s := img.str("src"); s != nil {
		return strPtr(*s)
	}
	return strPtr(deref(objectFields(img["src"]).str("rawUrl")))
}

func (f fields) event() json.RawMessage {
	return nonNull(f["event"])
}

func decodeCell(data []byte) Cell {
	if !isObject(data) {
		return nil
	}
	f := objectFields(data)
	kind := MessageKind(deref(f.str("type")))

	if kind == KindChips {
		if options, ok := f["options"]; ok && isArray(options) {
			chips := &Chips{Options: []ChipOption{}}
			for _, raw := range f.list("options") {
				// A malformed option keeps its slot as an empty chip.
				o := objectFields(raw)
				chips.Options = append(chips.Options, ChipOption{
					Text:     deref(o.str("text")),
					Link:     deref(o.str("link")),
					ImageURL: deref(o.image()),
				})
			}
			return chips
		}
	}

	scalar, lines := f.text()
	card := &Card{
		Type:     kind,
		Title:    first(f.str("title"), scalar),
		Lines:    lines,
		Link:     first(f.str("actionLink"), f.str("link")),
		Subtitle: first(f.str("subtitle"), f.str("description")),
		ImageURL: first(f.str("rawUrl"), f.image()),
		Event:    f.event(),
	}
	for _, raw := range f.list("items") {
		e := objectFields(raw)
		entryText, _ := e.text()
		card.Entries = append(card.Entries, Entry{
			Title:    first(e.str("title"), entryText),
			Link:     first(e.str("actionLink"), e.str("link")),
			Subtitle: first(e.str("subtitle"), e.str("description")),
			ImageURL: first(e.str("rawUrl"), e.image()),
			Event:    e.event(),
		})
	}
	return card
}

// first returns the first non-nil candidate, mirroring a ?? chain:
// an explicitly empty string still wins over later candidates.
func first(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return ""
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNull(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	return raw
}

func isObject(raw []byte) bool { return leading(raw) == '{' }
func isArray(raw []byte) bool  { return leading(raw) == '[' }
func isString(raw []byte) bool { return leading(raw) == '"' }

func leading(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}
