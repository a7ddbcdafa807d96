package models

// WhatsApp Cloud API webhook envelope. Field names and tags follow the
// provider wire format; the envelope is immutable once bound.

// Event is the top-level webhook delivery.
type Event struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents one business account entry.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change wraps a single change notification, tagged by Field.
type Change struct {
	Value Value  `json:"value"`
	Field string `json:"field"`
}

// Value holds the message and status data carried by a change.
type Value struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts,omitempty"`
	Messages         []Message `json:"messages,omitempty"`
	Statuses         []Status  `json:"statuses,omitempty"`
}

// Metadata identifies the receiving phone number.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact is the sender's WhatsApp contact card.
type Contact struct {
	Profile Profile `json:"profile"`
	WaID    string  `json:"wa_id"`
}

type Profile struct {
	Name string `json:"name"`
}

// Message is an inbound message. Type names the populated variant field;
// exactly one of Text/Image/Audio/Video/Document is set on well-formed input.
type Message struct {
	From      string           `json:"from"`
	ID        string           `json:"id"`
	Timestamp string           `json:"timestamp"`
	Type      string           `json:"type"`
	Text      *TextPayload     `json:"text,omitempty"`
	Image     *MediaPayload    `json:"image,omitempty"`
	Audio     *MediaPayload    `json:"audio,omitempty"`
	Video     *MediaPayload    `json:"video,omitempty"`
	Document  *DocumentPayload `json:"document,omitempty"`
}

type TextPayload struct {
	Body string `json:"body,omitempty"`
}

// MediaPayload carries the provider media reference embedded in a message.
type MediaPayload struct {
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
	ID       string `json:"id"`
	Caption  string `json:"caption,omitempty"`
}

type DocumentPayload struct {
	MediaPayload
	Filename string `json:"filename"`
}

// Status is a delivery/read status update. Informational only.
type Status struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Timestamp    string        `json:"timestamp"`
	RecipientID  string        `json:"recipient_id"`
	Conversation *Conversation `json:"conversation,omitempty"`
	Pricing      *Pricing      `json:"pricing,omitempty"`
}

type Conversation struct {
	ID                  string         `json:"id"`
	Origin              map[string]any `json:"origin,omitempty"`
	ExpirationTimestamp int64          `json:"expiration_timestamp,omitempty"`
}

type Pricing struct {
	Billable     bool   `json:"billable"`
	PricingModel string `json:"pricing_model"`
	Category     string `json:"category"`
}

// SendMessageRequest is the inbound shape of the send-message proxy endpoint.
type SendMessageRequest struct {
	RecipientNumber string `json:"recipient_number" validate:"required"`
	Message         string `json:"message" validate:"required"`
}

// RegisterWebhookRequest registers a subscriber endpoint for event fan-out.
type RegisterWebhookRequest struct {
	URL    string   `json:"url" validate:"required,url"`
	Events []string `json:"events"`
}
