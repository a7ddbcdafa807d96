package models

// MessageKind is the classified payload kind of an inbound message.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindAudio    MessageKind = "audio"
	KindVideo    MessageKind = "video"
	KindDocument MessageKind = "document"
	KindUnknown  MessageKind = "unknown"
)

// MediaRef is the normalized media reference extracted from a message
// variant. Filename is set only for documents.
type MediaRef struct {
	ID       string
	MimeType string
	Caption  string
	Filename string
}

// Payload classifies the message by its Type discriminator and returns the
// matching media reference. The switch is exhaustive over the supported
// variants; a Type that names an unpopulated variant (or an unsupported
// type) classifies as KindUnknown rather than trusting the discriminator.
func (m Message) Payload() (MessageKind, *MediaRef) {
	switch m.Type {
	case "text":
		if m.Text != nil {
			return KindText, nil
		}
	case "image":
		if m.Image != nil {
			return KindImage, &MediaRef{ID: m.Image.ID, MimeType: m.Image.MimeType, Caption: m.Image.Caption}
		}
	case "audio":
		if m.Audio != nil {
			return KindAudio, &MediaRef{ID: m.Audio.ID, MimeType: m.Audio.MimeType, Caption: m.Audio.Caption}
		}
	case "video":
		if m.Video != nil {
			return KindVideo, &MediaRef{ID: m.Video.ID, MimeType: m.Video.MimeType, Caption: m.Video.Caption}
		}
	case "document":
		if m.Document != nil {
			return KindDocument, &MediaRef{
				ID:       m.Document.ID,
				MimeType: m.Document.MimeType,
				Caption:  m.Document.Caption,
				Filename: m.Document.Filename,
			}
		}
	}
	return KindUnknown, nil
}
