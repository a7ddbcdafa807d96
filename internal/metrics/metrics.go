package metrics

import (
	"expvar"

	"github.com/wagatehq/wagate/internal/models"
)

// Counters for the ingestion pipeline, published via expvar on
// GET /debug/vars.
var (
	MessagesReceived  = expvar.NewInt("whatsapp_messages_received_total")
	MessagesSent      = expvar.NewInt("whatsapp_messages_sent_total")
	ImagesReceived    = expvar.NewInt("whatsapp_images_received_total")
	VideosReceived    = expvar.NewInt("whatsapp_videos_received_total")
	AudiosReceived    = expvar.NewInt("whatsapp_audios_received_total")
	DocumentsReceived = expvar.NewInt("whatsapp_documents_received_total")
	ProcessingErrors  = expvar.NewInt("whatsapp_processing_errors_total")
	DeliveryFailures  = expvar.NewInt("subscriber_delivery_failures_total")
)

// CountMediaReceived bumps the per-kind media counter.
func CountMediaReceived(kind models.MessageKind) {
	switch kind {
	case models.KindImage:
		ImagesReceived.Add(1)
	case models.KindVideo:
		VideosReceived.Add(1)
	case models.KindAudio:
		AudiosReceived.Add(1)
	case models.KindDocument:
		DocumentsReceived.Add(1)
	}
}
