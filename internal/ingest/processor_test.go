package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/wagatehq/wagate/internal/media"
	"github.com/wagatehq/wagate/internal/models"
)

type fakeResolver struct {
	mu      sync.Mutex
	calls   []string
	urls    map[string]string
	failIDs map[string]bool
}

func (f *fakeResolver) ResolveMediaURL(ctx context.Context, mediaID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, mediaID)
	if f.failIDs[mediaID] {
		return "", errors.New("lookup failed")
	}
	if url, ok := f.urls[mediaID]; ok {
		return url, nil
	}
	return "https://cdn.example.com/" + mediaID, nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSaver struct {
	mu    sync.Mutex
	tasks []media.Task
	err   error
}

func (f *fakeSaver) Save(ctx context.Context, url string, task media.Task) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.tasks = append(f.tasks, task)
	return task.FilePath(), nil
}

func (f *fakeSaver) saved() []media.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]media.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []*models.Event
}

func (f *fakeNotifier) Notify(ctx context.Context, event *models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func eventWithMessages(msgs ...models.Message) *models.Event {
	return &models.Event{
		Object: "whatsapp_business_account",
		Entry: []models.Entry{{
			ID: "entry-1",
			Changes: []models.Change{{
				Field: "messages",
				Value: models.Value{MessagingProduct: "whatsapp", Messages: msgs},
			}},
		}},
	}
}

func TestHandleTextMessageCreatesNoMediaTask(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 0)

	event := eventWithMessages(models.Message{
		ID: "wamid.1", Type: "text", Text: &models.TextPayload{Body: "hello"},
	})
	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resolver.callCount() != 0 {
		t.Fatalf("text message must not resolve media, calls = %d", resolver.callCount())
	}
	if len(saver.saved()) != 0 {
		t.Fatalf("text message must not store media, saves = %d", len(saver.saved()))
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want 1", notifier.count())
	}
}

func TestHandleMediaMessageCreatesOneTask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		msg          models.Message
		wantCategory string
		wantFilename string
	}{
		{
			name:         "image",
			msg:          models.Message{ID: "m1", Type: "image", Image: &models.MediaPayload{ID: "img-1", MimeType: "image/jpeg"}},
			wantCategory: "image",
		},
		{
			name:         "audio maps to voice",
			msg:          models.Message{ID: "m2", Type: "audio", Audio: &models.MediaPayload{ID: "aud-1", MimeType: "audio/ogg; codecs=opus"}},
			wantCategory: "voice",
		},
		{
			name:         "video",
			msg:          models.Message{ID: "m3", Type: "video", Video: &models.MediaPayload{ID: "vid-1", MimeType: "video/mp4"}},
			wantCategory: "video",
		},
		{
			name: "document keeps filename",
			msg: models.Message{ID: "m4", Type: "document", Document: &models.DocumentPayload{
				MediaPayload: models.MediaPayload{ID: "doc-1", MimeType: "application/pdf"},
				Filename:     "report.pdf",
			}},
			wantCategory: "document",
			wantFilename: "report.pdf",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resolver := &fakeResolver{}
			saver := &fakeSaver{}
			notifier := &fakeNotifier{}
			processor := NewProcessor(nil, resolver, saver, notifier, 0)

			if err := processor.Handle(context.Background(), eventWithMessages(tt.msg)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			tasks := saver.saved()
			if len(tasks) != 1 {
				t.Fatalf("tasks = %d, want 1", len(tasks))
			}
			if tasks[0].Category != tt.wantCategory {
				t.Fatalf("category = %q, want %q", tasks[0].Category, tt.wantCategory)
			}
			if tasks[0].Filename != tt.wantFilename {
				t.Fatalf("filename = %q, want %q", tasks[0].Filename, tt.wantFilename)
			}
		})
	}
}

func TestHandleFailedLookupSkipsStoreAndSiblingsContinue(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{failIDs: map[string]bool{"bad-1": true}}
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 0)

	event := eventWithMessages(
		models.Message{ID: "m1", Type: "image", Image: &models.MediaPayload{ID: "bad-1", MimeType: "image/jpeg"}},
		models.Message{ID: "m2", Type: "image", Image: &models.MediaPayload{ID: "good-1", MimeType: "image/png"}},
	)
	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tasks := saver.saved()
	if len(tasks) != 1 {
		t.Fatalf("tasks = %d, want only the sibling's", len(tasks))
	}
	if tasks[0].MediaID != "good-1" {
		t.Fatalf("stored media = %q, want good-1", tasks[0].MediaID)
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want 1", notifier.count())
	}
}

func TestHandlePartialFailureStillSucceedsAndNotifiesOnce(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{failIDs: map[string]bool{"f1": true, "f2": true}}
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 2)

	msgs := []models.Message{
		{ID: "m1", Type: "image", Image: &models.MediaPayload{ID: "f1", MimeType: "image/jpeg"}},
		{ID: "m2", Type: "image", Image: &models.MediaPayload{ID: "f2", MimeType: "image/jpeg"}},
		{ID: "m3", Type: "image", Image: &models.MediaPayload{ID: "ok-1", MimeType: "image/jpeg"}},
		{ID: "m4", Type: "text", Text: &models.TextPayload{Body: "hi"}},
		{ID: "m5", Type: "video", Video: &models.MediaPayload{ID: "ok-2", MimeType: "video/mp4"}},
	}
	event := eventWithMessages(msgs...)

	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("partial media failure must not fail the call: %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want exactly 1", notifier.count())
	}
	if got := notifier.events[0]; got != event {
		t.Fatal("notifier must receive the original event")
	}
	if len(saver.saved()) != 2 {
		t.Fatalf("saves = %d, want 2", len(saver.saved()))
	}
}

func TestHandleStatusesLoggedWithoutWork(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 0)

	event := &models.Event{
		Object: "whatsapp_business_account",
		Entry: []models.Entry{{
			ID: "entry-1",
			Changes: []models.Change{{
				Field: "statuses",
				Value: models.Value{Statuses: []models.Status{
					{ID: "wamid.1", Status: "delivered", RecipientID: "555"},
					{ID: "wamid.2", Status: "read", RecipientID: "555"},
				}},
			}},
		}},
	}
	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.callCount() != 0 || len(saver.saved()) != 0 {
		t.Fatal("statuses must not schedule media work")
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want 1", notifier.count())
	}
}

func TestHandleUnhandledTypeIsSwallowed(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	saver := &fakeSaver{}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 0)

	event := eventWithMessages(
		models.Message{ID: "m1", Type: "sticker"},
		models.Message{ID: "m2", Type: "image"}, // discriminator without payload
	)
	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.callCount() != 0 || len(saver.saved()) != 0 {
		t.Fatal("unhandled messages must not schedule media work")
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want 1", notifier.count())
	}
}

func TestHandleStoreFailureDoesNotFailCall(t *testing.T) {
	t.Parallel()

	resolver := &fakeResolver{}
	saver := &fakeSaver{err: errors.New("disk full")}
	notifier := &fakeNotifier{}
	processor := NewProcessor(nil, resolver, saver, notifier, 0)

	event := eventWithMessages(models.Message{
		ID: "m1", Type: "image", Image: &models.MediaPayload{ID: "img-1", MimeType: "image/jpeg"},
	})
	if err := processor.Handle(context.Background(), event); err != nil {
		t.Fatalf("store failure must be swallowed: %v", err)
	}
	if notifier.count() != 1 {
		t.Fatalf("notify count = %d, want 1", notifier.count())
	}
}
