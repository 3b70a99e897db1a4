package stream_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/store"
	"github.com/jacentio/refstore/stream"
	"github.com/jacentio/refstore/symbols"
)

// --- Test Helpers ---

func newHandler(roots ...string) (*stream.Handler[symbols.Kind], *store.Locked[symbols.Kind, store.Entry]) {
	db := symbols.NewDatabase()
	for _, root := range roots {
		db.NewContainer(root)
	}
	locked := store.NewLocked(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return stream.NewHandler(locked, symbols.NewSchema(schema.DefaultConfig()), logger), locked
}

func image(kind symbols.Kind, id, ref string, extra ...string) map[string]events.DynamoDBAttributeValue {
	img := map[string]events.DynamoDBAttributeValue{
		"entity_type": events.NewStringAttribute(string(kind)),
		"id":          events.NewStringAttribute(id),
		"reference":   events.NewStringAttribute(ref),
		"start":       events.NewNumberAttribute("1"),
		"end":         events.NewNumberAttribute("10"),
	}
	for i := 0; i+1 < len(extra); i += 2 {
		img[extra[i]] = events.NewStringAttribute(extra[i+1])
	}
	return img
}

func record(name string, newImage, oldImage map[string]events.DynamoDBAttributeValue) events.DynamoDBEventRecord {
	return events.DynamoDBEventRecord{
		EventID:   name + "-" + fmt.Sprint(len(newImage), len(oldImage)),
		EventName: name,
		Change: events.DynamoDBStreamRecord{
			NewImage: newImage,
			OldImage: oldImage,
		},
	}
}

func entries(l *store.Locked[symbols.Kind, store.Entry], kind symbols.Kind, id string) []store.Entry {
	var out []store.Entry
	l.Do(func(db *symbols.DB) {
		out = db.ByType(kind).Get(id)
	})
	return out
}

// --- Tests ---

func TestNewHandler_NilLogger(t *testing.T) {
	h := stream.NewHandler[symbols.Kind](nil, nil, nil)
	if h == nil {
		t.Fatal("expected non-nil Handler")
	}
}

func TestHandleStreamEvent_Insert(t *testing.T) {
	h, db := newHandler("ws1/")

	res, err := h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{
		Records: []events.DynamoDBEventRecord{
			record(stream.EventInsert, image(symbols.KindClass, "Server", "ws1/server.go", "package", "main"), nil),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Added != 1 {
		t.Errorf("expected 1 added, got %+v", res)
	}

	got := entries(db, symbols.KindClass, "Server")
	if len(got) != 1 {
		t.Fatalf("expected 1 class, got %d", len(got))
	}
	class, ok := got[0].(*symbols.Class)
	if !ok || class.Package != "main" || class.End != 10 {
		t.Errorf("unexpected class: %#v", got[0])
	}
}

func TestHandleStreamEvent_ModifyOverwrites(t *testing.T) {
	h, db := newHandler("ws1/")
	ctx := context.Background()

	h.HandleStreamEvent(ctx, events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindClass, "Server", "ws1/server.go", "package", "v1"), nil),
	}})
	h.HandleStreamEvent(ctx, events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventModify,
			image(symbols.KindClass, "Server", "ws1/server.go", "package", "v2"),
			image(symbols.KindClass, "Server", "ws1/server.go", "package", "v1")),
	}})

	got := entries(db, symbols.KindClass, "Server")
	if len(got) != 1 || got[0].(*symbols.Class).Package != "v2" {
		t.Errorf("expected a single v2 class, got %v", got)
	}
}

func TestHandleStreamEvent_ModifyMovesReference(t *testing.T) {
	h, db := newHandler("ws1/")

	h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindClass, "Server", "ws1/old.go"), nil),
		record(stream.EventModify,
			image(symbols.KindClass, "Server", "ws1/new.go"),
			image(symbols.KindClass, "Server", "ws1/old.go")),
	}})

	got := entries(db, symbols.KindClass, "Server")
	if len(got) != 1 || got[0].Reference() != "ws1/new.go" {
		t.Errorf("expected Server only at ws1/new.go, got %v", got)
	}
}

func TestHandleStreamEvent_Remove(t *testing.T) {
	h, db := newHandler("ws1/")

	res, _ := h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindFunction, "main", "ws1/a.go"), nil),
		record(stream.EventInsert, image(symbols.KindFunction, "main", "ws1/b.go"), nil),
		record(stream.EventRemove, nil, image(symbols.KindFunction, "main", "ws1/a.go")),
	}})

	if res.Added != 2 || res.Removed != 1 {
		t.Errorf("expected 2 added and 1 removed, got %+v", res)
	}
	got := entries(db, symbols.KindFunction, "main")
	if len(got) != 1 || got[0].Reference() != "ws1/b.go" {
		t.Errorf("expected main only in ws1/b.go, got %v", got)
	}
}

func TestHandleStreamEvent_RemoveKeysOnly(t *testing.T) {
	h, db := newHandler("ws1/")
	keys := map[string]events.DynamoDBAttributeValue{
		"entity_type": events.NewStringAttribute("functions"),
		"id":          events.NewStringAttribute("main"),
		"reference":   events.NewStringAttribute("ws1/a.go"),
	}

	res, _ := h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindFunction, "main", "ws1/a.go"), nil),
		{EventID: "keys", EventName: stream.EventRemove, Change: events.DynamoDBStreamRecord{Keys: keys}},
	}})

	if res.Removed != 1 {
		t.Errorf("expected 1 removed, got %+v", res)
	}
	if got := entries(db, symbols.KindFunction, "main"); len(got) != 0 {
		t.Errorf("expected no entries, got %v", got)
	}
}

func TestHandleStreamEvent_ExpiredTTLRemoves(t *testing.T) {
	h, db := newHandler("ws1/")
	expired := image(symbols.KindVariable, "Version", "ws1/v.go")
	expired["ttl"] = events.NewNumberAttribute(strconv.FormatInt(time.Now().Add(-time.Minute).Unix(), 10))

	res, _ := h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindVariable, "Version", "ws1/v.go"), nil),
		record(stream.EventModify, expired, image(symbols.KindVariable, "Version", "ws1/v.go")),
	}})

	if res.Added != 1 || res.Removed != 1 {
		t.Errorf("expected 1 added and 1 removed, got %+v", res)
	}
	if got := entries(db, symbols.KindVariable, "Version"); len(got) != 0 {
		t.Errorf("expected Version to be removed, got %v", got)
	}
}

func TestHandleStreamEvent_RoutingMissAndDecodeFailure(t *testing.T) {
	h, locked := newHandler("ws1/")

	res, err := h.HandleStreamEvent(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindClass, "A", "ws9/a.go"), nil),
		record(stream.EventInsert, image("widgets", "W", "ws1/w.go"), nil),
		record(stream.EventInsert, image(symbols.KindClass, "B", "ws1/b.go"), nil),
		record("UNKNOWN", nil, nil),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 || res.Failed != 1 || res.Added != 1 {
		t.Errorf("expected 1 skipped, 1 failed, 1 added, got %+v", res)
	}
	if n := locked.Len(); n != 1 {
		t.Errorf("expected 1 entry stored, got %d", n)
	}
}

func TestHandleStreamEvent_CanceledContext(t *testing.T) {
	h, locked := newHandler("ws1/")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.HandleStreamEvent(ctx, events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindClass, "A", "ws1/a.go"), nil),
	}})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if locked.Len() != 0 {
		t.Error("expected nothing to be applied")
	}
}

func TestLambda(t *testing.T) {
	h, locked := newHandler("ws1/")

	fn := h.Lambda()
	err := fn(context.Background(), events.DynamoDBEvent{Records: []events.DynamoDBEventRecord{
		record(stream.EventInsert, image(symbols.KindFile, "ws1/a.go", "ws1/a.go"), nil),
	}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locked.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", locked.Len())
	}
}
