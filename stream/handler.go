// Package stream provides a DynamoDB Streams handler that keeps a store in
// sync with a table of entries.
package stream

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/jacentio/refstore/internal/telemetry"
	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/store"
)

// Stream record event names.
const (
	EventInsert = "INSERT"
	EventModify = "MODIFY"
	EventRemove = "REMOVE"
)

// Result summarizes one stream batch.
type Result struct {
	// Added is the number of entries stored or overwritten.
	Added int

	// Removed is the number of entries deleted by REMOVE records or expired TTLs.
	Removed int

	// Skipped is the number of entries no registered root covers.
	Skipped int

	// Failed is the number of records that could not be decoded.
	Failed int
}

// Handler applies DynamoDB stream records to a store.
type Handler[K store.Category] struct {
	db     *store.Locked[K, store.Entry]
	schema *schema.Schema[K]
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler[K store.Category](db *store.Locked[K, store.Entry], s *schema.Schema[K], logger *slog.Logger) *Handler[K] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler[K]{
		db:     db,
		schema: s,
		logger: logger,
	}
}

// Lambda adapts HandleStreamEvent to the signature expected by lambda.Start.
func (h *Handler[K]) Lambda() func(context.Context, events.DynamoDBEvent) error {
	return func(ctx context.Context, event events.DynamoDBEvent) error {
		_, err := h.HandleStreamEvent(ctx, event)
		return err
	}
}

// HandleStreamEvent applies every record of event in order.
//
// INSERT and MODIFY store the new image; a new image whose TTL has passed, or
// a REMOVE, deletes the entry. Records that cannot be decoded or routed are
// logged and counted, never retried. The only error returned is the
// context's, in which case the remaining records are not applied.
func (h *Handler[K]) HandleStreamEvent(ctx context.Context, event events.DynamoDBEvent) (Result, error) {
	var res Result
	logger := h.logger.With("batchID", uuid.NewString())

	for _, record := range event.Records {
		if err := ctx.Err(); err != nil {
			logger.Warn("stream batch interrupted",
				"eventID", record.EventID,
				"error", err,
			)
			return res, err
		}
		h.processRecord(logger, record, &res)
	}

	telemetry.RecordApplied(ctx, telemetry.SourceStream, "add", res.Added)
	telemetry.RecordApplied(ctx, telemetry.SourceStream, "remove", res.Removed)
	telemetry.RecordSkipped(ctx, telemetry.SourceStream, "routing_miss", res.Skipped)
	telemetry.RecordSkipped(ctx, telemetry.SourceStream, "decode", res.Failed)

	logger.Info("stream batch applied",
		"records", len(event.Records),
		"added", res.Added,
		"removed", res.Removed,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

// processRecord applies a single stream record.
func (h *Handler[K]) processRecord(logger *slog.Logger, record events.DynamoDBEventRecord, res *Result) {
	switch record.EventName {
	case EventInsert, EventModify:
		newImage := ConvertImage(record.Change.NewImage)
		if h.schema.IsExpired(newImage) {
			h.remove(logger, record, newImage, res)
			return
		}

		category, entry, err := h.schema.Decode(newImage)
		if err != nil {
			res.Failed++
			logger.Warn("failed to decode stream record",
				"eventID", record.EventID,
				"error", err,
			)
			return
		}

		// A MODIFY that moves an entry to another reference or category must
		// not leave the old one behind.
		if record.EventName == EventModify && len(record.Change.OldImage) > 0 {
			if old, err := h.schema.Identity(ConvertImage(record.Change.OldImage)); err == nil &&
				(old.Category != category || old.ID != entry.ID() || old.Reference != entry.Reference()) {
				if h.db.Remove(old.Category, old.ID, old.Reference) {
					res.Removed++
				}
			}
		}

		if err := h.db.Add(category, entry); err != nil {
			if errors.Is(err, store.ErrNoMatchingRoot) {
				res.Skipped++
				logger.Warn("no root for stream entry",
					"eventID", record.EventID,
					"category", string(category),
					"id", entry.ID(),
					"reference", entry.Reference(),
				)
				return
			}
			res.Failed++
			logger.Error("failed to store stream entry", "eventID", record.EventID, "error", err)
			return
		}
		res.Added++

	case EventRemove:
		image := record.Change.OldImage
		if len(image) == 0 {
			image = record.Change.Keys
		}
		h.remove(logger, record, ConvertImage(image), res)

	default:
		logger.Debug("ignoring stream record",
			"eventID", record.EventID,
			"eventName", record.EventName,
		)
	}
}

// remove deletes the entry identified by image.
func (h *Handler[K]) remove(logger *slog.Logger, record events.DynamoDBEventRecord, image schema.Item, res *Result) {
	id, err := h.schema.Identity(image)
	if err != nil {
		res.Failed++
		logger.Warn("failed to identify removed entry",
			"eventID", record.EventID,
			"error", err,
		)
		return
	}
	if h.db.Remove(id.Category, id.ID, id.Reference) {
		res.Removed++
	}
}
