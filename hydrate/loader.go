// Package hydrate bulk-loads a store from a DynamoDB table with a parallel,
// rate-limited scan.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/jacentio/refstore/internal/telemetry"
	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/store"
)

// ErrNoTable is returned by Load when no table name is configured.
var ErrNoTable = errors.New("refstore: no table configured")

// Stats summarizes a load.
type Stats struct {
	// Items is the number of items read from the table.
	Items int

	// Added is the number of entries stored.
	Added int

	// Expired is the number of items skipped because their TTL had passed.
	Expired int

	// Skipped is the number of entries no registered root covers.
	Skipped int

	// Failed is the number of items that could not be decoded.
	Failed int

	// Duration is the wall time of the load.
	Duration time.Duration
}

func (s *Stats) merge(other Stats) {
	s.Items += other.Items
	s.Added += other.Added
	s.Expired += other.Expired
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

// Loader scans a table into a store.
type Loader[K store.Category] struct {
	client dynamodb.ScanAPIClient
	db     *store.Locked[K, store.Entry]
	schema *schema.Schema[K]
	config Config
	logger *slog.Logger
}

// NewLoader creates a new Loader.
func NewLoader[K store.Category](client dynamodb.ScanAPIClient, db *store.Locked[K, store.Entry], s *schema.Schema[K], config Config, logger *slog.Logger) *Loader[K] {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader[K]{
		client: client,
		db:     db,
		schema: s,
		config: config,
		logger: logger,
	}
}

// Load registers the configured roots and scans the whole table into the store.
//
// Items that are expired, undecodable, or outside every registered root are
// counted in Stats and skipped. A Scan error stops every segment and is
// returned together with the stats gathered so far.
func (l *Loader[K]) Load(ctx context.Context) (Stats, error) {
	if l.config.TableName == "" {
		return Stats{}, ErrNoTable
	}
	start := time.Now()
	logger := l.logger.With("loadID", uuid.NewString(), "table", l.config.TableName)

	if len(l.config.Roots) > 0 {
		l.db.Do(func(db *store.Database[K, store.Entry]) {
			for _, root := range l.config.Roots {
				db.GetContainer(root)
			}
		})
	}

	limit := rate.Inf
	if l.config.PagesPerSecond > 0 {
		limit = rate.Limit(l.config.PagesPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	var (
		mu    sync.Mutex
		stats Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	for segment := 0; segment < l.config.Segments; segment++ {
		g.Go(func() error {
			segStats, err := l.scanSegment(gctx, logger, segment, limiter)
			mu.Lock()
			stats.merge(segStats)
			mu.Unlock()
			return err
		})
	}
	err := g.Wait()
	stats.Duration = time.Since(start)

	telemetry.RecordHydrate(ctx, stats.Duration, err == nil)
	telemetry.RecordApplied(ctx, telemetry.SourceHydrate, "add", stats.Added)
	telemetry.RecordSkipped(ctx, telemetry.SourceHydrate, "routing_miss", stats.Skipped)
	telemetry.RecordSkipped(ctx, telemetry.SourceHydrate, "decode", stats.Failed)

	if err != nil {
		logger.Error("table load failed",
			"items", stats.Items,
			"error", err,
		)
		return stats, err
	}
	logger.Info("table loaded",
		"items", stats.Items,
		"added", stats.Added,
		"expired", stats.Expired,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
	return stats, nil
}

// scanSegment paginates through one scan segment.
func (l *Loader[K]) scanSegment(ctx context.Context, logger *slog.Logger, segment int, limiter *rate.Limiter) (Stats, error) {
	var stats Stats

	input := &dynamodb.ScanInput{
		TableName: aws.String(l.config.TableName),
	}
	if l.config.Segments > 1 {
		input.Segment = aws.Int32(int32(segment))
		input.TotalSegments = aws.Int32(int32(l.config.Segments))
	}
	if l.config.PageSize > 0 {
		input.Limit = aws.Int32(l.config.PageSize)
	}
	if l.config.SkipExpired {
		filter := l.schema.ActiveFilter(time.Now())
		input.FilterExpression = aws.String(filter.Expression)
		input.ExpressionAttributeNames = filter.Names
		input.ExpressionAttributeValues = filter.Values
	}

	paginator := dynamodb.NewScanPaginator(l.client, input)
	for paginator.HasMorePages() {
		if err := limiter.Wait(ctx); err != nil {
			return stats, err
		}
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return stats, fmt.Errorf("scan segment %d: %w", segment, err)
		}
		l.apply(logger, segment, page.Items, &stats)
	}
	return stats, nil
}

type decoded[K store.Category] struct {
	category K
	entry    store.Entry
}

// apply decodes one page and stores it under a single lock acquisition.
func (l *Loader[K]) apply(logger *slog.Logger, segment int, items []schema.Item, stats *Stats) {
	batch := make([]decoded[K], 0, len(items))
	for _, item := range items {
		stats.Items++
		if l.schema.IsExpired(item) {
			stats.Expired++
			continue
		}
		category, entry, err := l.schema.Decode(item)
		if err != nil {
			stats.Failed++
			logger.Warn("failed to decode item",
				"segment", segment,
				"error", err,
			)
			continue
		}
		batch = append(batch, decoded[K]{category: category, entry: entry})
	}

	l.db.Do(func(db *store.Database[K, store.Entry]) {
		for _, d := range batch {
			if db.Add(d.category, d.entry) {
				stats.Added++
				continue
			}
			stats.Skipped++
			logger.Debug("no root for item",
				"category", string(d.category),
				"id", d.entry.ID(),
				"reference", d.entry.Reference(),
			)
		}
	})
}
