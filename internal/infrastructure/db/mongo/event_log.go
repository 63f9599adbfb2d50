package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swiftlogistics/order-api/internal/core/domain"
)

const eventsCollection = "order_events"

// EventLog appends order events to the order_events audit collection.
type EventLog struct {
	coll *mongo.Collection
}

func NewEventLog(db *mongo.Database) *EventLog {
	return &EventLog{coll: db.Collection(eventsCollection)}
}

// EnsureIndexes creates the lookup index on (order_id, occurred_at) and a
// unique index on event_id so a replayed publish is rejected.
func (l *EventLog) EnsureIndexes(ctx context.Context) error {
	_, err := l.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "occurred_at", Value: 1}}},
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("ensure order_events indexes: %w", err)
	}
	return nil
}

// Name identifies the sink in logs and metrics.
func (l *EventLog) Name() string { return "mongodb" }

// Publish inserts the event. Duplicate event IDs are ignored.
func (l *EventLog) Publish(ctx context.Context, event domain.OrderEvent) error {
	doc := eventDocument{OrderEvent: event, RecordedAt: time.Now().UTC()}
	doc.OccurredAt = doc.OccurredAt.UTC()

	if _, err := l.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

// ListByOrder returns the recorded events of an order, oldest first.
func (l *EventLog) ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	cur, err := l.coll.Find(ctx,
		bson.M{"order_id": orderID},
		options.Find().SetSort(bson.D{{Key: "occurred_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find order events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode order events: %w", err)
	}
	events := make([]domain.OrderEvent, 0, len(docs))
	for _, d := range docs {
		d.OccurredAt = d.OccurredAt.UTC()
		events = append(events, d.OrderEvent)
	}
	return events, nil
}

type eventDocument struct {
	domain.OrderEvent `bson:",inline"`
	RecordedAt        time.Time `bson:"recorded_at"`
}
