package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const eventTypeGameUpdate = "game_update"

// GameEvent is the document stored in the game_events collection.
type GameEvent struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	OriginMachineID string             `bson:"originMachineId"`
	EventType       string             `bson:"eventType"`
	SessionID       string             `bson:"sessionId"`
	Message         []byte             `bson:"message"`
	CreatedAt       time.Time          `bson:"createdAt"`
}

// DeliverFunc hands a message to the websocket clients of one session on
// this machine.
type DeliverFunc func(sessionID string, message []byte)

// EventBus publishes game updates to MongoDB and watches for updates made
// on other machines via Change Streams.
type EventBus struct {
	machineID  string
	collection *mongo.Collection
	deliver    DeliverFunc
	logger     *zap.Logger
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	running    bool
	mu         sync.Mutex
}

// New creates an EventBus. If collection is nil, the EventBus runs in
// local-only mode (Publish is a no-op, no watcher runs).
func New(collection *mongo.Collection, deliver DeliverFunc, logger *zap.Logger) *EventBus {
	return &EventBus{
		machineID:  uuid.New().String(),
		collection: collection,
		deliver:    deliver,
		logger:     logger.With(zap.String("component", "eventbus")),
	}
}

// MachineID returns this instance's unique identifier.
func (eb *EventBus) MachineID() string {
	return eb.machineID
}

// Start begins the Change Stream watcher in a background goroutine.
func (eb *EventBus) Start() {
	if eb.collection == nil {
		eb.logger.Info("no collection configured, running in local-only mode")
		return
	}

	eb.mu.Lock()
	defer eb.mu.Unlock()
	if eb.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	eb.cancelFunc = cancel
	eb.running = true
	eb.wg.Add(1)

	go eb.watchLoop(ctx)
	eb.logger.Info("started", zap.String("machineId", eb.machineID))
}

// Stop cancels the Change Stream watcher and waits for it to exit.
func (eb *EventBus) Stop() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	if !eb.running {
		return
	}
	eb.running = false
	if eb.cancelFunc != nil {
		eb.cancelFunc()
	}
	eb.wg.Wait()
	eb.logger.Info("stopped")
}

// Publish inserts a game update into game_events so other machines can
// deliver it. Errors are logged, never returned (fire-and-forget).
func (eb *EventBus) Publish(ctx context.Context, sessionID string, message []byte) {
	if eb.collection == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	doc := GameEvent{
		OriginMachineID: eb.machineID,
		EventType:       eventTypeGameUpdate,
		SessionID:       sessionID,
		Message:         message,
		CreatedAt:       time.Now(),
	}
	if _, err := eb.collection.InsertOne(ctx, doc); err != nil {
		eb.logger.Warn("failed to publish game update", zap.String("sessionId", sessionID), zap.Error(err))
	}
}

// watchLoop runs the Change Stream in a reconnecting loop.
func (eb *EventBus) watchLoop(ctx context.Context) {
	defer eb.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}
		err := eb.watch(ctx)
		if ctx.Err() != nil {
			return // normal shutdown
		}
		eb.logger.Warn("change stream error, reconnecting in 2s", zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
}

func (eb *EventBus) watch(ctx context.Context) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: "insert"},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	cs, err := eb.collection.Watch(ctx, pipeline, opts)
	if err != nil {
		return err
	}
	defer cs.Close(ctx)

	for cs.Next(ctx) {
		var changeDoc struct {
			FullDocument GameEvent `bson:"fullDocument"`
		}
		if err := cs.Decode(&changeDoc); err != nil {
			eb.logger.Warn("failed to decode change event", zap.Error(err))
			continue
		}
		eb.handle(changeDoc.FullDocument)
	}

	return cs.Err()
}

func (eb *EventBus) handle(event GameEvent) {
	// Skip events from this machine (already delivered locally)
	if event.OriginMachineID == eb.machineID {
		return
	}

	switch event.EventType {
	case eventTypeGameUpdate:
		if eb.deliver != nil {
			eb.deliver(event.SessionID, event.Message)
		}
	default:
		eb.logger.Warn("unknown event type", zap.String("eventType", event.EventType))
	}
}
