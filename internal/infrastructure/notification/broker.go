package notification

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	domain "github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
)

// AllEventsTopic receives a copy of every published event.
const AllEventsTopic = "events"

const (
	metadataEvent   = "event"
	metadataMatchID = "match_id"

	defaultOutputBuffer = 64
)

var ErrBrokerClosed = crerr.New("notification broker is closed")

type BrokerConfig struct {
	OutputBuffer int64
}

// Delivery is one event as seen by a subscriber. Data holds the JSON-encoded
// notification.Event.
type Delivery struct {
	Name    string
	MatchID int64
	Data    []byte
}

// Decode unmarshals Data. Payloads decode into generic maps.
func (d Delivery) Decode() (domain.Event, error) {
	var event domain.Event
	if err := sonic.Unmarshal(d.Data, &event); err != nil {
		return domain.Event{}, crerr.Wrapf(err, "decode event %s", d.Name)
	}
	return event, nil
}

// Broker fans events out to in-process subscribers over a watermill go channel.
// Events published while nobody subscribes are dropped.
type Broker struct {
	pubsub *gochannel.GoChannel
	logger *logging.Logger
	closed atomic.Bool
}

func NewBroker(cfg BrokerConfig, logger *logging.Logger) *Broker {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.OutputBuffer <= 0 {
		cfg.OutputBuffer = defaultOutputBuffer
	}

	return &Broker{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.OutputBuffer,
		}, newWatermillLogger(logger.With("component", "notification_broker"))),
		logger: logger,
	}
}

func (b *Broker) Publish(_ context.Context, event domain.Event) error {
	if b.closed.Load() {
		return ErrBrokerClosed
	}

	payload, err := sonic.Marshal(event)
	if err != nil {
		return crerr.Wrapf(err, "encode event %s", event.Name)
	}

	for _, topic := range []string{event.Name, AllEventsTopic} {
		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(metadataEvent, event.Name)
		msg.Metadata.Set(metadataMatchID, strconv.FormatInt(event.MatchID, 10))
		if err := b.pubsub.Publish(topic, msg); err != nil {
			return crerr.Wrapf(err, "publish event %s to topic %s", event.Name, topic)
		}
	}
	return nil
}

// Subscribe streams deliveries for topic, an event name or AllEventsTopic,
// until ctx is done or the broker closes.
func (b *Broker) Subscribe(ctx context.Context, topic string) (<-chan Delivery, error) {
	if b.closed.Load() {
		return nil, ErrBrokerClosed
	}

	messages, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, crerr.Wrapf(err, "subscribe topic %s", topic)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		for msg := range messages {
			matchID, _ := strconv.ParseInt(msg.Metadata.Get(metadataMatchID), 10, 64)
			delivery := Delivery{
				Name:    msg.Metadata.Get(metadataEvent),
				MatchID: matchID,
				Data:    append([]byte(nil), msg.Payload...),
			}
			msg.Ack()

			select {
			case out <- delivery:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Broker) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := b.pubsub.Close(); err != nil {
		return crerr.Wrap(err, "close notification broker")
	}
	return nil
}
