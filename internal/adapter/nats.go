package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsConn is the connection lifecycle used by the event publisher
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsConn=MockNatsConn
type NatsConn interface {
	Close()
	Drain() error
	ConnectedUrl() string
}

// JetStream publishes run events and declares their stream
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=JetStream=MockJetStream
type JetStream interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error
}

// NatsJetStream dials NATS and opens a JetStream context on the connection
//
//go:generate mockgen -source=nats.go -destination=../mocks/nats.go -package=mocks -mock_names=NatsJetStream=MockNatsJetStream
type NatsJetStream interface {
	Connect(url string, options ...nats.Option) (NatsConn, JetStream, error)
}

// DEFAULT_JETSTREAM_TIMEOUT bounds JetStream API calls made without a context deadline
const DEFAULT_JETSTREAM_TIMEOUT = 10 * time.Second

type natsDialer struct {
	apiTimeout time.Duration
}

// NewNatsJetStream returns the dialer used in production
func NewNatsJetStream() NatsJetStream {
	return natsDialer{apiTimeout: DEFAULT_JETSTREAM_TIMEOUT}
}

func (d natsDialer) Connect(url string, options ...nats.Option) (NatsConn, JetStream, error) {
	nc, err := nats.Connect(url, options...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	js, err := jetstream.New(nc, jetstream.WithDefaultTimeout(d.apiTimeout))
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to open jetstream: %w", err)
	}

	return nc, streamDeclarer{js}, nil
}

// streamDeclarer drops the stream handle, publishers only need the stream to exist
type streamDeclarer struct {
	jetstream.JetStream
}

func (s streamDeclarer) CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	_, err := s.JetStream.CreateOrUpdateStream(ctx, cfg)
	return err
}
