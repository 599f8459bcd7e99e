package jetstream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	js "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/gpp-indexer/internal/adapter"
	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/mocks"
)

func testConfig() Config {
	return Config{
		URL:            "nats://localhost:4222",
		StreamName:     "GPP",
		MaxReconnects:  3,
		ReconnectWait:  time.Second,
		ConnectionName: "gpp-indexer-test",
	}
}

func TestNewPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	stream := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect("nats://localhost:4222", gomock.Any()).Return(conn, stream, nil)
	stream.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg js.StreamConfig) error {
			assert.Equal(t, "GPP", cfg.Name)
			assert.Equal(t, []string{SUBJECT_WILDCARD}, cfg.Subjects)
			return nil
		})
	conn.EXPECT().ConnectedUrl().Return("nats://localhost:4222")

	pub, err := NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	require.NoError(t, err)
	assert.NotNil(t, pub)
}

func TestNewPublisher_ConnectError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(nil, nil, errors.New("no servers available"))

	pub, err := NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.Nil(t, pub)
	assert.ErrorContains(t, err, "no servers available")
}

func TestNewPublisher_StreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	natsJS := mocks.NewMockNatsJetStream(ctrl)
	conn := mocks.NewMockNatsConn(ctrl)
	stream := mocks.NewMockJetStream(ctrl)

	natsJS.EXPECT().Connect(gomock.Any(), gomock.Any()).Return(conn, stream, nil)
	stream.EXPECT().CreateOrUpdateStream(gomock.Any(), gomock.Any()).Return(errors.New("insufficient resources"))
	conn.EXPECT().Close()

	pub, err := NewPublisher(context.Background(), testConfig(), natsJS, adapter.NewJSON())
	assert.Nil(t, pub)
	assert.ErrorContains(t, err, "failed to create stream GPP")
}

func TestPublishTableUpdated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	stream := mocks.NewMockJetStream(ctrl)
	p := &publisher{nc: conn, js: stream, streamName: "GPP", json: adapter.NewJSON()}

	event := &domain.TableUpdatedEvent{
		RunID:          "01J0000000000000000000TEST",
		Watermark:      time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		ProcessedUnits: 2,
		Periods:        []string{"March 2024"},
		Regions:        290,
	}

	stream.EXPECT().Publish(gomock.Any(), SUBJECT_TABLE_UPDATED, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, opts ...js.PublishOpt) (*js.PubAck, error) {
			assert.Contains(t, string(data), `"run_id":"01J0000000000000000000TEST"`)
			assert.Len(t, opts, 1)
			return &js.PubAck{Stream: "GPP", Sequence: 1}, nil
		})

	require.NoError(t, p.PublishTableUpdated(context.Background(), event))
}

func TestPublishTableUpdated_MarshalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	jsonAdapter := mocks.NewMockJSON(ctrl)
	jsonAdapter.EXPECT().Marshal(gomock.Any()).Return(nil, errors.New("boom"))

	p := &publisher{json: jsonAdapter}
	err := p.PublishTableUpdated(context.Background(), &domain.TableUpdatedEvent{RunID: "x"})
	assert.ErrorContains(t, err, "failed to marshal event")
}

func TestPublisherClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := mocks.NewMockNatsConn(ctrl)
	conn.EXPECT().Drain().Return(errors.New("already closed"))
	conn.EXPECT().Close()

	p := &publisher{nc: conn}
	p.Close()

	(&publisher{}).Close()
}
