package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnwards/leaddesk/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	declareErr error
	publishErr error
	sent       []published
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	if f.declareErr != nil {
		return f.declareErr
	}
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisherDeclaresTopicExchange(t *testing.T) {
	ch := &fakeChannel{}
	_, err := newAMQPPublisher(ch)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaddesk.events:topic"}, ch.declared)
}

func TestAMQPPublisherDeclareFailureClosesChannel(t *testing.T) {
	ch := &fakeChannel{declareErr: errors.New("access refused")}
	_, err := newAMQPPublisher(ch)
	require.Error(t, err)
	assert.True(t, ch.closed)
}

func TestAMQPPublisherPublish(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch)
	require.NoError(t, err)

	at := time.Date(2024, 5, 20, 9, 30, 0, 0, time.UTC)
	e := Event{
		Kind:       LeadUpdated,
		Lead:       domain.Lead{ID: "7", Name: "Ada Lovelace", Status: domain.StatusQualified},
		Notes:      "called back",
		OccurredAt: at,
	}
	require.NoError(t, p.Publish(context.Background(), e))

	require.Len(t, ch.sent, 1)
	got := ch.sent[0]
	assert.Equal(t, ExchangeName, got.exchange)
	assert.Equal(t, "lead.updated", got.key)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, at, got.msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, "lead.updated", body["kind"])
	assert.Equal(t, "called back", body["notes"])
	lead := body["lead"].(map[string]any)
	assert.Equal(t, "7", lead["id"])
	assert.Equal(t, "qualified", lead["status"])
}

func TestAMQPPublisherPublishError(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch)
	require.NoError(t, err)

	ch.publishErr = amqp.ErrClosed
	err = p.Publish(context.Background(), Event{Kind: LeadCreated})
	require.Error(t, err)
	assert.ErrorIs(t, err, amqp.ErrClosed)
	assert.Contains(t, err.Error(), "lead.created")
}

func TestAMQPPublisherCloseWithoutConnection(t *testing.T) {
	ch := &fakeChannel{}
	p, err := newAMQPPublisher(ch)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	p := LogPublisher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	err := p.Publish(context.Background(), Event{
		Kind: LeadCreated,
		Lead: domain.Lead{ID: "12", Status: domain.StatusNew},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "kind=lead.created")
	assert.Contains(t, out, "lead_id=12")
	assert.Contains(t, out, "status=new")
}
