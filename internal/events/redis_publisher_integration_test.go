//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/spec-kit/ticket-api/internal/domain"
	"github.com/spec-kit/ticket-api/internal/events"
)

type RedisPublisherSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
}

func TestRedisPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisPublisherSuite))
}

func (s *RedisPublisherSuite) SetupSuite() {
	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	opts, err := redis.ParseURL(uri)
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
}

func (s *RedisPublisherSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	_ = testcontainers.TerminateContainer(s.container)
}

func (s *RedisPublisherSuite) TestPublishDeliversJSONToSubscribers() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sub := s.client.Subscribe(ctx, "tickets.events")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	s.Require().NoError(err)

	publisher := events.NewRedisPublisher(s.client, "tickets.events")
	err = publisher.Publish(ctx, events.Event{
		ID:       "evt-1",
		Type:     events.EventTicketStatusChanged,
		TicketID: "507f191e810c19729de81111",
		Payload:  events.TicketStatusChangedPayload{NewStatus: domain.TicketStatusClosed},
	})
	s.Require().NoError(err)

	msg, err := sub.ReceiveMessage(ctx)
	s.Require().NoError(err)

	var got struct {
		ID       string `json:"id"`
		Type     string `json:"type"`
		TicketID string `json:"ticket_id"`
		Payload  struct {
			NewStatus string `json:"new_status"`
		} `json:"payload"`
	}
	s.Require().NoError(json.Unmarshal([]byte(msg.Payload), &got))
	s.Equal("evt-1", got.ID)
	s.Equal(string(events.EventTicketStatusChanged), got.Type)
	s.Equal("507f191e810c19729de81111", got.TicketID)
	s.Equal("closed", got.Payload.NewStatus)
}
