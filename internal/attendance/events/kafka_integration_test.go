//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"presence/internal/attendance/events"
	id "presence/pkg/domain"
	"presence/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	broker string
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.GetManager().GetRedpanda(s.T()).Broker
}

func (s *KafkaPublisherSuite) TestPublishedEventsAreConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const topic = "attendance.confirmed.it"
	s.Require().NoError(events.EnsureTopic(ctx, []string{s.broker}, topic, 1, 1))
	s.Require().NoError(events.EnsureTopic(ctx, []string{s.broker}, topic, 1, 1), "idempotent")

	pub, err := events.NewKafka([]string{s.broker}, topic, "presence-it")
	s.Require().NoError(err)
	defer pub.Close()

	sent := events.Confirmed{
		Type:             events.TypeConfirmed,
		RecordID:         id.NewRecordID(),
		PersonIdentifier: "AB",
		WeekStart:        "2024-06-03",
		WeekEnd:          "2024-06-09",
		AttendanceDays:   "Monday,Wednesday",
		ConfirmedAt:      time.Now().UTC().Truncate(time.Millisecond),
	}
	s.Require().NoError(pub.Publish(ctx, []events.Confirmed{sent}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	recs := fetches.Records()
	s.Require().Len(recs, 1)
	s.Equal("ab/2024-06-03", string(recs[0].Key))

	var got events.Confirmed
	s.Require().NoError(json.Unmarshal(recs[0].Value, &got))
	s.Equal(sent.RecordID, got.RecordID)
	s.Equal(sent.AttendanceDays, got.AttendanceDays)
}
