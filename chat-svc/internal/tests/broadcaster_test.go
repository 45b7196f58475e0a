package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/mocks"
	"neocafe-assistant/chat-svc/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testUpdate() domain.OrderUpdate {
	return domain.OrderUpdate{
		Kind:      domain.UpdateFinalized,
		SessionID: "s1",
		Order:     domain.Order{ID: "ORD-ABC12345", Total: 12.25, Status: "confirmed"},
		Timestamp: time.Now(),
	}
}

func TestBroadcaster_PartialFailureStillSucceeds(t *testing.T) {
	healthy := mocks.NewNotificationChannel(t)
	healthy.On("Name").Return("webhook").Maybe()
	healthy.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	dead := mocks.NewNotificationChannel(t)
	dead.On("Name").Return("kafka").Maybe()
	dead.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker unreachable")).Once()

	alsoDead := mocks.NewNotificationChannel(t)
	alsoDead.On("Name").Return("filedrop").Maybe()
	alsoDead.On("Send", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	b := service.NewBroadcaster(time.Second, dead, healthy, alsoDead)
	result := b.Broadcast(context.Background(), testUpdate())

	assert.True(t, result.Success())
	assert.Equal(t, []string{"webhook"}, result.Succeeded)
	assert.Len(t, result.Failed, 2)
}

func TestBroadcaster_AllChannelsFail(t *testing.T) {
	var channels []service.NotificationChannel
	for _, name := range []string{"kafka", "webhook", "filedrop"} {
		ch := mocks.NewNotificationChannel(t)
		ch.On("Name").Return(name).Maybe()
		ch.On("Send", mock.Anything, mock.Anything).Return(errors.New("down")).Once()
		channels = append(channels, ch)
	}

	b := service.NewBroadcaster(time.Second, channels...)
	result := b.Broadcast(context.Background(), testUpdate())

	assert.False(t, result.Success())
	assert.Len(t, result.Failed, 3)
}

// a channel that panics must be recorded as a failure, not crash the fan-out
func TestBroadcaster_PanickingChannelIsContained(t *testing.T) {
	panicky := &panicChannel{}

	healthy := mocks.NewNotificationChannel(t)
	healthy.On("Name").Return("webhook").Maybe()
	healthy.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

	b := service.NewBroadcaster(time.Second, panicky, healthy)
	result := b.Broadcast(context.Background(), testUpdate())

	assert.True(t, result.Success())
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, "panicky", result.Failed[0].Channel)
}

type panicChannel struct{}

func (c *panicChannel) Name() string { return "panicky" }

func (c *panicChannel) Send(context.Context, domain.OrderUpdate) error {
	panic("boom")
}

func TestBroadcaster_NoChannels(t *testing.T) {
	b := service.NewBroadcaster(time.Second)
	result := b.Broadcast(context.Background(), testUpdate())
	assert.False(t, result.Success())
	assert.Empty(t, result.Failed)
}
