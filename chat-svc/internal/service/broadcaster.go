package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/metrics"
)

const DefaultChannelTimeout = 5 * time.Second

// ChannelError pairs a channel name with the error it returned.
type ChannelError struct {
	Channel string
	Err     error
}

func (e ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Channel, e.Err)
}

// BroadcastResult records the per-channel outcome of one fan-out.
type BroadcastResult struct {
	Succeeded []string
	Failed    []ChannelError
}

// Success reports whether at least one channel accepted the update.
func (r BroadcastResult) Success() bool {
	return len(r.Succeeded) > 0
}

// Broadcaster fans one order update out to every configured channel. Channels
// are tried in order, each under its own timeout, and one failing channel
// never stops the others.
type Broadcaster struct {
	channels []NotificationChannel
	timeout  time.Duration
}

func NewBroadcaster(timeout time.Duration, channels ...NotificationChannel) *Broadcaster {
	if timeout <= 0 {
		timeout = DefaultChannelTimeout
	}
	return &Broadcaster{channels: channels, timeout: timeout}
}

var _ OrderBroadcaster = (*Broadcaster)(nil)

func (b *Broadcaster) Broadcast(ctx context.Context, update domain.OrderUpdate) BroadcastResult {
	var result BroadcastResult
	for _, ch := range b.channels {
		err := b.send(ctx, ch, update)
		if err != nil {
			log.Printf("Warning: notification via %s failed for session %s: %v", ch.Name(), update.SessionID, err)
			metrics.ChannelFailures.WithLabelValues(ch.Name()).Inc()
			result.Failed = append(result.Failed, ChannelError{Channel: ch.Name(), Err: err})
			continue
		}
		result.Succeeded = append(result.Succeeded, ch.Name())
	}
	return result
}

// send isolates one delivery attempt: its own deadline, and a recover so a
// misbehaving channel cannot take the whole fan-out down.
func (b *Broadcaster) send(ctx context.Context, ch NotificationChannel, update domain.OrderUpdate) (err error) {
	cctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("channel panicked: %v", r)
		}
	}()
	return ch.Send(cctx, update)
}
