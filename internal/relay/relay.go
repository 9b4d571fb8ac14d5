// Package relay implements the reply-wait session: drain stale updates, send
// the prompt, then poll until the configured user replies or the deadline
// passes.
package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"teleprompt/internal/telegram"
)

// ErrReplyTimeout reports that the wait deadline passed without a qualifying
// reply. It is a defined outcome, not a transport or API failure.
var ErrReplyTimeout = errors.New("timed out waiting for reply")

// Messenger is the transport the controller drives. *telegram.Client
// implements it.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) (int64, error)
	GetUpdates(ctx context.Context, offset int64, timeoutSeconds int) ([]telegram.Update, error)
}

const (
	// maxDrainBatches bounds the drain loop against an endpoint that never
	// returns an empty page.
	maxDrainBatches = 50

	// maxLongPoll caps the server-side wait hint per getUpdates call.
	maxLongPoll = 30 * time.Second

	// requestSlack is added on top of the long-poll hint for the per-call
	// context deadline, covering connect and transfer time.
	requestSlack = 5 * time.Second
)

// Controller runs one relay session. It owns the update offset; the messenger
// stays stateless.
type Controller struct {
	messenger  Messenger
	userID     int64
	log        zerolog.Logger
	retryPause time.Duration
}

// NewController creates a controller that relays prompts to userID.
func NewController(m Messenger, userID int64, log zerolog.Logger) *Controller {
	return &Controller{
		messenger:  m,
		userID:     userID,
		log:        log,
		retryPause: time.Second,
	}
}

// Drain consumes every update already queued for the bot and returns the
// offset just past the newest one. Only updates above this offset can ever be
// reported as the reply. Errors here are fatal: a partial drain would break
// the freshness baseline.
func (c *Controller) Drain(ctx context.Context) (int64, error) {
	var offset int64
	for i := 0; i < maxDrainBatches; i++ {
		updates, err := c.messenger.GetUpdates(ctx, offset, 0)
		if err != nil {
			return 0, fmt.Errorf("drain pending updates: %w", err)
		}
		if len(updates) == 0 {
			return offset, nil
		}
		offset = updates[len(updates)-1].UpdateID + 1
	}
	return 0, fmt.Errorf("drain did not converge after %d batches", maxDrainBatches)
}

// AwaitReply sends prompt to the configured user and blocks until that user
// replies with a text message, the timeout elapses (ErrReplyTimeout), or a
// fatal drain/send error occurs. Fetch errors during the wait are retried
// against the remaining deadline, never surfaced.
func (c *Controller) AwaitReply(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	offset, err := c.Drain(ctx)
	if err != nil {
		return "", err
	}
	c.log.Debug().Int64("offset", offset).Msg("drained pending updates")

	if _, err := c.messenger.SendMessage(ctx, c.userID, prompt); err != nil {
		return "", fmt.Errorf("send prompt: %w", err)
	}
	c.log.Info().
		Int64("user_id", c.userID).
		Dur("timeout", timeout).
		Msg("prompt sent, waiting for reply")

	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return "", ErrReplyTimeout
		}

		poll := min(remaining, maxLongPoll)
		// The configured timeout is a hard deadline even if the request
		// hangs past its long-poll hint; a call abandoned here is simply
		// discarded.
		budget := min(poll+requestSlack, remaining)

		callCtx, cancel := context.WithTimeout(ctx, budget)
		updates, err := c.messenger.GetUpdates(callCtx, offset, int(poll/time.Second))
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if time.Until(deadline) <= 0 {
				return "", ErrReplyTimeout
			}
			c.log.Warn().Err(err).Msg("fetching updates failed, retrying")
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.retryPause):
			}
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			if text, ok := telegram.ExtractTextReply(u, c.userID); ok {
				return text, nil
			}
		}
	}
}
