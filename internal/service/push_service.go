package service

import (
	"context"
	"log/slog"

	"firebase.google.com/go/v4/messaging"
)

// PushService sends FCM notifications to registered device tokens. All
// sends are best-effort: a nil client or per-token failures only log.
type PushService struct {
	Client *messaging.Client
	Logger *slog.Logger
}

func (s PushService) Push(ctx context.Context, tokens []string, title, body string) error {
	if s.Client == nil || len(tokens) == 0 {
		return nil
	}
	resp, err := s.Client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return err
	}
	if resp.FailureCount > 0 {
		s.Logger.Warn("push partially failed", "failed", resp.FailureCount, "sent", resp.SuccessCount)
	}
	return nil
}
