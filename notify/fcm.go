package notify

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sitecrew/apperr"
	"sitecrew/model"
)

const fcmBatchSize = 500

type UserLookup interface {
	UsersByIDs(ctx context.Context, ids []string) ([]model.User, error)
}

// TokenSource resolves device tokens for a set of e-mail addresses.
type TokenSource interface {
	Tokens(ctx context.Context, emails []string) ([]string, error)
}

// MulticastSender is satisfied by *messaging.Client.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FirestoreTokens reads the FMCToken field of usersLogin/{email}.
type FirestoreTokens struct {
	client *firestore.Client
}

func NewFirestoreTokens(client *firestore.Client) *FirestoreTokens {
	return &FirestoreTokens{client: client}
}

func (f *FirestoreTokens) Tokens(ctx context.Context, emails []string) ([]string, error) {
	tokens := make([]string, 0, len(emails))
	for _, email := range emails {
		doc, err := f.client.Collection("usersLogin").Doc(email).Get(ctx)
		if status.Code(err) == codes.NotFound {
			continue
		}
		if err != nil {
			return tokens, fmt.Errorf("failed to get login document for %s: %w", email, err)
		}
		if token, ok := doc.Data()["FMCToken"].(string); ok && token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens, nil
}

type FCM struct {
	users  UserLookup
	tokens TokenSource
	sender MulticastSender
	logger *zap.Logger
}

func NewFCM(users UserLookup, tokens TokenSource, sender MulticastSender, logger *zap.Logger) *FCM {
	return &FCM{users: users, tokens: tokens, sender: sender, logger: logger}
}

func (f *FCM) Notify(ctx context.Context, msg Message) error {
	if len(msg.Recipients) == 0 {
		return nil
	}
	users, err := f.users.UsersByIDs(ctx, msg.Recipients)
	if err != nil {
		return apperr.New(apperr.Notification, "failed to resolve push recipients", err)
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	tokens, err := f.tokens.Tokens(ctx, emails)
	if err != nil {
		return apperr.New(apperr.Notification, "failed to load device tokens", err)
	}

	failed := 0
	for i := 0; i < len(tokens); i += fcmBatchSize {
		end := min(i+fcmBatchSize, len(tokens))
		batch := tokens[i:end]
		resp, err := f.sender.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Data:         msg.Data,
			Notification: &messaging.Notification{Title: msg.Title, Body: msg.Body},
			Tokens:       batch,
		})
		if err != nil {
			return apperr.New(apperr.Notification, fmt.Sprintf("failed to send batch %d-%d", i, end-1), err)
		}
		f.logger.Debug("fcm batch sent",
			zap.Int("from", i), zap.Int("to", end-1),
			zap.Int("success", resp.SuccessCount), zap.Int("failure", resp.FailureCount))
		for idx, r := range resp.Responses {
			if !r.Success {
				failed++
				f.logger.Warn("fcm token rejected", zap.String("token", batch[idx]), zap.Error(r.Error))
			}
		}
	}
	if failed > 0 && failed == len(tokens) {
		return apperr.New(apperr.Notification, "every device token was rejected", nil)
	}
	return nil
}
