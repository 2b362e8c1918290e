package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"messenger-service/internal/models"
	"messenger-service/internal/repositories"
)

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, params repositories.CreateMessageParams) (models.Message, error) {
	args := m.Called(ctx, params)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID string) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetConversation(ctx context.Context, userA, userB, viewer string) ([]models.Message, error) {
	args := m.Called(ctx, userA, userB, viewer)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) GetRecentMessages(ctx context.Context, userID string) ([]models.Message, error) {
	args := m.Called(ctx, userID)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkSeen(ctx context.Context, fromUserID, toUserID string) (int64, error) {
	args := m.Called(ctx, fromUserID, toUserID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) UpsertReaction(ctx context.Context, messageID, userID, reactionType string) (models.Message, error) {
	args := m.Called(ctx, messageID, userID, reactionType)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) RevokeMessage(ctx context.Context, messageID, requesterID string) (models.Message, error) {
	args := m.Called(ctx, messageID, requesterID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) HideMessageForUser(ctx context.Context, messageID, userID string) error {
	args := m.Called(ctx, messageID, userID)
	return args.Error(0)
}

func (m *MessageRepositoryMock) HideConversationForUser(ctx context.Context, userA, userB, userID string) error {
	args := m.Called(ctx, userA, userB, userID)
	return args.Error(0)
}

type PusherMock struct {
	mock.Mock
}

func (m *PusherMock) Push(userID string, event any) bool {
	args := m.Called(userID, event)
	return args.Bool(0)
}

type MediaStoreMock struct {
	mock.Mock
}

func (m *MediaStoreMock) Save(originalName string, r io.Reader) (string, error) {
	args := m.Called(originalName, r)
	return args.String(0), args.Error(1)
}
