package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

const defaultHistoryLimit = 50

// ChatService defines the interface for direct messaging operations
type ChatService interface {
	Send(ctx context.Context, actor auth.Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error)
	History(ctx context.Context, actor auth.Actor, peerID int64, limit int) ([]dto.MessageResponse, error)
	ConversationList(ctx context.Context, actor auth.Actor) ([]dto.ConversationResponse, error)
}

// messageStore is the storage contract the chat service relies on
type messageStore interface {
	Create(ctx context.Context, senderID, receiverID int64, body string) (*models.Message, error)
	History(ctx context.Context, viewerID, peerID int64, limit int) ([]*models.Message, error)
	ConversationList(ctx context.Context, viewerID int64) ([]*models.ConversationSummary, error)
}

// chatServiceImpl implements ChatService
type chatServiceImpl struct {
	messageRepo messageStore
	userRepo    userDirectory
	logger      zerolog.Logger
}

// NewChatService creates a new ChatService
func NewChatService(messageRepo messageStore, userRepo userDirectory, logger zerolog.Logger) ChatService {
	return &chatServiceImpl{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// Send delivers a direct message to another user. Both parties must hold
// active accounts.
func (s *chatServiceImpl) Send(ctx context.Context, actor auth.Actor, req *dto.SendMessageRequest) (*dto.MessageResponse, error) {
	s.logger.Debug().
		Int64("senderID", actor.UserID).
		Int64("receiverID", req.ReceiverID).
		Msg("Sending message")

	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, apperrors.NewInvalidArgumentError("message body cannot be empty")
	}
	if req.ReceiverID == actor.UserID {
		return nil, apperrors.NewInvalidArgumentError("cannot message yourself")
	}

	// Tokens outlive deactivation, so the sender's account is re-checked here
	sender, err := s.userRepo.GetSummary(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !sender.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	receiver, err := s.userRepo.GetSummary(ctx, req.ReceiverID)
	if err != nil {
		return nil, err
	}
	if !receiver.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	msg, err := s.messageRepo.Create(ctx, actor.UserID, req.ReceiverID, body)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("senderID", actor.UserID).
			Int64("receiverID", req.ReceiverID).
			Msg("Failed to send message")
		return nil, err
	}

	resp := toMessageResponse(msg)
	return &resp, nil
}

// History retrieves the conversation with a peer in ascending order. Viewing
// it marks the peer's unread messages as read.
func (s *chatServiceImpl) History(ctx context.Context, actor auth.Actor, peerID int64, limit int) ([]dto.MessageResponse, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	if _, err := s.userRepo.GetSummary(ctx, peerID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.History(ctx, actor.UserID, peerID, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.MessageResponse, 0, len(messages))
	for _, msg := range messages {
		responses = append(responses, toMessageResponse(msg))
	}
	return responses, nil
}

// ConversationList retrieves the actor's inbox, most recent first
func (s *chatServiceImpl) ConversationList(ctx context.Context, actor auth.Actor) ([]dto.ConversationResponse, error) {
	conversations, err := s.messageRepo.ConversationList(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, dto.ConversationResponse{
			Peer:        dto.ToUserBasicResponse(conv.Peer),
			LastMessage: toMessageResponse(&conv.LastMessage),
			UnreadCount: conv.UnreadCount,
		})
	}
	return responses, nil
}

func toMessageResponse(msg *models.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		ReceiverID:  msg.ReceiverID,
		Body:        msg.Body,
		SentAt:      msg.SentAt,
		IsRead:      msg.IsRead,
		IsDelivered: msg.IsDelivered,
	}
}
