package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

// ConnectionService defines the interface for connection graph operations
type ConnectionService interface {
	Request(ctx context.Context, actor auth.Actor, recipientID int64) (*models.Connection, error)
	Respond(ctx context.Context, actor auth.Actor, requesterID int64, accept bool) error
	Remove(ctx context.Context, actor auth.Actor, otherUserID int64) error
	ListAccepted(ctx context.Context, actor auth.Actor) ([]dto.ConnectionResponse, error)
	ListPendingIncoming(ctx context.Context, actor auth.Actor) ([]dto.ConnectionResponse, error)
	Counts(ctx context.Context, actor auth.Actor) (*dto.ConnectionCountsResponse, error)
	Suggestions(ctx context.Context, actor auth.Actor, req *dto.ConnectionSuggestionsRequest) ([]dto.UserBasicResponse, error)
	StatusWith(ctx context.Context, actor auth.Actor, otherUserID int64) (*models.Connection, error)
}

// connectionStore is the storage contract the connection service relies on
type connectionStore interface {
	Create(ctx context.Context, requesterID, recipientID int64) (*models.Connection, error)
	GetByPair(ctx context.Context, userA, userB int64) (*models.Connection, error)
	Accept(ctx context.Context, requesterID, recipientID int64) error
	DeletePending(ctx context.Context, requesterID, recipientID int64) error
	DeletePair(ctx context.Context, userA, userB int64) error
	ListAccepted(ctx context.Context, userID int64) ([]*models.Connection, error)
	ListPendingIncoming(ctx context.Context, userID int64) ([]*models.Connection, error)
	Counts(ctx context.Context, userID int64) (*models.ConnectionCounts, error)
	Suggestions(ctx context.Context, userID int64, branch, role *string, limit int) ([]*models.UserSummary, error)
}

// userDirectory resolves users for existence and activity checks
type userDirectory interface {
	GetSummary(ctx context.Context, id int64) (*models.UserSummary, error)
}

// connectionServiceImpl implements ConnectionService
type connectionServiceImpl struct {
	connectionRepo connectionStore
	userRepo       userDirectory
	logger         zerolog.Logger
}

// NewConnectionService creates a new ConnectionService
func NewConnectionService(connectionRepo connectionStore, userRepo userDirectory, logger zerolog.Logger) ConnectionService {
	return &connectionServiceImpl{
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// Request sends a connection request to another user
func (s *connectionServiceImpl) Request(ctx context.Context, actor auth.Actor, recipientID int64) (*models.Connection, error) {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("recipientID", recipientID).
		Msg("Sending connection request")

	if recipientID == actor.UserID {
		return nil, apperrors.ErrSelfConnection
	}

	recipient, err := s.userRepo.GetSummary(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !recipient.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	existing, err := s.connectionRepo.GetByPair(ctx, actor.UserID, recipientID)
	if err != nil && !errors.Is(err, apperrors.ErrConnectionNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.ErrConnectionExists
	}

	conn, err := s.connectionRepo.Create(ctx, actor.UserID, recipientID)
	if err != nil {
		s.logger.Error().Err(err).
			Int64("userID", actor.UserID).
			Int64("recipientID", recipientID).
			Msg("Failed to create connection request")
		return nil, err
	}

	conn.Recipient = recipient
	return conn, nil
}

// Respond accepts or rejects a pending request addressed to the actor.
// Rejection deletes the row, so the requester may try again later.
func (s *connectionServiceImpl) Respond(ctx context.Context, actor auth.Actor, requesterID int64, accept bool) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("requesterID", requesterID).
		Bool("accept", accept).
		Msg("Responding to connection request")

	if accept {
		return s.connectionRepo.Accept(ctx, requesterID, actor.UserID)
	}
	return s.connectionRepo.DeletePending(ctx, requesterID, actor.UserID)
}

// Remove deletes the connection between the actor and another user
func (s *connectionServiceImpl) Remove(ctx context.Context, actor auth.Actor, otherUserID int64) error {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Int64("otherUserID", otherUserID).
		Msg("Removing connection")

	return s.connectionRepo.DeletePair(ctx, actor.UserID, otherUserID)
}

// ListAccepted retrieves the actor's accepted connections
func (s *connectionServiceImpl) ListAccepted(ctx context.Context, actor auth.Actor) ([]dto.ConnectionResponse, error) {
	conns, err := s.connectionRepo.ListAccepted(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toConnectionResponses(conns), nil
}

// ListPendingIncoming retrieves requests awaiting the actor's decision
func (s *connectionServiceImpl) ListPendingIncoming(ctx context.Context, actor auth.Actor) ([]dto.ConnectionResponse, error) {
	conns, err := s.connectionRepo.ListPendingIncoming(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return toConnectionResponses(conns), nil
}

// Counts aggregates the actor's connection totals
func (s *connectionServiceImpl) Counts(ctx context.Context, actor auth.Actor) (*dto.ConnectionCountsResponse, error) {
	counts, err := s.connectionRepo.Counts(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.ConnectionCountsResponse{
		Accepted:        counts.Accepted,
		PendingIncoming: counts.PendingIncoming,
		PendingOutgoing: counts.PendingOutgoing,
	}, nil
}

// Suggestions retrieves users the actor might want to connect with
func (s *connectionServiceImpl) Suggestions(ctx context.Context, actor auth.Actor, req *dto.ConnectionSuggestionsRequest) ([]dto.UserBasicResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	summaries, err := s.connectionRepo.Suggestions(ctx, actor.UserID, req.Branch, req.Role, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.UserBasicResponse, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, dto.ToUserBasicResponse(*summary))
	}
	return responses, nil
}

// StatusWith retrieves the connection between the actor and another user, if any
func (s *connectionServiceImpl) StatusWith(ctx context.Context, actor auth.Actor, otherUserID int64) (*models.Connection, error) {
	return s.connectionRepo.GetByPair(ctx, actor.UserID, otherUserID)
}

func toConnectionResponses(conns []*models.Connection) []dto.ConnectionResponse {
	responses := make([]dto.ConnectionResponse, 0, len(conns))
	for _, conn := range conns {
		counterpart := conn.Requester
		if counterpart == nil {
			counterpart = conn.Recipient
		}

		resp := dto.ConnectionResponse{
			ID:          conn.ID,
			Status:      string(conn.Status),
			RequestedAt: conn.RequestedAt,
			AcceptedAt:  conn.AcceptedAt,
		}
		if counterpart != nil {
			resp.Counterpart = dto.ToUserBasicResponse(*counterpart)
		}
		responses = append(responses, resp)
	}
	return responses
}
