package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
	"github.com/mesconnect/backend/internal/pkg/helpers"
)

const (
	confessionMinLength = 10
	confessionMaxLength = 1000
	defaultFeedLimit    = 20
)

// ConfessionService defines the interface for the confession pipeline
type ConfessionService interface {
	Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitConfessionRequest) (*dto.ConfessionResponse, error)
	Moderate(ctx context.Context, actor auth.Actor, confessionID int64, req *dto.ModerateConfessionRequest) error
	ToggleLike(ctx context.Context, actor auth.Actor, confessionID int64) (*dto.ToggleLikeResponse, error)
	Feed(ctx context.Context, actor auth.Actor, req *dto.ConfessionFeedRequest) (*dto.PaginatedResponse, error)
	MyConfessions(ctx context.Context, actor auth.Actor) ([]dto.ConfessionResponse, error)
	Delete(ctx context.Context, actor auth.Actor, confessionID int64) error
	PendingModeration(ctx context.Context, actor auth.Actor, limit int) ([]dto.ConfessionResponse, error)
}

// confessionStore is the storage contract the confession service relies on
type confessionStore interface {
	Create(ctx context.Context, confession *models.Confession) error
	GetByID(ctx context.Context, id int64) (*models.Confession, error)
	SetModeration(ctx context.Context, id int64, approved bool, featured *bool) error
	ToggleLike(ctx context.Context, confessionID, userID int64) (liked bool, likesCount int64, err error)
	Feed(ctx context.Context, tag *string, sort string, offset, limit int) ([]*models.Confession, error)
	FeedCount(ctx context.Context, tag *string) (int64, error)
	ListByAuthor(ctx context.Context, userID int64) ([]*models.Confession, error)
	ListPending(ctx context.Context, limit int) ([]*models.Confession, error)
	Delete(ctx context.Context, id int64) error
	LikedByUser(ctx context.Context, userID int64, confessionIDs []int64) (map[int64]bool, error)
}

// confessionServiceImpl implements ConfessionService
type confessionServiceImpl struct {
	confessionRepo confessionStore
	userRepo       userDirectory
	logger         zerolog.Logger
}

// NewConfessionService creates a new ConfessionService
func NewConfessionService(confessionRepo confessionStore, userRepo userDirectory, logger zerolog.Logger) ConfessionService {
	return &confessionServiceImpl{
		confessionRepo: confessionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

// Submit posts a confession into the moderation queue. Anonymous posts never
// record the author; authorship cannot be reconstructed afterwards.
func (s *confessionServiceImpl) Submit(ctx context.Context, actor auth.Actor, req *dto.SubmitConfessionRequest) (*dto.ConfessionResponse, error) {
	s.logger.Debug().
		Int64("userID", actor.UserID).
		Bool("anonymous", req.IsAnonymous).
		Msg("Submitting confession")

	body := strings.TrimSpace(req.Body)
	length := utf8.RuneCountInString(body)
	if length < confessionMinLength {
		return nil, apperrors.ErrConfessionTooShort
	}
	if length > confessionMaxLength {
		return nil, apperrors.ErrConfessionTooLong
	}

	confession := &models.Confession{
		Body:        body,
		Tags:        req.Tags,
		IsAnonymous: req.IsAnonymous,
	}
	if !req.IsAnonymous {
		userID := actor.UserID
		confession.UserID = &userID
	}

	if err := s.confessionRepo.Create(ctx, confession); err != nil {
		s.logger.Error().Err(err).Int64("userID", actor.UserID).Msg("Failed to create confession")
		return nil, err
	}

	resp := toConfessionResponse(confession, false)
	return &resp, nil
}

// Moderate applies an admin's approval and feature decision
func (s *confessionServiceImpl) Moderate(ctx context.Context, actor auth.Actor, confessionID int64, req *dto.ModerateConfessionRequest) error {
	if !auth.CanModerateConfessions(actor) {
		return apperrors.NewForbiddenError("only admins may moderate confessions")
	}

	s.logger.Info().
		Int64("adminID", actor.UserID).
		Int64("confessionID", confessionID).
		Bool("approve", req.Approve).
		Msg("Moderating confession")

	return s.confessionRepo.SetModeration(ctx, confessionID, req.Approve, req.Featured)
}

// ToggleLike flips the actor's like on a confession
func (s *confessionServiceImpl) ToggleLike(ctx context.Context, actor auth.Actor, confessionID int64) (*dto.ToggleLikeResponse, error) {
	liked, likesCount, err := s.confessionRepo.ToggleLike(ctx, confessionID, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleLikeResponse{Liked: liked, LikesCount: likesCount}, nil
}

// Feed retrieves a page of the approved confession feed with the actor's
// like marks
func (s *confessionServiceImpl) Feed(ctx context.Context, actor auth.Actor, req *dto.ConfessionFeedRequest) (*dto.PaginatedResponse, error) {
	sort := req.Sort
	if sort != "most_liked" {
		sort = "recent"
	}
	offset, limit := helpers.CalculateOffsetLimit(req.Page, req.PageSize)

	confessions, err := s.confessionRepo.Feed(ctx, req.Tag, sort, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := s.confessionRepo.FeedCount(ctx, req.Tag)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(confessions))
	for _, c := range confessions {
		ids = append(ids, c.ID)
	}
	liked, err := s.confessionRepo.LikedByUser(ctx, actor.UserID, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConfessionResponse, 0, len(confessions))
	for _, c := range confessions {
		resp := toConfessionResponse(c, liked[c.ID])
		if author := s.resolveAuthor(ctx, c); author != nil {
			resp.Author = author
		}
		responses = append(responses, resp)
	}

	return &dto.PaginatedResponse{
		Items:      responses,
		Pagination: helpers.NewPaginationInfo(req.Page, req.PageSize, total),
	}, nil
}

// MyConfessions retrieves the actor's attributed posts. Anonymous posts carry
// no authorship and are not included.
func (s *confessionServiceImpl) MyConfessions(ctx context.Context, actor auth.Actor) ([]dto.ConfessionResponse, error) {
	confessions, err := s.confessionRepo.ListByAuthor(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(confessions))
	for _, c := range confessions {
		ids = append(ids, c.ID)
	}
	liked, err := s.confessionRepo.LikedByUser(ctx, actor.UserID, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConfessionResponse, 0, len(confessions))
	for _, c := range confessions {
		responses = append(responses, toConfessionResponse(c, liked[c.ID]))
	}
	return responses, nil
}

// Delete removes a confession. Owners may delete their attributed posts;
// admins may delete anything.
func (s *confessionServiceImpl) Delete(ctx context.Context, actor auth.Actor, confessionID int64) error {
	confession, err := s.confessionRepo.GetByID(ctx, confessionID)
	if err != nil {
		return err
	}

	if !auth.CanDeleteConfession(actor, confession.UserID) {
		return apperrors.NewForbiddenError("cannot delete another user's confession")
	}

	s.logger.Info().
		Int64("userID", actor.UserID).
		Int64("confessionID", confessionID).
		Msg("Deleting confession")

	return s.confessionRepo.Delete(ctx, confessionID)
}

// PendingModeration retrieves the admin moderation queue, oldest first
func (s *confessionServiceImpl) PendingModeration(ctx context.Context, actor auth.Actor, limit int) ([]dto.ConfessionResponse, error) {
	if !auth.CanModerateConfessions(actor) {
		return nil, apperrors.NewForbiddenError("only admins may view the moderation queue")
	}
	if limit <= 0 {
		limit = defaultFeedLimit
	}

	confessions, err := s.confessionRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ConfessionResponse, 0, len(confessions))
	for _, c := range confessions {
		resp := toConfessionResponse(c, false)
		if author := s.resolveAuthor(ctx, c); author != nil {
			resp.Author = author
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// resolveAuthor looks up the author summary for attributed confessions.
// Lookup failures degrade to an anonymous presentation rather than failing
// the listing.
func (s *confessionServiceImpl) resolveAuthor(ctx context.Context, c *models.Confession) *dto.UserBasicResponse {
	if c.IsAnonymous || c.UserID == nil {
		return nil
	}
	summary, err := s.userRepo.GetSummary(ctx, *c.UserID)
	if err != nil {
		return nil
	}
	resp := dto.ToUserBasicResponse(*summary)
	return &resp
}

func toConfessionResponse(c *models.Confession, likedByMe bool) dto.ConfessionResponse {
	return dto.ConfessionResponse{
		ID:            c.ID,
		Body:          c.Body,
		Tags:          c.Tags,
		IsAnonymous:   c.IsAnonymous,
		Approved:      c.Approved,
		LikesCount:    c.LikesCount,
		CommentsCount: c.CommentsCount,
		IsFeatured:    c.IsFeatured,
		CreatedAt:     c.CreatedAt,
		LikedByMe:     likedByMe,
	}
}
