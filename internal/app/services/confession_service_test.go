package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesconnect/backend/internal/app/auth"
	"github.com/mesconnect/backend/internal/app/models"
	"github.com/mesconnect/backend/internal/app/models/dto"
	"github.com/mesconnect/backend/internal/pkg/apperrors"
)

// fakeConfessionStore keeps confessions and likes in memory. ToggleLike is
// mutex-guarded the way the real store serializes toggles under a row lock.
type fakeConfessionStore struct {
	mu          sync.Mutex
	nextID      int64
	confessions map[int64]*models.Confession
	likes       map[int64]map[int64]bool
	clock       time.Time
}

func newFakeConfessionStore() *fakeConfessionStore {
	return &fakeConfessionStore{
		nextID:      1,
		confessions: make(map[int64]*models.Confession),
		likes:       make(map[int64]map[int64]bool),
		clock:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *fakeConfessionStore) Create(_ context.Context, confession *models.Confession) error {
	s.clock = s.clock.Add(time.Minute)
	confession.ID = s.nextID
	confession.CreatedAt = s.clock
	s.nextID++
	s.confessions[confession.ID] = confession
	return nil
}

func (s *fakeConfessionStore) GetByID(_ context.Context, id int64) (*models.Confession, error) {
	c, ok := s.confessions[id]
	if !ok {
		return nil, apperrors.ErrConfessionNotFound
	}
	return c, nil
}

func (s *fakeConfessionStore) SetModeration(_ context.Context, id int64, approved bool, featured *bool) error {
	c, ok := s.confessions[id]
	if !ok {
		return apperrors.ErrConfessionNotFound
	}
	c.Approved = approved
	if featured != nil {
		c.IsFeatured = *featured
	}
	return nil
}

func (s *fakeConfessionStore) ToggleLike(_ context.Context, confessionID, userID int64) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.confessions[confessionID]
	if !ok {
		return false, 0, apperrors.ErrConfessionNotFound
	}
	if s.likes[confessionID] == nil {
		s.likes[confessionID] = make(map[int64]bool)
	}
	if s.likes[confessionID][userID] {
		delete(s.likes[confessionID], userID)
		c.LikesCount--
		return false, c.LikesCount, nil
	}
	s.likes[confessionID][userID] = true
	c.LikesCount++
	return true, c.LikesCount, nil
}

func (s *fakeConfessionStore) approvedMatching(tag *string) []*models.Confession {
	var out []*models.Confession
	for _, c := range s.confessions {
		if !c.Approved {
			continue
		}
		if tag != nil && (c.Tags == nil || !strings.Contains(*c.Tags, *tag)) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (s *fakeConfessionStore) Feed(_ context.Context, tag *string, sortBy string, offset, limit int) ([]*models.Confession, error) {
	out := s.approvedMatching(tag)
	sort.Slice(out, func(i, j int) bool {
		if sortBy == "most_liked" && out[i].LikesCount != out[j].LikesCount {
			return out[i].LikesCount > out[j].LikesCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeConfessionStore) FeedCount(_ context.Context, tag *string) (int64, error) {
	return int64(len(s.approvedMatching(tag))), nil
}

func (s *fakeConfessionStore) ListByAuthor(_ context.Context, userID int64) ([]*models.Confession, error) {
	var out []*models.Confession
	for _, c := range s.confessions {
		if c.UserID != nil && *c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeConfessionStore) ListPending(_ context.Context, limit int) ([]*models.Confession, error) {
	var out []*models.Confession
	for _, c := range s.confessions {
		if !c.Approved {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeConfessionStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.confessions[id]; !ok {
		return apperrors.ErrConfessionNotFound
	}
	delete(s.confessions, id)
	return nil
}

func (s *fakeConfessionStore) LikedByUser(_ context.Context, userID int64, confessionIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for _, id := range confessionIDs {
		if s.likes[id][userID] {
			out[id] = true
		}
	}
	return out, nil
}

func newConfessionServiceForTest(store *fakeConfessionStore, dir *fakeUserDirectory) ConfessionService {
	return NewConfessionService(store, dir, zerolog.Nop())
}

func TestConfessionSubmit(t *testing.T) {
	ctx := context.Background()
	actor := auth.Actor{UserID: 1, Role: models.RoleStudent}

	t.Run("rejects bodies under ten characters", func(t *testing.T) {
		svc := newConfessionServiceForTest(newFakeConfessionStore(), newFakeUserDirectory())

		_, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "too short", IsAnonymous: true})
		assert.ErrorIs(t, err, apperrors.ErrConfessionTooShort)
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		svc := newConfessionServiceForTest(newFakeConfessionStore(), newFakeUserDirectory())

		// Ten runes, well over ten bytes
		resp, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "çok gizli!", IsAnonymous: true})
		require.NoError(t, err)
		assert.Equal(t, "çok gizli!", resp.Body)
	})

	t.Run("rejects bodies over the limit", func(t *testing.T) {
		svc := newConfessionServiceForTest(newFakeConfessionStore(), newFakeUserDirectory())

		_, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: strings.Repeat("a", 1001), IsAnonymous: true})
		assert.ErrorIs(t, err, apperrors.ErrConfessionTooLong)
	})

	t.Run("length check uses the trimmed body", func(t *testing.T) {
		svc := newConfessionServiceForTest(newFakeConfessionStore(), newFakeUserDirectory())

		_, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "   hi    there   ", IsAnonymous: true})
		assert.NoError(t, err)
	})

	t.Run("anonymous posts never record the author", func(t *testing.T) {
		store := newFakeConfessionStore()
		svc := newConfessionServiceForTest(store, newFakeUserDirectory())

		resp, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "nobody must know this", IsAnonymous: true})
		require.NoError(t, err)
		assert.Nil(t, resp.Author)

		stored := store.confessions[resp.ID]
		assert.Nil(t, stored.UserID)
	})

	t.Run("attributed posts keep the author", func(t *testing.T) {
		store := newFakeConfessionStore()
		svc := newConfessionServiceForTest(store, newFakeUserDirectory())

		resp, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "I am proud of this one"})
		require.NoError(t, err)

		stored := store.confessions[resp.ID]
		require.NotNil(t, stored.UserID)
		assert.Equal(t, int64(1), *stored.UserID)
	})

	t.Run("new posts await moderation", func(t *testing.T) {
		svc := newConfessionServiceForTest(newFakeConfessionStore(), newFakeUserDirectory())

		resp, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "waiting for approval", IsAnonymous: true})
		require.NoError(t, err)
		assert.False(t, resp.Approved)
	})
}

func TestConfessionModerate(t *testing.T) {
	ctx := context.Background()
	student := auth.Actor{UserID: 1, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	store := newFakeConfessionStore()
	svc := newConfessionServiceForTest(store, newFakeUserDirectory())

	resp, err := svc.Submit(ctx, student, &dto.SubmitConfessionRequest{Body: "please approve this post", IsAnonymous: true})
	require.NoError(t, err)

	t.Run("students cannot moderate", func(t *testing.T) {
		err := svc.Moderate(ctx, student, resp.ID, &dto.ModerateConfessionRequest{Approve: true})
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	})

	t.Run("admins approve and feature", func(t *testing.T) {
		featured := true
		err := svc.Moderate(ctx, admin, resp.ID, &dto.ModerateConfessionRequest{Approve: true, Featured: &featured})
		require.NoError(t, err)

		stored := store.confessions[resp.ID]
		assert.True(t, stored.Approved)
		assert.True(t, stored.IsFeatured)
	})
}

func TestConfessionToggleLike(t *testing.T) {
	ctx := context.Background()
	actor := auth.Actor{UserID: 1, Role: models.RoleStudent}
	other := auth.Actor{UserID: 2, Role: models.RoleStudent}

	store := newFakeConfessionStore()
	svc := newConfessionServiceForTest(store, newFakeUserDirectory())

	resp, err := svc.Submit(ctx, actor, &dto.SubmitConfessionRequest{Body: "like me or do not", IsAnonymous: true})
	require.NoError(t, err)

	first, err := svc.ToggleLike(ctx, actor, resp.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.Equal(t, int64(1), first.LikesCount)

	second, err := svc.ToggleLike(ctx, other, resp.ID)
	require.NoError(t, err)
	assert.True(t, second.Liked)
	assert.Equal(t, int64(2), second.LikesCount)

	// Toggling again removes only the actor's like
	third, err := svc.ToggleLike(ctx, actor, resp.ID)
	require.NoError(t, err)
	assert.False(t, third.Liked)
	assert.Equal(t, int64(1), third.LikesCount)

	_, err = svc.ToggleLike(ctx, actor, 999)
	assert.ErrorIs(t, err, apperrors.ErrConfessionNotFound)
}

func TestConfessionToggleLikeConcurrent(t *testing.T) {
	ctx := context.Background()
	author := auth.Actor{UserID: 1, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	store := newFakeConfessionStore()
	svc := newConfessionServiceForTest(store, newFakeUserDirectory())

	resp, err := svc.Submit(ctx, author, &dto.SubmitConfessionRequest{Body: "everyone pile on at once", IsAnonymous: true})
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, admin, resp.ID, &dto.ModerateConfessionRequest{Approve: true}))

	const users = 8
	const togglesPerUser = 3

	var wg sync.WaitGroup
	errs := make([]error, users)
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			actor := auth.Actor{UserID: int64(100 + i), Role: models.RoleStudent}
			for j := 0; j < togglesPerUser; j++ {
				if _, err := svc.ToggleLike(ctx, actor, resp.ID); err != nil {
					errs[i] = err
					return
				}
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// An odd toggle count leaves every user liking; the cached counter must
	// equal the number of like rows
	stored := store.confessions[resp.ID]
	assert.Equal(t, int64(users), stored.LikesCount)
	assert.Len(t, store.likes[resp.ID], users)
}

func TestConfessionFeed(t *testing.T) {
	ctx := context.Background()
	author := auth.Actor{UserID: 1, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	store := newFakeConfessionStore()
	dir := newFakeUserDirectory(activeUser(1, "alice"))
	svc := newConfessionServiceForTest(store, dir)

	approved, err := svc.Submit(ctx, author, &dto.SubmitConfessionRequest{Body: "this one gets approved"})
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, admin, approved.ID, &dto.ModerateConfessionRequest{Approve: true}))

	_, err = svc.Submit(ctx, author, &dto.SubmitConfessionRequest{Body: "this one stays pending", IsAnonymous: true})
	require.NoError(t, err)

	_, err = svc.ToggleLike(ctx, admin, approved.ID)
	require.NoError(t, err)

	feedItems := func(t *testing.T, page *dto.PaginatedResponse) []dto.ConfessionResponse {
		t.Helper()
		items, ok := page.Items.([]dto.ConfessionResponse)
		require.True(t, ok)
		return items
	}

	t.Run("only approved posts appear", func(t *testing.T) {
		page, err := svc.Feed(ctx, author, &dto.ConfessionFeedRequest{})
		require.NoError(t, err)

		feed := feedItems(t, page)
		require.Len(t, feed, 1)
		assert.Equal(t, approved.ID, feed[0].ID)
		assert.Equal(t, int64(1), page.Pagination.TotalItems)
		assert.Equal(t, 1, page.Pagination.TotalPages)
	})

	t.Run("attributed posts carry the author", func(t *testing.T) {
		page, err := svc.Feed(ctx, author, &dto.ConfessionFeedRequest{})
		require.NoError(t, err)

		feed := feedItems(t, page)
		require.NotNil(t, feed[0].Author)
		assert.Equal(t, "alice", feed[0].Author.Username)
	})

	t.Run("like marks are per viewer", func(t *testing.T) {
		page, err := svc.Feed(ctx, admin, &dto.ConfessionFeedRequest{})
		require.NoError(t, err)
		assert.True(t, feedItems(t, page)[0].LikedByMe)

		page, err = svc.Feed(ctx, author, &dto.ConfessionFeedRequest{})
		require.NoError(t, err)
		assert.False(t, feedItems(t, page)[0].LikedByMe)
	})

	t.Run("pages beyond the data are empty but keep the total", func(t *testing.T) {
		page, err := svc.Feed(ctx, author, &dto.ConfessionFeedRequest{
			PaginationRequest: dto.PaginationRequest{Page: 3, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Empty(t, feedItems(t, page))
		assert.Equal(t, int64(1), page.Pagination.TotalItems)
	})
}

func TestConfessionDelete(t *testing.T) {
	ctx := context.Background()
	owner := auth.Actor{UserID: 1, Role: models.RoleStudent}
	stranger := auth.Actor{UserID: 2, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	t.Run("owners delete their attributed posts", func(t *testing.T) {
		store := newFakeConfessionStore()
		svc := newConfessionServiceForTest(store, newFakeUserDirectory())

		resp, err := svc.Submit(ctx, owner, &dto.SubmitConfessionRequest{Body: "I regret posting this"})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.Delete(ctx, stranger, resp.ID), apperrors.ErrPermissionDenied)
		assert.NoError(t, svc.Delete(ctx, owner, resp.ID))
	})

	t.Run("anonymous posts are only deletable by admins", func(t *testing.T) {
		store := newFakeConfessionStore()
		svc := newConfessionServiceForTest(store, newFakeUserDirectory())

		resp, err := svc.Submit(ctx, owner, &dto.SubmitConfessionRequest{Body: "anonymous and permanent", IsAnonymous: true})
		require.NoError(t, err)

		// Authorship was discarded, so even the submitter cannot prove ownership
		assert.ErrorIs(t, svc.Delete(ctx, owner, resp.ID), apperrors.ErrPermissionDenied)
		assert.NoError(t, svc.Delete(ctx, admin, resp.ID))
	})
}

func TestConfessionPendingModeration(t *testing.T) {
	ctx := context.Background()
	student := auth.Actor{UserID: 1, Role: models.RoleStudent}
	admin := auth.Actor{UserID: 9, Role: models.RoleAdmin}

	store := newFakeConfessionStore()
	svc := newConfessionServiceForTest(store, newFakeUserDirectory())

	_, err := svc.Submit(ctx, student, &dto.SubmitConfessionRequest{Body: "first in the queue", IsAnonymous: true})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, student, &dto.SubmitConfessionRequest{Body: "second in the queue", IsAnonymous: true})
	require.NoError(t, err)

	_, err = svc.PendingModeration(ctx, student, 0)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	queue, err := svc.PendingModeration(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, "first in the queue", queue[0].Body)
	assert.Equal(t, "second in the queue", queue[1].Body)
}
