package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zack12Ali/sb1-a2fvdq/internal/errors"
	"github.com/zack12Ali/sb1-a2fvdq/internal/events"
	"github.com/zack12Ali/sb1-a2fvdq/internal/model"
	"github.com/zack12Ali/sb1-a2fvdq/internal/realtime"
	"github.com/zack12Ali/sb1-a2fvdq/internal/repository/memory"
)

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListRecentPosts(ctx context.Context, limit int) ([]*model.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *MockPostRepository) UpdatePost(ctx context.Context, id, authorID string, update model.PostUpdate) error {
	args := m.Called(ctx, id, authorID, update)
	return args.Error(0)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id, authorID string) error {
	args := m.Called(ctx, id, authorID)
	return args.Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) AddComment(ctx context.Context, comment *model.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockPostRepository) ListComments(ctx context.Context, postID string) ([]*model.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Comment), args.Error(1)
}

func (m *MockPostRepository) CountActivity(ctx context.Context, stats *model.CommunityStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func newMemoryPostService() *PostService {
	return NewPostService(memory.NewPostRepository(), nil, nil)
}

func mustCreate(t *testing.T, s *PostService, description, author string) *model.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), "A title", description, author, model.AuthorDisplay{Name: "Ann"})
	require.NoError(t, err)
	return post
}

func TestCreatePost(t *testing.T) {
	s := newMemoryPostService()

	post, err := s.CreatePost(context.Background(), "Idea", "Check out #ai and #saas tools", "u1", model.AuthorDisplay{})

	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())
	assert.Nil(t, post.UpdatedAt)
	assert.Equal(t, []string{"ai", "saas"}, post.Tags)
	assert.Equal(t, 0, post.Likes)
	assert.Empty(t, post.LikedBy)
	assert.Equal(t, 0, post.Comments)
	assert.Equal(t, "Anonymous", post.AuthorName)
	assert.Equal(t, "https://ui-avatars.com/api/?name=A&background=0D9488&color=fff", post.AuthorPhotoURL)

	stored, err := s.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Tags, stored.Tags)
}

func TestCreatePostValidation(t *testing.T) {
	s := newMemoryPostService()
	tests := []struct {
		name, title, description, author string
	}{
		{"blank title", "   ", "desc", "u1"},
		{"blank description", "title", "\t\n", "u1"},
		{"no author", "title", "desc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreatePost(context.Background(), tt.title, tt.description, tt.author, model.AuthorDisplay{})
			assert.True(t, errors.Is(err, errors.ErrValidation))
		})
	}
}

func TestToggleLikeIsInvolution(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "desc", "author")
	ctx := context.Background()

	liked, err := s.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = s.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)

	after, _ := s.GetPost(ctx, post.ID)
	assert.Equal(t, 0, after.Likes)
	assert.Empty(t, after.LikedBy)
}

func TestToggleLikeConcurrentUsersKeepsCounterConsistent(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "desc", "author")

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.ToggleLike(context.Background(), post.ID, fmt.Sprintf("user-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	// the same user racing with itself
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ToggleLike(context.Background(), post.ID, "racer")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	after, err := s.GetPost(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, len(after.LikedBy), after.Likes)
	assert.Equal(t, 41, after.Likes)
}

func TestEditPostByNonAuthorLeavesPostUnchanged(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "original #tag", "author")
	before, _ := s.GetPost(context.Background(), post.ID)

	title := "hijacked"
	desc := "new #desc"
	err := s.EditPost(context.Background(), post.ID, "intruder", PostEdit{Title: &title, Description: &desc})

	assert.True(t, errors.Is(err, errors.ErrForbidden))
	after, _ := s.GetPost(context.Background(), post.ID)
	assert.Equal(t, before, after)
}

func TestEditPostRederivesTags(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "original #tag", "author")

	desc := "now about #climate and #energy"
	require.NoError(t, s.EditPost(context.Background(), post.ID, "author", PostEdit{Description: &desc}))

	after, _ := s.GetPost(context.Background(), post.ID)
	assert.Equal(t, []string{"climate", "energy"}, after.Tags)
	assert.Equal(t, "A title", after.Title)
	assert.NotNil(t, after.UpdatedAt)
}

func TestEditPostValidation(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "desc", "author")
	blank := "  "

	assert.True(t, errors.Is(s.EditPost(context.Background(), post.ID, "author", PostEdit{}), errors.ErrValidation))
	assert.True(t, errors.Is(s.EditPost(context.Background(), post.ID, "author", PostEdit{Title: &blank}), errors.ErrValidation))
}

func TestDeleteThenMutateIsNotFound(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "desc", "author")
	ctx := context.Background()
	_, err := s.AddComment(ctx, post.ID, "u2", "first!")
	require.NoError(t, err)

	assert.True(t, errors.Is(s.DeletePost(ctx, post.ID, "intruder"), errors.ErrForbidden))
	require.NoError(t, s.DeletePost(ctx, post.ID, "author"))

	title := "again"
	assert.True(t, errors.Is(s.EditPost(ctx, post.ID, "author", PostEdit{Title: &title}), errors.ErrResourceNotFound))
	_, err = s.ToggleLike(ctx, post.ID, "u2")
	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
	assert.True(t, errors.Is(s.DeletePost(ctx, post.ID, "author"), errors.ErrResourceNotFound))

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAddCommentMatchesCounter(t *testing.T) {
	s := newMemoryPostService()
	post := mustCreate(t, s, "desc", "author")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.AddComment(ctx, post.ID, "u2", fmt.Sprintf("comment %d", i))
		require.NoError(t, err)
	}

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	after, _ := s.GetPost(ctx, post.ID)
	assert.Len(t, comments, after.Comments)
	assert.Equal(t, "comment 2", comments[0].Content)

	_, err = s.AddComment(ctx, post.ID, "u2", "   ")
	assert.True(t, errors.Is(err, errors.ErrValidation))
	_, err = s.AddComment(ctx, "missing", "u2", "hello")
	assert.True(t, errors.Is(err, errors.ErrResourceNotFound))
}

func TestFintechScenario(t *testing.T) {
	s := newMemoryPostService()
	ctx := context.Background()

	post, err := s.CreatePost(ctx, "Freelance pay", "Building a #fintech app for freelancers", "author", model.AuthorDisplay{Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fintech"}, post.Tags)

	_, err = s.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	liked, _ := s.GetPost(ctx, post.ID)
	assert.Equal(t, 2, liked.Likes)

	_, err = s.ToggleLike(ctx, post.ID, "u1")
	require.NoError(t, err)
	after, _ := s.GetPost(ctx, post.ID)
	assert.Equal(t, 1, after.Likes)
	assert.Equal(t, []string{"u2"}, after.LikedBy)
}

func TestListRecentPostsLimits(t *testing.T) {
	repo := new(MockPostRepository)
	s := NewPostService(repo, nil, nil)

	repo.On("ListRecentPosts", mock.Anything, DefaultFeedLimit).Return([]*model.Post{}, nil).Once()
	repo.On("ListRecentPosts", mock.Anything, MaxFeedLimit).Return(nil, nil).Once()

	posts, err := s.ListRecentPosts(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, posts)

	posts, err = s.ListRecentPosts(context.Background(), 5000)
	require.NoError(t, err)
	assert.NotNil(t, posts)

	repo.AssertExpectations(t)
}

func TestStoreFailuresAreTyped(t *testing.T) {
	repo := new(MockPostRepository)
	s := NewPostService(repo, nil, nil)

	repo.On("CreatePost", mock.Anything, mock.Anything).Return(stderrors.New("connection refused"))
	_, err := s.CreatePost(context.Background(), "t", "d", "u1", model.AuthorDisplay{})
	assert.True(t, errors.Is(err, errors.ErrDatabase))

	repo.On("ListComments", mock.Anything, "p1").Return(nil, context.DeadlineExceeded)
	_, err = s.ListComments(context.Background(), "p1")
	assert.True(t, errors.Is(err, errors.ErrTimeout))
}

func TestStoreCallsAreBounded(t *testing.T) {
	repo := new(MockPostRepository)
	s := NewPostService(repo, nil, nil)
	s.timeout = 20 * time.Millisecond

	repo.On("ToggleLike", mock.Anything, "p1", "u1").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(false, context.DeadlineExceeded)

	start := time.Now()
	_, err := s.ToggleLike(context.Background(), "p1", "u1")

	assert.True(t, errors.Is(err, errors.ErrTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestEngagementPublishesEventsForAuthor(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewPostService(memory.NewPostRepository(), nil, pub)
	post := mustCreate(t, s, "desc", "author")
	ctx := context.Background()

	_, err := s.AddComment(ctx, post.ID, "u2", "great idea")
	require.NoError(t, err)
	_, err = s.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	// unlike and self-engagement do not notify
	_, err = s.ToggleLike(ctx, post.ID, "u2")
	require.NoError(t, err)
	_, err = s.AddComment(ctx, post.ID, "author", "thanks")
	require.NoError(t, err)

	got := pub.Events()
	require.Len(t, got, 2)
	assert.Equal(t, events.PostCommented, got[0].Type)
	assert.Equal(t, "author", got[0].RecipientID)
	assert.Equal(t, "great idea", got[0].Summary)
	assert.Equal(t, events.PostLiked, got[1].Type)
	assert.Equal(t, "u2", got[1].ActorID)
}

func TestSubscribeFeed(t *testing.T) {
	broker := realtime.NewMemoryBroker()
	s := NewPostService(memory.NewPostRepository(), broker, nil)

	feed, cancel, err := s.SubscribeFeed(context.Background())
	require.NoError(t, err)
	defer cancel()

	created := mustCreate(t, s, "live #update", "author")

	select {
	case post := <-feed:
		assert.Equal(t, created.ID, post.ID)
		assert.Equal(t, []string{"update"}, post.Tags)
	case <-time.After(time.Second):
		t.Fatal("no live update received")
	}

	cancel()
	assert.Eventually(t, func() bool {
		return broker.Subscribers(realtime.FeedChannel) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestSubscribeFeedWithoutBroker(t *testing.T) {
	_, _, err := newMemoryPostService().SubscribeFeed(context.Background())
	assert.Error(t, err)
}
