package review_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appreview "github.com/xiebiao/bookreview/internal/application/review"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/rating"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// recordingPublisher 记录已发布的事件,可模拟发布失败
type recordingPublisher struct {
	mu     sync.Mutex
	events []appreview.Event
	keys   []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, routingKey)
	p.events = append(p.events, message.(appreview.Event))
	return nil
}

// testEnv 基于SQLite的完整评论用例环境
type testEnv struct {
	books     book.Repository
	users     user.Repository
	publisher *recordingPublisher

	add       *appreview.AddReviewUseCase
	update    *appreview.UpdateReviewUseCase
	delete    *appreview.DeleteReviewUseCase
	list      *appreview.ListReviewsUseCase
	recompute *appreview.RecomputeUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithAggregateRepo(t, nil)
}

// newTestEnvWithAggregateRepo wrap非空时,评分重算写入经过wrap返回的仓储
func newTestEnvWithAggregateRepo(t *testing.T, wrap func(book.Repository) book.Repository) *testEnv {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "review.db"),
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	bookRepo := database.NewBookRepository(db)
	reviewRepo := database.NewReviewRepository(db)
	txManager := database.NewTxManager(db)
	var aggregateRepo book.Repository = bookRepo
	if wrap != nil {
		aggregateRepo = wrap(bookRepo)
	}
	aggregator := rating.NewAggregator(reviewRepo, aggregateRepo)
	publisher := &recordingPublisher{}
	mutator := appreview.NewMutator(txManager, aggregator, publisher, log)
	reviewService := review.NewService(reviewRepo)

	return &testEnv{
		books:     bookRepo,
		users:     database.NewUserRepository(db),
		publisher: publisher,
		add:       appreview.NewAddReviewUseCase(bookRepo, reviewService, mutator),
		update:    appreview.NewUpdateReviewUseCase(reviewService, mutator),
		delete:    appreview.NewDeleteReviewUseCase(reviewService, mutator),
		list:      appreview.NewListReviewsUseCase(reviewService),
		recompute: appreview.NewRecomputeUseCase(bookRepo, aggregator, txManager, log),
	}
}

func (e *testEnv) seedUser(t *testing.T, name, email string) *user.User {
	t.Helper()
	u := user.NewUser(name, email, "hashed")
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) seedBook(t *testing.T, ownerID uint, title string) *book.Book {
	t.Helper()
	b := book.NewBook(title, "Author", "Genre", "Description", ownerID)
	require.NoError(t, e.books.Create(context.Background(), b))
	return b
}

func (e *testEnv) averageOf(t *testing.T, bookID uint) float64 {
	t.Helper()
	b, err := e.books.FindByID(context.Background(), bookID)
	require.NoError(t, err)
	return b.AverageRating
}

func intPtr(v int) *int { return &v }

func TestReviewLifecycle_AverageRating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	bob := env.seedUser(t, "Bob", "bob@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	assert.Equal(t, 0.0, env.averageOf(t, b.ID))

	// 1. 4分和2分 → 3.0
	r1, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 4, Text: "good"})
	require.NoError(t, err)
	assert.Equal(t, 4.0, env.averageOf(t, b.ID))

	r2, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 2, Text: "meh"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.averageOf(t, b.ID))

	// 2. 更新评分 2 → 5,平均(4+5)/2
	updated, err := env.update.Execute(ctx, appreview.UpdateReviewRequest{ReviewID: r2.ID, CallerID: bob.ID, Rating: intPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "meh", updated.Text)
	assert.Equal(t, 4.5, env.averageOf(t, b.ID))

	// 3. 删除4分 → 5.0
	require.NoError(t, env.delete.Execute(ctx, r1.ID, alice.ID))
	assert.Equal(t, 5.0, env.averageOf(t, b.ID))

	// 4. 删除最后一条 → 0
	require.NoError(t, env.delete.Execute(ctx, r2.ID, bob.ID))
	assert.Equal(t, 0.0, env.averageOf(t, b.ID))

	// 事件按顺序发布,带变更后的平均分
	require.Len(t, env.publisher.events, 5)
	assert.Equal(t, []string{"review.created", "review.created", "review.updated", "review.deleted", "review.deleted"}, env.publisher.keys)
	assert.Equal(t, 3.0, env.publisher.events[1].AverageRating)
	assert.Equal(t, r2.ID, env.publisher.events[2].ReviewID)
	assert.Equal(t, 0.0, env.publisher.events[4].AverageRating)
}

func TestReviewLifecycle_DeleteScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	bob := env.seedUser(t, "Bob", "bob@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	four, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 4, Text: "four"})
	require.NoError(t, err)
	two, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 2, Text: "two"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.averageOf(t, b.ID))

	require.NoError(t, env.delete.Execute(ctx, four.ID, alice.ID))
	assert.Equal(t, 2.0, env.averageOf(t, b.ID))

	require.NoError(t, env.delete.Execute(ctx, two.ID, bob.ID))
	assert.Equal(t, 0.0, env.averageOf(t, b.ID))
}

func TestAddReview_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	_, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 4, Text: "good"})
	require.NoError(t, err)

	// 重复评论:400,平均分不变
	_, err = env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 1, Text: "changed my mind"})
	assert.True(t, errors.Is(err, review.ErrAlreadyReviewed), "got %v", err)
	assert.Equal(t, 400, apperrors.GetAppError(err).HTTPStatus())
	assert.Equal(t, 4.0, env.averageOf(t, b.ID))

	// 图书不存在:404
	_, err = env.add.Execute(ctx, appreview.AddReviewRequest{BookID: 9999, UserID: alice.ID, Rating: 4, Text: "ghost"})
	assert.True(t, errors.Is(err, book.ErrBookNotFound), "got %v", err)
	assert.Equal(t, 404, apperrors.GetAppError(err).HTTPStatus())

	// 评分越界、内容为空:400
	bob := env.seedUser(t, "Bob", "bob@example.com")
	_, err = env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 6, Text: "too much"})
	assert.True(t, errors.Is(err, review.ErrInvalidRating))
	_, err = env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 3, Text: "   "})
	assert.True(t, errors.Is(err, review.ErrEmptyText))

	reviews, err := env.list.Execute(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
	assert.Len(t, env.publisher.events, 1)
}

func TestUpdateAndDelete_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	mallory := env.seedUser(t, "Mallory", "mallory@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	r, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 4, Text: "good"})
	require.NoError(t, err)

	_, err = env.update.Execute(ctx, appreview.UpdateReviewRequest{ReviewID: r.ID, CallerID: mallory.ID, Rating: intPtr(1)})
	assert.True(t, errors.Is(err, review.ErrNotOwner), "got %v", err)
	assert.Equal(t, 401, apperrors.GetAppError(err).HTTPStatus())

	err = env.delete.Execute(ctx, r.ID, mallory.ID)
	assert.True(t, errors.Is(err, review.ErrNotOwner), "got %v", err)

	reviews, err := env.list.Execute(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, 4, reviews[0].Rating)
	assert.Equal(t, 4.0, env.averageOf(t, b.ID))

	// 不存在的评论:404
	_, err = env.update.Execute(ctx, appreview.UpdateReviewRequest{ReviewID: 9999, CallerID: alice.ID, Rating: intPtr(1)})
	assert.True(t, errors.Is(err, review.ErrReviewNotFound))
	err = env.delete.Execute(ctx, 9999, alice.ID)
	assert.True(t, errors.Is(err, review.ErrReviewNotFound))
}

func TestListReviews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	bob := env.seedUser(t, "Bob", "bob@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	_, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 5, Text: "great"})
	require.NoError(t, err)

	reviews, err := env.list.Execute(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, bob.ID, reviews[0].User.ID)
	assert.Equal(t, "Bob", reviews[0].User.Name)

	// 图书不存在时返回空列表
	reviews, err = env.list.Execute(ctx, 9999)
	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)
}

func TestMutator_PublishFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errors.New("broker unavailable")
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	r, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 3, Text: "ok"})
	require.NoError(t, err)
	assert.NotZero(t, r.ID)
	assert.Equal(t, 3.0, env.averageOf(t, b.ID))
}

// failingAggregateRepo 设置err后写回平均分失败
type failingAggregateRepo struct {
	book.Repository
	err error
}

func (r *failingAggregateRepo) UpdateAverageRating(ctx context.Context, id uint, avg float64) error {
	if r.err != nil {
		return r.err
	}
	return r.Repository.UpdateAverageRating(ctx, id, avg)
}

func TestMutator_RecomputeFailureRollsBack(t *testing.T) {
	var repo *failingAggregateRepo
	env := newTestEnvWithAggregateRepo(t, func(next book.Repository) book.Repository {
		repo = &failingAggregateRepo{Repository: next}
		return repo
	})
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	bob := env.seedUser(t, "Bob", "bob@example.com")
	b := env.seedBook(t, alice.ID, "Dune")

	first, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: alice.ID, Rating: 4, Text: "good"})
	require.NoError(t, err)
	require.Len(t, env.publisher.events, 1)

	errWrite := errors.New("write average failed")
	repo.err = errWrite

	t.Run("新增", func(t *testing.T) {
		_, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 1, Text: "bad"})
		assert.ErrorIs(t, err, errWrite)

		reviews, err := env.list.Execute(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, reviews, 1, "评论插入应随事务回滚")
		assert.Equal(t, alice.ID, reviews[0].UserID)
	})

	t.Run("修改", func(t *testing.T) {
		_, err := env.update.Execute(ctx, appreview.UpdateReviewRequest{ReviewID: first.ID, CallerID: alice.ID, Rating: intPtr(1)})
		assert.ErrorIs(t, err, errWrite)

		reviews, err := env.list.Execute(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, 4, reviews[0].Rating, "评分修改应随事务回滚")
	})

	t.Run("删除", func(t *testing.T) {
		err := env.delete.Execute(ctx, first.ID, alice.ID)
		assert.ErrorIs(t, err, errWrite)

		reviews, err := env.list.Execute(ctx, b.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 1, "删除应随事务回滚")
	})

	assert.Equal(t, 4.0, env.averageOf(t, b.ID))
	assert.Len(t, env.publisher.events, 1, "失败的写操作不发布事件")

	// 恢复后同一用户仍可评论,说明唯一约束没有残留数据
	repo.err = nil
	_, err = env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b.ID, UserID: bob.ID, Rating: 2, Text: "meh"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, env.averageOf(t, b.ID))
}

func TestRecompute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.seedUser(t, "Alice", "alice@example.com")
	b1 := env.seedBook(t, alice.ID, "Dune")
	b2 := env.seedBook(t, alice.ID, "Emma")

	_, err := env.add.Execute(ctx, appreview.AddReviewRequest{BookID: b1.ID, UserID: alice.ID, Rating: 5, Text: "great"})
	require.NoError(t, err)

	// 人为破坏平均分
	require.NoError(t, env.books.UpdateAverageRating(ctx, b1.ID, 1.5))
	require.NoError(t, env.books.UpdateAverageRating(ctx, b2.ID, 4))

	avg, err := env.recompute.One(ctx, b1.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)

	n, err := env.recompute.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 5.0, env.averageOf(t, b1.ID))
	assert.Equal(t, 0.0, env.averageOf(t, b2.ID))

	_, err = env.recompute.One(ctx, 9999)
	assert.True(t, errors.Is(err, book.ErrBookNotFound))
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "review.created", appreview.RoutingKey(appreview.ActionCreated))
	assert.Equal(t, "review.deleted", appreview.RoutingKey(appreview.ActionDeleted))
	assert.NoError(t, appreview.NoopPublisher{}.Publish(context.Background(), "review.created", nil))
}
