package purchase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/course-marketplace/internal/account"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
	"github.com/vasiliy-maslov/course-marketplace/internal/db/dbtest"
	"github.com/vasiliy-maslov/course-marketplace/internal/purchase"
)

type fixture struct {
	userID   uuid.UUID
	courseID uuid.UUID
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()

	admin := &account.Account{Email: "admin@example.com", PasswordHash: "h", FirstName: "A", LastName: "A"}
	require.NoError(t, account.NewRepository(pool, account.KindAdmin).Create(ctx, admin))

	user := &account.Account{Email: "user@example.com", PasswordHash: "h", FirstName: "U", LastName: "U"}
	require.NoError(t, account.NewRepository(pool, account.KindUser).Create(ctx, user))

	c := &course.Course{Title: "Databases", Price: 30, CreatorID: admin.ID}
	require.NoError(t, course.NewRepository(pool).Create(ctx, c))

	return fixture{userID: user.ID, courseID: c.ID}
}

func TestPurchaseRepository_CreateAndListByUser(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := seed(t, pool)
	repo := purchase.NewRepository(pool)

	p := &purchase.Purchase{UserID: f.userID, CourseID: f.courseID}
	require.NoError(t, repo.Create(ctx, p))
	require.False(t, p.ID.IsNil())

	err := repo.Create(ctx, &purchase.Purchase{UserID: f.userID, CourseID: f.courseID})
	require.ErrorIs(t, err, purchase.ErrAlreadyPurchased)

	details, err := repo.ListByUser(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, p.ID, details[0].ID)
	assert.Equal(t, "Databases", details[0].Course.Title)
	assert.Equal(t, 30.0, details[0].Course.Price)
}

func TestPurchaseRepository_Create_UnknownCourse(t *testing.T) {
	pool := dbtest.NewPool(t)
	f := seed(t, pool)

	err := purchase.NewRepository(pool).Create(context.Background(), &purchase.Purchase{
		UserID:   f.userID,
		CourseID: uuid.Must(uuid.NewV4()),
	})
	require.ErrorIs(t, err, purchase.ErrCourseNotFound)
}

func TestPurchaseRepository_Create_UnknownUser(t *testing.T) {
	pool := dbtest.NewPool(t)
	f := seed(t, pool)

	err := purchase.NewRepository(pool).Create(context.Background(), &purchase.Purchase{
		UserID:   uuid.Must(uuid.NewV4()),
		CourseID: f.courseID,
	})
	require.ErrorIs(t, err, purchase.ErrUserNotFound)
	assert.NotErrorIs(t, err, purchase.ErrCourseNotFound)
}

func TestPurchaseRepository_ConcurrentPurchaseCreatesOneRecord(t *testing.T) {
	pool := dbtest.NewPool(t)
	ctx := context.Background()
	f := seed(t, pool)
	repo := purchase.NewRepository(pool)

	const attempts = 8
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, attempts)
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = repo.Create(ctx, &purchase.Purchase{UserID: f.userID, CourseID: f.courseID})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, purchase.ErrAlreadyPurchased):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)

	var count int
	require.NoError(t, pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM purchases WHERE user_id = $1 AND course_id = $2", f.userID, f.courseID).Scan(&count))
	assert.Equal(t, 1, count)
}
