package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/user"
	"github.com/example/classbooker/internal/internaltypes"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	// second pass must be a no-op
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestRunRepoRecordAndRead(t *testing.T) {
	pool := testPool(t)
	repo := NewRunRepo(pool)
	ctx := context.Background()

	target := time.Date(2026, time.October, 19, 0, 5, 0, 0, time.UTC)
	run := booking.Run{
		ID:         uuid.NewString(),
		Status:     booking.StatusAborted,
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		TargetDate: &target,
		FailedStep: 13,
		StepName:   "select slot 12:00",
		Reason:     "element not found",
		Artifact:   "error_screenshot.png",
	}
	require.NoError(t, repo.Record(ctx, run))

	got, err := repo.Get(ctx, run.ID)
	require.NoError(t, err)
	require.Equal(t, booking.StatusAborted, got.Status)
	require.Equal(t, 13, got.FailedStep)
	require.Equal(t, 19, got.TargetDate.Day())

	recent, err := repo.Recent(ctx, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recent)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, internaltypes.ErrNotFound)
}

func TestUserRepo(t *testing.T) {
	pool := testPool(t)
	repo := NewUserRepo(pool)
	ctx := context.Background()

	name := "ops-" + uuid.NewString()[:8]
	require.NoError(t, repo.Create(ctx, user.User{ID: uuid.NewString(), Username: name, PasswordHash: []byte("x"), CreatedAt: time.Now()}))

	u, err := repo.GetByUsername(ctx, "  "+strings.ToUpper(name))
	require.NoError(t, err)
	require.Equal(t, name, u.Username)

	err = repo.Create(ctx, user.User{ID: uuid.NewString(), Username: strings.ToUpper(name), PasswordHash: []byte("x"), CreatedAt: time.Now()})
	require.ErrorIs(t, err, internaltypes.ErrUserExists)

	_, err = repo.GetByUsername(ctx, "nobody-"+name)
	require.ErrorIs(t, err, internaltypes.ErrNotFound)
}
