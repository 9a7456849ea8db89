package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/domain"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, config.DBConfig{Driver: config.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repository.Migrate(ctx, db))
	return db
}

func newTestPool(t *testing.T, name string, created time.Time) *domain.Pool {
	t.Helper()
	p, err := domain.NewPool(domain.NewPoolParams{
		Name:     name,
		EntryFee: decimal.RequireFromString("2.50"),
		PrizeShares: domain.PrizeShares{
			{Place: 1, Percentage: decimal.NewFromInt(60)},
			{Place: 2, Percentage: decimal.NewFromInt(30)},
		},
		Competitors: []string{"Red Rum", "Shergar", "Arkle"},
	}, created)
	require.NoError(t, err)
	return p
}

func TestMigrate_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, repository.Migrate(context.Background(), db))
}

func TestPoolRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPoolRepository(openTestDB(t))

	p := newTestPool(t, "Grand National", time.Date(2026, 4, 11, 12, 0, 0, 0, time.UTC))
	p.Participants = domain.Participants{{Name: "Ann", HasPaid: true}, {Name: "Bob"}}
	require.NoError(t, repo.Create(ctx, p))
	assert.Equal(t, int64(1), p.Version)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "Grand National", got.Name)
	assert.True(t, got.EntryFee.Equal(decimal.RequireFromString("2.5")), "entry fee %s", got.EntryFee)
	assert.Equal(t, domain.StatusSetup, got.Status)
	assert.Equal(t, p.Participants, got.Participants)
	assert.Equal(t, domain.Competitors{"Red Rum", "Shergar", "Arkle"}, got.Competitors)
	assert.Empty(t, got.Pairings)
	assert.Empty(t, got.Outcomes)
	require.Len(t, got.PrizeShares, 2)
	assert.True(t, got.PrizeShares[1].Percentage.Equal(decimal.NewFromInt(30)))
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt), "created_at %s != %s", got.CreatedAt, p.CreatedAt)
	assert.Equal(t, int64(1), got.Version)
}

func TestPoolRepository_GetByID_NotFound(t *testing.T) {
	repo := repository.NewPoolRepository(openTestDB(t))
	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func TestPoolRepository_UpdateRoundTripsResults(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPoolRepository(openTestDB(t))

	p := newTestPool(t, "Derby", time.Now())
	require.NoError(t, repo.Create(ctx, p))

	p.Participants = domain.Participants{{Name: "Ann"}, {Name: "Bob"}}
	p.Pairings = domain.Pairings{{Participant: "Ann", Competitor: "Arkle"}, {Participant: "Bob", Competitor: "Shergar"}}
	p.Outcomes = domain.Outcomes{{
		Pairing:  domain.Pairing{Participant: "Bob", Competitor: "Shergar"},
		Place:    1,
		Winnings: decimal.RequireFromString("3.00"),
	}}
	p.Status = domain.StatusCompleted
	require.NoError(t, repo.Update(ctx, p))
	assert.Equal(t, int64(2), p.Version)

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	assert.Equal(t, p.Pairings, got.Pairings)
	require.Len(t, got.Outcomes, 1)
	assert.Equal(t, "Bob", got.Outcomes[0].Participant)
	assert.True(t, got.Outcomes[0].Winnings.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, int64(2), got.Version)
}

func TestPoolRepository_EntryFeeRoundTripsExactly(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPoolRepository(openTestDB(t))

	for _, fee := range []string{"1234567890123456.78", "0.125", "10"} {
		p := newTestPool(t, "Fee "+fee, time.Now())
		p.EntryFee = decimal.RequireFromString(fee)
		require.NoError(t, repo.Create(ctx, p))

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, got.EntryFee.Equal(p.EntryFee), "fee %s read back as %s", fee, got.EntryFee)
		assert.True(t, got.TotalPool().Equal(p.TotalPool()))
	}
}

func TestPoolRepository_UpdateRejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPoolRepository(openTestDB(t))

	p := newTestPool(t, "Derby", time.Now())
	require.NoError(t, repo.Create(ctx, p))

	first, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)

	first.Participants = domain.Participants{{Name: "Ann"}}
	require.NoError(t, repo.Update(ctx, first))

	second.Participants = domain.Participants{{Name: "Bob"}}
	err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, domain.ErrStaleWrite)
	assert.True(t, domain.IsConflict(err))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Participants{{Name: "Ann"}}, got.Participants)
}

func TestPoolRepository_UpdateMissing(t *testing.T) {
	repo := repository.NewPoolRepository(openTestDB(t))
	p := newTestPool(t, "Ghost", time.Now())
	p.Version = 1
	assert.ErrorIs(t, repo.Update(context.Background(), p), domain.ErrPoolNotFound)
}

func TestPoolRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewPoolRepository(openTestDB(t))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	older := newTestPool(t, "Older", base)
	newer := newTestPool(t, "Newer", base.Add(time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	newer.Status = domain.StatusActive
	newer.Participants = domain.Participants{{Name: "Ann"}}
	newer.Pairings = domain.Pairings{{Participant: "Ann", Competitor: "Arkle"}}
	require.NoError(t, repo.Update(ctx, newer))

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Newer", all[0].Name)
	assert.Equal(t, "Older", all[1].Name)

	active, err := repo.List(ctx, domain.StatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, newer.ID, active[0].ID)

	require.NoError(t, repo.Delete(ctx, older.ID))
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), domain.ErrPoolNotFound)

	all, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCompetitorRepository(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewCompetitorRepository(openTestDB(t))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i, name := range []string{"Red Rum", "Shergar", "Arkle"} {
		c, err := domain.NewCompetitor(name, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, c))
		ids = append(ids, c.ID)
	}

	roster, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Rum", "Shergar", "Arkle"}, domain.CompetitorNames(roster))

	require.NoError(t, repo.Delete(ctx, ids[1]))
	assert.ErrorIs(t, repo.Delete(ctx, ids[1]), domain.ErrCompetitorNotFound)

	roster, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Red Rum", "Arkle"}, domain.CompetitorNames(roster))
}
