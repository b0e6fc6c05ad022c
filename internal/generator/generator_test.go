package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napieracademy/sitemap-manager/internal/artifact"
	"github.com/napieracademy/sitemap-manager/internal/lock"
	"github.com/napieracademy/sitemap-manager/internal/repository"
	"github.com/napieracademy/sitemap-manager/internal/sitemap"
	"github.com/napieracademy/sitemap-manager/internal/testhelpers"
)

const genBaseURL = "https://example.com"

var runTime = time.Date(2026, 5, 3, 6, 0, 0, 0, time.UTC)

type fixture struct {
	gen   *Generator
	mock  sqlmock.Sqlmock
	store *artifact.Store
}

func newFixture(t *testing.T, runLock *lock.RunLock) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := testhelpers.NewTestLogger()
	store := artifact.NewStore(memfs.New(), "sitemap.xml", log)

	gen := New(Config{
		Pages:     repository.NewPageRepository(db, log),
		Stats:     repository.NewStatsRepository(db, log),
		Store:     store,
		RunLock:   runLock,
		BaseURL:   genBaseURL,
		PublicURL: genBaseURL + "/sitemap.xml",
		Logger:    log,
	})
	gen.now = func() time.Time { return runTime }

	return &fixture{gen: gen, mock: mock, store: store}
}

func expectPages(mock sqlmock.Sqlmock, pages [][2]string) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM generated_pages`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(len(pages)))

	if len(pages) == 0 {
		return
	}

	rows := sqlmock.NewRows([]string{"slug", "page_type", "first_generated_at", "last_visited_at", "visit_count"})
	for _, p := range pages {
		rows.AddRow(p[1], p[0], runTime, runTime, 1)
	}
	mock.ExpectQuery(`SELECT slug, page_type, .+ FROM generated_pages`).
		WithArgs(repository.BatchSize, 0).
		WillReturnRows(rows)
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t, nil)

	expectPages(f.mock, [][2]string{
		{"film", "inception-2010-27205"},
		{"film", "parasite-2019-496243"},
		{"serie", "dark-2017-70523"},
		{"attore", "sophia-loren-5592"},
	})
	f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
		WithArgs(1, runTime, 8, 2, 1, 1, []byte(`{"attore":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary, err := f.gen.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Equal(t, runTime, summary.Timestamp)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 4, summary.RecordCount)
	assert.Equal(t, 8, summary.URLCount)
	assert.Equal(t, 2, summary.FilmCount)
	assert.Equal(t, 1, summary.SerieCount)
	assert.Equal(t, 1, summary.PersonCount)
	assert.Equal(t, genBaseURL+"/sitemap.xml", summary.PublicURL)

	doc, err := f.store.Read()
	require.NoError(t, err)

	parsed, err := sitemap.Parse(doc, genBaseURL)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.URLCount)
	assert.Equal(t, 8, parsed.HeaderCount)
	assert.True(t, parsed.Contains("/film", "inception-2010-27205"))
	assert.True(t, parsed.Contains("/attore", "sophia-loren-5592"))

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRun_EmptyStoreStillPublishes(t *testing.T) {
	f := newFixture(t, nil)

	expectPages(f.mock, nil)
	f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
		WithArgs(1, runTime, 4, 0, 0, 0, []byte(`{}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary, err := f.gen.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Success)
	assert.Zero(t, summary.RecordCount)
	assert.Equal(t, 4, summary.URLCount)

	doc, err := f.store.Read()
	require.NoError(t, err)

	parsed, err := sitemap.Parse(doc, genBaseURL)
	require.NoError(t, err)
	assert.Equal(t, 4, parsed.URLCount)
}

func TestRun_CountFailureIsFatal(t *testing.T) {
	f := newFixture(t, nil)

	f.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM generated_pages`).
		WillReturnError(errors.New("connection refused"))
	f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
		WithArgs(1, runTime, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	summary, err := f.gen.Run(context.Background())
	require.Error(t, err)

	assert.False(t, summary.Success)
	assert.Contains(t, summary.Error, "count tracked pages")

	// Nothing was published.
	_, readErr := f.store.Read()
	assert.Error(t, readErr)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRun_StatsWriteFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)

	expectPages(f.mock, [][2]string{{"film", "roma-1972-9070"}})
	f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
		WillReturnError(errors.New("deadlock detected"))

	summary, err := f.gen.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.Success)

	// The artifact was still published.
	_, readErr := f.store.Read()
	assert.NoError(t, readErr)
}

func TestRun_SkippedWhenLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, mr.Set("sitemap:generation:lock", "other-run"))

	runLock := lock.NewRunLock(client, time.Minute, testhelpers.NewTestLogger())
	f := newFixture(t, runLock)

	summary, err := f.gen.Run(context.Background())
	require.ErrorIs(t, err, ErrRunInProgress)

	assert.False(t, summary.Success)
	assert.NotEmpty(t, summary.RunID)

	// The run bailed out before touching the database or the artifact.
	assert.NoError(t, f.mock.ExpectationsWereMet())
	_, readErr := f.store.Read()
	assert.Error(t, readErr)
}

func TestRun_ReleasesLockAfterCompletion(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	runLock := lock.NewRunLock(client, time.Minute, testhelpers.NewTestLogger())
	f := newFixture(t, runLock)

	expectPages(f.mock, nil)
	f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := f.gen.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, mr.Exists("sitemap:generation:lock"))
}

func TestRun_Idempotent(t *testing.T) {
	pages := [][2]string{
		{"film", "inception-2010-27205"},
		{"serie", "dark-2017-70523"},
	}

	f := newFixture(t, nil)
	for i := 0; i < 2; i++ {
		expectPages(f.mock, pages)
		f.mock.ExpectExec(`INSERT INTO sitemap_stats`).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	_, err := f.gen.Run(context.Background())
	require.NoError(t, err)
	first, err := f.store.Read()
	require.NoError(t, err)

	_, err = f.gen.Run(context.Background())
	require.NoError(t, err)
	second, err := f.store.Read()
	require.NoError(t, err)

	// Same records and same clock produce a byte-identical document.
	assert.Equal(t, first, second)
}

func TestDiscrepancies_FetcherNotConfigured(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.gen.Discrepancies(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher not configured")
}
