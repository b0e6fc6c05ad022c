package artifact_test

import (
	"os"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napieracademy/sitemap-manager/internal/artifact"
	"github.com/napieracademy/sitemap-manager/internal/testhelpers"
)

func newStore(t *testing.T) *artifact.Store {
	t.Helper()
	return artifact.NewStore(memfs.New(), "sitemap.xml", testhelpers.NewTestLogger())
}

func TestRead_NotPublishedYet(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	_, err := store.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPublish_FirstRunWritesNoBackup(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	store := artifact.NewStore(fs, "sitemap.xml", testhelpers.NewTestLogger())

	now := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	require.NoError(t, store.Publish([]byte("<urlset/>"), now))

	data, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "<urlset/>", string(data))

	entries, err := fs.ReadDir("/")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPublish_BacksUpPreviousDocument(t *testing.T) {
	t.Parallel()

	fs := memfs.New()
	store := artifact.NewStore(fs, "sitemap.xml", testhelpers.NewTestLogger())

	first := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 8, 6, 0, 0, 0, time.UTC)

	require.NoError(t, store.Publish([]byte("old document"), first))
	require.NoError(t, store.Publish([]byte("new document"), second))

	current, err := store.Read()
	require.NoError(t, err)
	assert.Equal(t, "new document", string(current))

	backup, err := util.ReadFile(fs, "sitemap-20260308-060000.xml")
	require.NoError(t, err)
	assert.Equal(t, "old document", string(backup))
}

func TestBackupName(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	at := time.Date(2026, 8, 29, 3, 15, 0, 0, time.UTC)
	assert.Equal(t, "sitemap-20260829-031500.xml", store.BackupName(at))
}

func TestBackupName_NormalizesToUTC(t *testing.T) {
	t.Parallel()

	store := newStore(t)

	rome := time.FixedZone("CET", 3600)
	at := time.Date(2026, 1, 10, 7, 30, 0, 0, rome)
	assert.Equal(t, "sitemap-20260110-063000.xml", store.BackupName(at))
}
