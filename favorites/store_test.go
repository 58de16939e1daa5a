package favorites

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/wikidex/models"
)

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func openStore(t *testing.T) *Store {
	t.Helper()
	clock := &stepClock{now: time.Date(2025, 11, 24, 9, 0, 0, 0, time.UTC)}
	s, err := Open(filepath.Join(t.TempDir(), "favorites.db"), WithClock(clock.Now))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddAndList(t *testing.T) {
	s := openStore(t)

	a, err := s.Add(models.FavoriteRequest{Name: "今汐", ItemID: "1001", TabType: "characters"})
	require.NoError(t, err)
	b, err := s.Add(models.FavoriteRequest{Name: "苍鳞千嶂", ItemID: "2001", TabType: "weapons", SubType: "长刃"})
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.True(t, a.CreatedAt.Before(b.CreatedAt))

	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"1001", "2001"}, []string{all[0].ItemID, all[1].ItemID})
	assert.Equal(t, "长刃", all[1].SubType)

	weapons, err := s.List("weapons")
	require.NoError(t, err)
	require.Len(t, weapons, 1)
	assert.Equal(t, b.ID, weapons[0].ID)
}

func TestAddIsIdempotentPerTab(t *testing.T) {
	s := openStore(t)

	first, err := s.Add(models.FavoriteRequest{Name: "今汐", ItemID: "1001", TabType: "characters"})
	require.NoError(t, err)
	again, err := s.Add(models.FavoriteRequest{Name: "今汐", ItemID: " 1001 ", TabType: "characters"})
	require.NoError(t, err)
	assert.Equal(t, first, again)

	other, err := s.Add(models.FavoriteRequest{Name: "今汐攻略", ItemID: "1001", TabType: "guides"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)

	all, err := s.List("")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAddRequiresItemAndTab(t *testing.T) {
	s := openStore(t)
	_, err := s.Add(models.FavoriteRequest{Name: "x", TabType: "characters"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Add(models.FavoriteRequest{Name: "x", ItemID: " ", TabType: "characters"})
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = s.Add(models.FavoriteRequest{Name: "x", ItemID: "1"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRemove(t *testing.T) {
	s := openStore(t)
	f, err := s.Add(models.FavoriteRequest{ItemID: "1001", TabType: "characters"})
	require.NoError(t, err)

	require.NoError(t, s.Remove(f.ID))
	assert.ErrorIs(t, s.Remove(f.ID), ErrNotFound)

	all, err := s.List("")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "favorites.db")

	s, err := Open(path)
	require.NoError(t, err)
	f, err := s.Add(models.FavoriteRequest{Name: "长离", ItemID: "1002", TabType: "characters"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.List("")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, f.ID, all[0].ID)
	assert.True(t, f.CreatedAt.Equal(all[0].CreatedAt))
}
