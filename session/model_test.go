package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkloader/loader"
)

func decodeUpdate(t *testing.T, data []byte) Update {
	t.Helper()
	var u Update
	require.NoError(t, json.Unmarshal(data, &u))
	return u
}

func TestSetClientConnected(t *testing.T) {
	s := newSession("id", "name")
	ch := make(chan []byte, 1)
	displaced := s.SetClient(ch)
	assert.True(t, s.Connected())
	assert.NotNil(t, displaced)
}

func TestSetClientDisplacesPrior(t *testing.T) {
	s := newSession("id", "name")
	displaced := s.SetClient(make(chan []byte, 1))
	_ = s.SetClient(make(chan []byte, 1))

	select {
	case <-displaced:
	default:
		t.Fatal("first editor was not told it had been replaced")
	}
}

func TestClearClientOwnershipGuard(t *testing.T) {
	s := newSession("id", "name")
	ch1 := make(chan []byte, 1)
	_ = s.SetClient(ch1)
	ch2 := make(chan []byte, 1)
	_ = s.SetClient(ch2)

	s.ClearClient(ch1)
	assert.True(t, s.Connected(), "displaced channel must not clear the session")

	s.ClearClient(ch2)
	assert.False(t, s.Connected())
}

func TestMutationPushesUpdate(t *testing.T) {
	s := newSession("id", "name")
	ch := make(chan []byte, 4)
	s.SetClient(ch)

	require.NoError(t, s.Builder().SetWorld(loader.WorldEnd))

	select {
	case data := <-ch:
		u := decodeUpdate(t, data)
		assert.Equal(t, "command", u.Type)
		assert.Equal(t, `/chunkloader set --world the_end --minutes 60 --limit 2 --name "Farm Loader"`, u.Command)
		assert.Equal(t, loader.WorldEnd, u.Config.World)
	default:
		t.Fatal("no update pushed after mutation")
	}
}

func TestPushDropsWhenClientIsSlow(t *testing.T) {
	s := newSession("id", "name")
	ch := make(chan []byte, 1)
	s.SetClient(ch)

	require.NoError(t, s.Builder().SetLimit(3))
	require.NoError(t, s.Builder().SetLimit(4))

	assert.Len(t, ch, 1)
	assert.Equal(t, 4, s.Builder().Configuration().PerPlayerLimit)
}

func TestSnapshotAndInfo(t *testing.T) {
	s := newSession("id", "name")
	require.NoError(t, s.Builder().SetName(""))

	u := decodeUpdate(t, s.Snapshot())
	assert.Equal(t, "/chunkloader set --minutes 60 --limit 2", u.Command)

	info := s.Info()
	assert.Equal(t, "id", info.ID)
	assert.Equal(t, "name", info.Name)
	assert.Equal(t, u.Command, info.Command)
	assert.False(t, info.LastActive.Before(info.CreatedAt))
}

func TestCloseStopsUpdates(t *testing.T) {
	s := newSession("id", "name")
	ch := make(chan []byte, 4)
	s.SetClient(ch)
	s.close()
	s.close()

	require.NoError(t, s.Builder().SetLimit(5))
	assert.Empty(t, ch)
	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
}
