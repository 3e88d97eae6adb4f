package builder

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkloader/loader"
)

func TestNewStartsFromDefaults(t *testing.T) {
	m := New()
	assert.Equal(t, loader.Default(), m.Configuration())
	assert.Equal(t, `/chunkloader set --minutes 60 --limit 2 --name "Farm Loader"`, m.Command())
}

func TestCommandFollowsEveryMutation(t *testing.T) {
	m := New()

	require.NoError(t, m.SetMode(loader.ModeCoords))
	assert.Equal(t, `/chunkloader set --minutes 60 --limit 2 --name "Farm Loader"`, m.Command())

	require.NoError(t, m.SetX("10"))
	require.NoError(t, m.SetY("64"))
	assert.NotContains(t, m.Command(), "10 64")

	require.NoError(t, m.SetZ("-200"))
	require.NoError(t, m.SetWorld(loader.WorldNether))
	require.NoError(t, m.SetDuration(120))
	require.NoError(t, m.SetLimit(3))
	require.NoError(t, m.SetNotify(false))
	require.NoError(t, m.SetName("Iron Farm"))
	require.NoError(t, m.SetNotes("ignored by the command"))

	assert.Equal(t,
		`/chunkloader set 10 64 -200 --world the_nether --minutes 120 --limit 3 --silent --name "Iron Farm"`,
		m.Command())
}

func TestModeRoundTripKeepsCoordinates(t *testing.T) {
	m := New()
	require.NoError(t, m.SetMode(loader.ModeCoords))
	require.NoError(t, m.SetCoords(loader.Coordinates{X: "1", Y: "2", Z: "3"}))

	require.NoError(t, m.SetMode(loader.ModeCurrent))
	assert.Equal(t, loader.Coordinates{X: "1", Y: "2", Z: "3"}, m.Configuration().Coords)
	assert.NotContains(t, m.Command(), "1 2 3")

	require.NoError(t, m.SetMode(loader.ModeCoords))
	assert.Contains(t, m.Command(), "/chunkloader set 1 2 3 ")
}

func TestInvalidValuesLeaveModelUnchanged(t *testing.T) {
	m := New()
	calls := 0
	m.Subscribe(func(string, loader.Configuration) { calls++ })

	assert.ErrorIs(t, m.SetDuration(7), loader.ErrInvalidValue)
	assert.ErrorIs(t, m.SetDuration(725), loader.ErrInvalidValue)
	assert.ErrorIs(t, m.SetLimit(0), loader.ErrInvalidValue)
	assert.ErrorIs(t, m.SetWorld("aether"), loader.ErrInvalidValue)
	assert.ErrorIs(t, m.SetMode("teleport"), loader.ErrInvalidValue)

	assert.Equal(t, loader.Default(), m.Configuration())
	assert.Zero(t, calls)
}

func TestObserversNotifiedSynchronously(t *testing.T) {
	m := New()
	var got []string
	m.Subscribe(func(cmd string, _ loader.Configuration) { got = append(got, "a:"+cmd) })
	m.Subscribe(func(cmd string, _ loader.Configuration) { got = append(got, "b:"+cmd) })

	require.NoError(t, m.SetName(""))
	want := "/chunkloader set --minutes 60 --limit 2"
	assert.Equal(t, []string{"a:" + want, "b:" + want}, got)
}

func TestObserverSeesConfigurationCopy(t *testing.T) {
	m := New()
	m.Subscribe(func(_ string, cfg loader.Configuration) { cfg.Name = "mutated" })
	require.NoError(t, m.SetNotes("x"))
	assert.Equal(t, loader.DefaultName, m.Configuration().Name)
}

func TestUnsubscribe(t *testing.T) {
	m := New()
	calls := 0
	unsub := m.Subscribe(func(string, loader.Configuration) { calls++ })

	require.NoError(t, m.SetLimit(5))
	unsub()
	unsub()
	require.NoError(t, m.SetLimit(6))

	assert.Equal(t, 1, calls)
}

func TestLoadAndReset(t *testing.T) {
	m := New()
	cfg := loader.Configuration{
		Mode:            loader.ModeCoords,
		Coords:          loader.Coordinates{X: "5", Y: "6", Z: "7"},
		World:           loader.WorldEnd,
		DurationMinutes: 30,
		PerPlayerLimit:  1,
		Notify:          true,
		Name:            "Loaded",
	}
	require.NoError(t, m.Load(cfg))
	assert.Equal(t, cfg, m.Configuration())
	assert.Equal(t, `/chunkloader set 5 6 7 --world the_end --minutes 30 --limit 1 --name "Loaded"`, m.Command())

	require.NoError(t, m.Reset())
	assert.Equal(t, loader.Default(), m.Configuration())
}

func TestApply(t *testing.T) {
	tests := []struct {
		field, value string
		check        func(t *testing.T, cfg loader.Configuration)
	}{
		{"mode", "coords", func(t *testing.T, c loader.Configuration) { assert.Equal(t, loader.ModeCoords, c.Mode) }},
		{"x", "1", func(t *testing.T, c loader.Configuration) { assert.Equal(t, "1", c.Coords.X) }},
		{"y", "2", func(t *testing.T, c loader.Configuration) { assert.Equal(t, "2", c.Coords.Y) }},
		{"z", "3", func(t *testing.T, c loader.Configuration) { assert.Equal(t, "3", c.Coords.Z) }},
		{"world", "the_end", func(t *testing.T, c loader.Configuration) { assert.Equal(t, loader.WorldEnd, c.World) }},
		{"duration", "300", func(t *testing.T, c loader.Configuration) { assert.Equal(t, 300, c.DurationMinutes) }},
		{"limit", "9", func(t *testing.T, c loader.Configuration) { assert.Equal(t, 9, c.PerPlayerLimit) }},
		{"notify", "false", func(t *testing.T, c loader.Configuration) { assert.False(t, c.Notify) }},
		{"name", "N", func(t *testing.T, c loader.Configuration) { assert.Equal(t, "N", c.Name) }},
		{"notes", "T", func(t *testing.T, c loader.Configuration) { assert.Equal(t, "T", c.Notes) }},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			m := New()
			require.NoError(t, m.Apply(tt.field, tt.value))
			tt.check(t, m.Configuration())
		})
	}
}

func TestApplyRejects(t *testing.T) {
	m := New()
	for _, kv := range [][2]string{
		{"duration", "sixty"},
		{"limit", "1.5"},
		{"notify", "maybe"},
		{"color", "red"},
	} {
		assert.ErrorIs(t, m.Apply(kv[0], kv[1]), loader.ErrInvalidValue, "%s=%s", kv[0], kv[1])
	}
	assert.Equal(t, loader.Default(), m.Configuration())
}

func TestConcurrentMutationsStayConsistent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = m.SetLimit(n)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, loader.Format(m.Configuration()), m.Command())
}

func TestApplyAllIsOneChange(t *testing.T) {
	m := New()
	var commands []string
	m.Subscribe(func(cmd string, _ loader.Configuration) { commands = append(commands, cmd) })

	require.NoError(t, m.ApplyAll(map[string]string{
		"z": "3", "y": "2", "x": "1", "mode": "coords", "limit": "4", "notify": "false",
	}))

	require.Len(t, commands, 1)
	assert.Equal(t, `/chunkloader set 1 2 3 --minutes 60 --limit 4 --silent --name "Farm Loader"`, commands[0])
}

func TestApplyAllRejectsWithoutChanging(t *testing.T) {
	m := New()
	calls := 0
	m.Subscribe(func(string, loader.Configuration) { calls++ })

	assert.ErrorIs(t, m.ApplyAll(map[string]string{"limit": "4", "duration": "7"}), loader.ErrInvalidValue)
	assert.ErrorIs(t, m.ApplyAll(map[string]string{"limit": "4", "colour": "red"}), loader.ErrInvalidValue)

	assert.Equal(t, loader.Default(), m.Configuration())
	assert.Zero(t, calls)
}

func TestApplyAllKeepsConcurrentChanges(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.ApplyAll(map[string]string{"limit": "7"})
		}()
		go func() {
			defer wg.Done()
			_ = m.Apply("world", "the_end")
		}()
	}
	wg.Wait()

	cfg := m.Configuration()
	assert.Equal(t, 7, cfg.PerPlayerLimit)
	assert.Equal(t, loader.WorldEnd, cfg.World)
}
