package settings

import (
	"testing"

	"github.com/amrikarisma/mazduino-display-speeduino/eeprom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstBootWritesDefaults(t *testing.T) {
	cells := eeprom.NewMemory(16)
	s, err := Open(cells)
	require.NoError(t, err)

	assert.Equal(t, DefaultDisplayMode, s.DisplayMode())
	assert.Equal(t, DefaultSplash, s.SplashSelection())
	assert.True(t, s.Initialized())

	marker, _ := cells.Get(AddrMarker)
	assert.Equal(t, Marker, marker)
}

func TestPowerCycleKeepsValues(t *testing.T) {
	cells := eeprom.NewMemory(16)
	s, err := Open(cells)
	require.NoError(t, err)

	require.NoError(t, s.SetDisplayMode(ShowFuelPressure))
	require.NoError(t, s.SetSplashSelection(SplashSpeeduino))

	s, err = Open(cells)
	require.NoError(t, err)
	assert.Equal(t, ShowFuelPressure, s.DisplayMode())
	assert.Equal(t, SplashSpeeduino, s.SplashSelection())
}

func TestOpenLeavesMarkedStoreUntouched(t *testing.T) {
	cells := eeprom.NewMemory(16)
	require.NoError(t, cells.Put(AddrDisplayMode, byte(ShowFuelPressure)))
	require.NoError(t, cells.Put(AddrSplash, byte(SplashMazduino)))
	require.NoError(t, cells.Put(AddrMarker, Marker))
	writes := cells.Writes

	s, err := Open(cells)
	require.NoError(t, err)
	assert.Equal(t, writes, cells.Writes)
	assert.Equal(t, ShowFuelPressure, s.DisplayMode())
	assert.Equal(t, SplashMazduino, s.SplashSelection())
}

func TestCorruptSplashIsCoerced(t *testing.T) {
	cells := eeprom.NewMemory(16)
	s, err := Open(cells)
	require.NoError(t, err)

	require.NoError(t, cells.Put(AddrSplash, 7))
	assert.Equal(t, DefaultSplash, s.SplashSelection())

	// reopening repairs the cell
	_, err = Open(cells)
	require.NoError(t, err)
	v, _ := cells.Get(AddrSplash)
	assert.Equal(t, byte(DefaultSplash), v)
}

func TestCorruptDisplayModeIsCoerced(t *testing.T) {
	cells := eeprom.NewMemory(16)
	s, err := Open(cells)
	require.NoError(t, err)

	require.NoError(t, cells.Put(AddrDisplayMode, 9))
	assert.Equal(t, DefaultDisplayMode, s.DisplayMode())
}

func TestToggleDisplayMode(t *testing.T) {
	s, err := Open(eeprom.NewMemory(16))
	require.NoError(t, err)

	m, err := s.ToggleDisplayMode()
	assert.NoError(t, err)
	assert.Equal(t, ShowFuelPressure, m)
	assert.Equal(t, "FP", m.String())

	m, err = s.ToggleDisplayMode()
	assert.NoError(t, err)
	assert.Equal(t, ShowRefreshRate, m)
	assert.Equal(t, "FPS", m.String())
}

func TestCycleSplashVisitsEveryIdentity(t *testing.T) {
	s, err := Open(eeprom.NewMemory(16))
	require.NoError(t, err)
	require.NoError(t, s.SetSplashSelection(SplashMazduino))

	start := s.SplashSelection()
	seen := map[SplashID]int{}
	var id SplashID
	for i := 0; i < SplashCount; i++ {
		id, err = s.CycleSplashSelection()
		require.NoError(t, err)
		assert.Equal(t, id, s.SplashSelection(), "cycle should persist the result")
		seen[id]++
	}
	assert.Equal(t, start, id)
	assert.Len(t, seen, SplashCount)
	for id, n := range seen {
		assert.Equal(t, 1, n, "splash %d visited more than once", id)
	}
}

func TestSetSplashRejectsInvalid(t *testing.T) {
	s, err := Open(eeprom.NewMemory(16))
	require.NoError(t, err)
	assert.Error(t, s.SetSplashSelection(SplashCount))
	assert.Equal(t, DefaultSplash, s.SplashSelection())
}

func TestOpenRejectsTinyStore(t *testing.T) {
	_, err := Open(eeprom.NewMemory(2))
	assert.Error(t, err)
}
