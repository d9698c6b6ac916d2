package process

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikemacwillie/plasmafilter"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "plasma.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCutByID(t *testing.T) {
	s := openTestStore(t)

	proc := plasmafilter.CutProcess{
		ID: 4, CutSpeed: 2200, Thickness: 6,
		ThicknessID: 3, MaterialID: 2, MachineID: 1,
	}
	require.NoError(t, s.AddCutProcess(proc))

	got, found, err := s.CutByID(4)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, proc, got)
}

func TestCutByIDMissing(t *testing.T) {
	s := openTestStore(t)

	_, found, err := s.CutByID(99)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCutByIDReplace(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.AddCutProcess(plasmafilter.CutProcess{ID: 1, CutSpeed: 1000}))
	require.NoError(t, s.AddCutProcess(plasmafilter.CutProcess{ID: 1, CutSpeed: 1800}))

	got, found, err := s.CutByID(1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1800.0, got.CutSpeed)
}

func TestHiDefRows(t *testing.T) {
	s := openTestStore(t)

	// Inserted out of order; rows come back sorted by hole size.
	rows := []plasmafilter.HiDefRow{
		{HoleSize: 10, LeadinRadius: 3, Kerf: 1.5, CutHeight: 1, Speed1: 3000,
			Speed2: 2500, Speed2Distance: 4.5, PlasmaOffDistance: 3, OverCut: 6, Amps: 130},
		{HoleSize: 5, LeadinRadius: 2, Kerf: 1, CutHeight: 0.5, Speed1: 1500,
			Speed2: 1200, Speed2Distance: 1.5, PlasmaOffDistance: 1, OverCut: 2, Amps: 80},
	}
	for _, r := range rows {
		require.NoError(t, s.AddHiDefRow(1, 2, 3, r))
	}
	// Rows for another combination never leak in.
	require.NoError(t, s.AddHiDefRow(9, 9, 9, plasmafilter.HiDefRow{HoleSize: 7}))

	got, err := s.HiDefRows(1, 2, 3)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[1], got[0])
	assert.Equal(t, rows[0], got[1])
}

func TestHiDefRowsEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.HiDefRows(1, 2, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plasma.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.AddCutProcess(plasmafilter.CutProcess{ID: 2, CutSpeed: 900}))
	require.NoError(t, s.Close())

	// Reopening the same file keeps the data and tolerates the
	// already-created schema.
	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.CutByID(2)
	require.NoError(t, err)
	assert.True(t, found)
}
