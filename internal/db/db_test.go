package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "cistats.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

func sampleSimulation() *Simulation {
	return &Simulation{
		Method:            "t",
		Distribution:      "normal",
		TrueParameter:     10,
		SampleSize:        30,
		NumSimulations:    2000,
		ConfidenceLevel:   0.95,
		Seed:              42,
		EmpiricalCoverage: 0.9485,
		AverageWidth:      1.4931,
		RunDate:           "2026-08-28T12:00:00Z",
		Notes:             "baseline",
	}
}

func TestSimulationRoundTrip(t *testing.T) {
	database := openTestDB(t)

	id, err := database.InsertSimulation(sampleSimulation())
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := database.GetSimulation(id)
	require.NoError(t, err)

	assert.Equal(t, "t", got.Method)
	assert.Equal(t, "normal", got.Distribution)
	assert.Equal(t, 30, got.SampleSize)
	assert.Equal(t, 2000, got.NumSimulations)
	assert.InDelta(t, 0.9485, got.EmpiricalCoverage, 1e-9)
	assert.Equal(t, "baseline", got.Notes)
}

func TestListSimulations(t *testing.T) {
	database := openTestDB(t)

	first := sampleSimulation()
	_, err := database.InsertSimulation(first)
	require.NoError(t, err)

	second := sampleSimulation()
	second.Method = "bootstrap-bca"
	_, err = database.InsertSimulation(second)
	require.NoError(t, err)

	t.Run("newest first", func(t *testing.T) {
		sims, err := database.ListSimulations(10, "")
		require.NoError(t, err)
		require.Len(t, sims, 2)
		assert.Equal(t, "bootstrap-bca", sims[0].Method)
		assert.Equal(t, "t", sims[1].Method)
	})

	t.Run("method filter", func(t *testing.T) {
		sims, err := database.ListSimulations(10, "t")
		require.NoError(t, err)
		require.Len(t, sims, 1)
		assert.Equal(t, "t", sims[0].Method)
	})

	t.Run("limit", func(t *testing.T) {
		sims, err := database.ListSimulations(1, "")
		require.NoError(t, err)
		assert.Len(t, sims, 1)
	})
}

func TestTrials(t *testing.T) {
	database := openTestDB(t)

	id, err := database.InsertSimulation(sampleSimulation())
	require.NoError(t, err)

	rows := []TrialRow{
		{SimulationID: id, TrialIndex: 0, SampleMean: 9.8, LowerBound: 9.1, UpperBound: 10.6, Covers: true},
		{SimulationID: id, TrialIndex: 1, SampleMean: 11.2, LowerBound: 10.4, UpperBound: 12.0, Covers: false},
	}
	require.NoError(t, database.InsertTrials(rows))

	got, err := database.GetTrials(id)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].Covers)
	assert.False(t, got[1].Covers)
	assert.InDelta(t, 9.8, got[0].SampleMean, 1e-9)
}

func TestDeleteSimulation(t *testing.T) {
	database := openTestDB(t)

	id, err := database.InsertSimulation(sampleSimulation())
	require.NoError(t, err)
	require.NoError(t, database.InsertTrials([]TrialRow{
		{SimulationID: id, TrialIndex: 0, SampleMean: 10, LowerBound: 9, UpperBound: 11, Covers: true},
	}))

	require.NoError(t, database.DeleteSimulation(id))

	_, err = database.GetSimulation(id)
	assert.Error(t, err)

	trials, err := database.GetTrials(id)
	require.NoError(t, err)
	assert.Empty(t, trials, "cascade should remove trials")

	assert.Error(t, database.DeleteSimulation(id), "deleting twice should fail")
}
