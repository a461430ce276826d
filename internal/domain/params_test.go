package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParams_CalibratedValues(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 5000.0, p.Bankroll)
	assert.Equal(t, 0.25, p.Kelly.BaseFraction)
	assert.Equal(t, 0.95, p.VaR.ConfidenceLevel)
	assert.Equal(t, 10_000, p.MonteCarlo.NumSimulations)
	require.NotNil(t, p.MonteCarlo.Seed)
	assert.Equal(t, uint64(42), *p.MonteCarlo.Seed)
}

func TestDefaultParams_EdgeTiersAscending(t *testing.T) {
	tiers := DefaultParams().Kelly.EdgeTiers
	require.NotEmpty(t, tiers)
	for i := 1; i < len(tiers); i++ {
		assert.Greater(t, tiers[i].MinEdge, tiers[i-1].MinEdge)
	}
}

func TestParamsClone_IsolatesMutations(t *testing.T) {
	orig := DefaultParams()
	c := orig.Clone()

	c.Kelly.BaseFraction = 0.50
	c.Kelly.EdgeTiers[0].Fraction = 0.99
	*c.MonteCarlo.Seed = 7

	assert.Equal(t, 0.25, orig.Kelly.BaseFraction)
	assert.Equal(t, 0.25, orig.Kelly.EdgeTiers[0].Fraction)
	assert.Equal(t, uint64(42), *orig.MonteCarlo.Seed)
}

func TestParamsClone_NilSeed(t *testing.T) {
	p := DefaultParams()
	p.MonteCarlo.Seed = nil
	c := p.Clone()
	assert.Nil(t, c.MonteCarlo.Seed)
}
