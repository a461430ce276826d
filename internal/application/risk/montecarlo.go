package risk

// montecarlo.go — Monte Carlo engine for strategy validation.
//
// Simulates thousands of independent trading paths to stress-test a
// Kelly-sized strategy: terminal bankroll distribution, drawdown behavior,
// percentile bands and a simplified annualized Sharpe. Paths are
// embarrassingly parallel, so they run on a worker pool; each path gets
// its own PCG generator seeded from the top-level seed, which keeps
// results identical regardless of worker count.

import (
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"

	"github.com/alejandrodnm/predrisk/internal/domain"
)

// PathParams are the inputs for a single simulated trading path.
type PathParams struct {
	Bankroll       float64
	WinRate        float64 // assumed long-run win rate (0.58 = 58%)
	AvgEdge        float64 // average edge per trade (0.08 = 8%)
	KellyFraction  float64 // fixed fractional-Kelly multiplier for the path
	TradesPerDay   float64
	HorizonDays    int
	MinBetFraction float64
	MaxBetFraction float64
}

// SimulatePath runs one path of TradesPerDay × HorizonDays sequential
// trades and returns the final bankroll and the max drawdown fraction.
//
// Each trade sizes a Kelly bet against a market priced AvgEdge below the
// true win rate, then samples the outcome at WinRate. The sizing prob and
// the outcome prob are deliberately decoupled: that is what a persistent
// edge looks like. The path stops early if equity hits zero.
//
// Pass a seeded rng for reproducibility; nil uses system randomness.
func SimulatePath(p PathParams, rng *rand.Rand) (finalBankroll, maxDrawdown float64) {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	equity := p.Bankroll
	peak := equity
	maxDD := 0.0

	totalTrades := int(p.TradesPerDay * float64(p.HorizonDays))
	for i := 0; i < totalTrades; i++ {
		if equity <= 0 {
			break
		}

		// Market priced AvgEdge below our true win rate.
		marketProb := math.Max(p.WinRate-p.AvgEdge, 0.01)
		odds := 1.0 / marketProb
		b := odds - 1.0
		q := 1.0 - p.WinRate

		rawF := 0.0
		if b > 0 {
			rawF = (p.WinRate*b - q) / b
		}
		rawF = math.Max(rawF, 0.0)

		scaledF := rawF * p.KellyFraction
		scaledF = math.Max(scaledF, p.MinBetFraction)
		scaledF = math.Min(scaledF, p.MaxBetFraction)

		bet := scaledF * equity

		if rng.Float64() < p.WinRate {
			equity += bet * b
		} else {
			equity -= bet
		}

		if equity > peak {
			peak = equity
		}
		if peak > 0 {
			if dd := (peak - equity) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}

	return equity, maxDD
}

// RunSimulation runs the full Monte Carlo suite for the given win rate and
// edge assumption, using the Kelly and Monte Carlo parameters in params.
//
// When params.MonteCarlo.Seed is set the run is fully reproducible: path
// seeds are derived from the top-level seed by path index before any
// worker starts, so the aggregate does not depend on scheduling.
func RunSimulation(winRate, avgEdge float64, params domain.Params) domain.SimulationResult {
	mc := params.MonteCarlo
	kc := params.Kelly

	var top *rand.Rand
	if mc.Seed != nil {
		top = rand.New(rand.NewPCG(*mc.Seed, *mc.Seed<<1|1))
	} else {
		top = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	n := mc.NumSimulations
	if n <= 0 {
		n = 1
	}

	// Derive all path seeds up front, sequentially.
	seeds := make([][2]uint64, n)
	for i := range seeds {
		seeds[i] = [2]uint64{top.Uint64(), top.Uint64()}
	}

	pp := PathParams{
		Bankroll:       params.Bankroll,
		WinRate:        winRate,
		AvgEdge:        avgEdge,
		KellyFraction:  kc.BaseFraction,
		TradesPerDay:   mc.TradesPerDay,
		HorizonDays:    mc.HorizonDays,
		MinBetFraction: kc.MinBetFraction,
		MaxBetFraction: kc.MaxBetFraction,
	}

	finals := make([]float64, n)
	drawdowns := make([]float64, n)

	// Worker pool over path indices. Results land in pre-allocated slots,
	// so workers share no mutable state.
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}
	idxCh := make(chan int, n)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idxCh {
				rng := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))
				finals[i], drawdowns[i] = SimulatePath(pp, rng)
			}
		}()
	}
	for i := 0; i < n; i++ {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	return aggregate(finals, drawdowns, params)
}

// SweepKellyFractions runs a full simulation per candidate base fraction,
// used to pick a Kelly multiplier empirically.
func SweepKellyFractions(fractions []float64, winRate, avgEdge float64, params domain.Params) []domain.SimulationResult {
	results := make([]domain.SimulationResult, 0, len(fractions))
	for _, frac := range fractions {
		p := params.Clone()
		p.Kelly.BaseFraction = frac
		results = append(results, RunSimulation(winRate, avgEdge, p))
	}
	return results
}

// MeetsRetentionTarget reports whether the 10th-percentile outcome retains
// the configured fraction of the starting bankroll.
func MeetsRetentionTarget(res domain.SimulationResult, params domain.Params) bool {
	return res.P10FinalBankroll >= params.MonteCarlo.Min10thPercentileRetention*params.Bankroll
}

// aggregate turns raw per-path results into a SimulationResult.
func aggregate(finals, drawdowns []float64, params domain.Params) domain.SimulationResult {
	mc := params.MonteCarlo
	bankroll := params.Bankroll
	n := len(finals)

	sortedFinals := sortedCopy(finals)
	sortedDD := sortedCopy(drawdowns)

	rois := make([]float64, n)
	minFinal, maxFinal := finals[0], finals[0]
	var sumFinal, sumROI float64
	for i, f := range finals {
		rois[i] = (f - bankroll) / bankroll * 100
		sumFinal += f
		sumROI += rois[i]
		minFinal = math.Min(minFinal, f)
		maxFinal = math.Max(maxFinal, f)
	}
	sortedROIs := sortedCopy(rois)

	probPos := 0.0
	targetROIPct := mc.TargetYearlyROIUSD / bankroll * 100
	probTarget := 0.0
	for _, r := range rois {
		if r > 0 {
			probPos++
		}
		if r >= targetROIPct {
			probTarget++
		}
	}
	probPos /= float64(n)
	probTarget /= float64(n)

	var sumDD float64
	for _, d := range drawdowns {
		sumDD += d
	}

	// Annualized Sharpe, simplified: per-path ROI spread out over the
	// horizon as a flat daily return, sample stdev, scaled by √365.
	dailyReturns := make([]float64, n)
	var drMean float64
	for i, r := range rois {
		dailyReturns[i] = r / float64(mc.HorizonDays)
		drMean += dailyReturns[i]
	}
	drMean /= float64(n)
	var drVar float64
	for _, d := range dailyReturns {
		drVar += (d - drMean) * (d - drMean)
	}
	drVar /= math.Max(float64(n-1), 1)
	drStd := math.Sqrt(drVar)
	sharpe := 0.0
	if drStd > 0 {
		sharpe = drMean / drStd * math.Sqrt(365)
	}

	return domain.SimulationResult{
		NumSimulations:       mc.NumSimulations,
		HorizonDays:          mc.HorizonDays,
		MeanFinalBankroll:    round2(sumFinal / float64(n)),
		MedianFinalBankroll:  round2(percentile(sortedFinals, 50)),
		P10FinalBankroll:     round2(percentile(sortedFinals, 10)),
		P90FinalBankroll:     round2(percentile(sortedFinals, 90)),
		MinFinalBankroll:     round2(minFinal),
		MaxFinalBankroll:     round2(maxFinal),
		MeanROIPct:           round2(sumROI / float64(n)),
		MedianROIPct:         round2(percentile(sortedROIs, 50)),
		P10ROIPct:            round2(percentile(sortedROIs, 10)),
		ProbPositiveROI:      round4(probPos),
		ProbTargetROI:        round4(probTarget),
		MeanMaxDrawdownPct:   round2(sumDD / float64(n) * 100),
		MedianMaxDrawdownPct: round2(percentile(sortedDD, 50) * 100),
		P90MaxDrawdownPct:    round2(percentile(sortedDD, 90) * 100),
		EstimatedSharpe:      round2(sharpe),
		TerminalBankrolls:    finals,
	}
}

// percentile returns the pct-th percentile (0–100) of a sorted slice,
// linearly interpolated between adjacent ranks.
func percentile(sorted []float64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	k := pct / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(k))
	hi := lo + 1
	if hi > len(sorted)-1 {
		hi = len(sorted) - 1
	}
	weight := k - float64(lo)
	return sorted[lo]*(1.0-weight) + sorted[hi]*weight
}

func sortedCopy(vals []float64) []float64 {
	c := make([]float64, len(vals))
	copy(c, vals)
	sort.Float64s(c)
	return c
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
