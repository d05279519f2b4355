package alarm

import (
	"math"

	"github.com/infinitime/smartalarm/internal/hrlog"
)

// analysisWindow and minEntries bound AnalyzeSleepPhase's lookback: take
// the newest analysisWindow samples, but bail out to PhaseUnknown if fewer
// than minEntries are available.
const (
	analysisWindow = 10
	minEntries     = 5
	baselineWindow = 60
)

// HRSource is the narrow slice of hrlog.Log the classifier (and the
// controller) needs: chronological recent samples and a total count, so
// it can decide whether a longer baseline lookback is worth fetching.
type HRSource interface {
	RecentEntries(max int) []hrlog.Entry
	EntryCount() int
}

// analyzeSleepPhase classifies the current sleep phase from a short
// window of recent samples against a longer baseline, preserving its
// rule order verbatim — including a redundancy between rules 3 and 4:
// rule 4 can only ever fire when stddev < 3.0, since rule 3 already
// claims the full [3.0, 7.0] band. That is not fixed here.
func analyzeSleepPhase(hr HRSource) SleepPhase {
	entries := hr.RecentEntries(analysisWindow)
	n := len(entries)
	if n < minEntries {
		return PhaseUnknown
	}

	var sum float64
	for _, e := range entries {
		sum += float64(e.BPM)
	}
	mean := sum / float64(n)

	var varianceSum float64
	for _, e := range entries {
		diff := float64(e.BPM) - mean
		varianceSum += diff * diff
	}
	stddev := math.Sqrt(varianceSum / float64(n))

	half := n / 2
	var firstSum, secondSum float64
	for i := 0; i < half; i++ {
		firstSum += float64(entries[i].BPM)
	}
	for i := half; i < n; i++ {
		secondSum += float64(entries[i].BPM)
	}
	firstHalfMean := firstSum / float64(half)
	secondHalfMean := secondSum / float64(n-half)
	trend := secondHalfMean - firstHalfMean

	baseline := mean
	if hr.EntryCount() > analysisWindow {
		baselineEntries := hr.RecentEntries(baselineWindow)
		if len(baselineEntries) > analysisWindow {
			var baselineSum float64
			for _, e := range baselineEntries {
				baselineSum += float64(e.BPM)
			}
			baseline = baselineSum / float64(len(baselineEntries))
		}
	}

	switch {
	case mean < baseline-6.0 && stddev < 3.0:
		return PhaseDeep
	case stddev > 7.0:
		return PhaseREM
	case stddev >= 3.0 && stddev <= 7.0:
		return PhaseLight
	case trend > 2.0 && mean > baseline-6.0:
		return PhaseLight
	case stddev < 3.0 && mean >= baseline-6.0:
		return PhaseLight
	default:
		return PhaseDeep
	}
}
