package app

import (
	"fmt"
	"sort"

	market "github.com/fd1az/arbitrage-scanner/business/market/domain"
	"github.com/fd1az/arbitrage-scanner/internal/apperror"
)

// SyntheticGuard discards whole batches when too many sources return
// placeholder prices. It is a heuristic: a source is flagged when at least
// half its quotes look like placeholders, or when one bid value is shared
// by more than half of three or more quotes.
type SyntheticGuard struct {
	ratio float64
}

// NewSyntheticGuard rejects a batch when flagged/total sources exceeds ratio.
// A ratio <= 0 disables the guard.
func NewSyntheticGuard(ratio float64) SyntheticGuard {
	return SyntheticGuard{ratio: ratio}
}

// Check returns the flagged sources and a CodeSyntheticBatch error when the
// batch must be discarded. Sources without quotes do not count.
func (g SyntheticGuard) Check(bySource map[string][]market.Quote) ([]string, error) {
	var flagged []string
	total := 0
	for src, quotes := range bySource {
		if len(quotes) == 0 {
			continue
		}
		total++
		if looksSynthetic(quotes) {
			flagged = append(flagged, src)
		}
	}
	sort.Strings(flagged)

	if g.ratio <= 0 || total == 0 {
		return flagged, nil
	}
	if float64(len(flagged))/float64(total) > g.ratio {
		return flagged, apperror.New(apperror.CodeSyntheticBatch,
			apperror.WithContext(fmt.Sprintf("%d of %d sources look synthetic: %v", len(flagged), total, flagged)))
	}
	return flagged, nil
}

func looksSynthetic(quotes []market.Quote) bool {
	placeholders := 0
	bids := make(map[string]int, len(quotes))
	top := 0
	for _, q := range quotes {
		if isPlaceholder(q) {
			placeholders++
		}
		k := q.Bid.String()
		bids[k]++
		if bids[k] > top {
			top = bids[k]
		}
	}

	n := len(quotes)
	if placeholders*2 >= n {
		return true
	}
	return n >= 3 && top*2 > n
}

// isPlaceholder matches zero-width books and round prices with no volume.
func isPlaceholder(q market.Quote) bool {
	if q.Bid.Equal(q.Ask) {
		return true
	}
	return q.Bid.IsInteger() && q.Ask.IsInteger() && q.Volume.IsZero()
}
