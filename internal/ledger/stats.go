package ledger

import (
	"sort"

	"glaze/internal/common"
)

// Stats returns outletID's current sales breakdown. NetProfit is
// balance minus the initial balance every outlet starts with, so it
// reads positive once an outlet has out-earned its starting cash
// (spec.md §9).
func (l *Ledger) Stats(outletID string) (common.SalesStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	outlet, ok := l.outlets[outletID]
	if !ok {
		return common.SalesStats{}, common.ErrUnknownOutlet
	}

	stats := l.custStats[outletID]
	stats.OutletID = outletID
	stats.NetProfit = outlet.Balance.Sub(l.initialBalance)
	return stats, nil
}

// Leaderboard ranks every non-sentinel outlet by NetProfit, highest
// first. The supplier sentinel is excluded — it never "competes"
// (spec.md §9 open question on centralising the sentinel filter).
func (l *Ledger) Leaderboard() []common.SalesStats {
	l.mu.Lock()
	out := make([]common.SalesStats, 0, len(l.outlets))
	for id, outlet := range l.outlets {
		if outlet.IsSentinel(l.supplierOutletID) {
			continue
		}
		stats := l.custStats[id]
		stats.OutletID = id
		stats.NetProfit = outlet.Balance.Sub(l.initialBalance)
		out = append(out, stats)
	}
	l.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].NetProfit.GreaterThan(out[j].NetProfit)
	})
	return out
}
