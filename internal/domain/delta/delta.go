// Package delta converts successive cumulative snapshots into incremental
// season contributions.
package delta

import "github.com/okian/courtside/internal/domain/model"

// Compute derives the contribution of a new cumulative snapshot given the
// previously stored one. A nil prev means this is the first report for the
// (game, player) pair: the contribution equals cur verbatim and counts one
// game. Otherwise the contribution is the field-wise difference cur - prev
// with no game counted. The caller guarantees cur is the new cumulative
// truth; negative fields from corrective reports pass through unchanged.
func Compute(prev *model.Snapshot, cur model.Snapshot) model.Contribution {
	if prev == nil {
		return model.Contribution{Stats: cur.Stats, GameCount: 1}
	}
	return model.Contribution{Stats: cur.Stats.Sub(prev.Stats)}
}
