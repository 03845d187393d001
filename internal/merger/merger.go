// Package merger combines date-sorted record sequences into one sorted
// sequence, choosing the cheapest strategy the date ranges allow.
package merger

import (
	"sort"

	"fjacquet/portfolio-parser/internal/dateutils"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
)

// Strategy names the path Merge takes for a pair of sequences.
type Strategy string

const (
	StrategyKeepExisting Strategy = "keep_existing"
	StrategyTakeIncoming Strategy = "take_incoming"
	StrategyPrepend      Strategy = "prepend"
	StrategyAppend       Strategy = "append"
	StrategyInterleave   Strategy = "interleave"
	StrategyResort       Strategy = "resort"
)

// Plan reports which strategy Merge uses for existing and incoming. Both
// sequences are assumed sorted, so their first and last elements bound
// their date ranges.
func Plan[T models.Dated](existing, incoming []T) Strategy {
	if len(incoming) == 0 {
		return StrategyKeepExisting
	}
	if len(existing) == 0 {
		return StrategyTakeIncoming
	}

	existingMin, existingMax := existing[0].TxDate(), existing[len(existing)-1].TxDate()
	incomingMin, incomingMax := incoming[0].TxDate(), incoming[len(incoming)-1].TxDate()
	for _, d := range []string{existingMin, existingMax, incomingMin, incomingMax} {
		if !dateutils.IsValid(d) {
			return StrategyResort
		}
	}

	// Valid YYYY-MM-DD strings order the same way as the dates they name,
	// so every comparison here matches SortByDate.
	switch {
	case incomingMax < existingMin:
		return StrategyPrepend
	case incomingMin > existingMax:
		return StrategyAppend
	default:
		return StrategyInterleave
	}
}

// Merge combines two date-sorted sequences of one record kind into a new
// date-sorted sequence holding every element of both. Elements with equal
// dates keep existing before incoming, and each input's internal order is
// preserved. The result never shares a backing array with the inputs.
func Merge[T models.Dated](logger logging.Logger, category string, existing, incoming []T) []T {
	strategy := Plan(existing, incoming)
	if logger != nil {
		logger.Debug("Merging records",
			logging.Field{Key: logging.FieldKind, Value: category},
			logging.Field{Key: logging.FieldStrategy, Value: strategy},
			logging.Field{Key: "existing", Value: len(existing)},
			logging.Field{Key: "incoming", Value: len(incoming)})
	}

	switch strategy {
	case StrategyKeepExisting:
		return concat(existing, nil)
	case StrategyTakeIncoming:
		return concat(incoming, nil)
	case StrategyPrepend:
		return concat(incoming, existing)
	case StrategyAppend:
		return concat(existing, incoming)
	case StrategyInterleave:
		return interleave(existing, incoming)
	default:
		if logger != nil {
			logger.Warn("Could not determine date boundaries, re-sorting",
				logging.Field{Key: logging.FieldKind, Value: category})
		}
		out := concat(existing, incoming)
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].TxDate() < out[j].TxDate()
		})
		return out
	}
}

func concat[T any](a, b []T) []T {
	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

func interleave[T models.Dated](existing, incoming []T) []T {
	out := make([]T, 0, len(existing)+len(incoming))
	i, j := 0, 0
	for i < len(existing) && j < len(incoming) {
		if existing[i].TxDate() <= incoming[j].TxDate() {
			out = append(out, existing[i])
			i++
		} else {
			out = append(out, incoming[j])
			j++
		}
	}
	out = append(out, existing[i:]...)
	return append(out, incoming[j:]...)
}

// SortByDate stable-sorts records in place by date.
func SortByDate[T models.Dated](records []T) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TxDate() < records[j].TxDate()
	})
}
