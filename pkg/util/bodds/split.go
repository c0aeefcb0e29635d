package bodds

import (
	"fmt"
	"math"
	"sort"

	"github.com/richard-senior/bodds/internal/logger"
)

// DatasetSplit holds the three chronological partitions of the matchup table
type DatasetSplit struct {
	Train      []*MatchupRow
	Validation []*MatchupRow
	Test       []*MatchupRow
}

// TimeSplit partitions matchup rows chronologically: train is the oldest
// block, validation the middle, test the newest. Fractions apply to the row
// count (test from the end, validation just before it). Rows sharing a
// boundary game date are kept together on the earlier side so no same-day
// information straddles a partition edge.
//
// An empty partition or a date-ordering violation is a fatal split error,
// reported before any model fitting happens.
func TimeSplit(rows []*MatchupRow, testFraction, valFraction float64) (*DatasetSplit, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("%w: no rows to split", ErrSplit)
	}

	sorted := make([]*MatchupRow, n)
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].GameDate.Equal(sorted[j].GameDate) {
			return sorted[i].GameDate.Before(sorted[j].GameDate)
		}
		if sorted[i].GameID != sorted[j].GameID {
			return sorted[i].GameID < sorted[j].GameID
		}
		return sorted[i].TeamID < sorted[j].TeamID
	})

	nTest := int(math.Round(float64(n) * testFraction))
	nVal := int(math.Round(float64(n) * valFraction))

	testStart := advancePastDate(sorted, n-nTest)
	valStart := advancePastDate(sorted, n-nTest-nVal)
	if valStart > testStart {
		valStart = testStart
	}

	split := &DatasetSplit{
		Train:      sorted[:valStart],
		Validation: sorted[valStart:testStart],
		Test:       sorted[testStart:],
	}

	if len(split.Train) == 0 {
		return nil, fmt.Errorf("%w: training partition is empty", ErrSplit)
	}
	if len(split.Validation) == 0 {
		return nil, fmt.Errorf("%w: validation partition is empty", ErrSplit)
	}
	if len(split.Test) == 0 {
		return nil, fmt.Errorf("%w: test partition is empty", ErrSplit)
	}

	if err := split.verifyChronology(); err != nil {
		return nil, err
	}

	logger.Info("Split dataset", len(split.Train), "train,", len(split.Validation), "validation,", len(split.Test), "test")
	return split, nil
}

// advancePastDate moves a cut index forward until it no longer lands inside
// a run of rows sharing one game date, assigning the whole run to the
// earlier partition
func advancePastDate(sorted []*MatchupRow, idx int) int {
	if idx <= 0 {
		return 0
	}
	n := len(sorted)
	for idx < n && sorted[idx].GameDate.Equal(sorted[idx-1].GameDate) {
		idx++
	}
	return idx
}

// verifyChronology asserts the hard invariant that partition dates are
// monotone: max(train) <= min(validation) <= max(validation) <= min(test)
func (s *DatasetSplit) verifyChronology() error {
	lastTrain := s.Train[len(s.Train)-1].GameDate
	firstVal := s.Validation[0].GameDate
	lastVal := s.Validation[len(s.Validation)-1].GameDate
	firstTest := s.Test[0].GameDate

	if lastTrain.After(firstVal) {
		return fmt.Errorf("%w: train rows postdate validation rows", ErrSplit)
	}
	if lastVal.After(firstTest) {
		return fmt.Errorf("%w: validation rows postdate test rows", ErrSplit)
	}
	return nil
}
