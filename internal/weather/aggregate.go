package weather

import (
	"context"
	"sort"
	"time"
)

const day = 24 * time.Hour

// MaxAggregateDays bounds the trailing window so it stays representable.
const MaxAggregateDays = 36500

// Aggregator reduces a location's stored observations into daily summaries.
type Aggregator struct {
	store     ObservationStore
	locations Locations
	now       func() time.Time
}

// NewAggregator creates an Aggregator reading from store.
func NewAggregator(store ObservationStore, locations Locations) *Aggregator {
	return &Aggregator{
		store:     store,
		locations: locations,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Aggregate returns one DailyAggregate per UTC date that has observations in
// [now - days, now], ascending by date. days must be in [1, MaxAggregateDays].
// A name that matches no configured location is NotFound rather than an
// empty result.
func (a *Aggregator) Aggregate(ctx context.Context, name string, days int) ([]DailyAggregate, error) {
	if days <= 0 {
		return nil, Errorf(KindBadInput, "days must be greater than zero, got %d", days)
	}
	if days > MaxAggregateDays {
		return nil, Errorf(KindBadInput, "days must be at most %d, got %d", MaxAggregateDays, days)
	}
	loc, ok := a.locations.Find(name)
	if !ok {
		return nil, Errorf(KindNotFound, "location %q is not configured", name)
	}

	to := a.now()
	from := to.Add(-time.Duration(days) * day)

	observations, err := a.store.QueryRange(ctx, loc.Name, from, to)
	if err != nil {
		return nil, Wrap(KindStoreUnavailable, err, "load observations")
	}

	return AggregateDaily(observations), nil
}

type dayBucket struct {
	date       time.Time
	sum        float64
	count      int
	max        float64
	min        float64
	conditions map[Condition]int
}

// AggregateDaily groups observations by the UTC date of their timestamp and
// summarises each group. The result is ascending by date and empty for no input.
func AggregateDaily(observations []Observation) []DailyAggregate {
	buckets := make(map[string]*dayBucket)

	for _, o := range observations {
		ts := o.Timestamp.UTC()
		key := ts.Format(time.DateOnly)

		b, ok := buckets[key]
		if !ok {
			b = &dayBucket{
				date:       time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
				max:        o.Temperature,
				min:        o.Temperature,
				conditions: make(map[Condition]int),
			}
			buckets[key] = b
		}

		b.sum += o.Temperature
		b.count++
		if o.Temperature > b.max {
			b.max = o.Temperature
		}
		if o.Temperature < b.min {
			b.min = o.Temperature
		}

		cond := o.Condition
		if cond == "" {
			cond = ConditionClear
		}
		b.conditions[cond]++
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]DailyAggregate, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		avg := b.sum / float64(b.count)
		// Floating point summation can land a hair outside the observed range.
		if avg > b.max {
			avg = b.max
		}
		if avg < b.min {
			avg = b.min
		}
		result = append(result, DailyAggregate{
			Date:              b.date,
			AverageTemp:       avg,
			MaxTemp:           b.max,
			MinTemp:           b.min,
			DominantCondition: dominantCondition(b.conditions),
			Count:             b.count,
		})
	}
	return result
}

// dominantCondition picks the most frequent label; ties go to the
// lexicographically smallest label.
func dominantCondition(counts map[Condition]int) Condition {
	best := Condition("")
	bestCount := 0
	for cond, count := range counts {
		if count > bestCount || (count == bestCount && cond < best) {
			best = cond
			bestCount = count
		}
	}
	return best
}
