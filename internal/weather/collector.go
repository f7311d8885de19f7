package weather

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collector fetches a reading for every configured location, records it and
// drives alert evaluation and live publication.
type Collector struct {
	locations    Locations
	source       Source
	store        ObservationStore
	evaluator    *Evaluator
	publisher    Publisher
	fetchTimeout time.Duration
	log          *zap.SugaredLogger
	now          func() time.Time
}

// CollectorConfig bundles the collaborators of a Collector.
type CollectorConfig struct {
	Locations    Locations
	Source       Source
	Store        ObservationStore
	Evaluator    *Evaluator
	Publisher    Publisher
	FetchTimeout time.Duration
	Log          *zap.SugaredLogger
}

// NewCollector creates a Collector. Publisher and Evaluator may be nil.
func NewCollector(cfg CollectorConfig) *Collector {
	return &Collector{
		locations:    cfg.Locations,
		source:       cfg.Source,
		store:        cfg.Store,
		evaluator:    cfg.Evaluator,
		publisher:    cfg.Publisher,
		fetchTimeout: cfg.FetchTimeout,
		log:          cfg.Log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CollectOnce runs one cycle over all locations concurrently and returns the
// number of observations recorded. A failure for one location is logged and
// never affects the others; the next cycle is the retry.
func (c *Collector) CollectOnce(ctx context.Context) int {
	start := time.Now()
	c.log.Debugw("collection cycle started", "locations", len(c.locations), "source", c.source.Name())

	var (
		wg       sync.WaitGroup
		recorded atomic.Int64
	)
	for _, loc := range c.locations {
		wg.Add(1)
		go func(loc Location) {
			defer wg.Done()
			if c.collectLocation(ctx, loc) {
				recorded.Add(1)
			}
		}(loc)
	}
	wg.Wait()

	n := int(recorded.Load())
	cycleDuration.Observe(time.Since(start).Seconds())
	c.log.Infow("collection cycle completed",
		"recorded", n,
		"locations", len(c.locations),
		"duration", time.Since(start),
	)
	return n
}

func (c *Collector) collectLocation(ctx context.Context, loc Location) bool {
	reading, err := c.fetch(ctx, loc)
	if err != nil {
		collectFailures.WithLabelValues(loc.Name, "fetch").Inc()
		c.log.Warnw("fetch failed", "location", loc.Name, "kind", KindOf(err), "error", err)
		return false
	}

	obs := c.newObservation(loc, reading)
	if err := c.store.Append(ctx, obs); err != nil {
		collectFailures.WithLabelValues(loc.Name, "store").Inc()
		c.log.Errorw("persist observation failed", "location", loc.Name, "error", err)
		return false
	}
	observationsRecorded.WithLabelValues(loc.Name).Inc()

	if c.evaluator != nil {
		if _, err := c.evaluator.Evaluate(ctx, obs); err != nil {
			collectFailures.WithLabelValues(loc.Name, "alerts").Inc()
			c.log.Errorw("alert evaluation failed", "location", loc.Name, "error", err)
		}
	}
	if c.publisher != nil {
		c.publisher.Publish(ctx, obs)
	}
	return true
}

func (c *Collector) fetch(ctx context.Context, loc Location) (Reading, error) {
	if c.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.fetchTimeout)
		defer cancel()
	}
	return c.source.Fetch(ctx, loc)
}

// newObservation stamps the observation at capture time. The provider's own
// timestamp is not used so the series reflects when we observed it.
func (c *Collector) newObservation(loc Location, r Reading) Observation {
	cond := r.Condition
	if cond == "" {
		cond = ConditionClear
	}
	return Observation{
		ID:          uuid.NewString(),
		Location:    loc,
		Temperature: r.Temperature,
		FeelsLike:   r.FeelsLike,
		Condition:   cond,
		Humidity:    r.Humidity,
		WindSpeed:   r.WindSpeed,
		Timestamp:   c.now(),
	}
}
