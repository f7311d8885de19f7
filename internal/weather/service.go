package weather

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// Service is the query surface exposed to the HTTP layer: current conditions,
// daily aggregates and alert rule management.
type Service struct {
	locations  Locations
	store      ObservationStore
	alerts     AlertStore
	aggregator *Aggregator
	log        *zap.SugaredLogger
	now        func() time.Time
}

// NewService creates a new Service.
func NewService(locations Locations, store ObservationStore, alerts AlertStore, log *zap.SugaredLogger) *Service {
	return &Service{
		locations:  locations,
		store:      store,
		alerts:     alerts,
		aggregator: NewAggregator(store, locations),
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Locations returns the configured locations.
func (s *Service) Locations() Locations {
	return s.locations
}

// Current returns the most recent stored observation for each configured
// location, in configuration order. Locations with no data yet are omitted.
func (s *Service) Current(ctx context.Context) ([]Observation, error) {
	result := make([]Observation, 0, len(s.locations))
	for _, loc := range s.locations {
		obs, err := s.store.Latest(ctx, loc.Name)
		if err != nil {
			if IsKind(err, KindNotFound) {
				continue
			}
			return nil, Wrap(KindStoreUnavailable, err, "load latest observation")
		}
		result = append(result, obs)
	}
	return result, nil
}

// Aggregate delegates to the Aggregator.
func (s *Service) Aggregate(ctx context.Context, name string, days int) ([]DailyAggregate, error) {
	return s.aggregator.Aggregate(ctx, name, days)
}

// CreateAlertRequest is the input for creating an alert rule.
type CreateAlertRequest struct {
	Email     string   `validate:"required,email"`
	Location  string   `validate:"required"`
	Operator  Operator `validate:"required,oneof=above below"`
	Threshold *float64 `validate:"required"`
}

// CreateAlert validates req and stores an active rule for the configured
// location it names. Nothing is written when validation or lookup fails.
func (s *Service) CreateAlert(ctx context.Context, req CreateAlertRequest) (AlertRule, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Operator = Operator(strings.ToLower(strings.TrimSpace(string(req.Operator))))

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return AlertRule{}, Errorf(KindBadInput, "invalid %s", strings.ToLower(verrs[0].Field()))
		}
		return AlertRule{}, Wrap(KindBadInput, err, "invalid alert request")
	}
	if math.IsNaN(*req.Threshold) || math.IsInf(*req.Threshold, 0) {
		return AlertRule{}, Errorf(KindBadInput, "invalid threshold")
	}

	loc, ok := s.locations.Find(req.Location)
	if !ok {
		return AlertRule{}, Errorf(KindNotFound, "location %q is not configured", req.Location)
	}

	rule := AlertRule{
		ID:        uuid.NewString(),
		Email:     req.Email,
		Location:  loc,
		Operator:  req.Operator,
		Threshold: *req.Threshold,
		Active:    true,
		CreatedAt: s.now(),
	}

	created, err := s.alerts.Create(ctx, rule)
	if err != nil {
		return AlertRule{}, Wrap(KindStoreUnavailable, err, "store alert rule")
	}
	s.log.Infow("alert rule created",
		"rule", created.ID,
		"location", loc.Name,
		"operator", created.Operator,
		"threshold", created.Threshold,
	)
	return created, nil
}

// ListAlerts returns all active alert rules.
func (s *Service) ListAlerts(ctx context.Context) ([]AlertRule, error) {
	rules, err := s.alerts.ListActive(ctx)
	if err != nil {
		return nil, Wrap(KindStoreUnavailable, err, "list alert rules")
	}
	return rules, nil
}
