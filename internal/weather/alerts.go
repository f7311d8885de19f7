package weather

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Evaluator decides which active alert rules fire for a fresh observation and
// hands each firing rule to the Notifier. It keeps no state of its own.
type Evaluator struct {
	rules         AlertStore
	notifier      Notifier
	notifyTimeout time.Duration
	log           *zap.SugaredLogger
}

// NewEvaluator creates an Evaluator. A non-positive notifyTimeout disables the
// per-notification deadline.
func NewEvaluator(rules AlertStore, notifier Notifier, notifyTimeout time.Duration, log *zap.SugaredLogger) *Evaluator {
	return &Evaluator{
		rules:         rules,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		log:           log,
	}
}

// Evaluate notifies once per active rule for obs.Location whose threshold is
// crossed and returns how many rules fired. A notifier failure is logged and
// does not stop the remaining rules.
func (e *Evaluator) Evaluate(ctx context.Context, obs Observation) (int, error) {
	rules, err := e.rules.FindActiveByLocation(ctx, obs.Location.Name)
	if err != nil {
		return 0, Wrap(KindStoreUnavailable, err, "load alert rules")
	}

	fired := 0
	for _, rule := range rules {
		if !rule.Active || rule.Location.Name != obs.Location.Name {
			continue
		}
		if !rule.Operator.Matches(obs.Temperature, rule.Threshold) {
			continue
		}

		fired++
		alertsFired.WithLabelValues(obs.Location.Name).Inc()

		subject, body := alertMessage(rule, obs)
		if err := e.send(ctx, rule.Email, subject, body); err != nil {
			notificationFailures.Inc()
			e.log.Errorw("alert notification failed",
				"rule", rule.ID,
				"location", obs.Location.Name,
				"recipient", rule.Email,
				"error", err,
			)
			continue
		}
		e.log.Infow("alert notification sent", "rule", rule.ID, "location", obs.Location.Name)
	}

	return fired, nil
}

func (e *Evaluator) send(ctx context.Context, recipient, subject, body string) error {
	if e.notifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.notifyTimeout)
		defer cancel()
	}
	return e.notifier.Send(ctx, recipient, subject, body)
}

func alertMessage(rule AlertRule, obs Observation) (subject, body string) {
	subject = fmt.Sprintf("Weather Alert for %s", rule.Location.Name)
	body = fmt.Sprintf(
		"The temperature in %s is now %.1f°C, which is %s your set threshold of %.1f°C.",
		rule.Location.Name, obs.Temperature, rule.Operator, rule.Threshold,
	)
	return subject, body
}
