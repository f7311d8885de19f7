package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

const defaultHistoryDays = 7

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1/weather")

	v1.Get("/current", func(c *fiber.Ctx) error {
		observations, err := service.Current(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": observations})
	})

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(service.Locations())
	})

	v1.Get("/historical/:location", func(c *fiber.Ctx) error {
		days := defaultHistoryDays
		if s := c.Query("days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return weather.Errorf(weather.KindBadInput, "days must be an integer")
			}
			days = n
		}

		aggregates, err := service.Aggregate(c.UserContext(), c.Params("location"), days)
		if err != nil {
			return err
		}
		return c.JSON(aggregates)
	})

	v1.Post("/alerts", func(c *fiber.Ctx) error {
		var body alertBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return weather.Errorf(weather.KindBadInput, "invalid request body: %v", err)
		}

		rule, err := service.CreateAlert(c.UserContext(), body.toRequest())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(rule)
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		rules, err := service.ListAlerts(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(rules)
	})
}

// alertBody is the alert creation payload. "city" and "condition" are
// accepted as aliases of "location" and "operator".
type alertBody struct {
	Email     string     `json:"email"`
	Location  string     `json:"location"`
	City      string     `json:"city"`
	Operator  string     `json:"operator"`
	Condition string     `json:"condition"`
	Threshold *flexFloat `json:"threshold"`
}

func (b alertBody) toRequest() weather.CreateAlertRequest {
	req := weather.CreateAlertRequest{
		Email:    b.Email,
		Location: b.Location,
		Operator: weather.Operator(b.Operator),
	}
	if req.Location == "" {
		req.Location = b.City
	}
	if req.Operator == "" {
		req.Operator = weather.Operator(b.Condition)
	}
	if b.Threshold != nil {
		v := float64(*b.Threshold)
		req.Threshold = &v
	}
	return req
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return weather.Errorf(weather.KindBadInput, "threshold must be numeric")
	}
	*f = flexFloat(v)
	return nil
}

// ErrorHandler maps error kinds to HTTP status codes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := statusFor(weather.KindOf(err))
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func statusFor(kind weather.Kind) int {
	switch kind {
	case weather.KindBadInput:
		return fiber.StatusBadRequest
	case weather.KindNotFound:
		return fiber.StatusNotFound
	case weather.KindStoreUnavailable:
		return fiber.StatusServiceUnavailable
	case weather.KindSourceUnavailable, weather.KindSourceMalformed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
