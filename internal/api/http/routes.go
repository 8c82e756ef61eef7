package httpapi

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/wxlookback/weather-history/internal/geocode"
	"github.com/wxlookback/weather-history/internal/history"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *history.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.Lookup(c.UserContext(), req.toQuery())
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(result)
	})

	v1.Get("/history/zip", func(c *fiber.Ctx) error {
		var req zipHistoryQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		result, err := service.LookupByPostalCode(c.UserContext(), req.Code, req.Country, history.Query{
			Month:     req.Month,
			Day:       req.Day,
			YearsBack: req.Years,
		})
		if err != nil {
			return mapServiceError(err)
		}

		return c.JSON(result)
	})
}

// mapServiceError translates core error conditions to distinct HTTP
// statuses so "no data here" is never conflated with a service failure.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, history.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, history.ErrNoStation):
		return fiber.NewError(fiber.StatusNotFound, "no weather data for this location")
	case errors.Is(err, geocode.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "postal code not found")
	case errors.Is(err, history.ErrSourceUnavailable):
		return fiber.NewError(fiber.StatusServiceUnavailable, "observation source unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to look up weather history")
	}
}

// historyQuery holds query parameters for the coordinate endpoint.
type historyQuery struct {
	Lat   float64 `validate:"min=-90,max=90"`
	Lon   float64 `validate:"min=-180,max=180"`
	Month int     `validate:"required,min=1,max=12"`
	Day   int     `validate:"required,min=1,max=31"`
	Years int     `validate:"min=0,max=50"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		return errors.New("lat and lon query parameters are required")
	}

	var err error
	h.Lat, err = strconv.ParseFloat(latStr, 64)
	if err != nil {
		return fmt.Errorf("invalid lat: %w", err)
	}
	h.Lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return fmt.Errorf("invalid lon: %w", err)
	}

	h.Month, h.Day, h.Years, err = parseDateQuery(c)
	return err
}

func (h historyQuery) toQuery() history.Query {
	return history.Query{
		Lat:       h.Lat,
		Lon:       h.Lon,
		Month:     h.Month,
		Day:       h.Day,
		YearsBack: h.Years,
	}
}

// zipHistoryQuery holds query parameters for the postal-code endpoint.
type zipHistoryQuery struct {
	Code    string `validate:"required"`
	Country string
	Month   int `validate:"required,min=1,max=12"`
	Day     int `validate:"required,min=1,max=31"`
	Years   int `validate:"min=0,max=50"`
}

func (z *zipHistoryQuery) bind(c *fiber.Ctx) error {
	z.Code = c.Query("code")
	z.Country = c.Query("country", "US")

	var err error
	z.Month, z.Day, z.Years, err = parseDateQuery(c)
	return err
}

// parseDateQuery reads the shared month/day/years parameters. Day validity
// against the month is not cross-checked here; impossible combinations
// simply produce empty year windows downstream.
func parseDateQuery(c *fiber.Ctx) (month, day, years int, err error) {
	month, err = strconv.Atoi(c.Query("month"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid month: %w", err)
	}
	day, err = strconv.Atoi(c.Query("day"))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid day: %w", err)
	}

	if yearsStr := c.Query("years"); yearsStr != "" {
		years, err = strconv.Atoi(yearsStr)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid years: %w", err)
		}
	}

	return month, day, years, nil
}
