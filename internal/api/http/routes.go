package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weather-outfit/internal/app"
	"github.com/i474232898/weather-outfit/internal/recommend"
	"github.com/i474232898/weather-outfit/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber router.
func RegisterRoutes(router fiber.Router, session *app.Session) {
	v1 := router.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		st := session.Snapshot()
		if st.Tomorrow == nil {
			return fiber.NewError(fiber.StatusNotFound, "no weather loaded yet")
		}
		return c.JSON(weatherView(st))
	})

	v1.Post("/weather/load", func(c *fiber.Ctx) error {
		requested, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		st, err := session.Load(c.UserContext(), requested)
		if err != nil {
			if errors.Is(err, app.ErrInvalidLocation) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather")
		}

		view := weatherView(st)
		view["recommendations"] = st.Recommendations
		view["tip"] = st.Tip()
		return c.JSON(view)
	})

	v1.Get("/options", func(c *fiber.Ctx) error {
		return c.JSON(session.Snapshot().Options)
	})

	v1.Get("/options/presets", func(c *fiber.Ctx) error {
		return c.JSON(recommend.Presets())
	})

	v1.Put("/options", func(c *fiber.Ctx) error {
		var patch recommend.OptionsPatch
		if err := c.BodyParser(&patch); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid options body")
		}

		opts, err := session.SetOptions(c.UserContext(), patch)
		if err != nil {
			return optionsError(err)
		}
		return c.JSON(opts)
	})

	v1.Post("/options/styles/:style/toggle", func(c *fiber.Ctx) error {
		// Params is backed by fiber's reusable buffer; the style outlives the request.
		style := recommend.FashionStyle(utils.CopyString(c.Params("style")))
		opts, err := session.ToggleStyle(c.UserContext(), style)
		if err != nil {
			return optionsError(err)
		}
		return c.JSON(opts)
	})

	v1.Put("/location", func(c *fiber.Ctx) error {
		var req locationBody
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.toLocation()
		if err := session.SetLocation(c.UserContext(), loc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(loc)
	})

	v1.Get("/recommendations", func(c *fiber.Ctx) error {
		st := session.Snapshot()
		if st.Recommendations == nil {
			return fiber.NewError(fiber.StatusNotFound, "no recommendations yet")
		}
		return c.JSON(fiber.Map{
			"recommendations": st.Recommendations,
			"tip":             st.Tip(),
		})
	})

	v1.Post("/recommendations/apply", func(c *fiber.Ctx) error {
		set, err := session.Apply()
		if err != nil {
			if errors.Is(err, app.ErrNoWeather) {
				return fiber.NewError(fiber.StatusConflict, "load weather before applying options")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to compute recommendations")
		}
		return c.JSON(fiber.Map{
			"recommendations": set,
			"tip":             session.Snapshot().Tip(),
		})
	})
}

func weatherView(st app.State) fiber.Map {
	return fiber.Map{
		"today":      st.Today,
		"tomorrow":   st.Tomorrow,
		"source":     st.Source,
		"background": st.Background(),
		"advisory":   st.Advisory,
		"location":   st.Location,
		"updatedAt":  st.UpdatedAt,
	}
}

func optionsError(err error) error {
	if errors.Is(err, recommend.ErrInvalidOptions) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to update options")
}

// locationBody is the payload of PUT /location.
type locationBody struct {
	Lat  *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon  *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	City string   `json:"city" validate:"max=100"`
}

func (l locationBody) toLocation() weather.Location {
	return weather.Location{Lat: *l.Lat, Lon: *l.Lon, City: strings.TrimSpace(l.City)}
}

// parseLocationQuery reads optional lat/lon/city query parameters. It returns
// nil when no coordinates were given.
func parseLocationQuery(c *fiber.Ctx) (*weather.Location, error) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, errors.New("lat and lon must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, errors.New("invalid lon")
	}

	req := locationBody{Lat: &lat, Lon: &lon, City: utils.CopyString(c.Query("city"))}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	loc := req.toLocation()
	return &loc, nil
}
