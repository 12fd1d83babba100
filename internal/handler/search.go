package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/skylinkhq/flightsearch/internal/models"
	"github.com/skylinkhq/flightsearch/internal/search"
)

type SearchHandler struct {
	searcher *search.Searcher
	logger   zerolog.Logger
}

func NewSearchHandler(searcher *search.Searcher, logger zerolog.Logger) *SearchHandler {
	return &SearchHandler{
		searcher: searcher,
		logger:   logger.With().Str("component", "handler").Logger(),
	}
}

func (h *SearchHandler) Register(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/flights/search", h.Search)
	api.DELETE("/flights/search/cache", h.InvalidateCache)
	e.GET("/health", Health)
}

type searchRequest struct {
	Origin         string  `json:"origin"`
	Destination    string  `json:"destination"`
	DepartureDate  string  `json:"departure_date"`
	ReturnDate     *string `json:"return_date,omitempty"`
	SeatClass      string  `json:"seat_class,omitempty"`
	MaxConnections int     `json:"max_connections"`
}

type searchResponse struct {
	Itineraries       []models.Itinerary `json:"itineraries"`
	ReturnItineraries []models.Itinerary `json:"return_itineraries,omitempty"`
	TotalResults      int                `json:"total_results"`
	CacheHit          bool               `json:"cache_hit"`
	SearchTimeMs      int64              `json:"search_time_ms"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code,omitempty"`
}

func (h *SearchHandler) Search(c echo.Context) error {
	req, err := h.bind(c)
	if req == nil {
		return err
	}

	result, err := h.searcher.Search(c.Request().Context(), *req)
	if err != nil {
		return h.sendError(c, err)
	}

	return c.JSON(http.StatusOK, searchResponse{
		Itineraries:       result.Itineraries,
		ReturnItineraries: result.ReturnItineraries,
		TotalResults:      len(result.Itineraries) + len(result.ReturnItineraries),
		CacheHit:          result.CacheHit,
		SearchTimeMs:      result.SearchTime.Milliseconds(),
	})
}

func (h *SearchHandler) InvalidateCache(c echo.Context) error {
	req, err := h.bind(c)
	if req == nil {
		return err
	}

	if err := h.searcher.InvalidateCache(c.Request().Context(), *req); err != nil {
		return h.sendError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bind decodes the request body and parses its RFC 3339 timestamps. A nil
// request means the 400 response has already been written.
func (h *SearchHandler) bind(c echo.Context) (*search.Request, error) {
	var body searchRequest
	if err := c.Bind(&body); err != nil {
		return nil, c.JSON(http.StatusBadRequest, errorResponse{
			Error: "invalid request body",
		})
	}

	req := search.Request{
		Origin:         body.Origin,
		Destination:    body.Destination,
		SeatClass:      body.SeatClass,
		MaxConnections: body.MaxConnections,
	}

	if body.DepartureDate != "" {
		dep, err := time.Parse(time.RFC3339, body.DepartureDate)
		if err != nil {
			return nil, c.JSON(http.StatusBadRequest, errorResponse{
				Error: "departure_date must be RFC 3339",
				Field: "departureDate",
			})
		}
		req.DepartureDate = dep
	}
	if body.ReturnDate != nil && *body.ReturnDate != "" {
		ret, err := time.Parse(time.RFC3339, *body.ReturnDate)
		if err != nil {
			return nil, c.JSON(http.StatusBadRequest, errorResponse{
				Error: "return_date must be RFC 3339",
				Field: "returnDate",
			})
		}
		req.ReturnDate = &ret
	}

	return &req, nil
}

// sendError maps the engine's typed outcomes to status codes without
// leaking internal detail on infrastructure faults.
func (h *SearchHandler) sendError(c echo.Context, err error) error {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: validationErr.Error(),
			Field: validationErr.Field,
			Code:  validationErr.Code,
		})
	}

	if errors.Is(err, models.ErrNoFlights) {
		return c.JSON(http.StatusNotFound, errorResponse{
			Error: "no flights found for the given criteria",
		})
	}

	h.logger.Error().Err(err).Msg("search failed")
	return c.JSON(http.StatusInternalServerError, errorResponse{
		Error: "flight search failed",
	})
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
