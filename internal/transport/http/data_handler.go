package http

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "healthstats/internal/errors"
	"healthstats/internal/services"
)

type yearKey struct{}

// lifeExpectancyQuery holds the filters of GET /life-expectancy
type lifeExpectancyQuery struct {
	Country string `validate:"omitempty,max=100"`
	Year    int    `validate:"omitempty,gte=1900,lte=2100"`
	Total   string `validate:"omitempty,oneof=female male total"`
}

// DataHandler serves the pipeline's output datasets
type DataHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewDataHandler creates a new data handler with RFC 7807 error handling
func NewDataHandler(service DatasetServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		validate:     validator.New(),
	}
}

// Routes returns the dataset routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/datasets", h.ListDatasets)
	r.Get("/life-expectancy", h.GetLifeExpectancy)
	r.Get("/gdp-life-expectancy", h.GetGDPLifeExpectancy)
	r.Get("/covid", h.GetCovidSnapshot)

	r.With(h.YearCtx).Get("/healthcare/{year}", h.GetHealthcare)
	r.With(h.YearCtx).Get("/gdp-healthcare/{year}", h.GetGDPHealthcare)

	return r
}

// YearCtx validates the {year} path parameter and stores it in the context
func (h *DataHandler) YearCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "year")
		year, err := strconv.Atoi(raw)
		if err != nil || h.validate.Var(year, "gte=1900,lte=2100") != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be a four digit number between 1900 and 2100"))
			return
		}
		next.ServeHTTP(w, r.WithContext(withYear(r, year)))
	})
}

// ListDatasets handles GET /datasets
func (h *DataHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListDatasets(r.Context())
	if err != nil {
		h.fail(w, r, "datasets", err)
		return
	}
	render.JSON(w, r, list)
}

// GetLifeExpectancy handles GET /life-expectancy
func (h *DataHandler) GetLifeExpectancy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := lifeExpectancyQuery{
		Country: strings.TrimSpace(q.Get("country")),
		Total:   strings.ToLower(strings.TrimSpace(q.Get("total"))),
	}
	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year == 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be a four digit number between 1900 and 2100"))
			return
		}
		query.Year = year
	}
	if err := h.validate.Struct(query); err != nil {
		h.errorHandler.HandleError(w, r, validationProblem(err))
		return
	}

	resp, err := h.service.LifeExpectancy(r.Context(), services.LifeExpectancyFilter{
		Country: query.Country,
		Year:    query.Year,
		Total:   query.Total,
	})
	if err != nil {
		h.fail(w, r, services.DatasetLifeExpectancy, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetHealthcare handles GET /healthcare/{year}
func (h *DataHandler) GetHealthcare(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Healthcare(r.Context(), yearFrom(r))
	if err != nil {
		h.fail(w, r, services.DatasetHealthcare, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetGDPHealthcare handles GET /gdp-healthcare/{year}
func (h *DataHandler) GetGDPHealthcare(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GDPHealthcare(r.Context(), yearFrom(r))
	if err != nil {
		h.fail(w, r, services.DatasetGDPHealthcare, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetGDPLifeExpectancy handles GET /gdp-life-expectancy
func (h *DataHandler) GetGDPLifeExpectancy(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if err := h.validate.Var(country, "omitempty,max=100"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("country", "country is too long"))
		return
	}

	resp, err := h.service.GDPLifeExpectancy(r.Context(), country)
	if err != nil {
		h.fail(w, r, services.DatasetGDPLifeExpectancy, err)
		return
	}
	render.JSON(w, r, resp)
}

// GetCovidSnapshot handles GET /covid
func (h *DataHandler) GetCovidSnapshot(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CovidSnapshot(r.Context())
	if err != nil {
		h.fail(w, r, services.DatasetCovidSnapshot, err)
		return
	}
	render.JSON(w, r, resp)
}

// fail maps service errors onto API errors
func (h *DataHandler) fail(w http.ResponseWriter, r *http.Request, dataset string, err error) {
	if stderrors.Is(err, services.ErrDatasetNotFound) {
		h.logger.InfoContext(r.Context(), "dataset requested before it was produced",
			slog.String("dataset", dataset),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(dataset))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

func validationProblem(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "oneof":
			return apierrors.ErrValidation(field, field+" must be one of: "+fe.Param())
		case "gte", "lte":
			return apierrors.ErrValidation(field, "year must be a four digit number between 1900 and 2100")
		default:
			return apierrors.ErrValidation(field, field+" is invalid")
		}
	}
	return apierrors.ErrValidation("query", err.Error())
}

func withYear(r *http.Request, year int) context.Context {
	return context.WithValue(r.Context(), yearKey{}, year)
}

func yearFrom(r *http.Request) int {
	year, _ := r.Context().Value(yearKey{}).(int)
	return year
}
