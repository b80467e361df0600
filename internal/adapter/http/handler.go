package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"exchange-rate-resolver/internal/domain/model"
	"exchange-rate-resolver/internal/domain/ports"
	"exchange-rate-resolver/internal/metrics"
	"exchange-rate-resolver/internal/service"
	"exchange-rate-resolver/pkg/logger"
	"exchange-rate-resolver/pkg/utils"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type Handler struct {
	resolver ports.RateResolver
	catalog  ports.CurrencyCatalog
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewHandler(resolver ports.RateResolver, catalog ports.CurrencyCatalog, log *logger.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		resolver: resolver,
		catalog:  catalog,
		log:      log,
		metrics:  metrics,
	}
}

var errBadRequest = errors.New("bad request")

func parseDate(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, badRequest("missing required parameter: " + name)
	}
	date, err := utils.ParseDate(value)
	if err != nil {
		return time.Time{}, badRequest("invalid " + name + " format, use YYYY-MM-DD")
	}
	return date, nil
}

// parseTarget maps the "to" parameter onto the resolver's target shapes. A single plain
// value is a string target. A comma list or a repeated parameter is a set.
func parseTarget(r *http.Request) (any, error) {
	values := r.URL.Query()["to"]
	if len(values) == 0 || (len(values) == 1 && values[0] == "") {
		return nil, badRequest("missing required parameter: to")
	}
	if len(values) == 1 && !strings.Contains(values[0], ",") {
		return values[0], nil
	}

	var codes []string
	for _, v := range values {
		for _, code := range strings.Split(v, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codes = append(codes, code)
			}
		}
	}
	return codes, nil
}

func parseCacheOptions(r *http.Request) (model.CacheOptions, error) {
	var opts model.CacheOptions

	if v := r.URL.Query().Get("cache"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return opts, badRequest("invalid cache parameter")
		}
		opts.DisableCache = !enabled
	}
	if v := r.URL.Query().Get("bust"); v != "" {
		bust, err := strconv.ParseBool(v)
		if err != nil {
			return opts, badRequest("invalid bust parameter")
		}
		opts.BustCache = bust
	}

	return opts, nil
}

func (h *Handler) ListCurrenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.CurrencyRequestsTotal.Inc()

	opts, err := parseCacheOptions(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	codes, err := h.catalog.ListCurrencies(r.Context(), opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, codes)
}

func (h *Handler) GetRateRangeHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RangeRequestsTotal.Inc()

	query := r.URL.Query()
	base := query.Get("base")
	if base == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: base")
		return
	}

	target, err := parseTarget(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	startDate, err := parseDate("start_date", query.Get("start_date"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	endDate, err := parseDate("end_date", query.Get("end_date"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	opts, err := parseCacheOptions(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	request := model.RangeRequest{
		Group:  query.Get("group"),
		Base:   base,
		Target: target,
		Start:  startDate,
		End:    endDate,
	}

	series, err := h.resolver.ResolveRange(r.Context(), request, opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, series)
}

func (h *Handler) GetRateOnDateHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.RangeRequestsTotal.Inc()

	query := r.URL.Query()
	base := query.Get("base")
	if base == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: base")
		return
	}

	target, err := parseTarget(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	date, err := parseDate("date", query.Get("date"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	opts, err := parseCacheOptions(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	series, err := h.resolver.ResolveOn(r.Context(), base, target, date, opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, series)
}

func (h *Handler) GetLatestRateHandler(w http.ResponseWriter, r *http.Request) {
	h.metrics.LatestRequestsTotal.Inc()

	base := r.URL.Query().Get("base")
	if base == "" {
		h.sendErrorResponse(w, http.StatusBadRequest, "missing required parameter: base")
		return
	}

	target, err := parseTarget(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	opts, err := parseCacheOptions(r)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	series, err := h.resolver.ResolveLatest(r.Context(), base, target, opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.sendSuccessResponse(w, series)
}

func (h *Handler) sendSuccessResponse(w http.ResponseWriter, data interface{}) {
	response := Response{
		Success: true,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := Response{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("Failed to encode error response", "error", err)
	}
}

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func (e *requestError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error {
	return &requestError{msg: msg}
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	errorMessage := "internal server error"

	var reqErr *requestError
	switch {
	case errors.As(err, &reqErr):
		statusCode = http.StatusBadRequest
		errorMessage = reqErr.msg
	case errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidTargetShape),
		errors.Is(err, service.ErrInvalidDateRange):
		statusCode = http.StatusBadRequest
		errorMessage = err.Error()
	case errors.Is(err, service.ErrRateNotFound):
		statusCode = http.StatusNotFound
		errorMessage = "exchange rate not found"
	case errors.Is(err, ports.ErrUpstream):
		statusCode = http.StatusBadGateway
		errorMessage = "rate service returned an invalid response"
	case errors.Is(err, ports.ErrNetwork):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "rate service unreachable"
	case errors.Is(err, ports.ErrCacheUnavailable):
		statusCode = http.StatusServiceUnavailable
		errorMessage = "cache unavailable"
	}

	if statusCode >= http.StatusInternalServerError {
		h.log.Error("Service error", "error", err, "status_code", statusCode)
	} else {
		h.log.Warn("Request rejected", "error", err, "status_code", statusCode)
	}
	h.sendErrorResponse(w, statusCode, errorMessage)
}
