package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/sacracalc/internal/app"
	"github.com/iwvelando/sacracalc/internal/metrics"
	"github.com/iwvelando/sacracalc/internal/pricefeed"
	"github.com/iwvelando/sacracalc/internal/projection"
	"github.com/iwvelando/sacracalc/pkg/constants"
	"github.com/iwvelando/sacracalc/pkg/i18n"
	"github.com/iwvelando/sacracalc/pkg/output"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Calculator computes projections for the API.
type Calculator interface {
	Calculate(ctx context.Context, in app.Input) (app.Calculation, error)
	Currencies() *projection.CurrencyTable
}

// Options tune the handler returned by NewHandler.
type Options struct {
	MaxRequestSize int64
	Version        string
	Labels         output.Labels
	// Metrics enables the /metrics endpoint and request counters when set.
	Metrics *metrics.Recorder
}

type handler struct {
	logger         *zap.Logger
	calculator     Calculator
	maxRequestSize int64
	version        string
	labels         output.Labels
	metrics        *metrics.Recorder
	validate       *validator.Validate
}

type projectionRequest struct {
	Amount     float64  `json:"amount" validate:"gt=0"`
	Currency   string   `json:"currency" validate:"required,max=16"`
	Years      int      `json:"years" validate:"gte=0,lte=50"`
	Months     int      `json:"months" validate:"gte=0,lte=11"`
	GrowthRate *float64 `json:"growthRate,omitempty" validate:"omitempty,gt=-1"`
	Lang       string   `json:"lang,omitempty" validate:"omitempty,max=35"`
}

type projectionResponse struct {
	Result   projection.Result `json:"result"`
	Quote    pricefeed.Quote   `json:"quote"`
	Labels   output.Labels     `json:"labels"`
	Language string            `json:"language"`
	Summary  string            `json:"summary"`
	Duration string            `json:"duration"`
}

type currenciesResponse struct {
	Currencies []projection.CurrencyProfile `json:"currencies"`
}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Field   string            `json:"field,omitempty"`
	Details []validationError `json:"details,omitempty"`
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, calculator Calculator, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		calculator:     calculator,
		maxRequestSize: opts.MaxRequestSize,
		version:        trimmedVersion,
		labels:         opts.Labels,
		metrics:        opts.Metrics,
		validate:       newValidator(),
	}

	mux := http.NewServeMux()

	// Projection API endpoint
	mux.HandleFunc("/api/projection", h.handleProjection)

	// Supported currencies with their reference data
	mux.HandleFunc("/api/currencies", h.handleCurrencies)

	// Version endpoint
	mux.HandleFunc("/api/version", h.handleVersion)

	if h.metrics != nil {
		mux.Handle(constants.DefaultMetricsPath, h.metrics.Handler())
	}

	return withRequestID(withLogging(logger, mux))
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleProjection"

	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)

	var req projectionRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.recordError(metrics.KindInvalidInput)
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize)}, op)
			return
		}
		if errors.Is(err, io.EOF) {
			h.respondErrorWithOp(w, r, http.StatusBadRequest, errorResponse{Error: "request body is required"}, op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("failed to decode request: %v", err)}, op)
		return
	}

	if details := h.validateRequest(req); len(details) > 0 {
		h.recordError(metrics.KindInvalidInput)
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			errorResponse{Error: "invalid request data", Details: details}, op)
		return
	}

	tag, err := h.resolveLanguage(r, req.Lang)
	if err != nil {
		h.recordError(metrics.KindInvalidInput)
		h.respondErrorWithOp(w, r, http.StatusBadRequest, errorResponse{Error: err.Error(), Field: "lang"}, op)
		return
	}

	calc, err := h.calculator.Calculate(r.Context(), app.Input{
		FiatAmount:   req.Amount,
		CurrencyCode: req.Currency,
		Years:        req.Years,
		Months:       req.Months,
		GrowthRate:   req.GrowthRate,
	})
	if err != nil {
		h.respondCalculationError(w, r, err, req.Currency, tag, op)
		return
	}

	report := output.Report{Result: calc.Result, Quote: calc.Quote, Labels: h.labels}
	var summary strings.Builder
	if err := output.PrettyFormat(&summary, report, tag); err != nil {
		h.recordError(metrics.KindInternal)
		h.respondErrorWithOp(w, r, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to render summary: %v", err)}, op)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordProjection(calc.Result.Currency.Code, calc.Quote.Fallback)
	}

	h.writeJSON(w, r, http.StatusOK, op, projectionResponse{
		Result:   calc.Result,
		Quote:    calc.Quote,
		Labels:   report.Labels,
		Language: tag.String(),
		Summary:  summary.String(),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, "server.handleCurrencies", currenciesResponse{
		Currencies: h.calculator.Currencies().Profiles(),
	})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, "server.handleVersion", map[string]string{
		"version": h.version,
	})
}

func (h *handler) validateRequest(req projectionRequest) []validationError {
	err := h.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []validationError{{Message: err.Error(), Type: "invalid"}}
	}

	details := make([]validationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		details = append(details, validationError{
			Field:   fe.Field(),
			Message: validationMessage(fe),
			Type:    fe.Tag(),
		})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "gt":
		return "Value must be greater than " + fe.Param()
	case "gte":
		return "Value must be greater than or equal to " + fe.Param()
	case "lte":
		return "Value must be less than or equal to " + fe.Param()
	case "max":
		return "Value is too long"
	default:
		return "Invalid value"
	}
}

// resolveLanguage prefers the body, then the lang query parameter, then
// Accept-Language.
func (h *handler) resolveLanguage(r *http.Request, bodyLang string) (language.Tag, error) {
	if bodyLang != "" {
		return i18n.ParseLocale(bodyLang)
	}
	if queryLang := r.URL.Query().Get("lang"); queryLang != "" {
		return i18n.ParseLocale(queryLang)
	}
	return i18n.ResolveAcceptLanguage(r.Header.Get("Accept-Language")), nil
}

func (h *handler) respondCalculationError(w http.ResponseWriter, r *http.Request, err error, currency string, tag language.Tag, op string) {
	p := i18n.Printer(tag)

	var inputErr *projection.InputError
	switch {
	case errors.Is(err, projection.ErrUnknownCurrency):
		h.recordError(metrics.KindUnknownCurrency)
		h.respondErrorWithOp(w, r, http.StatusBadRequest, errorResponse{
			Error: p.Sprintf(i18n.MsgErrorUnknownCurrency, strings.ToUpper(strings.TrimSpace(currency))),
			Field: "currency",
		}, op)
	case errors.As(err, &inputErr):
		h.recordError(metrics.KindInvalidInput)
		h.respondErrorWithOp(w, r, http.StatusBadRequest, errorResponse{
			Error: p.Sprintf(i18n.MsgErrorInvalidInput, inputErr.Reason),
			Field: inputErr.Field,
		}, op)
	case errors.Is(err, pricefeed.ErrResolveFailed):
		h.recordError(metrics.KindPriceSource)
		h.respondErrorWithOp(w, r, http.StatusBadGateway, errorResponse{Error: err.Error()}, op)
	default:
		h.recordError(metrics.KindInternal)
		h.respondErrorWithOp(w, r, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to compute projection: %v", err)}, op)
	}
}

func (h *handler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, resp errorResponse, op string) {
	h.logger.Warn("projection request failed",
		zap.String("op", op),
		zap.String("requestId", requestIDFromContext(r.Context())),
		zap.Int("status", status),
		zap.String("error", resp.Error),
	)

	h.writeJSON(w, r, status, op, resp)
}

// writeJSON encodes payload before touching the response, so an encoding
// failure still produces a 500.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, op string, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.String("op", op),
			zap.String("requestId", requestIDFromContext(r.Context())),
			zap.Error(err),
		)
		if _, isError := payload.(errorResponse); isError {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		h.recordError(metrics.KindInternal)
		h.respondErrorWithOp(w, r, http.StatusInternalServerError,
			errorResponse{Error: fmt.Sprintf("failed to encode response: %v", err)}, op)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}
