package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tallybridge/internal/onboarding"
	"tallybridge/internal/platform/metrics"
	"tallybridge/internal/registration"
	"tallybridge/internal/submission"
	dErrors "tallybridge/pkg/domain-errors"
	"tallybridge/pkg/platform/httputil"
	"tallybridge/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks OnboardingService,RegistrationService

// OnboardingService runs the payments onboarding for one submission.
type OnboardingService interface {
	Submit(ctx context.Context, env *submission.Envelope) (onboarding.Result, error)
}

// RegistrationService forwards one submission to the secondary platform.
type RegistrationService interface {
	Register(ctx context.Context, env *submission.Envelope, accountID string, isTest bool) (registration.NotifyResult, error)
}

// Handler is the thin HTTP layer over both services.
type Handler struct {
	onboarding   OnboardingService
	registration RegistrationService
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) HandlerOption {
	return func(h *Handler) {
		h.metrics = m
	}
}

func NewHandler(onboarding OnboardingService, registration RegistrationService, opts ...HandlerOption) *Handler {
	h := &Handler{
		onboarding:   onboarding,
		registration: registration,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the submission routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submit-to-stripe", h.HandleSubmitToStripe)
	r.Post("/submit-to-bubble/{accountId}", h.HandleSubmitToBubble)
}

// HandleSubmitToStripe maps the submission and runs the onboarding pipeline.
func (h *Handler) HandleSubmitToStripe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	h.metrics.IncrementSubmissions("submit-to-stripe")

	req, ok := httputil.DecodeAndPrepare[SubmissionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	h.logger.InfoContext(ctx, "submission received",
		"request_id", requestID,
		"event_id", req.EventID,
		"submission_id", req.Data.ResponseID,
		"fields", len(req.Data.Fields),
	)

	res, err := h.onboarding.Submit(ctx, &req.Envelope)
	if err != nil {
		h.logger.InfoContext(ctx, "submission rejected", "request_id", requestID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	if !res.Success {
		httputil.WriteJSON(w, http.StatusInternalServerError, toOnboardingFailure(res))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, OnboardingResponse{Message: res.Message, AccountID: res.AccountID})
}

// HandleSubmitToBubble forwards the organization to the secondary platform.
// The remote status code is passed through.
func (h *Handler) HandleSubmitToBubble(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	h.metrics.IncrementSubmissions("submit-to-bubble")

	accountID := chi.URLParam(r, "accountId")
	if accountID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "account id is required"))
		return
	}
	isTest := r.URL.Query().Get("isTest") == "true"

	req, ok := httputil.DecodeAndPrepare[SubmissionRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.registration.Register(ctx, &req.Envelope, accountID, isTest)
	if err != nil {
		h.logger.WarnContext(ctx, "registration not forwarded",
			"request_id", requestID,
			"account_id", accountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, res.Status, res)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
