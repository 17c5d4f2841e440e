package httptransport_test

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"tallybridge/internal/onboarding"
	"tallybridge/internal/ratelimit"
	httptransport "tallybridge/internal/transport/http"
	"tallybridge/internal/transport/http/mocks"
	"tallybridge/pkg/testutil"
)

func TestRouterSurface(t *testing.T) {
	testutil.Given(t, "the HTTP router without metrics", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := httptransport.NewHandler(mocks.NewMockOnboardingService(ctrl), mocks.NewMockRegistrationService(ctrl))
		router := httptransport.NewRouter(h, httptransport.RouterDeps{Logger: slog.New(slog.DiscardHandler)})

		testutil.When(t, "calling GET /submit-to-stripe", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/submit-to-stripe"))

			testutil.Then(t, "it should respond with method not allowed", func(t *testing.T) {
				assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			})
		})

		testutil.When(t, "calling an unknown path", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/submit-to-nowhere"))

			testutil.Then(t, "it should respond with not found", func(t *testing.T) {
				assert.Equal(t, http.StatusNotFound, rr.Code)
			})
		})

		testutil.When(t, "calling /submit-to-bubble without an account id", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/submit-to-bubble/", map[string]any{}))

			testutil.Then(t, "it should not reach the registration service", func(t *testing.T) {
				assert.Equal(t, http.StatusNotFound, rr.Code)
			})
		})

		testutil.When(t, "a caller supplies its own request id", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/health")
			req.Header.Set("X-Request-ID", "caller-supplied")
			rr := testutil.DoRequest(router, req)

			testutil.Then(t, "it should be echoed back", func(t *testing.T) {
				assert.Equal(t, "caller-supplied", rr.Header().Get("X-Request-ID"))
			})
		})

		testutil.When(t, "metrics are not configured", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))

			testutil.Then(t, "the metrics endpoint is absent", func(t *testing.T) {
				assert.Equal(t, http.StatusNotFound, rr.Code)
			})
		})
	})

	testutil.Given(t, "a router limited to one submission per minute", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		onboardingSvc := mocks.NewMockOnboardingService(ctrl)
		h := httptransport.NewHandler(onboardingSvc, mocks.NewMockRegistrationService(ctrl))
		router := httptransport.NewRouter(h, httptransport.RouterDeps{
			Logger:      slog.New(slog.DiscardHandler),
			RateLimiter: ratelimit.New(ratelimit.NewStore(), 1, time.Minute, nil),
		})
		onboardingSvc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(onboarding.Result{Success: true, AccountID: "acct_1"}, nil).Times(1)

		testutil.When(t, "the same client submits twice", func(t *testing.T) {
			first := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/submit-to-stripe", payload))
			second := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/submit-to-stripe", payload))

			testutil.Then(t, "the second submission is throttled", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, first.Code)
				assert.Equal(t, http.StatusTooManyRequests, second.Code)
			})
		})

		testutil.When(t, "health is probed", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/health"))

			testutil.Then(t, "it is never throttled", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
			})
		})
	})

	testutil.Given(t, "a router with the rate limit left at its default of zero", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		onboardingSvc := mocks.NewMockOnboardingService(ctrl)
		h := httptransport.NewHandler(onboardingSvc, mocks.NewMockRegistrationService(ctrl))
		router := httptransport.NewRouter(h, httptransport.RouterDeps{
			Logger:      slog.New(slog.DiscardHandler),
			RateLimiter: ratelimit.New(ratelimit.NewStore(), 0, time.Minute, nil),
		})
		onboardingSvc.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(onboarding.Result{Success: true, AccountID: "acct_1"}, nil).Times(40)

		testutil.When(t, "one forms provider address sends a burst of submissions", func(t *testing.T) {
			codes := map[int]int{}
			for range 40 {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/submit-to-stripe", payload)
				req.RemoteAddr = "3.3.3.3:443"
				codes[testutil.DoRequest(router, req).Code]++
			}

			testutil.Then(t, "every submission is handled", func(t *testing.T) {
				assert.Equal(t, map[int]int{http.StatusOK: 40}, codes)
			})
		})
	})
}
