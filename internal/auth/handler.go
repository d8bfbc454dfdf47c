package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/liftlog/internal/telemetry/metrics"
	"github.com/2beens/liftlog/internal/telemetry/tracing"
	"github.com/2beens/liftlog/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type sessionService interface {
	Login(ctx context.Context, creds Credentials, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type Handler struct {
	service        sessionService
	metricsManager *metrics.Manager
}

func NewHandler(service sessionService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

// TokenFromRequest extracts the token from an "Authorization: Bearer <token>" header.
func TokenFromRequest(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		log.Debugf("login, decode request: %s", err)
		pkg.WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if creds.Username == "" || creds.Password == "" {
		pkg.WriteJSONError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.service.Login(ctx, creds, time.Now())
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) {
			log.Tracef("failed login attempt for user: %s", creds.Username)
			h.metricsManager.CounterLogins.WithLabelValues(metrics.LoginResultWrongPassword).Inc()
			pkg.WriteJSONError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Errorf("login for user %s: %s", creds.Username, err)
		h.metricsManager.CounterLogins.WithLabelValues(metrics.LoginResultInternalFailed).Inc()
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	h.metricsManager.CounterLogins.WithLabelValues(metrics.LoginResultSuccess).Inc()
	pkg.WriteJSONOK(w, map[string]string{"token": token})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	token := TokenFromRequest(r)
	if token == "" {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	loggedOut, err := h.service.Logout(ctx, token)
	if err != nil {
		log.Errorf("logout: %s", err)
		pkg.WriteJSONError(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	if !loggedOut {
		pkg.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	pkg.WriteSuccess(w)
}
