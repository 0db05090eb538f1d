package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/harrylevesque/deviceadmin/internal/models"
	"github.com/harrylevesque/deviceadmin/internal/utils"
)

// Authority is the part of admin.Authority the HTTP layer needs.
type Authority interface {
	DeviceID(ctx context.Context) string
	IsAdmin(ctx context.Context) bool
	GrantAdmin(ctx context.Context) error
	Admins(ctx context.Context) ([]models.AdminEntry, error)
}

type Handler struct {
	auth Authority
	log  *utils.Logger
}

func NewHandler(auth Authority, log *utils.Logger) *Handler {
	if log == nil {
		log = utils.NewNopLogger()
	}
	return &Handler{auth: auth, log: log}
}

type DeviceIDResponse struct {
	DeviceID string `json:"device_id"`
}

type AdminStatusResponse struct {
	DeviceID string `json:"device_id"`
	Admin    bool   `json:"admin"`
}

type AdminListResponse struct {
	Admins []models.AdminEntry `json:"admins"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// GetDeviceIDHandler returns the identifier of this installation.
func (h *Handler) GetDeviceIDHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, DeviceIDResponse{DeviceID: h.auth.DeviceID(r.Context())})
}

// GetAdminStatusHandler reports whether this installation is an admin.
func (h *Handler) GetAdminStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, AdminStatusResponse{
		DeviceID: h.auth.DeviceID(ctx),
		Admin:    h.auth.IsAdmin(ctx),
	})
}

// GrantAdminHandler adds this installation to the allow-list.
func (h *Handler) GrantAdminHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.auth.GrantAdmin(ctx); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminStatusResponse{
		DeviceID: h.auth.DeviceID(ctx),
		Admin:    true,
	})
}

// ListAdminsHandler returns every allow-listed device.
func (h *Handler) ListAdminsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := h.auth.Admins(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	if list == nil {
		list = []models.AdminEntry{}
	}
	writeJSON(w, http.StatusOK, AdminListResponse{Admins: list})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := utils.CodeOf(err)
	switch code {
	case utils.CodeStorageUnavailable:
		status = http.StatusServiceUnavailable
	case utils.CodeInvalidConfig:
		status = http.StatusBadRequest
	}
	h.log.Error("request failed", zap.Int("status", status), zap.Error(err))
	// the underlying cause can carry file paths; keep it in the log only
	writeJSON(w, status, ErrorResponse{Error: http.StatusText(status), Code: code})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
