package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods(http.MethodGet)
	r.HandleFunc("/deviceid", h.GetDeviceIDHandler).Methods(http.MethodGet)
	r.HandleFunc("/admin", h.GetAdminStatusHandler).Methods(http.MethodGet)
	r.HandleFunc("/admin/grant", h.GrantAdminHandler).Methods(http.MethodPost)
	r.HandleFunc("/admin/list", h.ListAdminsHandler).Methods(http.MethodGet)
	r.Use(h.logRequests)
	return r
}
