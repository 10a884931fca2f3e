package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"p9e.in/towerpro/handlers"
	"p9e.in/towerpro/middleware"
)

// App carries what the routes need.
type App struct {
	Reports *handlers.ReportHandler
	Roster  handlers.Roster
	Log     logrus.FieldLogger

	// UploadDir is served under /uploads/ when photos are kept on local disk.
	UploadDir string
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(app App) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(app.Log))

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/healthz", health).Methods("GET")
	if app.UploadDir != "" {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(app.UploadDir))),
		)
	}

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handleProfile).Methods("GET")
	api.HandleFunc("/inspectors", handlers.ListInspectors(app.Roster, app.Log)).Methods("GET")
	registerReportRoutes(api, app.Reports)

	return r
}

func registerReportRoutes(api *mux.Router, h *handlers.ReportHandler) {
	api.HandleFunc("/reports", h.ListReports).Methods("GET")
	api.HandleFunc("/reports", h.StartReport).Methods("POST")
	api.HandleFunc("/reports/map", h.ReportsMap).Methods("GET")
	api.HandleFunc("/reports/{id}", h.GetReport).Methods("GET")
	api.HandleFunc("/reports/{id}/export.xlsx", h.ExportReport).Methods("GET")
	api.HandleFunc("/reports/{id}/edit", h.EditReport).Methods("POST")

	api.HandleFunc("/reports/{id}/wizard", h.GetWizard).Methods("GET")
	wz := api.PathPrefix("/reports/{id}/wizard").Subrouter()
	wz.HandleFunc("/steps/{step}", h.UpdateStep).Methods("PUT")
	wz.HandleFunc("/next", h.Next).Methods("POST")
	wz.HandleFunc("/back", h.Back).Methods("POST")
	wz.HandleFunc("/inspector", h.SelectInspector).Methods("PUT")
	wz.HandleFunc("/photos/{section}", h.UploadPhotos).Methods("POST")
	wz.HandleFunc("/photos/{section}/{index:[0-9]+}", h.DeletePhoto).Methods("DELETE")
	wz.HandleFunc("/submit", h.Submit).Methods("POST")
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"userId": claims.UserID,
		"name":   claims.Name,
		"phone":  claims.Phone,
		"role":   claims.Role,
	})
}
