package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/backendstudioapp/dashboardtypeform/internal/auth"
	"github.com/backendstudioapp/dashboardtypeform/internal/daterange"
	"github.com/backendstudioapp/dashboardtypeform/internal/metrics"
	"github.com/backendstudioapp/dashboardtypeform/internal/models"
	"github.com/backendstudioapp/dashboardtypeform/internal/stats"
	"github.com/backendstudioapp/dashboardtypeform/internal/store"
	"github.com/backendstudioapp/dashboardtypeform/internal/supabase"
	"github.com/backendstudioapp/dashboardtypeform/internal/utils"
)

type API struct {
	log   *slog.Logger
	store *store.MemoryStore
	sb    *supabase.Client
	auth  *auth.Manager
	m     *metrics.Metrics
}

func NewRouter(log *slog.Logger, st *store.MemoryStore, sb *supabase.Client, am *auth.Manager, m *metrics.Metrics, origins []string) http.Handler {
	a := &API{log: log, store: st, sb: sb, auth: am, m: m}

	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))
	mux.Use(a.instrument)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Method(http.MethodGet, "/metrics", m.Handler())

	mux.Post("/api/login", a.login)

	mux.Group(func(pr chi.Router) {
		pr.Use(am.Middleware)

		pr.Post("/api/reload", a.reload)
		pr.Get("/api/leads", a.listLeads)
		pr.Patch("/api/leads/{phone}", a.updateLead)
		pr.Get("/api/leads/{id}/notes", a.listNotes)
		pr.Post("/api/leads/{id}/notes", a.createNote)
		pr.Patch("/api/notes/{id}", a.updateNote)
		pr.Delete("/api/notes/{id}", a.deleteNote)
		pr.Get("/api/students", a.listStudents)
		pr.Patch("/api/students/{id}", a.updateStudent)
		pr.Get("/api/stats", a.getStats)
		pr.Get("/api/stats/export", a.exportStats)
	})

	return mux
}

// instrument records request counts and latency per route pattern.
func (a *API) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		a.m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		a.m.Latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	token, err := a.auth.Login(body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

// reload pulls a fresh snapshot from the table store. The generation token
// makes overlapping reloads safe: only the newest one lands.
func (a *API) reload(w http.ResponseWriter, r *http.Request) {
	gen := a.store.BeginReload()

	leads, err := a.sb.ListLeads(r.Context())
	if err != nil {
		a.m.FetchErrors.Inc()
		a.log.Error("fetch leads failed", slog.String("err", err.Error()))
		http.Error(w, "table store unavailable", http.StatusBadGateway)
		return
	}
	students, err := a.sb.ListStudents(r.Context())
	if err != nil {
		// el dashboard de leads sigue funcionando sin alumnos
		a.m.FetchErrors.Inc()
		a.log.Warn("fetch students failed", slog.String("err", err.Error()))
		students = nil
	}

	if !a.store.CompleteReload(gen, leads, students, time.Now()) {
		writeStatusJSON(w, http.StatusConflict, map[string]string{"status": "stale reload discarded"})
		return
	}
	a.m.Reloads.Inc()
	a.m.LeadsInStore.Set(float64(len(leads)))
	writeJSON(w, map[string]int{"leads": len(leads), "students": len(students)})
}

func (a *API) listLeads(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	q := strings.ToLower(strings.TrimSpace(v.Get("q")))
	estado := v.Get("estado")
	rng := daterange.FromStrings(v.Get("from"), v.Get("to"))
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	all := a.store.Leads()
	filtered := make([]models.Lead, 0, len(all))
	for _, l := range all {
		if estado != "" && estado != "Todos" && l.Status != estado {
			continue
		}
		if !rng.Contains(l.RegisteredDate) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.Name), q) &&
			!strings.Contains(l.Phone, q) &&
			!strings.Contains(strings.ToLower(l.Country), q) {
			continue
		}
		filtered = append(filtered, l)
	}

	limit, offset = clampLimitOffset(limit, offset, len(filtered))
	writeJSON(w, map[string]any{
		"total": len(filtered),
		"items": paginate(filtered, limit, offset),
	})
}

func (a *API) updateLead(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := a.sb.UpdateLead(r.Context(), phone, fields); err != nil {
		a.log.Error("update lead failed", slog.String("phone", phone), slog.String("err", err.Error()))
		http.Error(w, "update failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (a *API) listStudents(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	all := a.store.Students()
	if q == "" {
		writeJSON(w, all)
		return
	}
	filtered := make([]models.Student, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.Name+" "+s.Surname), q) ||
			strings.Contains(s.Phone, q) ||
			strings.Contains(strings.ToLower(s.Email), q) {
			filtered = append(filtered, s)
		}
	}
	writeJSON(w, filtered)
}

func (a *API) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := a.sb.UpdateStudent(r.Context(), id, fields); err != nil {
		a.log.Error("update student failed", slog.Int("id", id), slog.String("err", err.Error()))
		http.Error(w, "update failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (a *API) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.sb.ListNotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "notes unavailable", http.StatusBadGateway)
		return
	}
	writeJSON(w, notes)
}

func (a *API) createNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	note, err := a.sb.CreateNote(r.Context(), chi.URLParam(r, "id"), body.Content)
	if err != nil {
		http.Error(w, "create failed", http.StatusBadGateway)
		return
	}
	writeStatusJSON(w, http.StatusCreated, note)
}

func (a *API) updateNote(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Content) == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := a.sb.UpdateNote(r.Context(), chi.URLParam(r, "id"), body.Content); err != nil {
		http.Error(w, "update failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := a.sb.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		http.Error(w, "delete failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

// getStats computes the dashboard snapshot for an optional from/to range.
// from without to means a single-day filter.
func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	rng := daterange.FromStrings(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	writeJSON(w, stats.Compute(a.store.Leads(), rng, time.Now()))
}

func (a *API) exportStats(w http.ResponseWriter, r *http.Request) {
	rng := daterange.FromStrings(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	st := stats.Compute(a.store.Leads(), rng, time.Now())
	b, err := stats.BuildStatsXLSX(st)
	if err != nil {
		a.log.Error("export failed", slog.String("err", err.Error()))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard-stats.xlsx"`)
	w.Write(b)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeStatusJSON(w, http.StatusOK, v)
}

func writeStatusJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
