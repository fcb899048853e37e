package test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/auth"
	"github.com/backendstudioapp/dashboardtypeform/internal/httpx"
	"github.com/backendstudioapp/dashboardtypeform/internal/metrics"
	"github.com/backendstudioapp/dashboardtypeform/internal/store"
	"github.com/backendstudioapp/dashboardtypeform/internal/supabase"
)

// servidor fake que imita las tablas del almacén
func fakeSupabase(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/leads_typeform_setter"):
			io.WriteString(w, `[
			 {"nombre":"Ana","telefono":"111","pais":"España","interes":"Inglés","fecha_registro":"2024-05-14","hora_registro":"10:30:00","estado":"Contactado","califica":"si","cash_collected":"1500"},
			 {"nombre":"Luis","telefono":"222","pais":"México","interes":"Alemán","fecha_registro":"2024-05-14","estado":"Pendiente","califica":"no"},
			 {"nombre":"Eva","telefono":"333","pais":"España","interes":"Inglés","fecha_registro":"2024-05-15","estado":"Calificado","califica":"si"}
			]`)
		case strings.HasSuffix(r.URL.Path, "/alumnos"):
			if r.Method == http.MethodPatch {
				if r.URL.Query().Get("id") == "" {
					http.Error(w, "missing filter", http.StatusBadRequest)
					return
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}
			io.WriteString(w, `[{"id":7,"nombre":"Marta","apellidos":"Ruiz","telefono":"444","email":"m@x.com","fecha_compra":"2024-04-01"}]`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func newAPI(t *testing.T, sbURL string) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	sb := supabase.New(sbURL, "anon", supabase.NewHTTPClient(5*time.Second), log)
	st := store.NewMemoryStore()
	am := auth.NewManager("test-secret", time.Hour)
	if err := am.Register("admin@example.com", "hunter22", "admin"); err != nil {
		t.Fatalf("register: %v", err)
	}
	return httpx.NewRouter(log, st, sb, am, metrics.New(), []string{"*"})
}

func login(t *testing.T, api http.Handler) string {
	t.Helper()
	body := bytes.NewBufferString(`{"email":"admin@example.com","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var out map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return out["token"]
}

func authedDo(api http.Handler, token, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, req)
	return rec
}

func TestLoginReloadStats(t *testing.T) {
	srv := fakeSupabase(t)
	defer srv.Close()
	api := newAPI(t, srv.URL)
	token := login(t, api)

	if rec := authedDo(api, token, http.MethodPost, "/api/reload"); rec.Code != http.StatusOK {
		t.Fatalf("reload status = %d body=%s", rec.Code, rec.Body.String())
	}

	rec := authedDo(api, token, http.MethodGet, "/api/stats?from=2024-05-14&to=2024-05-15")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var st struct {
		TotalLeads   int     `json:"totalLeads"`
		Qualified    int     `json:"qualified"`
		NotQualified int     `json:"notQualified"`
		ContactRate  float64 `json:"contactRate"`
		TopInterest  string  `json:"topInterest"`
		TopCountry   string  `json:"topCountry"`
		DailySeries  []struct {
			Date string `json:"date"`
		} `json:"dailySeries"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.TotalLeads != 3 || st.Qualified != 2 || st.NotQualified != 1 {
		t.Fatalf("unexpected counters: %+v", st)
	}
	if st.TopInterest != "Inglés" || st.TopCountry != "España" {
		t.Fatalf("unexpected top values: %+v", st)
	}
	if len(st.DailySeries) != 2 || st.DailySeries[0].Date != "2024-05-14" {
		t.Fatalf("unexpected series: %+v", st.DailySeries)
	}
}

func TestUpdateStudentEndpoint(t *testing.T) {
	srv := fakeSupabase(t)
	defer srv.Close()
	api := newAPI(t, srv.URL)
	token := login(t, api)

	patch := func(target, body string) int {
		req := httptest.NewRequest(http.MethodPatch, target, bytes.NewBufferString(body))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := patch("/api/students/7", `{"estado_general":"Al día","importe_pendiente":0}`); code != http.StatusOK {
		t.Fatalf("update student status = %d", code)
	}
	// id no numérico
	if code := patch("/api/students/siete", `{"estado_general":"Al día"}`); code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", code)
	}
	if code := patch("/api/students/7", `{}`); code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d", code)
	}
}

func TestLeadsFilterAndSearch(t *testing.T) {
	srv := fakeSupabase(t)
	defer srv.Close()
	api := newAPI(t, srv.URL)
	token := login(t, api)
	authedDo(api, token, http.MethodPost, "/api/reload")

	var out struct {
		Total int `json:"total"`
	}

	rec := authedDo(api, token, http.MethodGet, "/api/leads?estado=Contactado")
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Total != 1 {
		t.Fatalf("estado filter total = %d", out.Total)
	}

	// "Todos" no filtra nada
	rec = authedDo(api, token, http.MethodGet, "/api/leads?estado=Todos")
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Total != 3 {
		t.Fatalf("Todos total = %d", out.Total)
	}

	rec = authedDo(api, token, http.MethodGet, "/api/leads?q=ana")
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Total != 1 {
		t.Fatalf("search total = %d", out.Total)
	}

	rec = authedDo(api, token, http.MethodGet, "/api/leads?from=2024-05-15")
	json.NewDecoder(rec.Body).Decode(&out)
	if out.Total != 1 {
		t.Fatalf("single day total = %d", out.Total)
	}
}

func TestEndpointsRequireAuth(t *testing.T) {
	srv := fakeSupabase(t)
	defer srv.Close()
	api := newAPI(t, srv.URL)

	for _, target := range []string{"/api/leads", "/api/stats", "/api/students"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		api.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s sin token status = %d", target, rec.Code)
		}
	}
}

func TestReloadFailsWhenStoreDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()
	api := newAPI(t, srv.URL)
	token := login(t, api)

	if rec := authedDo(api, token, http.MethodPost, "/api/reload"); rec.Code != http.StatusBadGateway {
		t.Fatalf("reload status = %d", rec.Code)
	}
}

func TestExportReturnsWorkbook(t *testing.T) {
	srv := fakeSupabase(t)
	defer srv.Close()
	api := newAPI(t, srv.URL)
	token := login(t, api)
	authedDo(api, token, http.MethodPost, "/api/reload")

	rec := authedDo(api, token, http.MethodGet, "/api/stats/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("empty workbook")
	}
}
