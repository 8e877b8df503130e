package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/config"
	"github.com/cisd/recruitment-portal/internal/export"
	"github.com/cisd/recruitment-portal/internal/payment"
	"github.com/cisd/recruitment-portal/internal/server"
	"github.com/cisd/recruitment-portal/internal/session"
	"github.com/cisd/recruitment-portal/internal/template"

	"github.com/allegro/bigcache/v3"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeBackend stands in for the applications REST api.
type fakeBackend struct {
	mu           sync.Mutex
	apps         []application.Application
	created      []map[string]interface{}
	statuses     []map[string]string
	comments     []string
	ledgers      map[string]payment.Ledger
	allCalls     int
	unauthorized bool
}

func newFakeBackend() *fakeBackend {
	day := func(d int) time.Time { return time.Date(2025, 1, d, 10, 0, 0, 0, time.UTC) }
	return &fakeBackend{
		apps: []application.Application{
			{ID: "a1", JobTitle: application.CategoryCivil, FullName: "Ali Khan", Age: 30, City: "Lahore", PassportNumber: "AB123", Status: application.StatusPending, Positions: []string{"Mason"}, CreatedAt: day(2)},
			{ID: "a2", JobTitle: application.CategoryHospitality, FullName: "Sara Ahmed", Age: 25, City: "Islamabad", Status: application.StatusAccepted, Positions: []string{"Barista"}, CreatedAt: day(3)},
			{ID: "a3", JobTitle: application.CategoryHealthcare, FullName: "Bilal Raza", Age: 28, City: "Lahore", Status: application.StatusRejected, Program: "O.S.A. - Certified Social Care Operator", CreatedAt: day(4)},
		},
		ledgers: map[string]payment.Ledger{},
	}
}

func (b *fakeBackend) snapshot() fakeBackend {
	b.mu.Lock()
	defer b.mu.Unlock()
	ledgers := make(map[string]payment.Ledger, len(b.ledgers))
	for k, v := range b.ledgers {
		ledgers[k] = v
	}
	return fakeBackend{
		created:  append([]map[string]interface{}{}, b.created...),
		statuses: append([]map[string]string{}, b.statuses...),
		comments: append([]string{}, b.comments...),
		ledgers:  ledgers,
		allCalls: b.allCalls,
	}
}

func (b *fakeBackend) setUnauthorized(v bool) {
	b.mu.Lock()
	b.unauthorized = v
	b.mu.Unlock()
}

func (b *fakeBackend) authorized(w http.ResponseWriter, r *http.Request) bool {
	b.mu.Lock()
	denied := b.unauthorized
	b.mu.Unlock()
	auth := r.Header.Get("Authorization")
	if denied || (auth != "Bearer tok-1" && auth != "Bearer tok-2") {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func (b *fakeBackend) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid credentials"}`))
			return
		}
		if body["email"] == "lahore@example.com" {
			w.Write([]byte(`{"token":"tok-2","_id":"u2","username":"lahore","location":"Lahore"}`))
			return
		}
		w.Write([]byte(`{"token":"tok-1","_id":"u1","username":"admin"}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/applications/all", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.allCalls++
		json.NewEncoder(w).Encode(b.apps)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/applications/status-counts", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		w.Write([]byte(`{"Pending":4,"accepted":2,"Rejected":1}`))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/applications", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.created = append(b.created, body)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"_id":"new-1"}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/applications", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		json.NewEncoder(w).Encode(application.Page{
			Applications:      b.apps[:2],
			CurrentPage:       1,
			TotalPages:        2,
			TotalApplications: len(b.apps),
		})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/applications/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.statuses = append(b.statuses, body)
		b.mu.Unlock()
		w.Write([]byte(`{"message":"ok"}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/applications/{id}/comment", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.comments = append(b.comments, body["comment"])
		b.mu.Unlock()
		w.Write([]byte(`{"message":"ok"}`))
	}).Methods(http.MethodPost)
	r.HandleFunc("/api/payments/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		l, ok := b.ledgers[mux.Vars(r)["id"]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Payment record not found"}`))
			return
		}
		json.NewEncoder(w).Encode(l)
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/payments", func(w http.ResponseWriter, r *http.Request) {
		if !b.authorized(w, r) {
			return
		}
		var l payment.Ledger
		json.NewDecoder(r.Body).Decode(&l)
		b.mu.Lock()
		b.ledgers[l.ApplicationID] = l
		b.mu.Unlock()
		w.Write([]byte(`{"message":"saved"}`))
	}).Methods(http.MethodPost)
	return r
}

type harness struct {
	t       *testing.T
	backend *fakeBackend
	site    *httptest.Server
	client  *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := newFakeBackend()
	apiServer := httptest.NewServer(backend.router())
	t.Cleanup(apiServer.Close)

	cfg := config.Config{
		Port:                "9876",
		Env:                 "dev",
		APIBaseURL:          apiServer.URL,
		CommentSaveDelay:    200 * time.Millisecond,
		PageSize:            10,
		PaymentDefaultTotal: 85000,
		PaymentCurrency:     "PKR",
		CacheTTL:            time.Minute,
		SiteName:            "College Of Skill Development",
		SiteHost:            "apply.example.com",
		SupportEmail:        "hr@example.com",
		URLProtocol:         "https",
	}
	revoked, err := bigcache.New(context.Background(), bigcache.DefaultConfig(time.Hour))
	require.NoError(t, err)
	sm := session.NewManager(sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef")), revoked)
	client := api.NewClient(apiServer.URL, apiServer.Client(), zerolog.Nop())

	svr, err := server.NewServer(cfg, mux.NewRouter(), template.NewTemplate(os.DirFS("../..")), zerolog.Nop(), sm, client, nil)
	require.NoError(t, err)
	RegisterRoutes(svr, nil)
	site := httptest.NewServer(svr.Handler())
	t.Cleanup(site.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &harness{
		t:       t,
		backend: backend,
		site:    site,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (h *harness) do(req *http.Request) (*http.Response, string) {
	h.t.Helper()
	res, err := h.client.Do(req)
	require.NoError(h.t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(h.t, err)
	return res, string(body)
}

func (h *harness) get(path string) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodGet, h.site.URL+path, nil)
	require.NoError(h.t, err)
	return h.do(req)
}

func (h *harness) post(path string, form url.Values) (*http.Response, string) {
	h.t.Helper()
	req, err := http.NewRequest(http.MethodPost, h.site.URL+path, strings.NewReader(form.Encode()))
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req)
}

func (h *harness) login() {
	h.t.Helper()
	res, _ := h.post("/login", url.Values{"email": {"admin@example.com"}, "password": {"secret"}})
	require.Equal(h.t, http.StatusSeeOther, res.StatusCode)
	require.Equal(h.t, "/admin", res.Header.Get("Location"))
}

func civilForm() url.Values {
	return url.Values{
		"fullName":          {"Ali Khan"},
		"age":               {"30"},
		"gender":            {"Male"},
		"currentResidence":  {"Lahore"},
		"contactNumber":     {"03001234567"},
		"email":             {"ali@example.com"},
		"passportNumber":    {"AB123"},
		"positions":         {"Mason", "Steel Fixer"},
		"willingToRelocate": {"Yes"},
		"preferredCity":     {"Lahore"},
		"workedInSaudi":     {"No"},
		"whyWorkInSaudi":    {"Better pay"},
	}
}

func TestPublicPages(t *testing.T) {
	h := newHarness(t)

	res, body := h.get("/")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Civil Workers")
	assert.Contains(t, body, `href="/apply/healthcare"`)

	res, body = h.get("/apply/italy-jobs")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Pastry Chef")

	res, _ = h.get("/apply/astronaut")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = h.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<loc>https://apply.example.com/apply/civil</loc>")

	res, body = h.get("/robots.txt")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Disallow: /admin")
}

func TestSubmitInvalidFormNeverReachesBackend(t *testing.T) {
	h := newHarness(t)
	form := civilForm()
	form.Set("age", "17")

	res, body := h.post("/apply/domestic", form)
	assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
	assert.Contains(t, body, "Age must be between 18 and 65")
	// entered values are kept
	assert.Contains(t, body, `value="ali@example.com"`)
	assert.Empty(t, h.backend.snapshot().created)
}

func TestSubmitForm(t *testing.T) {
	h := newHarness(t)

	res, _ := h.post("/apply/civil", civilForm())
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/apply/civil/submitted", res.Header.Get("Location"))

	backend := h.backend.snapshot()
	require.Len(t, backend.created, 1)
	created := backend.created[0]
	assert.Equal(t, "civil", created["jobtitle"])
	assert.Equal(t, []interface{}{"Mason", "Steel Fixer"}, created["positions"])
	assert.Equal(t, "Lahore", created["city"])

	res, body := h.get("/apply/civil/submitted")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Application submitted")
}

func TestAdminRequiresLogin(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/admin", "/admin/applications/a1", "/admin/export", "/admin/applications/a1/payments"} {
		res, _ := h.get(path)
		assert.Equal(t, http.StatusFound, res.StatusCode, path)
		assert.Equal(t, "/login", res.Header.Get("Location"), path)
	}
}

func TestLoginRejected(t *testing.T) {
	h := newHarness(t)
	res, body := h.post("/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "Invalid credentials")

	res, _ = h.get("/admin")
	assert.Equal(t, http.StatusFound, res.StatusCode)
}

func TestDashboardFiltersCachedCollection(t *testing.T) {
	h := newHarness(t)
	h.login()

	res, body := h.get("/admin")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Ali Khan")
	assert.Contains(t, body, "Sara Ahmed")
	assert.Contains(t, body, "Bilal Raza")

	_, body = h.get("/admin?status=accepted")
	assert.Contains(t, body, "Sara Ahmed")
	assert.NotContains(t, body, "Ali Khan")

	_, body = h.get("/admin?q=LAHORE")
	assert.Contains(t, body, "Ali Khan")
	assert.Contains(t, body, "Bilal Raza")
	assert.NotContains(t, body, "Sara Ahmed")

	_, body = h.get("/admin?category=hospitality")
	assert.Contains(t, body, "Sara Ahmed")
	assert.NotContains(t, body, "Bilal Raza")

	assert.Equal(t, 1, h.backend.snapshot().allCalls)

	h.get("/admin?refresh=1")
	assert.Equal(t, 2, h.backend.snapshot().allCalls)
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	h.login()
	res, _ := h.get("/logout")
	assert.Equal(t, http.StatusFound, res.StatusCode)

	res, _ = h.get("/admin")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))
}

func TestBackendUnauthorizedLogsOut(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.backend.setUnauthorized(true)

	res, _ := h.get("/admin")
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/login", res.Header.Get("Location"))

	h.backend.setUnauthorized(false)
	// the token was revoked, the session does not come back
	res, _ = h.get("/admin")
	assert.Equal(t, http.StatusFound, res.StatusCode)
}

func TestUpdateStatusPatchesCache(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.get("/admin")

	res, _ := h.post("/admin/applications/a1/status", url.Values{"status": {"accepted"}, "reviewNotes": {"**Strong** candidate"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/applications/a1", res.Header.Get("Location"))
	statuses := h.backend.snapshot().statuses
	require.Len(t, statuses, 1)
	assert.Equal(t, "Accepted", statuses[0]["status"])
	assert.Equal(t, "**Strong** candidate", statuses[0]["reviewNotes"])

	_, body := h.get("/admin/applications/a1")
	assert.Contains(t, body, "Status updated to Accepted")
	assert.Contains(t, body, "<strong>Strong</strong> candidate")

	_, body = h.get("/admin?status=accepted")
	assert.Contains(t, body, "Ali Khan")
	assert.Equal(t, 1, h.backend.snapshot().allCalls)
}

func TestScopedAdminCannotUpdateOtherCity(t *testing.T) {
	h := newHarness(t)
	res, _ := h.post("/login", url.Values{"email": {"lahore@example.com"}, "password": {"secret"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)

	// a2 applied from Islamabad
	res, _ = h.post("/admin/applications/a2/status", url.Values{"status": {"rejected"}})
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Empty(t, h.backend.snapshot().statuses)

	res, _ = h.post("/admin/applications/a1/status", url.Values{"status": {"accepted"}})
	assert.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Len(t, h.backend.snapshot().statuses, 1)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	h.login()
	req, err := http.NewRequest(http.MethodPost, h.site.URL+"/admin/applications/a1/status", strings.NewReader("status=hired"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	res, body := h.do(req)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, "Unknown status")
	assert.Empty(t, h.backend.snapshot().statuses)
}

func TestCommentIsDebounced(t *testing.T) {
	h := newHarness(t)
	h.login()

	for _, v := range []string{"a", "ab", "abc"} {
		res, body := h.post("/admin/applications/a1/comment", url.Values{"comment": {v}})
		require.Equal(t, http.StatusAccepted, res.StatusCode)
		assert.Contains(t, body, `"saving":true`)
	}
	assert.Eventually(t, func() bool {
		return len(h.backend.snapshot().comments) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"abc"}, h.backend.snapshot().comments)

	_, body := h.get("/admin/applications/a1/comment")
	assert.Contains(t, body, `"draft":"abc"`)
	assert.Contains(t, body, `"lastGood":"abc"`)
}

func TestOvertakenCommentRequestIsDropped(t *testing.T) {
	h := newHarness(t)
	h.login()

	_, body := h.post("/admin/applications/a1/comment", url.Values{"comment": {"abc"}, "seq": {"3"}})
	assert.Contains(t, body, `"draft":"abc"`)
	_, body = h.post("/admin/applications/a1/comment", url.Values{"comment": {"ab"}, "seq": {"2"}})
	assert.Contains(t, body, `"draft":"abc"`)

	assert.Eventually(t, func() bool {
		return len(h.backend.snapshot().comments) == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []string{"abc"}, h.backend.snapshot().comments)
}

func TestStatusCountsJSON(t *testing.T) {
	h := newHarness(t)
	h.login()
	res, body := h.get("/admin/status-counts")
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out struct {
		Counts map[string]int `json:"counts"`
		Total  int            `json:"total"`
		Source string         `json:"source"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, 4, out.Counts["pending"])
	assert.Equal(t, 2, out.Counts["accepted"])
	assert.Equal(t, 0, out.Counts["completed"])
	assert.Equal(t, 7, out.Total)
	assert.Equal(t, "backend", out.Source)
}

func TestServerPaginatedList(t *testing.T) {
	h := newHarness(t)
	h.login()
	res, body := h.get("/admin/applications?status=accepted")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Sara Ahmed")
	assert.Contains(t, body, "page=2")
	assert.Contains(t, body, "Total: 7")
}

func TestExports(t *testing.T) {
	h := newHarness(t)
	h.login()

	rows := func(body, sheet string) [][]string {
		f, err := excelize.OpenReader(bytes.NewReader([]byte(body)))
		require.NoError(t, err)
		defer f.Close()
		out, err := f.GetRows(sheet)
		require.NoError(t, err)
		return out
	}

	res, body := h.get("/admin/export")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, export.ContentType, res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "job_applications_")
	all := rows(body, "Applications")
	assert.Len(t, all, 4)
	assert.Equal(t, "Form Type", all[0][0])

	_, body = h.get("/admin/export?status=rejected")
	assert.Len(t, rows(body, "Applications"), 2)

	res, body = h.get("/admin/export/civil")
	assert.Equal(t, `attachment; filename="civil-applications.xlsx"`, res.Header.Get("Content-Disposition"))
	civil := rows(body, "Civil")
	require.Len(t, civil, 2)
	assert.Equal(t, "Ali Khan", civil[1][1])

	res, _ = h.get("/admin/applications/a1/export")
	assert.Equal(t, `attachment; filename="civil-ali-khan.xlsx"`, res.Header.Get("Content-Disposition"))
}

func TestPaymentLedger(t *testing.T) {
	h := newHarness(t)
	h.login()

	res, body := h.get("/admin/applications/a1/payments")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "PKR 85,000")

	res, _ = h.post("/admin/applications/a1/payments", url.Values{"amount": {"5,000"}, "date": {"2025-02-01"}, "method": {"cash"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Equal(t, "/admin/applications/a1/payments", res.Header.Get("Location"))

	l := h.backend.snapshot().ledgers["a1"]
	require.Len(t, l.Payments, 1)
	entry := l.Payments[0]
	assert.Equal(t, int64(5000), entry.Amount)
	assert.Equal(t, payment.MethodCash, entry.Method)
	assert.False(t, entry.Printed)
	assert.Equal(t, int64(80000), l.Remaining())

	_, body = h.get("/admin/applications/a1/payments")
	assert.Contains(t, body, "Payment of PKR 5,000 recorded")
	assert.Contains(t, body, "PKR 80,000")

	res, body = h.get("/admin/applications/a1/payments/receipt?payment=" + string(entry.ID))
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "PAYMENT RECEIPT")
	assert.Contains(t, body, "Five Thousand PKR only")
	assert.True(t, h.backend.snapshot().ledgers["a1"].Payments[0].Printed)

	res, _ = h.post("/admin/applications/a1/payments", url.Values{"amount": {"0"}, "date": {"2025-02-01"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	_, body = h.get("/admin/applications/a1/payments")
	assert.Contains(t, body, payment.ErrAmountRequired.Error())

	res, _ = h.post("/admin/applications/a1/payments/total", url.Values{"totalAmount": {"lots"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	_, body = h.get("/admin/applications/a1/payments")
	assert.Contains(t, body, payment.ErrAmountInvalid.Error())
	assert.NotContains(t, body, payment.ErrTotalNegative.Error())

	res, _ = h.post("/admin/applications/a1/payments/"+string(entry.ID)+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Empty(t, h.backend.snapshot().ledgers["a1"].Payments)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		err  error
	}{
		{"85,000", 85000, nil},
		{" 500 ", 500, nil},
		{"", 0, payment.ErrAmountRequired},
		{"12.50", 0, payment.ErrAmountInvalid},
		{"abc", 0, payment.ErrAmountInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in, payment.ErrAmountRequired)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProcessCompletionSetsStatus(t *testing.T) {
	h := newHarness(t)
	h.login()

	res, body := h.get("/admin/applications/a1/process")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "Demand Letter Verification")

	res, _ = h.post("/admin/applications/a1/process", url.Values{"action": {"goto"}, "step": {"5"}})
	require.Equal(t, http.StatusSeeOther, res.StatusCode)
	assert.Empty(t, h.backend.snapshot().statuses)

	h.post("/admin/applications/a1/process", url.Values{"action": {"complete"}})
	statuses := h.backend.snapshot().statuses
	require.Len(t, statuses, 1)
	assert.Equal(t, "Completed", statuses[0]["status"])

	_, body = h.get("/admin/applications/a1/process")
	assert.Contains(t, body, "Application process completed")
}

func TestAtomFeed(t *testing.T) {
	h := newHarness(t)
	h.login()
	res, body := h.get("/admin/feed.atom")
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "<feed")
	assert.Contains(t, body, "Bilal Raza")
	// newest first
	assert.Less(t, strings.Index(body, "Bilal Raza"), strings.Index(body, "Ali Khan"))
}
