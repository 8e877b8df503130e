package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cisd/recruitment-portal/internal/application"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	token   string
	cleared int
}

func (f *fakeSource) Token() string { return f.token }
func (f *fakeSource) Clear() {
	f.cleared++
	f.token = ""
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, srv.Client(), zerolog.Nop())
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Invalid credentials"}`)
			return
		}
		fmt.Fprint(w, `{"token":"tkn","_id":"u1","username":"admin","location":"Lahore"}`)
	})

	s, err := c.Login(context.Background(), "admin@cisd.edu.pk", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tkn", s.Token)
	assert.Equal(t, "admin", s.User.Username)
	assert.Equal(t, "Lahore", s.User.LocationScope())

	_, err = c.Login(context.Background(), "admin@cisd.edu.pk", "wrong")
	require.Error(t, err)
	assert.False(t, IsUnauthorized(err))
	assert.Equal(t, "Invalid credentials", UserMessage(err))
}

func TestUnauthorizedClearsSource(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	})
	src := &fakeSource{token: "stale"}

	_, err := c.AllApplications(context.Background(), src)
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, src.cleared)

	// the cleared source now fails without a round trip
	_, err = c.AllApplications(context.Background(), src)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, src.cleared)
}

func TestServerErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/applications/a1/status" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message":"Invalid status transition"}`)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	src := &fakeSource{token: "tkn"}

	err := c.UpdateStatus(context.Background(), src, "a1", application.StatusAccepted, "")
	assert.Equal(t, "Invalid status transition", UserMessage(err))

	err = c.UpdateComment(context.Background(), src, "a1", "hi")
	assert.Equal(t, MessageServer, UserMessage(err))
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, 0, src.cleared)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL, srv.Client(), zerolog.Nop())
	srv.Close()

	_, err := c.CreateApplication(context.Background(), application.Application{FullName: "Ali"})
	require.Error(t, err)
	assert.Equal(t, MessageNetwork, UserMessage(err))
}

func TestUpdateStatusSendsBackendSpelling(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Accepted", body["status"])
		assert.Equal(t, "docs ok", body["reviewNotes"])
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.UpdateStatus(context.Background(), &fakeSource{token: "tkn"}, "a1", "accepted", "docs ok"))
}

func TestListApplicationsPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "Pending", r.URL.Query().Get("status"))
		apps := make([]application.Application, 10)
		for i := range apps {
			apps[i] = application.Application{ID: fmt.Sprint(10 + i), Status: "Pending"}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"applications":      apps,
			"currentPage":       2,
			"totalApplications": 25,
		})
	})

	page, err := c.ListApplications(context.Background(), &fakeSource{token: "tkn"}, 2, 10, "pending")
	require.NoError(t, err)
	assert.Len(t, page.Applications, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, application.StatusPending, page.Applications[0].Status)
}

func TestAllApplicationsNormalizesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"_id":"1","status":"Accepted"},{"_id":"2","status":"ON HOLD"},{"_id":"3"}]`)
	})
	list, err := c.AllApplications(context.Background(), &fakeSource{token: "tkn"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, application.StatusAccepted, list[0].Status)
	assert.Equal(t, application.StatusPending, list[1].Status)
	assert.Equal(t, application.StatusPending, list[2].Status)
}

func TestStatusCounts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Pending":4,"accepted":2,"total":6}`)
	})
	counts, err := c.StatusCounts(context.Background(), &fakeSource{token: "tkn"})
	require.NoError(t, err)
	assert.Equal(t, 4, counts[application.StatusPending])
	assert.Equal(t, 2, counts[application.StatusAccepted])
	assert.Equal(t, 0, counts[application.StatusCompleted])
	assert.Equal(t, 6, counts.Total())
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/api/applications/:id/status", endpointLabel("/api/applications/64ab/status"))
	assert.Equal(t, "/api/applications/all", endpointLabel("/api/applications/all"))
	assert.Equal(t, "/api/applications", endpointLabel("/api/applications?page=1"))
	assert.Equal(t, "/api/payments/:applicationId", endpointLabel("/api/payments/64ab"))
}
