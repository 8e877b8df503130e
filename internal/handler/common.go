package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/server"
	"github.com/cisd/recruitment-portal/internal/session"

	"github.com/gorilla/mux"
)

func adminSession(r *http.Request) session.Session {
	s, _ := session.FromContext(r.Context())
	return s
}

func baseURL(svr server.Server) string {
	cfg := svr.GetConfig()
	return fmt.Sprintf("%s://%s", cfg.URLProtocol, cfg.SiteHost)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// handleBackendError answers a failed backend call. Unauthorized sessions
// are sent back to the login page, everything else becomes a flash on the
// page the admin came from or a JSON message.
func handleBackendError(svr server.Server, w http.ResponseWriter, r *http.Request, err error, msg, back string) {
	if api.IsUnauthorized(err) {
		if wantsJSON(r) {
			svr.JSON(w, http.StatusUnauthorized, map[string]string{"message": api.MessageUnauthorized})
			return
		}
		svr.Redirect(w, r, http.StatusFound, "/login")
		return
	}
	svr.Log(err, msg)
	if wantsJSON(r) {
		svr.JSON(w, http.StatusBadGateway, map[string]string{"message": api.UserMessage(err)})
		return
	}
	svr.Sessions.AddFlash(w, r, api.UserMessage(err))
	svr.Redirect(w, r, http.StatusSeeOther, back)
}

// loadApplications returns the session's collection scoped to the admin's
// location. The collection is fetched once per session and then served from
// cache until the session is cleared or a refresh is requested.
func loadApplications(svr server.Server, w http.ResponseWriter, r *http.Request) ([]application.Application, error) {
	sess := adminSession(r)
	if r.URL.Query().Get("refresh") != "" {
		svr.Applications.Invalidate(sess.Token)
	}
	list, ok := svr.Applications.Get(sess.Token)
	if !ok {
		fetched, err := svr.API.AllApplications(r.Context(), svr.Sessions.Bind(w, r))
		if err != nil {
			return nil, err
		}
		if err := svr.Applications.Set(sess.Token, fetched); err != nil {
			svr.Log(err, "unable to cache applications")
		}
		list = fetched
	}
	return application.ScopeToLocation(list, sess.User.LocationScope()), nil
}

// findApplication loads the collection and looks up the {id} route variable.
// It writes the response itself when the application cannot be served.
func findApplication(svr server.Server, w http.ResponseWriter, r *http.Request) (application.Application, bool) {
	list, err := loadApplications(svr, w, r)
	if err != nil {
		if api.IsUnauthorized(err) {
			svr.Redirect(w, r, http.StatusFound, "/login")
			return application.Application{}, false
		}
		svr.Log(err, "unable to load applications")
		svr.Render(w, http.StatusBadGateway, "error.html", map[string]interface{}{
			"Title":   "Applications unavailable",
			"Message": api.UserMessage(err),
		})
		return application.Application{}, false
	}
	app, ok := application.FindByID(list, mux.Vars(r)["id"])
	if !ok {
		notFound(svr, w, "Application not found")
		return application.Application{}, false
	}
	return app, true
}

func notFound(svr server.Server, w http.ResponseWriter, msg string) {
	svr.Render(w, http.StatusNotFound, "error.html", map[string]interface{}{
		"Title":   "Not found",
		"Message": msg,
	})
}

func applicationURL(id, suffix string) string {
	return fmt.Sprintf("/admin/applications/%s%s", id, suffix)
}
