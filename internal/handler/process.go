package handler

import (
	"net/http"
	"strconv"

	"github.com/cisd/recruitment-portal/internal/process"
	"github.com/cisd/recruitment-portal/internal/server"
)

func ProcessPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, ok := findApplication(svr, w, r)
		if !ok {
			return
		}
		svr.Render(w, http.StatusOK, "admin-process.html", map[string]interface{}{
			"User":        adminSession(r).User,
			"Flashes":     svr.Sessions.Flashes(w, r),
			"Application": app,
			"Steps":       process.Steps,
			"Tracker":     svr.Process.Get(app.ID),
		})
	}
}

// ProcessActionHandler moves the tracker. Completing the last step marks the
// application completed.
func ProcessActionHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, ok := findApplication(svr, w, r)
		if !ok {
			return
		}
		back := applicationURL(app.ID, "/process")
		step, _ := strconv.Atoi(r.FormValue("step"))
		action := r.FormValue("action")
		t, err := svr.Process.Apply(r.Context(), svr.Sessions.Bind(w, r), app.ID, action, step)
		if err != nil {
			if err == process.ErrInvalidStep {
				svr.Sessions.AddFlash(w, r, "Unknown step")
				svr.Redirect(w, r, http.StatusSeeOther, back)
				return
			}
			handleBackendError(svr, w, r, err, "unable to update application process", back)
			return
		}
		if action == process.ActionComplete && t.Done() {
			svr.Sessions.AddFlash(w, r, "Application process completed")
		}
		svr.Redirect(w, r, http.StatusSeeOther, back)
	}
}
