package handler

import (
	"net/http"
	"strings"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/server"
)

func LoginPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s, err := svr.Sessions.Load(r); err == nil && s.Valid() {
			svr.Redirect(w, r, http.StatusFound, "/admin")
			return
		}
		data := map[string]interface{}{
			"Flashes": svr.Sessions.Flashes(w, r),
		}
		if r.URL.Query().Get("expired") != "" {
			data["Error"] = "Your session has expired, please log in again."
		}
		svr.Render(w, http.StatusOK, "login.html", data)
	}
}

func LoginHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			svr.Render(w, http.StatusBadRequest, "login.html", map[string]interface{}{
				"Email": email,
				"Error": "Email and password are required.",
			})
			return
		}
		sess, err := svr.API.Login(r.Context(), email, password)
		if err != nil {
			svr.Logger().Info().Err(err).Str("email", email).Msg("login failed")
			svr.Render(w, http.StatusUnauthorized, "login.html", map[string]interface{}{
				"Email": email,
				"Error": api.UserMessage(err),
			})
			return
		}
		if err := svr.Sessions.Save(w, r, sess); err != nil {
			svr.Log(err, "unable to save session")
			svr.Render(w, http.StatusInternalServerError, "login.html", map[string]interface{}{
				"Email": email,
				"Error": "Unable to start your session, please try again.",
			})
			return
		}
		svr.Redirect(w, r, http.StatusSeeOther, "/admin")
	}
}

func LogoutHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svr.Sessions.Clear(w, r); err != nil {
			svr.Log(err, "unable to clear session")
		}
		svr.Redirect(w, r, http.StatusFound, "/login")
	}
}
