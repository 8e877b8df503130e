package handler

import (
	"net/http"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/form"
	"github.com/cisd/recruitment-portal/internal/seo"
	"github.com/cisd/recruitment-portal/internal/server"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

const sitemapCacheKey = "sitemap.xml"

func IndexPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.Render(w, http.StatusOK, "index.html", map[string]interface{}{
			"Forms": form.Definitions(),
		})
	}
}

func formPageData(f form.Form, errs form.Errors, banner string) map[string]interface{} {
	def := f.Definition()
	return map[string]interface{}{
		"Category":   def.Category,
		"Definition": def,
		"Form":       f,
		"Errors":     errs,
		"Banner":     banner,
		"Genders":    form.Genders,
		"YesNo":      form.YesNo,
		"Relocate":   form.Relocate,
		"Cities":     form.Cities,
		"Referrals":  form.Referrals,
		"Other":      form.Other,
	}
}

func categoryFromRoute(r *http.Request) (application.Category, bool) {
	return application.ParseCategory(mux.Vars(r)["category"])
}

func ApplyPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := categoryFromRoute(r)
		if !ok {
			notFound(svr, w, "This job category does not exist")
			return
		}
		f, err := form.New(c)
		if err != nil {
			notFound(svr, w, "This job category does not exist")
			return
		}
		svr.Render(w, http.StatusOK, "apply.html", formPageData(f, form.Errors{}, ""))
	}
}

// SubmitApplicationHandler validates the posted form and creates the
// application. Invalid or failed submissions re-render the form with the
// entered values kept.
func SubmitApplicationHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := categoryFromRoute(r)
		if !ok {
			notFound(svr, w, "This job category does not exist")
			return
		}
		if err := r.ParseForm(); err != nil {
			svr.TEXT(w, http.StatusBadRequest, "invalid form submission")
			return
		}
		f, err := form.Decode(c, r.PostForm)
		if err != nil {
			notFound(svr, w, "This job category does not exist")
			return
		}
		created, err := form.Submit(r.Context(), svr.API, f)
		var verr *form.ValidationError
		switch {
		case errors.As(err, &verr):
			svr.Render(w, http.StatusUnprocessableEntity, "apply.html", formPageData(f, verr.Fields, "Please correct the highlighted fields."))
			return
		case err != nil:
			svr.Log(err, "unable to submit application")
			svr.Render(w, http.StatusBadGateway, "apply.html", formPageData(f, form.Errors{}, "Submission failed: "+api.UserMessage(err)))
			return
		}
		svr.Logger().Info().Str("category", string(c)).Str("id", created.ID).Msg("application submitted")
		svr.Redirect(w, r, http.StatusSeeOther, "/apply/"+string(c)+"/submitted")
	}
}

func SubmittedPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := categoryFromRoute(r)
		if !ok {
			notFound(svr, w, "This job category does not exist")
			return
		}
		svr.Render(w, http.StatusOK, "submitted.html", map[string]interface{}{
			"Category": c,
		})
	}
}

func SitemapHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cached, ok := svr.CacheGet(sitemapCacheKey); ok {
			svr.XML(w, http.StatusOK, cached)
			return
		}
		out, err := seo.Sitemap(baseURL(svr), time.Now().UTC().Truncate(24*time.Hour))
		if err != nil {
			svr.Log(err, "unable to build sitemap")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		if err := svr.CacheSet(sitemapCacheKey, out); err != nil {
			svr.Log(err, "unable to cache sitemap")
		}
		svr.XML(w, http.StatusOK, out)
	}
}

func RobotsTxtHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.TEXT(w, http.StatusOK, seo.RobotsTxt(baseURL(svr)))
	}
}
