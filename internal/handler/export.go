package handler

import (
	"net/http"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/export"
	"github.com/cisd/recruitment-portal/internal/server"

	"github.com/gorilla/mux"
)

func exportOptions(r *http.Request) export.Options {
	return export.Options{IncludeNotes: r.URL.Query().Get("notes") != ""}
}

func sendWorkbook(svr server.Server, w http.ResponseWriter, filename string, list []application.Application, opts export.Options, scope string) {
	err := svr.Attachment(w, filename, export.ContentType, func(w http.ResponseWriter) error {
		return export.Write(w, list, opts, scope)
	})
	if err != nil {
		svr.Log(err, "unable to export applications")
	}
}

func exportFailed(svr server.Server, w http.ResponseWriter, r *http.Request, err error) {
	if api.IsUnauthorized(err) {
		svr.Redirect(w, r, http.StatusFound, "/login")
		return
	}
	svr.Log(err, "unable to load applications for export")
	svr.TEXT(w, http.StatusBadGateway, api.UserMessage(err))
}

// ExportDashboardHandler downloads exactly what the dashboard shows for the
// same query string, across every page.
func ExportDashboardHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := loadApplications(svr, w, r)
		if err != nil {
			exportFailed(svr, w, r, err)
			return
		}
		query := r.URL.Query()
		if c, ok := application.ParseCategory(query.Get("category")); ok {
			list = application.FilterCategory(list, c)
		}
		filtered := application.Apply(list, application.ParseFiltersFromQuery(query))
		sendWorkbook(svr, w, export.DashboardFilename(time.Now()), filtered, exportOptions(r), "dashboard")
	}
}

func ExportCategoryHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := categoryFromRoute(r)
		if !ok {
			svr.TEXT(w, http.StatusNotFound, "unknown job category")
			return
		}
		list, err := loadApplications(svr, w, r)
		if err != nil {
			exportFailed(svr, w, r, err)
			return
		}
		filtered := application.Apply(application.FilterCategory(list, c), application.ParseFiltersFromQuery(r.URL.Query()))
		opts := exportOptions(r)
		opts.Sheet = export.SheetName(c)
		sendWorkbook(svr, w, export.CategoryFilename(c), filtered, opts, "category")
	}
}

func ExportApplicationHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := loadApplications(svr, w, r)
		if err != nil {
			exportFailed(svr, w, r, err)
			return
		}
		app, ok := application.FindByID(list, mux.Vars(r)["id"])
		if !ok {
			svr.TEXT(w, http.StatusNotFound, "application not found")
			return
		}
		opts := export.Options{IncludeNotes: true, Sheet: export.SheetName(app.JobTitle)}
		sendWorkbook(svr, w, export.RecordFilename(app), []application.Application{app}, opts, "record")
	}
}
