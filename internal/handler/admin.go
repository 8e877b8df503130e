package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/review"
	"github.com/cisd/recruitment-portal/internal/server"

	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
)

const feedSize = 20

var sortKeys = []application.SortKey{
	application.SortByName,
	application.SortByAge,
	application.SortByCity,
	application.SortByDate,
	application.SortByStatus,
}

// DashboardHandler renders the combined dashboard: stat cards per category,
// status counts over the whole collection and one filtered, sorted page.
func DashboardHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := loadApplications(svr, w, r)
		if err != nil {
			if api.IsUnauthorized(err) {
				svr.Redirect(w, r, http.StatusFound, "/login")
				return
			}
			svr.Log(err, "unable to load applications for dashboard")
			svr.Render(w, http.StatusBadGateway, "error.html", map[string]interface{}{
				"Title":   "Applications unavailable",
				"Message": api.UserMessage(err),
			})
			return
		}
		query := r.URL.Query()
		filters := application.ParseFiltersFromQuery(query)
		view := list
		category, hasCategory := application.ParseCategory(query.Get("category"))
		if hasCategory {
			view = application.FilterCategory(list, category)
		}
		filtered := application.Apply(view, filters)
		page, pagination := application.Paginate(filtered, filters.Page, svr.GetConfig().PageSize)

		base := filters.Values()
		if hasCategory {
			base.Set("category", string(category))
		}
		sortLinks := make(map[string]template.URL, len(sortKeys))
		for _, k := range sortKeys {
			v := filters.Toggle(k).Values()
			if hasCategory {
				v.Set("category", string(category))
			}
			sortLinks[string(k)] = template.URL(v.Encode())
		}
		sess := adminSession(r)
		svr.Render(w, http.StatusOK, "admin-dashboard.html", map[string]interface{}{
			"User":         sess.User,
			"Flashes":      svr.Sessions.Flashes(w, r),
			"Total":        len(list),
			"Counts":       application.CountStatuses(list),
			"Statuses":     application.Statuses,
			"Buckets":      application.GroupByCategory(list),
			"Cities":       application.Cities(list),
			"Category":     category,
			"HasCategory":  hasCategory,
			"Filters":      filters,
			"PageQuery":    template.URL(base.Encode()),
			"SortLinks":    sortLinks,
			"Applications": page,
			"Matched":      len(filtered),
			"Pagination":   pagination,
		})
	}
}

// ApplicationsHandler is the lightweight list paged by the backend itself.
func ApplicationsHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		pageNumber, err := strconv.Atoi(query.Get("page"))
		if err != nil || pageNumber < 1 {
			pageNumber = 1
		}
		status := application.FilterAll
		if st, ok := application.ParseStatus(query.Get("status")); ok {
			status = string(st)
		}
		src := svr.Sessions.Bind(w, r)
		size := svr.GetConfig().PageSize
		page, err := svr.API.ListApplications(r.Context(), src, pageNumber, size, status)
		if err != nil {
			if api.IsUnauthorized(err) {
				svr.Redirect(w, r, http.StatusFound, "/login")
				return
			}
			svr.Log(err, "unable to list applications")
			svr.Render(w, http.StatusBadGateway, "error.html", map[string]interface{}{
				"Title":   "Applications unavailable",
				"Message": api.UserMessage(err),
			})
			return
		}
		pageQuery := url.Values{}
		if status != application.FilterAll {
			pageQuery.Set("status", status)
		}
		counts, err := svr.API.StatusCounts(r.Context(), src)
		if err != nil {
			svr.Logger().Warn().Err(err).Msg("status counts unavailable")
		}
		svr.Render(w, http.StatusOK, "admin-applications.html", map[string]interface{}{
			"User":         adminSession(r).User,
			"Applications": page.Applications,
			"Pagination":   page.Pagination(size),
			"PageQuery":    template.URL(pageQuery.Encode()),
			"Status":       status,
			"Statuses":     application.Statuses,
			"Counts":       counts,
		})
	}
}

func ApplicationDetailHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, ok := findApplication(svr, w, r)
		if !ok {
			return
		}
		sess := adminSession(r)
		comment := review.Comment{Draft: app.Comment, LastGood: app.Comment}
		if svr.Comments.Has(sess.Token, app.ID) {
			comment = svr.Comments.State(sess.Token, app.ID)
		}
		svr.Render(w, http.StatusOK, "admin-application.html", map[string]interface{}{
			"User":        sess.User,
			"Flashes":     svr.Sessions.Flashes(w, r),
			"Application": app,
			"Statuses":    application.Statuses,
			"Comment":     comment,
		})
	}
}

// UpdateStatusHandler writes a status and optional review notes. The cached
// collection is patched in place on success. Only applications visible to
// the admin can be updated.
func UpdateStatusHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, ok := findApplication(svr, w, r)
		if !ok {
			return
		}
		id := app.ID
		back := applicationURL(id, "")
		st, ok := application.ParseStatus(r.FormValue("status"))
		if !ok {
			if wantsJSON(r) {
				svr.JSON(w, http.StatusBadRequest, map[string]string{"message": "Unknown status"})
				return
			}
			svr.Sessions.AddFlash(w, r, "Unknown status")
			svr.Redirect(w, r, http.StatusSeeOther, back)
			return
		}
		notes := strings.TrimSpace(r.FormValue("reviewNotes"))
		if err := svr.Updater.UpdateStatus(r.Context(), svr.Sessions.Bind(w, r), id, st, notes); err != nil {
			handleBackendError(svr, w, r, err, "unable to update application status", back)
			return
		}
		if wantsJSON(r) {
			svr.JSON(w, http.StatusOK, map[string]string{"status": string(st)})
			return
		}
		svr.Sessions.AddFlash(w, r, fmt.Sprintf("Status updated to %s", st.Label()))
		svr.Redirect(w, r, http.StatusSeeOther, back)
	}
}

// CommentHandler records a keystroke's worth of comment text. The write to
// the backend happens once the admin stops typing. seq comes from the
// comment box so a request overtaken by a later keystroke is dropped.
func CommentHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, ok := findApplication(svr, w, r)
		if !ok {
			return
		}
		seq, _ := strconv.ParseUint(r.FormValue("seq"), 10, 64)
		state := svr.Comments.Edit(adminSession(r).Token, app.ID, app.Comment, r.FormValue("comment"), seq)
		svr.JSON(w, http.StatusAccepted, state)
	}
}

func CommentStateHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		svr.JSON(w, http.StatusOK, svr.Comments.State(adminSession(r).Token, mux.Vars(r)["id"]))
	}
}

// StatusCountsHandler serves the backend tally and falls back to counting
// the cached collection when the endpoint is unavailable.
func StatusCountsHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svr.API.StatusCounts(r.Context(), svr.Sessions.Bind(w, r))
		source := "backend"
		if err != nil {
			if api.IsUnauthorized(err) {
				svr.JSON(w, http.StatusUnauthorized, map[string]string{"message": api.MessageUnauthorized})
				return
			}
			svr.Logger().Warn().Err(err).Msg("status counts endpoint failed, counting locally")
			list, lerr := loadApplications(svr, w, r)
			if lerr != nil {
				svr.JSON(w, http.StatusBadGateway, map[string]string{"message": api.UserMessage(lerr)})
				return
			}
			counts = application.CountStatuses(list)
			source = "local"
		}
		svr.JSON(w, http.StatusOK, map[string]interface{}{
			"counts": counts,
			"total":  counts.Total(),
			"source": source,
		})
	}
}

// AtomFeedHandler lists the newest applications for feed readers used by
// the recruitment team.
func AtomFeedHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := loadApplications(svr, w, r)
		if err != nil {
			if api.IsUnauthorized(err) {
				svr.Redirect(w, r, http.StatusFound, "/login")
				return
			}
			svr.Log(err, "unable to retrieve applications for feed")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		newest := application.Apply(list, application.DefaultFilters())
		site := baseURL(svr)
		cfg := svr.GetConfig()
		feed := &feeds.Feed{
			Title:       cfg.SiteName + " Applications",
			Link:        &feeds.Link{Href: site + "/admin"},
			Description: "Latest job applications",
			Author:      &feeds.Author{Name: cfg.SiteName, Email: cfg.SupportEmail},
			Created:     time.Now(),
		}
		for _, a := range application.Recent(newest, feedSize) {
			feed.Items = append(feed.Items, &feeds.Item{
				Id:          a.ID,
				Title:       fmt.Sprintf("%s - %s", a.FullName, a.JobTitle.Title()),
				Link:        &feeds.Link{Href: site + applicationURL(a.ID, "")},
				Description: fmt.Sprintf("%s, %s (%s)", a.PositionText(), a.City, a.Status.Label()),
				Created:     a.CreatedAt,
				Updated:     a.UpdatedAt,
			})
		}
		atom, err := feed.ToAtom()
		if err != nil {
			svr.Log(err, "unable to convert feed to atom")
			svr.XML(w, http.StatusInternalServerError, []byte{})
			return
		}
		svr.XML(w, http.StatusOK, []byte(atom))
	}
}
