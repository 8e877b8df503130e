package handler

import (
	"io/fs"
	"net/http"

	"github.com/cisd/recruitment-portal/internal/middleware"
	"github.com/cisd/recruitment-portal/internal/server"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts every page and endpoint on svr. assets is served
// under /s/ when set.
func RegisterRoutes(svr server.Server, assets fs.FS) {
	svr.RegisterRoute("/sitemap.xml", SitemapHandler(svr), []string{"GET"})
	svr.RegisterRoute("/robots.txt", RobotsTxtHandler(svr), []string{"GET"})
	svr.RegisterRoute("/metrics", promhttp.Handler().ServeHTTP, []string{"GET"})

	if assets != nil {
		svr.RegisterPathPrefix("/s/", http.StripPrefix("/s/", http.FileServer(http.FS(assets))), []string{"GET"})
	}

	svr.RegisterRoute("/", IndexPageHandler(svr), []string{"GET"})

	// application forms
	svr.RegisterRoute("/apply/{category}", ApplyPageHandler(svr), []string{"GET"})
	svr.RegisterRoute("/apply/{category}", middleware.RateLimitMiddleware(svr.Limiter, SubmitApplicationHandler(svr)), []string{"POST"})
	svr.RegisterRoute("/apply/{category}/submitted", SubmittedPageHandler(svr), []string{"GET"})

	//
	// auth routes
	//

	svr.RegisterRoute("/login", LoginPageHandler(svr), []string{"GET"})
	svr.RegisterRoute("/login", LoginHandler(svr), []string{"POST"})
	svr.RegisterRoute("/logout", LogoutHandler(svr), []string{"GET", "POST"})

	//
	// admin routes
	// protected by the backend session
	//

	admin := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.AdminAuthenticatedMiddleware(svr.Sessions, h)
	}

	// @admin: dashboard with filters and client side pagination
	svr.RegisterRoute("/admin", admin(DashboardHandler(svr)), []string{"GET"})

	// @admin: list paginated by the backend
	svr.RegisterRoute("/admin/applications", admin(ApplicationsHandler(svr)), []string{"GET"})

	svr.RegisterRoute("/admin/status-counts", admin(StatusCountsHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/feed.atom", admin(AtomFeedHandler(svr)), []string{"GET"})

	// @admin: spreadsheet downloads
	svr.RegisterRoute("/admin/export", admin(ExportDashboardHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/export/{category}", admin(ExportCategoryHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/applications/{id}/export", admin(ExportApplicationHandler(svr)), []string{"GET"})

	// @admin: review a single application
	svr.RegisterRoute("/admin/applications/{id}", admin(ApplicationDetailHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/applications/{id}/status", admin(UpdateStatusHandler(svr)), []string{"POST"})
	svr.RegisterRoute("/admin/applications/{id}/comment", admin(CommentHandler(svr)), []string{"POST"})
	svr.RegisterRoute("/admin/applications/{id}/comment", admin(CommentStateHandler(svr)), []string{"GET"})

	// @admin: payment ledger
	svr.RegisterRoute("/admin/applications/{id}/payments", admin(PaymentsPageHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/applications/{id}/payments", admin(AddPaymentHandler(svr)), []string{"POST"})
	svr.RegisterRoute("/admin/applications/{id}/payments/total", admin(SetPaymentTotalHandler(svr)), []string{"POST"})
	svr.RegisterRoute("/admin/applications/{id}/payments/receipt", admin(ReceiptHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/applications/{id}/payments/{paymentId}/delete", admin(DeletePaymentHandler(svr)), []string{"POST"})

	// @admin: onboarding steps
	svr.RegisterRoute("/admin/applications/{id}/process", admin(ProcessPageHandler(svr)), []string{"GET"})
	svr.RegisterRoute("/admin/applications/{id}/process", admin(ProcessActionHandler(svr)), []string{"POST"})
}
