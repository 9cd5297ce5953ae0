package routes

import (
	"net/http"
	"strings"

	"github.com/tripdiary/tripadmin/internal/app"
	"github.com/tripdiary/tripadmin/internal/handler"
	"github.com/tripdiary/tripadmin/internal/middleware"
	"github.com/tripdiary/tripadmin/internal/storage"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	users := handler.NewUserHandler(app.UserService)
	plans := handler.NewPlanHandler(app.PlanService)
	diaries := handler.NewDiaryHandler(app.DiaryService)
	comments := handler.NewCommentHandler(app.CommentService)
	destinations := handler.NewDestinationHandler(app.DestinationService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// Compressed images (local storage only; S3 serves its own URLs)
	local, ok := app.Storage.(*storage.LocalStorage)
	if ok {
		mux.Handle("GET /images/", noDirListing(http.StripPrefix("/images/", http.FileServer(http.Dir(local.Root())))))
	}

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Auth (rate limited)
	rateLimiter := middleware.RateLimitLogin()
	mux.HandleFunc("POST /auth/login", rateLimiter(auth.Login))

	// Tourist destination catalog
	mux.HandleFunc("GET /destinations", destinations.Destinations)
	mux.HandleFunc("GET /destinations/{id}", destinations.Destination)

	// ============================================================================
	// AUTHENTICATED ROUTES
	// ============================================================================

	// Travel plans
	mux.HandleFunc("POST /plans", middleware.RequireAuth(plans.Create))
	mux.HandleFunc("PUT /plans/{planId}", middleware.RequireAuth(plans.Update))
	mux.HandleFunc("POST /plans/{planId}/locations", middleware.RequireAuth(plans.CreateLocation))

	// Diaries
	mux.HandleFunc("POST /plans/{planId}/diaries", middleware.RequireAuth(diaries.Create))
	mux.HandleFunc("GET /diaries", middleware.RequireAuth(diaries.Diaries))
	mux.HandleFunc("GET /diaries/mine", middleware.RequireAuth(diaries.MyDiaries))
	mux.HandleFunc("GET /diaries/{diaryId}", middleware.RequireAuth(diaries.Diary))
	mux.HandleFunc("PUT /diaries/{diaryId}", middleware.RequireAuth(diaries.Update))
	mux.HandleFunc("DELETE /diaries/{diaryId}", middleware.RequireAuth(diaries.Delete))

	// Comments
	mux.HandleFunc("POST /diaries/{diaryId}/comments", middleware.RequireAuth(comments.Create))
	mux.HandleFunc("GET /diaries/{diaryId}/comments", middleware.RequireAuth(comments.CommentsByDiary))
	mux.HandleFunc("PUT /comments/{commentId}", middleware.RequireAuth(comments.Update))
	mux.HandleFunc("DELETE /comments/{commentId}", middleware.RequireAuth(comments.Delete))

	// ============================================================================
	// ADMIN ROUTES
	// ============================================================================

	// Users
	mux.HandleFunc("GET /admin/users", middleware.RequireAdmin(users.Users))
	mux.HandleFunc("GET /admin/users/{id}", middleware.RequireAdmin(users.User))
	mux.HandleFunc("PUT /admin/users/{id}", middleware.RequireAdmin(users.Update))
	mux.HandleFunc("DELETE /admin/users/{id}", middleware.RequireAdmin(users.Delete))

	// Plans
	mux.HandleFunc("GET /admin/users/{username}/plans", middleware.RequireAdmin(plans.PlansByUsername))
	mux.HandleFunc("GET /admin/plans/{planId}/locations", middleware.RequireAdmin(plans.Locations))

	// Diaries
	mux.HandleFunc("GET /admin/users/{username}/diaries", middleware.RequireAdmin(diaries.DiariesByUsername))
	mux.HandleFunc("DELETE /admin/diaries/{diaryId}", middleware.RequireAdmin(diaries.AdminDelete))

	// Comments
	mux.HandleFunc("GET /admin/users/{username}/diaries/{diaryId}/comments", middleware.RequireAdmin(comments.CommentsByUsernameAndDiary))
	mux.HandleFunc("GET /admin/users/{username}/comments", middleware.RequireAdmin(comments.CommentsByUsername))
	mux.HandleFunc("DELETE /admin/comments/{commentId}", middleware.RequireAdmin(comments.AdminDelete))

	// Tourist destinations (multipart, files in the "image" field)
	mux.HandleFunc("POST /admin/destinations", middleware.RequireAdmin(destinations.Add))
	mux.HandleFunc("PUT /admin/destinations/{id}", middleware.RequireAdmin(destinations.Update))
	mux.HandleFunc("DELETE /admin/destinations/{id}", middleware.RequireAdmin(destinations.Delete))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(mux,
		middleware.SecurityHeaders(app.Cfg.IsProduction()),
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
	)
}

// noDirListing hides the file server's directory indexes
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			handler.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
