package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskfable/questlog-api/internal/api"
	apiMiddleware "github.com/taskfable/questlog-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	userHandler := api.NewUserHandler(app.userService)
	questLogHandler := api.NewQuestLogHandler(app.questLogService)
	taskHandler := api.NewTaskHandler(app.taskService)
	storyHandler := api.NewStoryHandler(app.storyService, app.taskService)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", userHandler.Me)
			r.Patch("/users/me/settings", userHandler.UpdateSettings)
			r.Get("/users/usernames", userHandler.ListUsernames)

			r.Post("/questlogs", questLogHandler.Create)
			r.Get("/questlogs", questLogHandler.List)
			r.Delete("/questlogs/{questLogID}", questLogHandler.Delete)
			r.Post("/questlogs/{questLogID}/invites", questLogHandler.IssueInvite)
			r.Get("/questlogs/{questLogID}/invites", questLogHandler.ListInvites)
			r.Post("/questlogs/{questLogID}/invites/{inviteID}/revoke", questLogHandler.RevokeInvite)
			r.Get("/questlogs/{questLogID}/participants", questLogHandler.ListParticipants)
			r.Post("/questlogs/{questLogID}/membership/upgrade", questLogHandler.UpgradeMembership)
			r.Get("/questlogs/{questLogID}/activities", questLogHandler.ListActivities)

			r.Get("/invites/{token}", questLogHandler.GetInviteDetails)
			r.Post("/invites/{token}/accept", questLogHandler.AcceptInvite)

			r.Post("/questlogs/{questLogID}/tasks", taskHandler.Create)
			r.Get("/questlogs/{questLogID}/tasks", taskHandler.List)
			r.Get("/tasks/{taskID}", taskHandler.Get)
			r.Post("/tasks/{taskID}/transition", taskHandler.Transition)
			r.Patch("/tasks/{taskID}/description", taskHandler.EditDescription)
			r.Post("/tasks/{taskID}/comments", taskHandler.AddComment)
			r.Patch("/comments/{commentID}", taskHandler.EditComment)

			r.Get("/tasks/{taskID}/story", storyHandler.GetForTask)
			r.Get("/stories", storyHandler.ListRecent)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
