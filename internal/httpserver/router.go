package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/panjiggm/syntegra-app-sub000/internal/middleware"
)

type Deps struct {
	Auth         *AuthHTTP
	Sessions     *SessionHTTP
	Tests        *TestHTTP
	TestSessions *TestSessionHTTP
	Participants *ParticipantHTTP
	AuthMW       *middleware.AuthMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/admin/login", d.Auth.AdminLogin)
	auth.POST("/participant/login", d.Auth.ParticipantLogin)
	auth.POST("/refresh", d.Auth.Refresh)

	private := auth.Group("", d.AuthMW.RequireAuth)
	private.GET("/me", d.Auth.Me)
	private.POST("/logout", d.Auth.Logout)
	private.PUT("/change-password", d.Auth.ChangePassword, middleware.RequireAdmin)
	private.GET("/sessions", d.Sessions.ListSessions)
	private.DELETE("/sessions/:sessionId", d.Sessions.RevokeSession)
	private.POST("/sessions/revoke-others", d.Sessions.RevokeOthers)

	tests := v1.Group("/tests", d.AuthMW.RequireAuth, middleware.RequireAdmin)
	tests.GET("", d.Tests.ListTests)
	tests.GET("/:id", d.Tests.GetTest)
	tests.POST("", d.Tests.CreateTest)
	tests.PATCH("/:id", d.Tests.PatchTest)
	tests.DELETE("/:id", d.Tests.DeleteTest)

	// Participant-facing lookups; both work before login too.
	v1.GET("/public/sessions/:code", d.TestSessions.GetSessionByCode, d.AuthMW.OptionalAuth)
	v1.GET("/public/access/:token", d.Participants.AccessByLink, d.AuthMW.OptionalAuth)

	sessions := v1.Group("/sessions", d.AuthMW.RequireAuth)
	sessions.GET("/:id", d.TestSessions.GetSession)

	adminSessions := sessions.Group("", middleware.RequireAdmin)
	adminSessions.GET("", d.TestSessions.ListSessions)
	adminSessions.POST("", d.TestSessions.CreateSession)
	adminSessions.PATCH("/:id", d.TestSessions.PatchSession)
	adminSessions.PUT("/:id/status", d.TestSessions.UpdateStatus)
	adminSessions.DELETE("/:id", d.TestSessions.DeleteSession)
	adminSessions.POST("/sweep", d.TestSessions.Sweep)

	adminSessions.POST("/:id/participants", d.Participants.Invite)
	adminSessions.GET("/:id/participants", d.Participants.ListParticipants)
	adminSessions.PUT("/:id/participants/:participantId/status", d.Participants.UpdateStatus)
	adminSessions.DELETE("/:id/participants/:participantId", d.Participants.Remove)

	v1.GET("/users/:userId/participations", d.Participants.ListMine,
		d.AuthMW.RequireAuth, middleware.RequireOwnershipOrAdmin("userId"))

	v1.GET("/participants/search", d.Participants.Search, d.AuthMW.RequireAuth, middleware.RequireAdmin)
}
