package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/circleats/donation-service/internal/api/http/handlers"
	"github.com/circleats/donation-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Donations      *handlers.DonationsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Home)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/signup", cfg.Users.Signup)
	api.Post("/login", cfg.Users.Login)
	api.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	api.Post("/create_donation", cfg.Donations.Create)
	api.Get("/donations", cfg.Donations.ListAll)
	api.Get("/my_donations/:user_id", cfg.Donations.ListMine)
	api.Get("/my_notifications/:user_id", cfg.Donations.MyNotifications)
	api.Get("/notifications/:email", cfg.Donations.NotificationsFor)

	api.Put("/shelter_request/:donation_id", cfg.Donations.ShelterRequest)
	api.Get("/shelter_requests", cfg.Donations.OpenRequests)
	api.Get("/my_requests/:email", cfg.Donations.MyRequests)
	api.Get("/my_shelter_requests/:email", cfg.Donations.MyRequests)
	api.Put("/shelter_accept/:donation_id", cfg.Donations.ShelterAccept)

	api.Put("/accept_delivery/:donation_id", cfg.Donations.AcceptDelivery)
	api.Put("/collect_donation/:donation_id", cfg.Donations.AcceptDelivery)
	api.Put("/donate_to_shelter/:donation_id", cfg.Donations.DonateToShelter)
	api.Get("/my_deliveries/:email", cfg.Donations.MyDeliveries)
}
