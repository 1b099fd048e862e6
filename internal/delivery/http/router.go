package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"echoo/internal/delivery/http/controllers"
	"echoo/internal/delivery/http/helpers"
	"echoo/internal/delivery/http/middleware"
	"echoo/internal/domain"
)

// Controllers bundles the route handlers for NewRouter.
type Controllers struct {
	Auth         *controllers.AuthController
	Profile      *controllers.ProfileController
	Registration *controllers.RegistrationController
	Event        *controllers.EventController
	Image        *controllers.ImageController
	Mapping      *controllers.MappingController
}

// NewRouter initializes the HTTP router with all application routes.
// User-facing routes require a bearer token; /internal routes require the
// back-office basic credentials.
func NewRouter(c Controllers, verifier domain.TokenVerifier, internalUser, internalPass string) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)
	internal := middleware.RequireInternal(internalUser, internalPass)

	// Auth
	mux.HandleFunc("POST /auth/register", c.Auth.Register)
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Profile
	mux.HandleFunc("GET /profile", auth(c.Profile.GetProfile))
	mux.HandleFunc("PUT /profile", auth(c.Profile.UpdateProfile))

	// Registrations and match lists
	mux.HandleFunc("POST /register-event", auth(c.Registration.RegisterEvent))
	mux.HandleFunc("GET /get-event-matched-image-list", auth(c.Registration.MatchedImageList))
	mux.HandleFunc("GET /registration/{event_id}", auth(c.Registration.GetRegistration))
	mux.HandleFunc("GET /my-registrations", auth(c.Registration.MyRegistrations))
	mux.HandleFunc("GET /my-registered-events", auth(c.Registration.MyRegisteredEvents))

	// Public events
	mux.HandleFunc("GET /getEventList", c.Event.ListEvents)
	mux.HandleFunc("GET /getEventList/{id}", c.Event.GetEvent)

	// User images
	mux.HandleFunc("GET /getImageList", auth(c.Image.ListMyImages))
	mux.HandleFunc("GET /images", auth(c.Image.ListMyImages))

	// Back-office
	mux.HandleFunc("POST /internal/events", internal(c.Event.CreateEvent))
	mux.HandleFunc("POST /internal/images", internal(c.Image.CreateImage))
	mux.HandleFunc("PUT /internal/images/{id}", internal(c.Image.UpdateImage))
	mux.HandleFunc("GET /internal/images/{id}", internal(c.Image.GetImage))
	mux.HandleFunc("POST /internal/fotoowl-request-mapping/bulk", internal(c.Mapping.BulkInsert))
	mux.HandleFunc("GET /internal/fotoowl-request-mapping/event/{event_id}", internal(c.Mapping.ListByEvent))
	mux.HandleFunc("DELETE /internal/fotoowl-request-mapping/event/{event_id}", internal(c.Mapping.DeleteByEvent))
	mux.HandleFunc("GET /internal/fotoowl-request-mapping/{mapping_id}", internal(c.Mapping.GetMapping))

	// Health
	health := func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	mux.HandleFunc("GET /{$}", health)
	mux.HandleFunc("GET /health", health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
