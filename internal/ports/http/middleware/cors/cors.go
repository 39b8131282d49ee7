package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// AddCorsPolicy lets the dashboard front-end call the API with its session
// token. No origins means any origin.
func AddCorsPolicy(handler http.Handler, origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	})

	return c.Handler(handler)
}
