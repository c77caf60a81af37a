package main

import (
	"net/http"
)

func (app *application) logRequest(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		app.logger.Printf("method: %s, path: %s, origin: %s", r.Method, r.URL.Path, r.Header.Get("Origin"))
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

func (app *application) enableCORS(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("origin")
		allowedOrigins := app.config.cors.allowedOrigins

		if origin != "" {
			for _, v := range allowedOrigins {
				if v == origin {
					w.Header().Set("Access-Control-Allow-Origin", v)
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
						w.Header().Set("Access-Control-Allow-Methods", "POST, PUT, DELETE")
						w.WriteHeader(http.StatusOK)
						return
					}

					break
				}
			}
		}

		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
