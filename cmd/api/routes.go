package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedResponse)

	corsMw := alice.New(app.logRequest, app.enableCORS)

	// classes
	router.HandlerFunc(http.MethodGet, "/v1/classes/:classID", app.getClassHandler)
	router.HandlerFunc(http.MethodPost, "/v1/classes/:classID/started", app.markClassStartedHandler)
	router.HandlerFunc(http.MethodPost, "/v1/classes/:classID/ended", app.markClassEndedHandler)
	router.HandlerFunc(http.MethodGet, "/v1/classes/:classID/token", app.createClassTokenHandler)

	// signaling
	router.HandlerFunc(http.MethodGet, "/v1/ws", app.wsHandler)

	return corsMw.Then(router)
}
