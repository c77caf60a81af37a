package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/livekit/protocol/auth"

	"github.com/edutalksorg/liveclass/internal/data"
)

func (app *application) getClassHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	classID := params.ByName("classID")
	if classID == "" {
		app.badRequestResponse(w, r, "missing required param: classID")
		return
	}

	class, err := app.models.Classes.Get(context.Background(), classID)
	if err != nil {
		if errors.Is(err, data.ErrClassNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"class": class}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) markClassStartedHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	classID := params.ByName("classID")

	err := app.models.Classes.MarkStarted(context.Background(), classID)
	if err != nil {
		if errors.Is(err, data.ErrClassNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "class marked live"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) markClassEndedHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	classID := params.ByName("classID")

	err := app.models.Classes.MarkEnded(context.Background(), classID)
	if err != nil {
		if errors.Is(err, data.ErrClassNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "class marked completed"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// createClassTokenHandler mints the short-lived room-scoped credential the
// media transport joins with.
func (app *application) createClassTokenHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	classID := params.ByName("classID")

	class, err := app.models.Classes.Get(context.Background(), classID)
	if err != nil {
		if errors.Is(err, data.ErrClassNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	uid := r.FormValue("uid")
	if uid == "" {
		uid = uuid.NewString()
	}
	channelName := "class-" + class.ID

	at := auth.NewAccessToken(app.config.media.key, app.config.media.secret)
	at.AddGrant(&auth.VideoGrant{
		Room:     channelName,
		RoomJoin: true,
	})
	at.SetIdentity(uid)
	at.SetValidFor(time.Minute)

	token, err := at.ToJWT()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{
		"token":       token,
		"channelName": channelName,
		"uid":         uid,
	}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
