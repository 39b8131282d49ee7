package http

import "net/http"

func (ser *server) getLayout(w http.ResponseWriter, r *http.Request) {
	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toLayoutJSON(ser.app.Layout(session)))
}
