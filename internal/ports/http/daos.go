package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func (ser *server) getDao(w http.ResponseWriter, r *http.Request) {
	daoAddr, err := ser.readDaoParams(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Debug("getting dao "+daoAddr, zap.String("account", session.Address))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	state, err := ser.app.LoadDao(ctx, session, daoAddr)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toDaoPageJSON("", state))
}

func (ser *server) readDaoParams(r *http.Request) (string, error) {
	daoAddr := normalize(mux.Vars(r)["daoAddr"])
	if daoAddr == "" {
		return "", errors.New("daoAddr is missing")
	}
	if err := ser.app.ValidateAddress(daoAddr); err != nil {
		return "", err
	}
	return daoAddr, nil
}
