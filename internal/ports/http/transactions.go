package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (ser *server) getTransactions(w http.ResponseWriter, r *http.Request) {
	account := normalize(mux.Vars(r)["addr"])

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	txs, err := ser.app.AccountTransactions(ctx, account)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toTxRecordsJSON(txs))
}
