package http

import (
	"dao-dashboard/internal/model"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type voteRequest struct {
	Vote string `json:"vote"`
}

type voteResponse struct {
	Tx   txResultJSON     `json:"tx"`
	View proposalPageJSON `json:"view"`
}

func (ser *server) getProposal(w http.ResponseWriter, r *http.Request) {
	moduleAddr, proposalID, err := ser.readProposalParams(r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	state, err := ser.app.LoadProposal(ctx, session, moduleAddr, proposalID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toProposalPageJSON("", state))
}

func (ser *server) postVote(w http.ResponseWriter, r *http.Request) {
	moduleAddr, proposalID, err := ser.readProposalParams(r)
	choice, choiceErr := ser.readVote(w, r)
	if err = multierr.Append(err, choiceErr); err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Info("voting", zap.String("account", session.Address), zap.String("module", moduleAddr), zap.Uint64("proposalID", proposalID), zap.String("vote", choice.String()))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	state, res, err := ser.app.Vote(ctx, session, moduleAddr, proposalID, choice)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, voteResponse{
		Tx:   txResultJSON{TxHash: res.TxHash, Height: res.Height},
		View: toProposalPageJSON("", state),
	})
}

func (ser *server) readProposalParams(r *http.Request) (moduleAddr string, proposalID uint64, err error) {
	params := mux.Vars(r)

	moduleAddr = normalize(params["moduleAddr"])
	if moduleAddr == "" {
		err = multierr.Append(err, errors.New("moduleAddr is missing"))
	} else if verr := ser.app.ValidateAddress(moduleAddr); verr != nil {
		err = multierr.Append(err, verr)
	}

	proposalID, perr := parseProposalID(params["id"])
	if perr != nil {
		err = multierr.Append(err, errors.New("invalid proposal id: "+perr.Error()))
	}

	return
}

func (ser *server) readVote(w http.ResponseWriter, r *http.Request) (model.VoteChoice, error) {
	var req voteRequest
	if err := decodeBody(w, r, &req); err != nil {
		return "", err
	}
	return model.ParseVoteChoice(req.Vote)
}
