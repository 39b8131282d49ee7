package http

import (
	"dao-dashboard/internal/app"
	"dao-dashboard/internal/model"
	"dao-dashboard/internal/ports/http/middleware/auth"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	modalOpen      = "open"
	modalTab       = "tab"
	modalIncrement = "increment"
	modalDecrement = "decrement"
	modalSet       = "set"
	modalCancel    = "cancel"
	modalConfirm   = "confirm"
)

var errUnknownCommand = errors.New("command must be one of: open, tab, increment, decrement, set, cancel, confirm")

type modalRequest struct {
	Command string `json:"command"`
	Tab     string `json:"tab,omitempty"`
	Amount  string `json:"amount,omitempty"`
}

type modalResponse struct {
	Tx   *txResultJSON `json:"tx,omitempty"`
	View daoPageJSON   `json:"view"`
}

func (ser *server) mountDaoView(w http.ResponseWriter, r *http.Request) {
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

	page, err := ser.app.MountDaoView(session, daoAddr)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Info("dao view mounted", zap.String("viewID", page.ID()), zap.String("dao", daoAddr))
	ser.respond(w, http.StatusCreated, toDaoPageJSON(page.ID(), page.State()))
}

func (ser *server) mountProposalView(w http.ResponseWriter, r *http.Request) {
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

	page, err := ser.app.MountProposalView(session, moduleAddr, proposalID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Info("proposal view mounted", zap.String("viewID", page.ID()), zap.String("module", moduleAddr), zap.Uint64("proposalID", proposalID))
	ser.respond(w, http.StatusCreated, toProposalPageJSON(page.ID(), page.State()))
}

func (ser *server) getView(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	view, err := ser.app.View(viewID, session)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toViewJSON(viewID, view.Snapshot()))
}

func (ser *server) unmountView(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	if err := ser.app.UnmountView(viewID); err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Info("view unmounted", zap.String("viewID", viewID))
	w.WriteHeader(http.StatusNoContent)
}

func (ser *server) reloadView(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	if err := ser.app.ReloadView(viewID, session); err != nil {
		ser.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (ser *server) postViewVote(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	choice, err := ser.readVote(w, r)
	if err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	page, err := ser.app.ProposalView(viewID, session)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	res, err := page.Vote(ctx, choice)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, voteResponse{
		Tx:   txResultJSON{TxHash: res.TxHash, Height: res.Height},
		View: toProposalPageJSON(viewID, page.State()),
	})
}

func (ser *server) modalCommand(w http.ResponseWriter, r *http.Request) {
	viewID := mux.Vars(r)["viewID"]

	var req modalRequest
	if err := decodeBody(w, r, &req); err != nil {
		ser.badRequest(w, err.Error())
		return
	}
	command := normalize(req.Command)

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	page, err := ser.app.DaoView(viewID, session)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	var tx *txResultJSON
	switch command {
	case modalOpen:
		err = ser.withTab(req.Tab, func(tab model.StakeAction) error {
			return page.OpenModal(ctx, tab)
		})
	case modalTab:
		err = ser.withTab(req.Tab, func(tab model.StakeAction) error {
			return page.UpdateModal(func(m *app.StakingModal) error { return m.SelectTab(tab) })
		})
	case modalIncrement:
		err = page.UpdateModal((*app.StakingModal).Increment)
	case modalDecrement:
		err = page.UpdateModal((*app.StakingModal).Decrement)
	case modalSet:
		err = page.UpdateModal(func(m *app.StakingModal) error { return m.SetText(req.Amount) })
	case modalCancel:
		err = page.UpdateModal((*app.StakingModal).Cancel)
	case modalConfirm:
		if session.Connected() && !auth.Verified(r.Context()) {
			ser.writeError(w, http.StatusUnauthorized, auth.ErrUnverified.Error())
			return
		}
		if session.Connected() && !ser.txLimiter.Allow(session.Address) {
			ser.writeError(w, http.StatusTooManyRequests, "too many transactions, try again later")
			return
		}
		var outcome app.StakeOutcome
		outcome, err = page.ConfirmModal(ctx)
		if outcome.Result.TxHash != "" {
			tx = &txResultJSON{TxHash: outcome.Result.TxHash, Height: outcome.Result.Height}
		}
		if err == nil {
			ser.logger.Info(fmt.Sprintf("%s submitted", outcome.Request.Action), zap.String("viewID", viewID), zap.String("txHash", outcome.Result.TxHash))
		}
	default:
		ser.badRequest(w, fmt.Sprintf("%s, got %q", errUnknownCommand.Error(), req.Command))
		return
	}
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, modalResponse{Tx: tx, View: toDaoPageJSON(viewID, page.State())})
}

func (ser *server) withTab(text string, do func(tab model.StakeAction) error) error {
	tab, err := model.ParseStakeAction(text)
	if err != nil {
		return err
	}
	return do(tab)
}
