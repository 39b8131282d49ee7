package http

import (
	"dao-dashboard/internal/model"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type stakeRequest struct {
	Action string `json:"action"`
	// decimal text, coerced to zero when not a non-negative integer
	Amount string `json:"amount"`
}

func (ser *server) getStaking(w http.ResponseWriter, r *http.Request) {
	tokenAddr, stakingAddr, err := ser.readStakingParams(r)
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

	balances, err := ser.app.StakingBalances(ctx, session, tokenAddr, stakingAddr)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, toBalancesJSON(balances))
}

func (ser *server) postStake(w http.ResponseWriter, r *http.Request) {
	tokenAddr, stakingAddr, err := ser.readStakingParams(r)
	req, reqErr := ser.readStakeRequest(w, r)
	if err = multierr.Append(err, reqErr); err != nil {
		ser.badRequest(w, err.Error())
		return
	}

	session, err := ser.session(r)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.logger.Info(req.Action.String(), zap.String("account", session.Address), zap.String("token", tokenAddr), zap.String("staking", stakingAddr), zap.String("amount", req.Amount.String()))

	ctx, cancel := ser.requestContext(r)
	defer cancel()

	res, err := ser.app.Stake(ctx, session, tokenAddr, stakingAddr, req)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respond(w, http.StatusOK, txResultJSON{TxHash: res.TxHash, Height: res.Height})
}

func (ser *server) readStakingParams(r *http.Request) (tokenAddr, stakingAddr string, err error) {
	params := mux.Vars(r)

	tokenAddr = normalize(params["tokenAddr"])
	stakingAddr = normalize(params["stakingAddr"])
	if tokenAddr == "" || stakingAddr == "" {
		return "", "", errors.New("both tokenAddr and stakingAddr need to be given")
	}

	err = ser.app.ValidateAddresses(tokenAddr, stakingAddr)
	return
}

func (ser *server) readStakeRequest(w http.ResponseWriter, r *http.Request) (model.StakeRequest, error) {
	var body stakeRequest
	if err := decodeBody(w, r, &body); err != nil {
		return model.StakeRequest{}, err
	}

	action, err := model.ParseStakeAction(body.Action)
	if err != nil {
		return model.StakeRequest{}, err
	}

	req := model.StakeRequest{Action: action, Amount: model.ParseTokenAmount(body.Amount)}
	return req, req.Validate()
}
