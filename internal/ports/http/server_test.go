package http

import (
	"bytes"
	"crypto/sha256"
	"dao-dashboard/internal/app"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/contracts/contractstest"
	"dao-dashboard/internal/metrics"
	"dao-dashboard/internal/notify"
	"dao-dashboard/internal/ports/http/middleware/auth"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "test-secret"

func testAddr(t *testing.T, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	addr, err := chain.EncodeAddress("orai", sum[:20])
	require.NoError(t, err)
	return addr
}

type testEnv struct {
	chain    *contractstest.Chain
	executor *contractstest.Executor
	hub      *notify.Hub
	handler  http.Handler

	dao, module, voting, token, staking, alice string
}

func newTestEnv(t *testing.T, txRate int) *testEnv {
	return newTestEnvWithSecret(t, txRate, secret)
}

func newTestEnvWithSecret(t *testing.T, txRate int, jwtSecret string) *testEnv {
	env := &testEnv{
		chain:    contractstest.NewChain(),
		executor: &contractstest.Executor{Result: chain.TxResult{TxHash: "F00D", Height: 77}},
		hub:      notify.NewHub(zap.NewNop()),
		dao:      testAddr(t, "dao"),
		module:   testAddr(t, "module"),
		voting:   testAddr(t, "voting"),
		token:    testAddr(t, "token"),
		staking:  testAddr(t, "staking"),
		alice:    testAddr(t, "alice"),
	}
	env.chain.Height = 50

	proposal := map[string]interface{}{
		"id": 4,
		"proposal": map[string]interface{}{
			"title": "Raise the quorum", "description": "From 20% to 30%", "proposer": env.alice,
			"start_height": 10, "expiration": map[string]uint64{"at_height": 500}, "status": "open",
			"votes": map[string]string{"yes": "1", "no": "0", "abstain": "0"}, "total_power": "10",
		},
	}
	env.chain.
		Respond(env.dao, "config", map[string]string{"name": "Oraichain DAO", "description": "gov"}).
		Respond(env.dao, "proposal_modules", []map[string]string{{"address": env.module, "prefix": "A", "status": "enabled"}}).
		Respond(env.dao, "voting_module", env.voting).
		Respond(env.module, "list_proposals", map[string]interface{}{"proposals": []interface{}{proposal}}).
		Respond(env.module, "proposal_count", 1).
		Respond(env.module, "proposal", proposal).
		Respond(env.voting, "token_contract", env.token).
		Respond(env.voting, "staking_contract", env.staking).
		Respond(env.token, "token_info", map[string]interface{}{"symbol": "ORAIX", "decimals": 6}).
		Respond(env.token, "balance", map[string]string{"balance": "900"}).
		Respond(env.staking, "staked_balance_at_height", map[string]interface{}{"balance": "300", "height": 51}).
		Respond(env.staking, "staked_value", map[string]string{"value": "320"}).
		Respond(env.staking, "get_config", map[string]interface{}{"token_address": env.token, "unstaking_duration": map[string]uint64{"height": 100800}})

	collector := metrics.NewCollector()
	a := app.NewApp(zap.NewNop(), app.Deps{
		Provider:     chain.NewProvider("Oraichain", env.chain, env.executor),
		Bech32Prefix: "orai",
		Events:       env.hub,
		Metrics:      collector,
	})
	t.Cleanup(func() {
		a.Close()
		_ = env.hub.Stop()
	})

	ser := NewServer(zap.NewNop(), a, ":0", Options{
		JWTSecret:    jwtSecret,
		TxRatePerMin: txRate,
		Metrics:      collector,
		Events:       env.hub,
	})
	env.handler = ser.Handler()
	return env
}

func (env *testEnv) bearer(t *testing.T, account string) string {
	token, err := auth.SignHS256(secret, account)
	require.NoError(t, err)
	return token
}

func (env *testEnv) do(t *testing.T, method, path, account string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if account != "" {
		req.Header.Set("Authorization", "Bearer "+env.bearer(t, account))
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "all good here", rec.Body.String())
}

func TestLayout(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/layout", env.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var layout layoutJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
	assert.Equal(t, "Oraichain", layout.ChainName)
	assert.Equal(t, env.alice, layout.Account)
	assert.True(t, layout.Connected)
	require.Len(t, layout.Menu, 3)
	assert.Equal(t, "/create-dao", layout.Menu[2].Path)
}

func TestInvalidTokenAccount(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/layout", "orai1nonsense", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDao(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/daos/"+env.dao, env.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page daoPageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "ready", page.Load.Status)
	require.NotNil(t, page.Info)
	assert.Equal(t, "Oraichain DAO", page.Info.Name)
	assert.Equal(t, "ORAIX", page.Info.TokenSymbol)
	assert.Equal(t, "/create-proposal/"+env.module, page.Info.CreateProposalPath)
	require.Len(t, page.Info.Proposals, 1)
	assert.Equal(t, "/proposal/"+env.module+"/4", page.Info.Proposals[0].Path)
	assert.Equal(t, "300", page.Staking.Staked)
	assert.Equal(t, "20", page.Staking.Reward)
	assert.False(t, page.Staking.RewardNegative)
}

func TestGetDaoNegativeReward(t *testing.T) {
	env := newTestEnv(t, 10)
	env.chain.Respond(env.staking, "staked_value", map[string]string{"value": "280"})

	rec := env.do(t, http.MethodGet, "/api/daos/"+env.dao, env.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page daoPageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, "-20", page.Staking.Reward)
	assert.True(t, page.Staking.RewardNegative)
}

func TestGetDaoErrors(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/daos/orai1bad", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.chain.Fail(env.dao, "config", errors.New("error 500: node down"))
	rec = env.do(t, http.MethodGet, "/api/daos/"+env.dao, "", nil)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "node down")
}

func TestGetProposal(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/proposals/"+env.module+"/4", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var page proposalPageJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.NotNil(t, page.Proposal)
	assert.Equal(t, "Raise the quorum", page.Proposal.Title)
	assert.False(t, page.CanVote)
}

func TestPostVote(t *testing.T) {
	env := newTestEnv(t, 10)
	path := "/api/proposals/" + env.module + "/4/votes"

	rec := env.do(t, http.MethodPost, path, env.alice, voteRequest{Vote: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path, "", voteRequest{Vote: "yes"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, env.executor.Calls())

	rec = env.do(t, http.MethodPost, path, env.alice, voteRequest{Vote: "Yes"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp voteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "F00D", resp.Tx.TxHash)
	require.NotNil(t, resp.View.Notification)
	assert.Equal(t, "Vote success !", resp.View.Notification.Message)

	calls := env.executor.Calls()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"vote":{"proposal_id":4,"vote":"yes"}}`, string(calls[0].Msg))
}

func TestPostVoteUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, 10)
	env.executor.Err = errors.New("transaction failed: code 5: proposal expired")

	rec := env.do(t, http.MethodPost, "/api/proposals/"+env.module+"/4/votes", env.alice, voteRequest{Vote: "no"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "proposal expired")
}

func TestUnverifiedSessionIsReadOnly(t *testing.T) {
	env := newTestEnvWithSecret(t, 10, "")

	// without a server secret the claims are taken as they come
	rec := env.do(t, http.MethodGet, "/api/layout", env.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), env.alice)

	rec = env.do(t, http.MethodPost, "/api/proposals/"+env.module+"/4/votes", env.alice, voteRequest{Vote: "yes"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/staking/"+env.token+"/"+env.staking, env.alice, stakeRequest{Action: "stake", Amount: "5"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/views/daos/"+env.dao, env.alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	viewID := decode(t, rec)["viewId"].(string)
	waitView(t, env, viewID, env.alice, stakingReady)

	modal := func(req modalRequest) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/views/"+viewID+"/modal", env.alice, req)
	}
	require.Equal(t, http.StatusOK, modal(modalRequest{Command: "open", Tab: "stake"}).Code)
	require.Equal(t, http.StatusOK, modal(modalRequest{Command: "set", Amount: "5"}).Code)
	assert.Equal(t, http.StatusUnauthorized, modal(modalRequest{Command: "confirm"}).Code)

	assert.Empty(t, env.executor.Calls())
}

func TestTransactionsAreRateLimited(t *testing.T) {
	env := newTestEnv(t, 1)
	path := "/api/proposals/" + env.module + "/4/votes"

	rec := env.do(t, http.MethodPost, path, env.alice, voteRequest{Vote: "yes"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.alice, voteRequest{Vote: "yes"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Len(t, env.executor.Calls(), 1)
}

func TestStaking(t *testing.T) {
	env := newTestEnv(t, 10)
	path := "/api/staking/" + env.token + "/" + env.staking

	rec := env.do(t, http.MethodGet, path, env.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var balances balancesJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &balances))
	assert.Equal(t, "900", balances.TokenBalance)
	assert.Equal(t, "300", balances.Staked)
	assert.Equal(t, "100800 blocks", balances.UnstakingDuration)

	rec = env.do(t, http.MethodPost, path, env.alice, stakeRequest{Action: "stake", Amount: "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, path, env.alice, stakeRequest{Action: "stake", Amount: "15"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	calls := env.executor.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, env.token, calls[0].Contract)
	assert.JSONEq(t, `{"send":{"contract":"`+env.staking+`","amount":"15","msg":"eyJzdGFrZSI6e319"}}`, string(calls[0].Msg))
}

func TestTransactionsWithoutLog(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodGet, "/api/accounts/"+env.alice+"/transactions", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func waitView(t *testing.T, env *testEnv, viewID, account string, ready func(map[string]interface{}) bool) map[string]interface{} {
	var view map[string]interface{}
	require.Eventually(t, func() bool {
		rec := env.do(t, http.MethodGet, "/api/views/"+viewID, account, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		view = nil
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			return false
		}
		return ready(view)
	}, 2*time.Second, 10*time.Millisecond)
	return view
}

func stakingReady(view map[string]interface{}) bool {
	staking, ok := view["staking"].(map[string]interface{})
	if !ok {
		return false
	}
	return staking["load"].(map[string]interface{})["status"] == "ready"
}

func TestDaoViewLifecycle(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodPost, "/api/views/daos/"+env.dao, env.alice, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	viewID, _ := decode(t, rec)["viewId"].(string)
	require.NotEmpty(t, viewID)

	view := waitView(t, env, viewID, env.alice, stakingReady)
	assert.Equal(t, "dao", view["kind"])

	modal := func(req modalRequest) *httptest.ResponseRecorder {
		return env.do(t, http.MethodPost, "/api/views/"+viewID+"/modal", env.alice, req)
	}

	assert.Equal(t, http.StatusConflict, modal(modalRequest{Command: "increment"}).Code)
	require.Equal(t, http.StatusOK, modal(modalRequest{Command: "open", Tab: "unstake"}).Code)

	rec = modal(modalRequest{Command: "confirm"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "the modal stays open")
	assert.Empty(t, env.executor.Calls())

	require.Equal(t, http.StatusOK, modal(modalRequest{Command: "set", Amount: "7"}).Code)
	assert.Equal(t, http.StatusBadRequest, modal(modalRequest{Command: "launch"}).Code)

	rec = modal(modalRequest{Command: "confirm"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp modalResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Tx)
	assert.Equal(t, "F00D", resp.Tx.TxHash)
	require.NotNil(t, resp.View.Modal)
	assert.Equal(t, "closed", resp.View.Modal.Mode)
	assert.Equal(t, "Unstake success !", resp.View.Notification.Message)

	calls := env.executor.Calls()
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"unstake":{"amount":"7"}}`, string(calls[0].Msg))

	assert.Equal(t, http.StatusAccepted, env.do(t, http.MethodPost, "/api/views/"+viewID+"/reload", env.alice, nil).Code)
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/views/"+viewID, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/views/"+viewID, "", nil).Code)
}

func TestProposalViewVote(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := env.do(t, http.MethodPost, "/api/views/proposals/"+env.module+"/4", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	viewID := decode(t, rec)["viewId"].(string)

	waitView(t, env, viewID, "", func(view map[string]interface{}) bool {
		return view["load"].(map[string]interface{})["status"] == "ready"
	})

	rec = env.do(t, http.MethodPost, "/api/views/"+viewID+"/votes", "", voteRequest{Vote: "abstain"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/views/"+viewID+"/votes", env.alice, voteRequest{Vote: "abstain"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/views/"+viewID+"/modal", env.alice, modalRequest{Command: "open", Tab: "stake"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestViewEvents(t *testing.T) {
	env := newTestEnv(t, 10)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	rec := env.do(t, http.MethodPost, "/api/views/proposals/"+env.module+"/4", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	viewID := decode(t, rec)["viewId"].(string)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/views/" + viewID + "/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first eventJSON
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, notify.EventState, first.Type)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/views/"+viewID, "", nil).Code)

	// the stream ends with the view
	for {
		var event eventJSON
		if err := conn.ReadJSON(&event); err != nil {
			assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), err.Error())
			break
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, 10)
	env.do(t, http.MethodGet, "/api/daos/"+env.dao, "", nil)

	rec := env.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/daos/{daoAddr}"`)
}
