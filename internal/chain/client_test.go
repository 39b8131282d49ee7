package chain_test

import (
	"context"
	"crypto/sha256"
	"dao-dashboard/internal/chain"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAddr(t *testing.T, seed string) string {
	sum := sha256.Sum256([]byte(seed))
	addr, err := chain.EncodeAddress("orai", sum[:])
	require.NoError(t, err)
	return addr
}

func TestQuerySmart(t *testing.T) {
	contract := testAddr(t, "dao")
	var receivedQuery map[string]interface{}

	lcd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		prefix := "/cosmwasm/wasm/v1/contract/" + contract + "/smart/"
		assert.True(t, strings.HasPrefix(r.URL.Path, prefix), r.URL.Path)

		raw, err := base64.URLEncoding.DecodeString(strings.TrimPrefix(r.URL.Path, prefix))
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(raw, &receivedQuery))

		_, _ = w.Write([]byte(`{"data":{"name":"Oraichain DAO","description":"governance"}}`))
	}))
	defer lcd.Close()

	client := chain.NewQueryClient(zap.NewNop(), lcd.URL, time.Second)

	var out struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	err := client.QuerySmart(context.Background(), contract, map[string]interface{}{"config": struct{}{}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Oraichain DAO", out.Name)
	assert.Equal(t, "governance", out.Description)
	assert.Contains(t, receivedQuery, "config")
}

func TestQuerySmartUpstreamError(t *testing.T) {
	lcd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":2,"message":"contract: not found: query wasm contract failed","details":[]}`))
	}))
	defer lcd.Close()

	client := chain.NewQueryClient(zap.NewNop(), lcd.URL, time.Second)
	var out interface{}
	err := client.QuerySmart(context.Background(), testAddr(t, "x"), map[string]interface{}{"config": struct{}{}}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query wasm contract failed")
	assert.Contains(t, err.Error(), "config")
}

func TestLatestHeight(t *testing.T) {
	lcd := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cosmos/base/tendermint/v1beta1/blocks/latest", r.URL.Path)
		_, _ = w.Write([]byte(`{"block_id":{},"block":{"header":{"chain_id":"Oraichain","height":"21563402"}}}`))
	}))
	defer lcd.Close()

	client := chain.NewQueryClient(zap.NewNop(), strings.TrimPrefix(lcd.URL, "http://"), time.Second)
	height, err := client.LatestHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(21563402), height)
}

func TestExecute(t *testing.T) {
	sender := testAddr(t, "alice")
	var received struct {
		Sender   string          `json:"sender"`
		Contract string          `json:"contract"`
		Msg      json.RawMessage `json:"msg"`
	}

	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/execute", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &received))
		_, _ = w.Write([]byte(`{"txhash":"ABCDEF","height":100,"code":0}`))
	}))
	defer relay.Close()

	signer := chain.NewSigningClient(zap.NewNop(), relay.URL, time.Second)
	msg := map[string]interface{}{"unstake": map[string]string{"amount": "10"}}
	result, err := signer.Execute(context.Background(), sender, "orai1staking", msg)
	require.NoError(t, err)

	assert.Equal(t, "ABCDEF", result.TxHash)
	assert.Equal(t, int64(100), result.Height)
	assert.Equal(t, sender, received.Sender)
	assert.Equal(t, "orai1staking", received.Contract)
	assert.JSONEq(t, `{"unstake":{"amount":"10"}}`, string(received.Msg))
}

func TestExecuteFailedTx(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"txhash":"FFFF","code":5,"raw_log":"insufficient funds"}`))
	}))
	defer relay.Close()

	signer := chain.NewSigningClient(zap.NewNop(), relay.URL, time.Second)
	result, err := signer.Execute(context.Background(), "orai1sender", "orai1token", map[string]interface{}{"send": struct{}{}})
	assert.ErrorIs(t, err, chain.ErrTxFailed)
	assert.Contains(t, err.Error(), "insufficient funds")
	assert.Equal(t, "FFFF", result.TxHash)
}

func TestSessionProvider(t *testing.T) {
	provider := chain.NewProvider("oraichain", nil, nil)

	assert.False(t, provider.Session("").Connected())
	session := provider.Session("orai1abc")
	assert.True(t, session.Connected())
	assert.Equal(t, "orai1other", session.WithAccount("orai1other").Address)
	assert.Equal(t, "orai1abc", session.Address)
}
