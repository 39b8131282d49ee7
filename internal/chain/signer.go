package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const executeAPI string = "execute"

var ErrTxFailed = errors.New("transaction failed")

// TxResult of a broadcast contract execution.
type TxResult struct {
	TxHash string `json:"txhash"`
	Height int64  `json:"height"`
}

// SigningClient executes contract messages through a signing relay. The relay
// holds the wallet connection, signs on behalf of the sender and broadcasts.
type SigningClient struct {
	logger   *zap.Logger
	url      string
	http     *http.Client
	observer Observer
}

func NewSigningClient(logger *zap.Logger, relayAddr string, timeout time.Duration) *SigningClient {
	return &SigningClient{
		logger:   logger,
		url:      baseURL(relayAddr),
		http:     &http.Client{Timeout: timeout},
		observer: nopObserver{},
	}
}

func (c *SigningClient) WithObserver(observer Observer) *SigningClient {
	if observer != nil {
		c.observer = observer
	}
	return c
}

type executeRequest struct {
	Sender   string          `json:"sender"`
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
	Funds    []interface{}   `json:"funds"`
}

type executeResponse struct {
	TxHash string `json:"txhash"`
	Height int64  `json:"height"`
	Code   uint32 `json:"code"`
	RawLog string `json:"raw_log"`
}

// Execute signs and broadcasts msg to contract as sender.
func (c *SigningClient) Execute(ctx context.Context, sender, contract string, msg interface{}) (result TxResult, err error) {
	name := queryName(msg)
	start := time.Now()
	defer func() { c.observer.ObserveCall("execute", name, time.Since(start), err) }()

	rawMsg, err := json.Marshal(msg)
	if err != nil {
		return TxResult{}, errors.New("failed to marshal the message: " + err.Error())
	}

	payload, err := json.Marshal(executeRequest{
		Sender:   sender,
		Contract: contract,
		Msg:      rawMsg,
		Funds:    []interface{}{},
	})
	if err != nil {
		return TxResult{}, errors.New("failed to marshal the execute request: " + err.Error())
	}

	c.logger.Info("submitting transaction", zap.String("sender", sender), zap.String("contract", contract), zap.String("msg", name))

	response, err := send(ctx, c.logger, c.http, http.MethodPost, c.url+"/"+executeAPI, payload)
	if err != nil {
		return TxResult{}, fmt.Errorf("execute %s on %s: %w", name, contract, err)
	}

	var unmarshalled executeResponse
	if err := json.Unmarshal(response, &unmarshalled); err != nil {
		return TxResult{}, errors.New("failed to unmarshal the execute response: " + err.Error())
	}

	if unmarshalled.Code != 0 {
		return TxResult{TxHash: unmarshalled.TxHash}, fmt.Errorf("%w: code %d: %s", ErrTxFailed, unmarshalled.Code, unmarshalled.RawLog)
	}

	c.logger.Info("transaction submitted, hash: "+unmarshalled.TxHash, zap.String("sender", sender), zap.String("contract", contract))

	return TxResult{TxHash: unmarshalled.TxHash, Height: unmarshalled.Height}, nil
}
