package chain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	smartQueryAPI  string = "cosmwasm/wasm/v1/contract"
	latestBlockAPI string = "cosmos/base/tendermint/v1beta1/blocks/latest"

	contentTypeJSON string = "application/json"
)

var ErrNotFound = errors.New("responded with status 404")

// Observer gets notified about every upstream call, used for metrics.
type Observer interface {
	ObserveCall(kind, name string, duration time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveCall(string, string, time.Duration, error) {}

// QueryClient reads contract state through the LCD REST API of a node.
type QueryClient struct {
	logger   *zap.Logger
	url      string
	http     *http.Client
	observer Observer
}

func NewQueryClient(logger *zap.Logger, lcdAddr string, timeout time.Duration) *QueryClient {
	return &QueryClient{
		logger:   logger,
		url:      baseURL(lcdAddr),
		http:     &http.Client{Timeout: timeout},
		observer: nopObserver{},
	}
}

func (c *QueryClient) WithObserver(observer Observer) *QueryClient {
	if observer != nil {
		c.observer = observer
	}
	return c
}

// QuerySmart sends a smart query to the contract and decodes the `data` field
// of the response into out.
func (c *QueryClient) QuerySmart(ctx context.Context, contract string, query interface{}, out interface{}) (err error) {
	name := queryName(query)
	start := time.Now()
	defer func() { c.observer.ObserveCall("query", name, time.Since(start), err) }()

	msg, err := json.Marshal(query)
	if err != nil {
		return errors.New("failed to marshal the query: " + err.Error())
	}

	url := fmt.Sprintf("%s/%s/%s/smart/%s", c.url, smartQueryAPI, contract, base64.URLEncoding.EncodeToString(msg))
	response, err := c.sendRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("query %s on %s: %w", name, contract, err)
	}

	var wrapped struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(response, &wrapped); err != nil {
		return fmt.Errorf("query %s on %s: failed to unmarshal the response: %w", name, contract, err)
	}

	if err := json.Unmarshal(wrapped.Data, out); err != nil {
		return fmt.Errorf("query %s on %s: unexpected data: %w", name, contract, err)
	}

	c.logger.Debug("smart query done", zap.String("contract", contract), zap.String("query", name))
	return nil
}

// LatestHeight returns the height of the latest block the node observed.
func (c *QueryClient) LatestHeight(ctx context.Context) (height uint64, err error) {
	start := time.Now()
	defer func() { c.observer.ObserveCall("query", "latest_block", time.Since(start), err) }()

	response, err := c.sendRequest(ctx, http.MethodGet, c.url+"/"+latestBlockAPI, nil)
	if err != nil {
		return 0, fmt.Errorf("latest block: %w", err)
	}

	var block struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := json.Unmarshal(response, &block); err != nil {
		return 0, errors.New("latest block: failed to unmarshal the response: " + err.Error())
	}

	height, err = strconv.ParseUint(block.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("latest block: invalid height %q", block.Block.Header.Height)
	}

	return height, nil
}

func (c *QueryClient) sendRequest(ctx context.Context, method, url string, data []byte) ([]byte, error) {
	return send(ctx, c.logger, c.http, method, url, data)
}

func send(ctx context.Context, logger *zap.Logger, client *http.Client, method, url string, data []byte) ([]byte, error) {
	var body io.Reader
	if len(data) > 0 {
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		request.Header.Set("Content-Type", contentTypeJSON)
	}
	request.Header.Set("Accept", contentTypeJSON)

	response, err := client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the node: %w", err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, errors.New("error reading response: " + err.Error())
	}

	if response.StatusCode == http.StatusNotFound {
		logger.Debug("not found", zap.String("url", url))
		return nil, ErrNotFound
	}
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("error %d: %s", response.StatusCode, upstreamMessage(responseBody, response.Status))
	}

	return responseBody, nil
}

// upstreamMessage picks the message of a gRPC gateway error body.
func upstreamMessage(body []byte, fallback string) string {
	var gatewayErr struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &gatewayErr); err == nil && gatewayErr.Message != "" {
		return gatewayErr.Message
	}
	if len(body) > 0 {
		return strings.TrimSpace(string(body))
	}
	return fallback
}

// queryName is the single top level key of a contract message.
func queryName(msg interface{}) string {
	if m, ok := msg.(map[string]interface{}); ok && len(m) == 1 {
		for key := range m {
			return key
		}
	}
	return "unknown"
}

func baseURL(addr string) string {
	addr = strings.TrimSuffix(addr, "/")
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}
