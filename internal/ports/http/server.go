package http

import (
	"bufio"
	"context"
	"dao-dashboard/internal/app"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/metrics"
	"dao-dashboard/internal/model"
	"dao-dashboard/internal/notify"
	"dao-dashboard/internal/ports/http/middleware/auth"
	"dao-dashboard/internal/ports/http/middleware/cors"
	"dao-dashboard/internal/ports/http/middleware/ratelimit"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	// upper bound of a request body, commands and votes are tiny
	maxBodySize = 1 << 16
)

type Options struct {
	JWTSecret      string
	TxRatePerMin   int
	RequestTimeout time.Duration
	// CORS, any origin when empty
	AllowedOrigins []string
	// optional
	Metrics *metrics.Collector
	// optional, the view event stream is disabled without it
	Events *notify.Hub
}

type server struct {
	app        *app.App
	httpServer *http.Server
	addr       string
	logger     *zap.Logger
	opts       Options
	auth       auth.TokenValidator
	txLimiter  *ratelimit.Limiter
}

func NewServer(logger *zap.Logger, a *app.App, address string, opts Options) *server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	return &server{
		app:       a,
		addr:      address,
		logger:    logger,
		opts:      opts,
		auth:      auth.NewTokenValidator(logger, auth.JwtTokenParams{Secret: opts.JWTSecret}),
		txLimiter: ratelimit.NewPerMinute(opts.TxRatePerMin),
	}
}

func (ser *server) badRequest(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusBadRequest, message)
	ser.logger.Warn(message)
}

func (ser *server) serverError(w http.ResponseWriter, message string) {
	ser.writeError(w, http.StatusInternalServerError, message)
	ser.logger.Error(message)
}

// respondError maps the error to a status code. Anything not recognized is
// an upstream failure.
func (ser *server) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chain.ErrInvalidAddress),
		errors.Is(err, model.ErrInvalidVote),
		errors.Is(err, model.ErrInvalidAction),
		errors.Is(err, model.ErrZeroAmount):
		ser.badRequest(w, err.Error())
	case errors.Is(err, app.ErrNoAccount):
		ser.writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrViewNotFound), errors.Is(err, chain.ErrNotFound):
		ser.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrVoteInFlight),
		errors.Is(err, app.ErrInvalidTransition),
		errors.Is(err, app.ErrWrongView),
		errors.Is(err, app.ErrNoStaking):
		ser.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrTxLogDisabled):
		ser.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		ser.logger.Warn("upstream failure: " + err.Error())
		ser.writeError(w, http.StatusBadGateway, err.Error())
	}
}

func (ser *server) writeError(w http.ResponseWriter, status int, message string) {
	ser.respond(w, status, errorResponse{Error: message})
}

func (ser *server) respond(w http.ResponseWriter, status int, body interface{}) {
	response, err := json.Marshal(body)
	if err != nil {
		ser.logger.Error("marshalling the response failed: " + err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		ser.logger.Error("failed to write the response: " + err.Error())
	}
}

// session is the chain session of the account in the request token.
func (ser *server) session(r *http.Request) (chain.Session, error) {
	return ser.app.Session(auth.AccountFromContext(r.Context()))
}

func (ser *server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), ser.opts.RequestTimeout)
}

func (ser *server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck).Methods(http.MethodGet)
	if ser.opts.Metrics != nil {
		router.Handle("/metrics", ser.opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(ser.auth.Session)

	api.HandleFunc("/layout", ser.getLayout).Methods(http.MethodGet)

	api.HandleFunc("/daos/{daoAddr}", ser.getDao).Methods(http.MethodGet)
	api.HandleFunc("/proposals/{moduleAddr}/{id:[0-9]+}", ser.getProposal).Methods(http.MethodGet)
	api.HandleFunc("/staking/{tokenAddr}/{stakingAddr}", ser.getStaking).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{addr}/transactions", ser.getTransactions).Methods(http.MethodGet)

	api.HandleFunc("/views/daos/{daoAddr}", ser.mountDaoView).Methods(http.MethodPost)
	api.HandleFunc("/views/proposals/{moduleAddr}/{id:[0-9]+}", ser.mountProposalView).Methods(http.MethodPost)
	api.HandleFunc("/views/{viewID}", ser.getView).Methods(http.MethodGet)
	api.HandleFunc("/views/{viewID}", ser.unmountView).Methods(http.MethodDelete)
	api.HandleFunc("/views/{viewID}/reload", ser.reloadView).Methods(http.MethodPost)
	api.HandleFunc("/views/{viewID}/modal", ser.modalCommand).Methods(http.MethodPost)
	if ser.opts.Events != nil {
		api.HandleFunc("/views/{viewID}/events", ser.viewEvents).Methods(http.MethodGet)
	}

	// transactions
	tx := api.NewRoute().Subrouter()
	tx.Use(ser.auth.RequireVerified)
	tx.Use(ser.txLimiter.Middleware(func(r *http.Request) string {
		return auth.AccountFromContext(r.Context())
	}))
	tx.HandleFunc("/proposals/{moduleAddr}/{id:[0-9]+}/votes", ser.postVote).Methods(http.MethodPost)
	tx.HandleFunc("/staking/{tokenAddr}/{stakingAddr}", ser.postStake).Methods(http.MethodPost)
	tx.HandleFunc("/views/{viewID}/votes", ser.postViewVote).Methods(http.MethodPost)
}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

// Handler is the complete HTTP handler of the service.
func (ser *server) Handler() http.Handler {
	router := mux.NewRouter()
	if ser.opts.Metrics != nil {
		router.Use(ser.observe)
	}
	ser.registerHandlers(router)

	return cors.AddCorsPolicy(router, ser.opts.AllowedOrigins)
}

func (ser *server) Run() error {
	ser.httpServer = &http.Server{
		Handler:           ser.Handler(),
		Addr:              ser.addr,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ser.logger.Info("listening on " + ser.addr)
	if err := ser.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (ser *server) Shutdown(ctx context.Context) error {
	if ser.httpServer == nil {
		return nil
	}
	return ser.httpServer.Shutdown(ctx)
}

func (ser *server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		ser.opts.Metrics.ObserveRequest(route, r.Method, rec.status, time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Hijack lets the WebSocket upgrade through.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("the response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

type errorResponse struct {
	Error string `json:"error"`
}

func normalize(param string) string {
	return strings.ToLower(strings.TrimSpace(param))
}

func decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errors.New("failed to decode the request body: " + err.Error())
	}
	return nil
}
