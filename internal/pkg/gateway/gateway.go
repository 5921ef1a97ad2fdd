/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/hyperledger/fabric-sbt/common/flogging"
	"github.com/hyperledger/fabric-sbt/token/chaincode"
	"github.com/hyperledger/fabric-sbt/token/ledger"
	"github.com/hyperledger/fabric-sbt/token/sandbox"
	"github.com/pkg/errors"
)

const (
	URLBaseV1          = "/v1/"
	URLBaseV1Accounts  = URLBaseV1 + "accounts"
	URLBaseV1Call      = URLBaseV1 + "call"
	URLBaseV1View      = URLBaseV1 + "view"
	URLBaseV1Contracts = URLBaseV1 + "contracts"

	accountIDKey = "accountID"
	tokenIDKey   = "tokenID"

	urlWithAccountIDKey = URLBaseV1Accounts + "/{" + accountIDKey + "}"
	urlDeploy           = urlWithAccountIDKey + "/deploy"
	urlContract         = URLBaseV1Contracts + "/{" + accountIDKey + "}"
	urlContractMetadata = urlContract + "/metadata"
	urlContractTokens   = urlContract + "/tokens"
	urlWithTokenIDKey   = urlContractTokens + "/{" + tokenIDKey + "}"
)

const defaultRequestTimeout = 30 * time.Second

//go:generate counterfeiter -o mocks/host.go -fake-name Host . Host

// Host is the execution host served by the gateway.
type Host interface {
	AccountInfo(id ledger.AccountID) (*sandbox.AccountInfo, error)
	CreateAccount(ctx context.Context, parent ledger.AccountID, name string, initialBalance *ledger.Amount) (*sandbox.AccountInfo, error)
	Deploy(ctx context.Context, account ledger.AccountID, codeID string) (*sandbox.AccountInfo, error)
	Call(ctx context.Context, signer, contract ledger.AccountID, method string, args json.RawMessage, deposit ledger.Amount) (*sandbox.Outcome, error)
	View(ctx context.Context, contract ledger.AccountID, method string, args json.RawMessage) (json.RawMessage, error)
}

type CreateAccountRequest struct {
	ParentID       ledger.AccountID `json:"parent_id,omitempty"`
	Name           string           `json:"name"`
	InitialBalance *ledger.Amount   `json:"initial_balance,omitempty"`
}

type DeployRequest struct {
	CodeID string `json:"code_id"`
}

type CallRequest struct {
	SignerID   ledger.AccountID `json:"signer_id"`
	ContractID ledger.AccountID `json:"contract_id"`
	Method     string           `json:"method"`
	Args       json.RawMessage  `json:"args,omitempty"`
	Deposit    ledger.Amount    `json:"deposit"`
}

type ViewRequest struct {
	ContractID ledger.AccountID `json:"contract_id"`
	Method     string           `json:"method"`
	Args       json.RawMessage  `json:"args,omitempty"`
}

type ErrorResponse struct {
	Error string      `json:"error"`
	Kind  ledger.Kind `json:"kind,omitempty"`
}

type Options struct {
	// RequestTimeout bounds the host calls made for one request.
	RequestTimeout time.Duration
}

// HTTPHandler serves the JSON gateway to a Host.
type HTTPHandler struct {
	logger  *flogging.FabricLogger
	host    Host
	timeout time.Duration
	router  *mux.Router
}

func NewHTTPHandler(host Host, opts Options) *HTTPHandler {
	handler := &HTTPHandler{
		logger:  flogging.MustGetLogger("sbt.gateway"),
		host:    host,
		timeout: opts.RequestTimeout,
		router:  mux.NewRouter(),
	}
	if handler.timeout == 0 {
		handler.timeout = defaultRequestTimeout
	}

	jsonBody := func(h http.HandlerFunc) http.Handler {
		return handlers.ContentTypeHandler(h, "application/json")
	}

	handler.router.Handle(URLBaseV1Accounts, jsonBody(handler.serveCreateAccount)).Methods(http.MethodPost)
	handler.router.HandleFunc(URLBaseV1Accounts, handler.serveNotAllowed)
	handler.router.HandleFunc(urlWithAccountIDKey, handler.serveAccount).Methods(http.MethodGet)
	handler.router.HandleFunc(urlWithAccountIDKey, handler.serveNotAllowed)
	handler.router.Handle(urlDeploy, jsonBody(handler.serveDeploy)).Methods(http.MethodPost)
	handler.router.HandleFunc(urlDeploy, handler.serveNotAllowed)

	handler.router.Handle(URLBaseV1Call, jsonBody(handler.serveCall)).Methods(http.MethodPost)
	handler.router.HandleFunc(URLBaseV1Call, handler.serveNotAllowed)
	handler.router.Handle(URLBaseV1View, jsonBody(handler.serveView)).Methods(http.MethodPost)
	handler.router.HandleFunc(URLBaseV1View, handler.serveNotAllowed)

	handler.router.HandleFunc(urlContractMetadata, handler.serveMetadata).Methods(http.MethodGet)
	handler.router.HandleFunc(urlContractMetadata, handler.serveNotAllowed)
	handler.router.HandleFunc(urlContractTokens, handler.serveTokensForOwner).Methods(http.MethodGet).Queries("owner_id", "{owner_id}")
	handler.router.HandleFunc(urlContractTokens, handler.serveMissingOwner).Methods(http.MethodGet)
	handler.router.HandleFunc(urlContractTokens, handler.serveNotAllowed)
	handler.router.HandleFunc(urlWithTokenIDKey, handler.serveToken).Methods(http.MethodGet)
	handler.router.HandleFunc(urlWithTokenIDKey, handler.serveNotAllowed)

	return handler
}

func (h *HTTPHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	if _, err := negotiateContentType(req); err != nil {
		h.sendResponseJsonError(resp, http.StatusNotAcceptable, err)
		return
	}
	h.router.ServeHTTP(resp, req)
}

func (h *HTTPHandler) serveCreateAccount(resp http.ResponseWriter, req *http.Request) {
	var cr CreateAccountRequest
	if err := decodeRequest(req, &cr); err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := h.context(req)
	defer cancel()
	info, err := h.host.CreateAccount(ctx, cr.ParentID, cr.Name, cr.InitialBalance)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	h.sendResponse(resp, http.StatusCreated, info)
}

func (h *HTTPHandler) serveAccount(resp http.ResponseWriter, req *http.Request) {
	id, err := accountID(req)
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	info, err := h.host.AccountInfo(id)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	h.sendResponse(resp, http.StatusOK, info)
}

func (h *HTTPHandler) serveDeploy(resp http.ResponseWriter, req *http.Request) {
	id, err := accountID(req)
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	var dr DeployRequest
	if err := decodeRequest(req, &dr); err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	if dr.CodeID == "" {
		dr.CodeID = sandbox.DefaultCodeID
	}

	ctx, cancel := h.context(req)
	defer cancel()
	info, err := h.host.Deploy(ctx, id, dr.CodeID)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	h.sendResponse(resp, http.StatusOK, info)
}

// serveCall executes a transaction. Contract failures are part of the
// returned outcome; only rejected transactions produce an error status.
func (h *HTTPHandler) serveCall(resp http.ResponseWriter, req *http.Request) {
	var cr CallRequest
	if err := decodeRequest(req, &cr); err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := h.context(req)
	defer cancel()
	outcome, err := h.host.Call(ctx, cr.SignerID, cr.ContractID, cr.Method, cr.Args, cr.Deposit)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	if outcome.Failed {
		h.logger.Debugf("transaction %s on '%s' failed: %s", outcome.TxID, cr.ContractID, outcome.Failure)
	}
	h.sendResponse(resp, http.StatusOK, outcome)
}

func (h *HTTPHandler) serveView(resp http.ResponseWriter, req *http.Request) {
	var vr ViewRequest
	if err := decodeRequest(req, &vr); err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	h.view(resp, req, vr.ContractID, vr.Method, vr.Args)
}

func (h *HTTPHandler) serveMetadata(resp http.ResponseWriter, req *http.Request) {
	id, err := accountID(req)
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	h.view(resp, req, id, chaincode.FuncMetadata, nil)
}

func (h *HTTPHandler) serveTokensForOwner(resp http.ResponseWriter, req *http.Request) {
	id, err := accountID(req)
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	args, err := json.Marshal(chaincode.OwnerArgs{AccountID: ledger.AccountID(req.URL.Query().Get("owner_id"))})
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusInternalServerError, err)
		return
	}
	h.view(resp, req, id, chaincode.FuncTokensForOwner, args)
}

func (h *HTTPHandler) serveMissingOwner(resp http.ResponseWriter, req *http.Request) {
	h.sendResponseJsonError(resp, http.StatusBadRequest, errors.New("query parameter owner_id is required"))
}

// serveToken looks a token up. An absent token is reported as not found.
func (h *HTTPHandler) serveToken(resp http.ResponseWriter, req *http.Request) {
	id, err := accountID(req)
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusBadRequest, err)
		return
	}
	tokenID := mux.Vars(req)[tokenIDKey]
	args, err := json.Marshal(chaincode.TokenArgs{TokenID: tokenID})
	if err != nil {
		h.sendResponseJsonError(resp, http.StatusInternalServerError, err)
		return
	}

	ctx, cancel := h.context(req)
	defer cancel()
	value, err := h.host.View(ctx, id, chaincode.FuncToken, args)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	var rec *ledger.TokenRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		h.sendResponseJsonError(resp, http.StatusBadGateway, errors.Wrap(err, "contract returned a malformed token"))
		return
	}
	if rec == nil {
		h.sendError(resp, ledger.Errorf(ledger.KindTokenNotFound, "token '%s' does not exist", tokenID))
		return
	}
	h.sendResponse(resp, http.StatusOK, rec)
}

func (h *HTTPHandler) view(resp http.ResponseWriter, req *http.Request, contract ledger.AccountID, method string, args json.RawMessage) {
	ctx, cancel := h.context(req)
	defer cancel()
	value, err := h.host.View(ctx, contract, method, args)
	if err != nil {
		h.sendError(resp, err)
		return
	}
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(http.StatusOK)
	if len(value) == 0 {
		value = json.RawMessage("null")
	}
	resp.Write(value)
}

func (h *HTTPHandler) serveNotAllowed(resp http.ResponseWriter, req *http.Request) {
	err := errors.Errorf("invalid request method: %s", req.Method)
	h.sendResponseJsonError(resp, http.StatusMethodNotAllowed, err)
}

func (h *HTTPHandler) context(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(req.Context(), h.timeout)
}

func accountID(req *http.Request) (ledger.AccountID, error) {
	id, err := ledger.ParseAccountID(mux.Vars(req)[accountIDKey])
	if err != nil {
		return "", errors.WithMessage(err, "invalid account id")
	}
	return id, nil
}

func decodeRequest(req *http.Request, v interface{}) error {
	defer req.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(req.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode request body")
	}
	return nil
}

func negotiateContentType(req *http.Request) (string, error) {
	acceptReq := req.Header.Get("Accept")
	if len(acceptReq) == 0 {
		return "application/json", nil
	}

	options := strings.Split(acceptReq, ",")
	for _, opt := range options {
		if strings.Contains(opt, "application/json") ||
			strings.Contains(opt, "application/*") ||
			strings.Contains(opt, "*/*") {
			return "application/json", nil
		}
	}

	return "", errors.New("response Content-Type is application/json only")
}

func (h *HTTPHandler) sendError(resp http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		h.logger.Warnf("request failed: %s", err)
	}
	h.sendResponseJsonError(resp, code, err)
}

func (h *HTTPHandler) sendResponse(resp http.ResponseWriter, code int, payload interface{}) {
	encoder := json.NewEncoder(resp)
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(code)
	if err := encoder.Encode(payload); err != nil {
		h.logger.Errorf("failed to encode payload, err: %s", err)
	}
}

func (h *HTTPHandler) sendResponseJsonError(resp http.ResponseWriter, code int, err error) {
	h.sendResponse(resp, code, &ErrorResponse{Error: err.Error(), Kind: kindOf(err)})
}
