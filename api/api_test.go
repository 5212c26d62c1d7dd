package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/blnkfinance/teller"
	"github.com/blnkfinance/teller/config"
	"github.com/blnkfinance/teller/database"
	"github.com/blnkfinance/teller/database/mocks"
	"github.com/blnkfinance/teller/model"
)

type TestRequest struct {
	Payload  io.Reader
	Response interface{}
	Method   string
	Route    string
	Header   map[string]string
	Router   *gin.Engine
}

func SetUpTestRequest(s TestRequest) (*httptest.ResponseRecorder, error) {
	req := httptest.NewRequest(s.Method, s.Route, s.Payload)
	for key, value := range s.Header {
		req.Header.Set(key, value)
	}
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	s.Router.ServeHTTP(resp, req)

	if s.Response != nil {
		if err := json.NewDecoder(resp.Body).Decode(s.Response); err != nil {
			return nil, err
		}
	}
	return resp, nil
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func setupRouter(t *testing.T, ds database.IDataSource) (*gin.Engine, *teller.Teller) {
	t.Helper()
	config.MockConfig(&config.Configuration{
		DataSource: config.DataSourceConfig{Dns: "memory://"},
		Currency:   config.CurrencyConfig{Symbol: "₹"},
	})
	tl, err := teller.NewTeller(context.Background(), ds)
	require.NoError(t, err)
	return NewAPI(tl).Router(), tl
}

func call(t *testing.T, router *gin.Engine, method, route string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		body = jsonBody(t, payload)
	}
	var response map[string]interface{}
	resp, err := SetUpTestRequest(TestRequest{
		Payload:  body,
		Response: &response,
		Method:   method,
		Route:    route,
		Router:   router,
	})
	require.NoError(t, err)
	return resp.Code, response
}

func TestHealth(t *testing.T) {
	router, _ := setupRouter(t, database.NewMemoryStore())
	var response string
	resp, err := SetUpTestRequest(TestRequest{Method: http.MethodGet, Route: "/", Router: router, Response: &response})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "server running...", response)
}

func TestCreateAccount(t *testing.T) {
	router, tl := setupRouter(t, database.NewMemoryStore())
	number := gofakeit.Numerify("######")

	tests := []struct {
		name         string
		payload      interface{}
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "Valid account",
			payload:      map[string]string{"account_number": number, "pin": "1234"},
			expectedCode: http.StatusCreated,
			expectedMsg:  "Account created successfully! You can now log in.",
		},
		{
			name:         "Existing account",
			payload:      map[string]string{"account_number": number, "pin": "4321"},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Invalid or existing account number!",
		},
		{
			name:         "Empty account number",
			payload:      map[string]string{"account_number": "", "pin": "4321"},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Invalid or existing account number!",
		},
		{
			name:         "Bad pin",
			payload:      map[string]string{"account_number": number + "1", "pin": "12a"},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "PIN must be a 4-digit number!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, response := call(t, router, http.MethodPost, "/accounts", tt.payload)
			assert.Equal(t, tt.expectedCode, code)
			if code == http.StatusCreated {
				assert.Equal(t, tt.expectedMsg, response["message"])
			} else {
				assert.Equal(t, tt.expectedMsg, response["error"])
			}
		})
	}

	assert.Equal(t, 1, tl.AccountCount())
	_, ok := tl.Session()
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	router, _ := setupRouter(t, database.NewMemoryStoreWith(model.Ledger{"1001": model.NewAccount("1234")}))

	code, response := call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "0000"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid Account Number or PIN", response["error"])
	assert.Equal(t, "AUTHENTICATION_FAILED", response["code"])

	code, _ = call(t, router, http.MethodPost, "/sessions", map[string]string{"pin": "0000"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, router, http.MethodGet, "/sessions", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, response = call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "1234"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1001", response["account_number"])
	assert.Contains(t, response["session_id"], "ses_")

	code, response = call(t, router, http.MethodGet, "/sessions", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "1001", response["account_number"])

	code, _ = call(t, router, http.MethodDelete, "/sessions", nil)
	assert.Equal(t, http.StatusOK, code)

	code, response = call(t, router, http.MethodGet, "/balance", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "NO_SESSION", response["code"])
}

func TestEndToEnd(t *testing.T) {
	router, _ := setupRouter(t, database.NewMemoryStore())

	code, _ := call(t, router, http.MethodPost, "/accounts", map[string]string{"account_number": "1001", "pin": "1234"})
	require.Equal(t, http.StatusCreated, code)
	code, _ = call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "1234"})
	require.Equal(t, http.StatusOK, code)

	code, response := call(t, router, http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{}, response["transactions"])
	assert.Equal(t, "No transactions yet.", response["message"])

	code, response = call(t, router, http.MethodPost, "/deposits", map[string]interface{}{"amount": 500})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(500), response["balance"])
	assert.Equal(t, "₹500 deposited successfully!", response["message"])

	code, response = call(t, router, http.MethodPost, "/withdrawals", map[string]interface{}{"amount": "200"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(300), response["balance"])
	assert.Equal(t, "₹200 withdrawn successfully!", response["message"])

	code, response = call(t, router, http.MethodPost, "/withdrawals", map[string]interface{}{"amount": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Insufficient balance!", response["error"])

	code, response = call(t, router, http.MethodGet, "/balance", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(300), response["balance"])
	assert.Equal(t, "Your current balance is ₹300", response["display"])

	code, response = call(t, router, http.MethodGet, "/transactions", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"Deposited 500", "Withdrew 200"}, response["transactions"])
}

func TestInvalidAmounts(t *testing.T) {
	router, tl := setupRouter(t, database.NewMemoryStoreWith(model.Ledger{
		"1001": {Pin: "1234", Balance: 50, Transactions: []string{"Deposited 50"}},
	}))
	code, _ := call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "1234"})
	require.Equal(t, http.StatusOK, code)

	for _, amount := range []interface{}{0, -5, 2.5, "0.1", "1e1000000000", "1e-1000000000", "1e19"} {
		for _, route := range []string{"/deposits", "/withdrawals"} {
			code, response := call(t, router, http.MethodPost, route, map[string]interface{}{"amount": amount})
			assert.Equal(t, http.StatusBadRequest, code, fmt.Sprintf("%s %v", route, amount))
			assert.Equal(t, "Invalid amount!", response["error"])
		}
	}

	code, _ = call(t, router, http.MethodPost, "/deposits", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, code)

	balance, err := tl.CurrentBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestMoveFundsChecksSessionFirst(t *testing.T) {
	router, _ := setupRouter(t, database.NewMemoryStore())

	for _, body := range []interface{}{
		map[string]interface{}{"amount": "1e1000000000"},
		map[string]interface{}{"amount": -5},
		map[string]interface{}{},
	} {
		for _, route := range []string{"/deposits", "/withdrawals"} {
			code, response := call(t, router, http.MethodPost, route, body)
			assert.Equal(t, http.StatusUnauthorized, code, fmt.Sprintf("%s %v", route, body))
			assert.Equal(t, "NO_SESSION", response["code"])
		}
	}
}

func TestSaveFailure(t *testing.T) {
	ds := &mocks.MockDataSource{}
	ds.On("Initialize", mock.Anything).Return(nil)
	ds.On("Load", mock.Anything).Return(model.Ledger{"1001": model.NewAccount("1234")}, nil)
	ds.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only file system"))

	router, tl := setupRouter(t, ds)
	code, _ := call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "1234"})
	require.Equal(t, http.StatusOK, code)

	code, response := call(t, router, http.MethodPost, "/deposits", map[string]interface{}{"amount": 10})
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "Changes may not have been saved", response["error"])

	balance, err := tl.CurrentBalance()
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func findSpan(spans []sdktrace.ReadOnlySpan, match func(sdktrace.ReadOnlySpan) bool) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if match(s) {
			return s
		}
	}
	return nil
}

func TestRequestTracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))

	// deposit runs one logged in deposit and returns the spans it ended.
	deposit := func(telemetry bool) []sdktrace.ReadOnlySpan {
		before := len(recorder.Ended())
		config.MockConfig(&config.Configuration{
			ProjectName: "teller-test",
			Currency:    config.CurrencyConfig{Symbol: "₹"},
			Telemetry:   config.TelemetryConfig{Enabled: telemetry},
		})
		tl, err := teller.NewTeller(context.Background(), database.NewMemoryStoreWith(model.Ledger{"1001": model.NewAccount("1234")}))
		require.NoError(t, err)
		router := NewAPI(tl).Router()

		code, _ := call(t, router, http.MethodPost, "/sessions", map[string]string{"account_number": "1001", "pin": "1234"})
		require.Equal(t, http.StatusOK, code)
		code, _ = call(t, router, http.MethodPost, "/deposits", map[string]interface{}{"amount": 25})
		require.Equal(t, http.StatusOK, code)
		return recorder.Ended()[before:]
	}
	isDeposit := func(s sdktrace.ReadOnlySpan) bool { return s.Name() == "Depositing" }
	isServer := func(s sdktrace.ReadOnlySpan) bool { return s.SpanKind() == trace.SpanKindServer }

	spans := deposit(false)
	untraced := findSpan(spans, isDeposit)
	require.NotNil(t, untraced)
	assert.False(t, untraced.Parent().IsValid())
	assert.Nil(t, findSpan(spans, isServer))

	spans = deposit(true)
	traced := findSpan(spans, isDeposit)
	require.NotNil(t, traced)
	require.True(t, traced.Parent().IsValid())
	server := findSpan(spans, func(s sdktrace.ReadOnlySpan) bool {
		return isServer(s) && s.SpanContext().SpanID() == traced.Parent().SpanID()
	})
	require.NotNil(t, server)
	assert.Equal(t, traced.SpanContext().TraceID(), server.SpanContext().TraceID())
}
