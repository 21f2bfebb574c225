package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/association-ledger/internal/domain/fund"
	"github.com/association-ledger/internal/domain/ledger"
)

func TestFundHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockFunds := new(MockFundService)
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
		router.POST("/funds", h.Create)

		created, err := fund.NewFund("Building Fund", fund.KindBuilding)
		require.NoError(t, err)

		mockFunds.On("Create", mock.Anything, "Building Fund", fund.KindBuilding, testActorID).Return(created, nil)

		body, _ := json.Marshal(CreateFundRequest{Name: "Building Fund", Kind: "BUILDING"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodPost, "/funds", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "ACTIVE", data["status"])
		assert.Equal(t, "BUILDING", data["kind"])
		mockFunds.AssertExpectations(t)
	})

	t.Run("UnknownKindRejectedByBinding", func(t *testing.T) {
		mockFunds := new(MockFundService)
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
		router.POST("/funds", h.Create)

		body, _ := json.Marshal(map[string]string{"name": "Slush", "kind": "SLUSH"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodPost, "/funds", bytes.NewBuffer(body)))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockFunds.AssertNotCalled(t, "Create")
	})

	t.Run("MissingActorHeaders", func(t *testing.T) {
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), new(MockFundService), new(MockBalanceService))
		router.POST("/funds", h.Create)

		body, _ := json.Marshal(CreateFundRequest{Name: "Building Fund", Kind: "BUILDING"})
		req, _ := http.NewRequest(http.MethodPost, "/funds", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestFundHandler_Deactivate(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockFunds := new(MockFundService)
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
		router.POST("/funds/:id/deactivate", h.Deactivate)

		f, err := fund.NewFund("Festival Fund", fund.KindFestival)
		require.NoError(t, err)
		f.Deactivate()

		mockFunds.On("Deactivate", mock.Anything, f.ID, testActorID).Return(f, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodPost, "/funds/"+f.ID.String()+"/deactivate", nil))

		assert.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "INACTIVE", data["status"])
		mockFunds.AssertExpectations(t)
	})

	t.Run("AlreadyInactive", func(t *testing.T) {
		mockFunds := new(MockFundService)
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
		router.POST("/funds/:id/deactivate", h.Deactivate)

		id := uuid.New()
		mockFunds.On("Deactivate", mock.Anything, id, testActorID).Return(nil, fund.ErrFundInactive{FundID: id})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodPost, "/funds/"+id.String()+"/deactivate", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "FUND_INACTIVE", resp.Error.Code)
	})
}

func TestFundHandler_GetByID(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		mockFunds := new(MockFundService)
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
		router.GET("/funds/:id", h.GetByID)

		id := uuid.New()
		mockFunds.On("GetByID", mock.Anything, id).Return(nil, fund.ErrFundNotFound{FundID: id})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/funds/"+id.String(), nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		router := setupTestRouter()
		h := NewFundHandler(newTestLogger(), new(MockFundService), new(MockBalanceService))
		router.GET("/funds/:id", h.GetByID)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/funds/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFundHandler_GetBalance(t *testing.T) {
	mockBalances := new(MockBalanceService)
	router := setupTestRouter()
	h := NewFundHandler(newTestLogger(), new(MockFundService), mockBalances)
	router.GET("/funds/:id/balance", h.GetBalance)

	fundID := uuid.New()
	mockBalances.On("Balance", mock.Anything, fundID).Return(decimal.RequireFromString("123.45"), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/funds/"+fundID.String()+"/balance", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "123.45", data["balance"])
	assert.Equal(t, fundID.String(), data["fund_id"])
	mockBalances.AssertExpectations(t)
}

func TestFundHandler_GetStatement(t *testing.T) {
	mockBalances := new(MockBalanceService)
	router := setupTestRouter()
	h := NewFundHandler(newTestLogger(), new(MockFundService), mockBalances)
	router.GET("/funds/:id/statement", h.GetStatement)

	fundID := uuid.New()
	entry, err := ledger.NewEntry(fundID, ledger.EntryCredit, ledger.SourceContribution, uuid.New(), decimal.NewFromInt(500), decimal.Zero, testActorID)
	require.NoError(t, err)

	mockBalances.On("Statement", mock.Anything, fundID, 10, 0).Return([]*ledger.Entry{entry}, int64(1), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/funds/"+fundID.String()+"/statement", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.TotalItems)
	mockBalances.AssertExpectations(t)
}

func TestFundHandler_List(t *testing.T) {
	mockFunds := new(MockFundService)
	router := setupTestRouter()
	h := NewFundHandler(newTestLogger(), mockFunds, new(MockBalanceService))
	router.GET("/funds", h.List)

	f, err := fund.NewFund("General Fund", fund.KindGeneral)
	require.NoError(t, err)

	mockFunds.On("List", mock.Anything, 5, 5).Return([]*fund.Fund{f}, int64(6), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, newAuthedRequest(http.MethodGet, "/funds?page=2&per_page=5", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 6, resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	mockFunds.AssertExpectations(t)
}
