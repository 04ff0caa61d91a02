package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albireox/Totoro/internal/auth"
	"github.com/albireox/Totoro/internal/cartpool"
	"github.com/albireox/Totoro/internal/models"
	"github.com/albireox/Totoro/internal/plugger"
	"github.com/albireox/Totoro/internal/store"
)

func testServer(t *testing.T, authMW func(http.Handler) http.Handler) *Server {
	t.Helper()

	mem := store.NewMemoryStore()
	plate := &models.Plate{
		PlateID:          100,
		Priority:         5,
		SurveyMode:       "MaNGA dither",
		Status:           "Accepted",
		Location:         "APO",
		Completion:       0.5,
		Plugged:          true,
		ActiveCartNumber: 1,
		Pluggings: []models.Plugging{
			{ID: 1, PlateID: 100, CartNumber: 1, FScanMJD: 57000, Active: true},
		},
	}
	mem.AddPlate(plate)

	registry := cartpool.New([]int{1, 2}, []int{8}, nil)
	p := plugger.New(mem, registry, plugger.Params{
		NoPlugPriority:    2,
		ForcePlugPriority: 10,
	})
	return New(p, nil, authMW)
}

func postRun(t *testing.T, router http.Handler, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/plugger/run", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRun(t *testing.T) {
	router := testServer(t, nil).Router()

	rec := postRun(t, router, map[string]float64{
		"startDate": 2457500.2,
		"endDate":   2457500.7,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Carts     map[string]int `json:"carts"`
		CartOrder []int          `json:"cart_order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, map[string]int{"1": 100}, result.Carts)
	assert.NotEmpty(t, result.CartOrder)
}

func TestHandleRunBadDates(t *testing.T) {
	router := testServer(t, nil).Router()

	rec := postRun(t, router, map[string]float64{"startDate": 2457500.2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePlugged(t *testing.T) {
	router := testServer(t, nil).Router()

	req := httptest.NewRequest(http.MethodGet, "/plugger/plugged", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Carts    map[string]int `json:"carts"`
		Warnings []struct {
			Kind int `json:"kind"`
		} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, map[string]int{"1": 100}, result.Carts)
	assert.NotEmpty(t, result.Warnings)
}

func TestRunRequiresAuth(t *testing.T) {
	authMW := auth.NewMiddleware([]byte("secret"), false)
	router := testServer(t, authMW).Router()

	rec := postRun(t, router, map[string]float64{
		"startDate": 2457500.2,
		"endDate":   2457500.7,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open.
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	healthRec := httptest.NewRecorder()
	router.ServeHTTP(healthRec, req)
	assert.Equal(t, http.StatusOK, healthRec.Code)
}
