package clearance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postCalc(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := &Handler{}
	req := httptest.NewRequest(http.MethodPost, "/api/tools/clearance/calc", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Calc(rec, req)
	return rec
}

func TestHandlerCalc(t *testing.T) {
	rec := postCalc(t, `{"category":"Tube","outer_versine":37,"outer_cant":41,"inner_versine":40,"inner_cant":38}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1692, res.FinalClearanceMM)
	assert.Equal(t, 338, res.OuterRadius)
	assert.Equal(t, 313, res.InnerRadius)
}

func TestHandlerCalcErrors(t *testing.T) {
	t.Run("bad json", func(t *testing.T) {
		rec := postCalc(t, `{"category":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		rec := postCalc(t, `{"category":"Tube","outer_versine":0,"outer_cant":1,"inner_versine":40,"inner_cant":38}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "All Versine values must be positive, and Cant values must be non-negative.", body["error"])
	})

	t.Run("unknown category", func(t *testing.T) {
		rec := postCalc(t, `{"category":"Tram","outer_versine":37,"inner_versine":40}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "unknown track category")
	})

	t.Run("oversized body", func(t *testing.T) {
		body := `{"category":"Tube","location":"` + strings.Repeat("a", MaxBodySize) + `","outer_versine":37,"inner_versine":40}`
		rec := postCalc(t, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandlerCategories(t *testing.T) {
	h := &Handler{}
	rec := httptest.NewRecorder()
	h.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/tools/clearance/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var cats []CategoryInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, CategoryTube, cats[0].Category)
	assert.Equal(t, CategorySubSurfaceOpen, cats[1].Category)
}
