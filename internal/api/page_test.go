package api

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHTTPHandler_Index(t *testing.T) {
	s := newSeededMemoryStore(t, true)
	server := setupTestChiServer(t, newTestHTTPHandler(s, s))

	res, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", res.Header.Get("Content-Type"))

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "<title>Medicine Inventory</title>")
	assert.Contains(t, page, `"name":"painkillers"`)
	assert.Contains(t, page, `"stats":{"total":2,"expired":1,"low_stock":1}`)
	assert.Contains(t, page, "Low stock (&le; 10)")
}

func TestHTTPHandler_Index_StoreFailure(t *testing.T) {
	mockCatStore := new(MockCategoryStorer)
	mockCatStore.On("ListCategories", mock.Anything).Return(nil, errors.New("boom")).Once()
	server := setupTestChiServer(t, newTestHTTPHandler(mockCatStore, new(MockMedicineStorer)))

	res, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	mockCatStore.AssertExpectations(t)
}
