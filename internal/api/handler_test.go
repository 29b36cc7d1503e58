package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/abdallah244/store-backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"order not found", models.ErrOrderNotFound, http.StatusNotFound},
		{"account not found", models.ErrAccountNotFound, http.StatusNotFound},
		{"forbidden", models.ErrForbidden, http.StatusForbidden},
		{"profile incomplete", models.ErrProfileIncomplete, http.StatusBadRequest},
		{"empty cart", models.ErrEmptyCart, http.StatusBadRequest},
		{"not pending", models.ErrNotPending, http.StatusBadRequest},
		{"invalid transition", fmt.Errorf("%w: approved -> pending", models.ErrInvalidTransition), http.StatusBadRequest},
		{"validation", fmt.Errorf("%w: bad fee", models.ErrValidation), http.StatusBadRequest},
		{"insufficient stock", &models.InsufficientStockError{Shortfalls: []models.StockShortfall{
			{ProductName: "T-Shirt", Required: 3, Available: 2},
		}}, http.StatusBadRequest},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, errors.New("pq: connection refused on db host 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func TestRespondErrorStockDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &models.InsufficientStockError{Shortfalls: []models.StockShortfall{
		{ProductID: "p-1", ProductName: "T-Shirt", Required: 3, Available: 2},
	}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "stock_details")
	assert.Contains(t, w.Body.String(), "T-Shirt")
}

func TestIdentityMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(identityMiddleware())
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, actorID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(identityHeader, "user-42")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", w.Body.String())
}
