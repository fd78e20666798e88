package wallet

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Validation paths never touch the repository, so a nil repo is enough here.
// Repository behavior is covered in repository_test.go.
func TestHandler_WithdrawValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, nil)
	router := gin.New()
	router.POST("/wallet/withdraw",
		func(c *gin.Context) { c.Set("user_id", 1); c.Next() },
		h.Withdraw,
	)

	t.Run("Missing body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/wallet/withdraw", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Below minimum", func(t *testing.T) {
		body := bytes.NewBufferString(`{"amount_cents": 500, "pix_key": "user@example.com"}`)
		req := httptest.NewRequest("POST", "/wallet/withdraw", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "minimum withdrawal")
	})
}
