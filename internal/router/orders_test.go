package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukapos/go-api/pkg/global"
)

func postPayment(t *testing.T, orderID, body string) (*httptest.ResponseRecorder, global.APIResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.POST("/orders/:orderId/payments", AddOrderPayment)

	req := httptest.NewRequest(http.MethodPost, "/orders/"+orderID+"/payments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var resp global.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

// Every method the payment taxonomy knows must pass installment validation;
// the invalid order id stops the request before it reaches the database.
func TestAddOrderPayment_AcceptsAllPaymentMethods(t *testing.T) {
	for _, method := range []string{"cash", "mpesa", "card", "bank_transfer", "credit"} {
		t.Run(method, func(t *testing.T) {
			rec, resp := postPayment(t, "not-a-hex", `{"amount": 100, "method": "`+method+`"}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, "invalid_id", resp.Errors[0].Code, "method should pass validation, id should fail")
		})
	}
}

func TestAddOrderPayment_RejectsUnknownMethod(t *testing.T) {
	rec, resp := postPayment(t, "not-a-hex", `{"amount": 100, "method": "mobile_money"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "validation_error", resp.Errors[0].Code)
}

func TestAddOrderPayment_RejectsNonPositiveAmount(t *testing.T) {
	for name, body := range map[string]string{
		"zero":     `{"amount": 0, "method": "cash"}`,
		"negative": `{"amount": -50, "method": "mpesa"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, resp := postPayment(t, "not-a-hex", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			require.Len(t, resp.Errors, 1)
			assert.Equal(t, "validation_error", resp.Errors[0].Code)
		})
	}
}
