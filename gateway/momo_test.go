package gateway

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMoMo(endpoint string) *MoMo {
	return NewMoMo(MoMoConfig{
		PartnerCode: "MOMOCINE01",
		AccessKey:   "F8BBA842ECF85",
		SecretKey:   "K951B6PE1waDMi640xX08PD3vg6EkVlz",
		Endpoint:    endpoint,
		RedirectURL: "http://localhost:8002/api/v1/payments/momo/return",
		IPNURL:      "http://localhost:8002/api/v1/payments/momo/ipn",
		Timeout:     2 * time.Second,
	}, zap.NewNop())
}

func signedMoMoParams(m *MoMo, resultCode int) map[string]string {
	params := map[string]string{
		"partnerCode":  "MOMOCINE01",
		"orderId":      "BK5-Zx81",
		"requestId":    "5f0c6f0e-0000-4000-8000-000000000001",
		"amount":       "200000",
		"orderInfo":    "Thanh toan booking 5",
		"orderType":    "momo_wallet",
		"transId":      "4088878653",
		"resultCode":   strconv.Itoa(resultCode),
		"message":      "Successful.",
		"payType":      "qr",
		"responseTime": "1717236000000",
		"extraData":    "",
	}
	raw := "accessKey=" + m.Config.AccessKey +
		"&amount=" + params["amount"] +
		"&extraData=" + params["extraData"] +
		"&message=" + params["message"] +
		"&orderId=" + params["orderId"] +
		"&orderInfo=" + params["orderInfo"] +
		"&orderType=" + params["orderType"] +
		"&partnerCode=" + params["partnerCode"] +
		"&payType=" + params["payType"] +
		"&requestId=" + params["requestId"] +
		"&responseTime=" + params["responseTime"] +
		"&resultCode=" + params["resultCode"] +
		"&transId=" + params["transId"]
	params["signature"] = hmacSHA256(m.Config.SecretKey, raw)
	return params
}

func TestMoMo_HandleCallback_StatusMapping(t *testing.T) {
	m := newTestMoMo("http://unused")

	tests := []struct {
		code int
		want string
	}{
		{0, constants.PAYMENT_COMPLETED},
		{1006, constants.PAYMENT_CANCELLED},
		{1003, constants.PAYMENT_CANCELLED},
		{41, constants.PAYMENT_CANCELLED},
		{1001, constants.PAYMENT_FAILED},
		{99, constants.PAYMENT_FAILED},
	}
	for _, tt := range tests {
		res, err := m.HandleCallback(CallbackRequest{Params: signedMoMoParams(m, tt.code)})
		require.NoError(t, err)
		assert.Equal(t, tt.want, res.Status, "resultCode %d", tt.code)
		assert.Equal(t, "BK5-Zx81", res.TransactionID)
		assert.Equal(t, int64(200000), res.Amount)
		assert.Equal(t, "4088878653", res.GatewayTxnNo)
	}
}

func TestMoMo_HandleCallback_SingleCharMutation(t *testing.T) {
	m := newTestMoMo("http://unused")

	for _, field := range momoCallbackFields {
		if field == "accessKey" || field == "extraData" {
			continue
		}
		params := signedMoMoParams(m, 0)
		params[field] = "X" + params[field][1:]

		_, err := m.HandleCallback(CallbackRequest{Params: params})
		assert.ErrorIs(t, err, apperror.InvalidSignature, "mutating %s must break the signature", field)
	}

	params := signedMoMoParams(m, 0)
	params["extraData"] = "e"
	_, err := m.HandleCallback(CallbackRequest{Params: params})
	assert.ErrorIs(t, err, apperror.InvalidSignature)
}

func TestMoMo_HandleCallback_WrongAccessKey(t *testing.T) {
	m := newTestMoMo("http://unused")
	params := signedMoMoParams(m, 0)

	other := newTestMoMo("http://unused")
	other.Config.AccessKey = "ANOTHERKEY"
	_, err := other.HandleCallback(CallbackRequest{Params: params})
	assert.ErrorIs(t, err, apperror.InvalidSignature)
}

func TestMoMo_CreatePaymentURL(t *testing.T) {
	var m *MoMo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req momoCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		resp := momoCreateResponse{OrderID: req.OrderID, RequestID: req.RequestID, Amount: req.Amount}
		if req.Signature != hmacSHA256(m.Config.SecretKey, m.createSignData(req)) || req.RequestType != "captureWallet" {
			resp.ResultCode = 11
			resp.Message = "signature mismatch"
		} else {
			resp.PayURL = "https://test-payment.momo.vn/v2/gateway/pay?t=" + req.OrderID
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()
	m = newTestMoMo(srv.URL)

	payURL, err := m.CreatePaymentURL(context.Background(), PaymentOrder{TransactionID: "BK5-Zx81", Amount: 200000, OrderInfo: "Thanh toan booking 5"})
	require.NoError(t, err)
	assert.Equal(t, "https://test-payment.momo.vn/v2/gateway/pay?t=BK5-Zx81", payURL)
}

func TestMoMo_CreatePaymentURL_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultCode":22,"message":"amount out of range"}`))
	}))
	defer srv.Close()

	m := newTestMoMo(srv.URL)
	_, err := m.CreatePaymentURL(context.Background(), PaymentOrder{TransactionID: "BK1-a", Amount: 1000})
	assert.ErrorContains(t, err, "amount out of range")
}

func TestMoMo_CreatePaymentURL_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(`{"resultCode":0,"payUrl":"late"}`))
	}))
	defer srv.Close()

	m := newTestMoMo(srv.URL)
	m.Config.Timeout = 50 * time.Millisecond
	_, err := m.CreatePaymentURL(context.Background(), PaymentOrder{TransactionID: "BK1-a", Amount: 1000})
	assert.Error(t, err)
}

func TestMoMo_MissingConfig(t *testing.T) {
	m := NewMoMo(MoMoConfig{}, zap.NewNop())
	_, err := m.CreatePaymentURL(context.Background(), PaymentOrder{TransactionID: "BK1-a", Amount: 1000})
	assert.ErrorIs(t, err, apperror.ConfigurationError)

	_, err = m.HandleCallback(CallbackRequest{Params: map[string]string{"signature": "abc"}})
	assert.ErrorIs(t, err, apperror.ConfigurationError)
}
