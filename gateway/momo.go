package gateway

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const momoRequestType = "captureWallet"

// Fields MoMo signs on callbacks, alphabetical. Only the ones present are used.
var momoCallbackFields = []string{
	"accessKey", "amount", "extraData", "message", "orderId", "orderInfo", "orderType",
	"partnerCode", "payType", "requestId", "responseTime", "resultCode", "transId",
}

// Result codes MoMo uses for user cancellation, duplicates and rejected requests.
var momoCancelledCodes = map[int]bool{
	1003: true,
	1005: true,
	1006: true,
	1017: true,
	40:   true,
	41:   true,
}

type MoMoConfig struct {
	PartnerCode string
	AccessKey   string
	SecretKey   string
	Endpoint    string
	RedirectURL string
	IPNURL      string
	Timeout     time.Duration
}

type MoMo struct {
	Config MoMoConfig
	log    *zap.Logger
}

func NewMoMo(cfg MoMoConfig, log *zap.Logger) *MoMo {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &MoMo{Config: cfg, log: log}
}

var _ PaymentGateway = (*MoMo)(nil)

func (m *MoMo) Name() string { return constants.METHOD_MOMO }

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	PartnerCode string `json:"partnerCode"`
	OrderID     string `json:"orderId"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	ResultCode  int    `json:"resultCode"`
	Message     string `json:"message"`
	PayURL      string `json:"payUrl"`
}

func (m *MoMo) checkConfig() error {
	missing := make([]string, 0)
	if m.Config.PartnerCode == "" {
		missing = append(missing, "MOMO_PARTNER_CODE")
	}
	if m.Config.AccessKey == "" {
		missing = append(missing, "MOMO_ACCESS_KEY")
	}
	if m.Config.SecretKey == "" {
		missing = append(missing, "MOMO_SECRET_KEY")
	}
	if m.Config.Endpoint == "" {
		missing = append(missing, "MOMO_ENDPOINT")
	}
	if m.Config.RedirectURL == "" || m.Config.IPNURL == "" {
		missing = append(missing, "APP_URL")
	}
	if len(missing) > 0 {
		return apperror.New(apperror.KindConfiguration, "momo is not configured: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// CreatePaymentURL posts a signed create request to MoMo and returns its payUrl.
func (m *MoMo) CreatePaymentURL(ctx context.Context, order PaymentOrder) (string, error) {
	if err := m.checkConfig(); err != nil {
		return "", err
	}
	if order.Amount <= 0 {
		return "", apperror.New(apperror.KindInvalidInput, "payment amount must be positive")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	req := momoCreateRequest{
		PartnerCode: m.Config.PartnerCode,
		RequestID:   uuid.NewString(),
		Amount:      order.Amount,
		OrderID:     order.TransactionID,
		OrderInfo:   order.OrderInfo,
		RedirectURL: m.Config.RedirectURL,
		IpnURL:      m.Config.IPNURL,
		RequestType: momoRequestType,
		ExtraData:   "",
		Lang:        "vi",
	}
	req.Signature = hmacSHA256(m.Config.SecretKey, m.createSignData(req))

	timeout := m.Config.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 && left < timeout {
			timeout = left
		}
	}

	var resp momoCreateResponse
	code, body, errs := fiber.Post(m.Config.Endpoint).JSON(req).Timeout(timeout).Struct(&resp)
	if len(errs) > 0 {
		m.log.Error("momo create request failed", zap.String("orderId", order.TransactionID), zap.Errors("errors", errs))
		return "", fmt.Errorf("momo create request: %w", errors.Join(errs...))
	}
	if code != fiber.StatusOK || resp.ResultCode != 0 || resp.PayURL == "" {
		m.log.Error("momo rejected create request",
			zap.String("orderId", order.TransactionID),
			zap.Int("status", code),
			zap.Int("resultCode", resp.ResultCode),
			zap.ByteString("body", body),
		)
		return "", fmt.Errorf("momo create request: result %d: %s", resp.ResultCode, resp.Message)
	}
	return resp.PayURL, nil
}

func (m *MoMo) createSignData(req momoCreateRequest) string {
	return "accessKey=" + m.Config.AccessKey +
		"&amount=" + strconv.FormatInt(req.Amount, 10) +
		"&extraData=" + req.ExtraData +
		"&ipnUrl=" + req.IpnURL +
		"&orderId=" + req.OrderID +
		"&orderInfo=" + req.OrderInfo +
		"&partnerCode=" + req.PartnerCode +
		"&redirectUrl=" + req.RedirectURL +
		"&requestId=" + req.RequestID +
		"&requestType=" + req.RequestType
}

// HandleCallback verifies a redirect or IPN payload. MoMo signs decoded values,
// so the raw query is not needed here.
func (m *MoMo) HandleCallback(req CallbackRequest) (*CallbackResult, error) {
	if m.Config.SecretKey == "" || m.Config.AccessKey == "" {
		return nil, apperror.New(apperror.KindConfiguration, "momo is not configured: missing MOMO_SECRET_KEY or MOMO_ACCESS_KEY")
	}
	params := req.Params
	received := params["signature"]
	if received == "" {
		return nil, apperror.New(apperror.KindInvalidSignature, "missing momo signature")
	}

	signData := m.callbackSignData(params)
	computed := hmacSHA256(m.Config.SecretKey, signData)
	if !signatureEqual(received, computed) {
		m.log.Warn("momo signature mismatch",
			zap.String("received", received),
			zap.String("computed", computed),
			zap.Any("params", params),
		)
		return nil, apperror.New(apperror.KindInvalidSignature, "invalid momo signature")
	}

	orderID := params["orderId"]
	if orderID == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "missing orderId")
	}
	resultCode, err := strconv.Atoi(params["resultCode"])
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, err, "invalid resultCode")
	}
	amount, err := strconv.ParseInt(params["amount"], 10, 64)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, err, "invalid amount")
	}

	return &CallbackResult{
		TransactionID: orderID,
		Status:        momoStatus(resultCode),
		Amount:        amount,
		GatewayTxnNo:  params["transId"],
		ResponseCode:  strconv.Itoa(resultCode),
		Message:       params["message"],
	}, nil
}

func (m *MoMo) callbackSignData(params map[string]string) string {
	parts := make([]string, 0, len(momoCallbackFields))
	for _, field := range momoCallbackFields {
		if field == "accessKey" {
			parts = append(parts, "accessKey="+m.Config.AccessKey)
			continue
		}
		if v, ok := params[field]; ok {
			parts = append(parts, field+"="+v)
		}
	}
	return strings.Join(parts, "&")
}

func momoStatus(resultCode int) string {
	switch {
	case resultCode == 0:
		return constants.PAYMENT_COMPLETED
	case momoCancelledCodes[resultCode]:
		return constants.PAYMENT_CANCELLED
	default:
		return constants.PAYMENT_FAILED
	}
}
