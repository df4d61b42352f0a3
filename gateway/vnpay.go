package gateway

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	vnpVersion    = "2.1.0"
	vnpDateLayout = "20060102150405"
	vnpExpireIn   = 15 * time.Minute
	vnpSuccess    = "00"
)

type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
	ReturnURL  string
	Location   *time.Location
}

type VNPay struct {
	Config VNPayConfig
	log    *zap.Logger
	now    func() time.Time
}

type VNPayOption func(*VNPay)

func WithVNPayClock(now func() time.Time) VNPayOption {
	return func(v *VNPay) { v.now = now }
}

func NewVNPay(cfg VNPayConfig, log *zap.Logger, opts ...VNPayOption) *VNPay {
	if cfg.Location == nil {
		cfg.Location = time.FixedZone("ICT", 7*3600)
	}
	v := &VNPay{Config: cfg, log: log, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var _ PaymentGateway = (*VNPay)(nil)

func (v *VNPay) Name() string { return constants.METHOD_VNPAY }

func (v *VNPay) checkConfig() error {
	missing := make([]string, 0)
	if v.Config.TmnCode == "" {
		missing = append(missing, "VNP_TMNCODE")
	}
	if v.Config.HashSecret == "" {
		missing = append(missing, "VNP_HASHSECRET")
	}
	if v.Config.BaseURL == "" {
		missing = append(missing, "VNP_URL")
	}
	if v.Config.ReturnURL == "" {
		missing = append(missing, "APP_URL")
	}
	if len(missing) > 0 {
		return apperror.New(apperror.KindConfiguration, "vnpay is not configured: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Tạo Payment URL
func (v *VNPay) CreatePaymentURL(_ context.Context, order PaymentOrder) (string, error) {
	if err := v.checkConfig(); err != nil {
		return "", err
	}
	if order.Amount <= 0 {
		return "", apperror.New(apperror.KindInvalidInput, "payment amount must be positive")
	}
	if order.TransactionID == "" {
		return "", apperror.New(apperror.KindInvalidInput, "transaction reference is required")
	}

	now := v.now().In(v.Config.Location)
	params := url.Values{}
	params.Add("vnp_Version", vnpVersion)
	params.Add("vnp_Command", "pay")
	params.Add("vnp_TmnCode", v.Config.TmnCode)
	params.Add("vnp_Amount", strconv.FormatInt(order.Amount*100, 10)) // VND * 100
	params.Add("vnp_CreateDate", now.Format(vnpDateLayout))
	params.Add("vnp_CurrCode", "VND")
	params.Add("vnp_IpAddr", order.ClientIP)
	params.Add("vnp_Locale", "vn")
	params.Add("vnp_OrderInfo", order.OrderInfo)
	params.Add("vnp_OrderType", "other")
	params.Add("vnp_ReturnUrl", v.Config.ReturnURL)
	params.Add("vnp_TxnRef", order.TransactionID)
	params.Add("vnp_ExpireDate", now.Add(vnpExpireIn).Format(vnpDateLayout))

	// Encode sorts by key, which is the order VNPay signs in.
	query := params.Encode()
	hash := hmacSHA512(v.Config.HashSecret, query)
	return v.Config.BaseURL + "?" + query + "&vnp_SecureHash=" + hash, nil
}

// HandleCallback verifies a return or IPN callback. Both entry points are
// verified the same way.
func (v *VNPay) HandleCallback(req CallbackRequest) (*CallbackResult, error) {
	if v.Config.HashSecret == "" {
		return nil, apperror.New(apperror.KindConfiguration, "vnpay is not configured: missing VNP_HASHSECRET")
	}

	// Values are read from the same bytes that get verified.
	params := req.Params
	if req.RawQuery != "" {
		values, err := url.ParseQuery(strings.TrimPrefix(req.RawQuery, "?"))
		if err != nil {
			return nil, apperror.Wrap(apperror.KindInvalidInput, err, "malformed vnpay callback")
		}
		params = flatten(values)
	}

	received := params["vnp_SecureHash"]
	if received == "" {
		return nil, apperror.New(apperror.KindInvalidSignature, "missing vnp_SecureHash")
	}

	var signData string
	if req.RawQuery != "" {
		signData = vnpSignDataFromRaw(req.RawQuery)
	} else {
		v.log.Warn("vnpay callback without raw query, rebuilding sign data from decoded params; valid callbacks may be rejected")
		signData = vnpSignDataFromParams(params)
	}

	computed := hmacSHA512(v.Config.HashSecret, signData)
	if !signatureEqual(received, computed) {
		v.log.Warn("vnpay signature mismatch",
			zap.String("received", received),
			zap.String("computed", computed),
			zap.String("signData", signData),
			zap.Any("params", params),
		)
		return nil, apperror.New(apperror.KindInvalidSignature, "invalid vnpay signature")
	}

	txnRef := params["vnp_TxnRef"]
	if txnRef == "" {
		return nil, apperror.New(apperror.KindInvalidInput, "missing vnp_TxnRef")
	}
	amount, err := strconv.ParseInt(params["vnp_Amount"], 10, 64)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidInput, err, "invalid vnp_Amount")
	}

	code := params["vnp_ResponseCode"]
	status := constants.PAYMENT_FAILED
	if code == vnpSuccess {
		status = constants.PAYMENT_COMPLETED
	}

	return &CallbackResult{
		TransactionID: txnRef,
		Status:        status,
		Amount:        amount / 100,
		GatewayTxnNo:  params["vnp_TransactionNo"],
		ResponseCode:  code,
		Message:       vnpMessage(code),
	}, nil
}

func isVNPSigned(key string) bool {
	return strings.HasPrefix(key, "vnp_") && key != "vnp_SecureHash" && key != "vnp_SecureHashType"
}

// vnpSignDataFromRaw keeps every pair exactly as encoded on the wire.
func vnpSignDataFromRaw(raw string) string {
	raw = strings.TrimPrefix(raw, "?")
	pairs := make([][2]string, 0)
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if !isVNPSigned(key) {
			continue
		}
		pairs = append(pairs, [2]string{key, value})
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p[0])
		b.WriteByte('=')
		b.WriteString(p[1])
	}
	return b.String()
}

func vnpSignDataFromParams(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if isVNPSigned(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[k]))
	}
	return b.String()
}

func flatten(values url.Values) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

func vnpMessage(code string) string {
	switch code {
	case "00":
		return "Giao dịch thành công"
	case "07":
		return "Giao dịch bị nghi ngờ gian lận"
	case "09":
		return "Thẻ/Tài khoản chưa đăng ký InternetBanking"
	case "11":
		return "Hết hạn chờ thanh toán"
	case "24":
		return "Khách hàng hủy giao dịch"
	case "51":
		return "Tài khoản không đủ số dư"
	case "65":
		return "Tài khoản đã vượt quá hạn mức giao dịch trong ngày"
	case "75":
		return "Ngân hàng thanh toán đang bảo trì"
	default:
		return "Giao dịch không thành công"
	}
}
