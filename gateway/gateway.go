// Package gateway adapts external payment providers to one interface:
// build an outbound payment URL, then verify and translate the provider's
// callbacks into a canonical payment status.
package gateway

import (
	"cinema_booking/apperror"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"
	"sync"
)

type PaymentOrder struct {
	TransactionID string
	Amount        int64 // VND
	OrderInfo     string
	ClientIP      string
}

// CallbackRequest carries both the decoded parameters and, when the HTTP
// layer has it, the query string exactly as it arrived on the wire.
type CallbackRequest struct {
	Params   map[string]string
	RawQuery string
}

type CallbackResult struct {
	TransactionID string
	Status        string // COMPLETED, FAILED, CANCELLED
	Amount        int64
	GatewayTxnNo  string
	ResponseCode  string
	Message       string
}

type PaymentGateway interface {
	Name() string
	CreatePaymentURL(ctx context.Context, order PaymentOrder) (string, error)
	HandleCallback(req CallbackRequest) (*CallbackResult, error)
}

type Registry struct {
	mu       sync.RWMutex
	gateways map[string]PaymentGateway
}

func NewRegistry(gateways ...PaymentGateway) *Registry {
	r := &Registry{gateways: make(map[string]PaymentGateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

func (r *Registry) Register(g PaymentGateway) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[strings.ToUpper(g.Name())] = g
}

// Lookup finds a gateway by payment-method name, ignoring case.
func (r *Registry) Lookup(name string) (PaymentGateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gateways[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, apperror.New(apperror.KindUnsupportedGateway, "unsupported payment gateway %q", name)
	}
	return g, nil
}

func hmacSHA512(secret, data string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func hmacSHA256(secret, data string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

// signatureEqual compares hex digests in constant time, ignoring case.
func signatureEqual(received, computed string) bool {
	return hmac.Equal([]byte(strings.ToLower(received)), []byte(strings.ToLower(computed)))
}
