package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/gateway"
	"cinema_booking/helper"
	"cinema_booking/metrics"
	"cinema_booking/model"
	"context"
	"fmt"
	"time"

	"github.com/lithammer/shortuuid/v3"
	"go.uber.org/zap"
)

type PaymentService struct {
	payments PaymentStore
	registry *gateway.Registry
	notifier SeatNotifier
	log      *zap.Logger
	now      func() time.Time
	timeout  time.Duration
}

type PaymentOption func(*PaymentService)

func WithPaymentNotifier(notifier SeatNotifier) PaymentOption {
	return func(s *PaymentService) { s.notifier = notifier }
}

func WithPaymentClock(now func() time.Time) PaymentOption {
	return func(s *PaymentService) { s.now = now }
}

// WithGatewayTimeout bounds each outbound gateway call.
func WithGatewayTimeout(d time.Duration) PaymentOption {
	return func(s *PaymentService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func NewPaymentService(payments PaymentStore, registry *gateway.Registry, log *zap.Logger, opts ...PaymentOption) *PaymentService {
	s := &PaymentService{
		payments: payments,
		registry: registry,
		log:      log,
		now:      time.Now,
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreatePaymentRequest struct {
	BookingID       uint
	PaymentMethodID uint
	UserID          uint
	ClientIP        string
}

// CreatePayment opens a PENDING payment for the booking and asks the gateway
// for a payment URL. If the gateway fails the payment is marked FAILED and the
// booking stays PENDING so the user can retry.
func (s *PaymentService) CreatePayment(ctx context.Context, in CreatePaymentRequest) (*model.PaymentResult, error) {
	method, err := s.payments.GetPaymentMethod(ctx, in.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if !method.IsActive {
		return nil, apperror.New(apperror.KindInvalidInput, "payment method %s is disabled", method.Name)
	}
	gw, err := s.registry.Lookup(method.Name)
	if err != nil {
		return nil, err
	}

	transactionID := NewTransactionID(in.BookingID)
	payment, err := s.payments.AttachPayment(ctx, in.BookingID, func(b *model.Booking) (*model.Payment, error) {
		if b.UserID == nil {
			userID := in.UserID
			b.UserID = &userID
		} else if *b.UserID != in.UserID {
			return nil, apperror.New(apperror.KindUnauthorized, "booking does not belong to user")
		}
		if b.Status != constants.BOOKING_PENDING {
			return nil, apperror.New(apperror.KindInvalidState, "booking is %s, only pending bookings can be paid", b.Status)
		}
		if b.TotalPrice <= 0 {
			return nil, apperror.New(apperror.KindInvalidInput, "booking total must be positive")
		}
		return &model.Payment{
			BookingID:       b.ID,
			PaymentMethodID: method.ID,
			Status:          constants.PAYMENT_PENDING,
			Amount:          b.TotalPrice,
			TransactionID:   transactionID,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	paymentURL, err := gw.CreatePaymentURL(callCtx, gateway.PaymentOrder{
		TransactionID: payment.TransactionID,
		Amount:        helper.ToGatewayAmount(payment.Amount),
		OrderInfo:     fmt.Sprintf("Thanh toan ve xem phim booking %d", in.BookingID),
		ClientIP:      in.ClientIP,
	})
	if err != nil {
		s.log.Error("gateway create payment failed",
			zap.String("gateway", gw.Name()),
			zap.String("transactionId", payment.TransactionID),
			zap.Error(err),
		)
		markErr := s.payments.UpdatePayment(context.WithoutCancel(ctx), payment.ID, func(p *model.Payment) error {
			if p.Status == constants.PAYMENT_PENDING {
				p.Status = constants.PAYMENT_FAILED
				p.GatewayResponse = err.Error()
			}
			return nil
		})
		if markErr != nil {
			s.log.Error("mark payment failed", zap.Uint("paymentId", payment.ID), zap.Error(markErr))
		}
		if apperror.KindOf(err) != apperror.KindInternal {
			return nil, err
		}
		return nil, apperror.Wrap(apperror.KindInternal, err, "payment gateway unavailable")
	}

	s.log.Info("payment created",
		zap.Uint("bookingId", in.BookingID),
		zap.String("gateway", gw.Name()),
		zap.String("transactionId", payment.TransactionID),
		zap.Float64("amount", payment.Amount),
	)
	return &model.PaymentResult{
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
		Status:        payment.Status,
		PaymentURL:    paymentURL,
	}, nil
}

// NewTransactionID builds a gateway order id that is unique per attempt.
func NewTransactionID(bookingID uint) string {
	return fmt.Sprintf("BK%d-%s", bookingID, shortuuid.New())
}

// CallbackOutcome is the verified callback and the result of applying it.
// ReconcileErr is set when the callback was authentic but could not be applied.
type CallbackOutcome struct {
	Result       *gateway.CallbackResult
	ReconcileErr error
}

// HandleCallback verifies a gateway callback and reconciles it. The returned
// error is only set when the callback could not be verified; in that case
// nothing is written.
func (s *PaymentService) HandleCallback(ctx context.Context, gatewayName, channel string, req gateway.CallbackRequest) (*CallbackOutcome, error) {
	gw, err := s.registry.Lookup(gatewayName)
	if err != nil {
		metrics.PaymentCallbacksTotal.WithLabelValues(gatewayName, channel, "unsupported").Inc()
		return nil, err
	}
	result, err := gw.HandleCallback(req)
	if err != nil {
		metrics.PaymentCallbacksTotal.WithLabelValues(gw.Name(), channel, "rejected").Inc()
		s.log.Warn("payment callback rejected", zap.String("gateway", gw.Name()), zap.String("channel", channel), zap.Error(err))
		return nil, err
	}

	outcome := &CallbackOutcome{Result: result}
	outcome.ReconcileErr = s.Reconcile(ctx, result, req.RawQuery)
	if outcome.ReconcileErr != nil {
		metrics.PaymentCallbacksTotal.WithLabelValues(gw.Name(), channel, "unapplied").Inc()
		s.log.Error("payment callback not applied",
			zap.String("gateway", gw.Name()),
			zap.String("channel", channel),
			zap.String("transactionId", result.TransactionID),
			zap.Error(outcome.ReconcileErr),
		)
	} else {
		metrics.PaymentCallbacksTotal.WithLabelValues(gw.Name(), channel, "applied").Inc()
	}
	return outcome, nil
}

// Reconcile moves the payment named by result into its terminal status and
// carries the booking along. The first terminal status wins; later callbacks
// for the same transaction change nothing, so repeats are safe.
func (s *PaymentService) Reconcile(ctx context.Context, result *gateway.CallbackResult, raw string) error {
	var (
		applied    bool
		awarded    int
		released   []uint
		showtimeID uint
	)
	err := s.payments.ReconcilePayment(ctx, result.TransactionID, func(p *model.Payment, b *model.Booking) (int, error) {
		if result.Amount > 0 && helper.ToGatewayAmount(p.Amount) != result.Amount {
			return 0, apperror.New(apperror.KindInvalidInput, "amount mismatch: expected %d, got %d", helper.ToGatewayAmount(p.Amount), result.Amount)
		}
		if p.Status != constants.PAYMENT_PENDING {
			if p.Status != result.Status {
				s.log.Warn("conflicting callback ignored",
					zap.String("transactionId", p.TransactionID),
					zap.String("current", p.Status),
					zap.String("received", result.Status),
				)
			}
			return 0, nil
		}

		bookingStatus, err := bookingStatusFor(result.Status)
		if err != nil {
			return 0, err
		}
		if err := transitionBooking(b, bookingStatus, s.now(), false); err != nil {
			return 0, err
		}

		p.Status = result.Status
		if raw != "" {
			p.GatewayResponse = raw
		}
		if p.Status == constants.PAYMENT_COMPLETED {
			paidAt := s.now()
			p.PaymentTime = &paidAt
		}
		applied = true

		if b.Status == constants.BOOKING_CANCELLED {
			released = b.SeatIDs()
			showtimeID = b.ShowtimeID
		}
		if b.Status == constants.BOOKING_COMPLETED && !p.PointsAwarded && b.UserID != nil {
			awarded = helper.BookingPoints(b.Seats)
			p.PointsAwarded = true
		}
		return awarded, nil
	})
	if err != nil {
		return err
	}

	if applied {
		metrics.PaymentsReconciledTotal.WithLabelValues(result.Status).Inc()
		s.log.Info("payment reconciled",
			zap.String("transactionId", result.TransactionID),
			zap.String("status", result.Status),
			zap.Int("points", awarded),
		)
	}
	if awarded > 0 {
		metrics.PointsAwardedTotal.Add(float64(awarded))
	}
	publishSeats(ctx, s.notifier, s.log, showtimeID, released, constants.SEAT_AVAILABLE)
	return nil
}

// ExpireStalePayments fails PENDING payments created before now-ttl; their
// bookings are cancelled and seats released.
func (s *PaymentService) ExpireStalePayments(ctx context.Context, ttl time.Duration) (int, error) {
	stale, err := s.payments.ListStalePayments(ctx, s.now().Add(-ttl))
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, p := range stale {
		err := s.Reconcile(ctx, &gateway.CallbackResult{
			TransactionID: p.TransactionID,
			Status:        constants.PAYMENT_FAILED,
			ResponseCode:  "EXPIRED",
			Message:       "payment expired",
		}, "")
		if err != nil {
			s.log.Error("expire payment", zap.String("transactionId", p.TransactionID), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		metrics.ExpiredPaymentsTotal.Add(float64(expired))
	}
	return expired, nil
}
