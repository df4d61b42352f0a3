package service

import (
	"cinema_booking/apperror"
	"cinema_booking/constants"
	"cinema_booking/model"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore implements every store interface in memory. One mutex plays the
// role of the database transaction, so check-then-write is atomic here the
// same way the unique index makes it atomic in postgres.
type memStore struct {
	mu        sync.Mutex
	now       func() time.Time
	nextID    uint
	showtimes map[uint]model.Showtime
	seats     map[uint]model.Seat
	bookings  map[uint]*model.Booking
	payments  map[uint]*model.Payment
	methods   map[uint]model.PaymentMethod
	coupons   map[uint]model.Coupon
	held      []model.UserCoupon
	users     map[uint]*model.User
	prices    []model.TicketPrice
}

var (
	_ ShowtimeStore = (*memStore)(nil)
	_ BookingStore  = (*memStore)(nil)
	_ PaymentStore  = (*memStore)(nil)
	_ CouponStore   = (*memStore)(nil)
	_ PriceStore    = (*memStore)(nil)
	_ UserStore     = (*memStore)(nil)
)

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		now:       now,
		nextID:    1000,
		showtimes: map[uint]model.Showtime{},
		seats:     map[uint]model.Seat{},
		bookings:  map[uint]*model.Booking{},
		payments:  map[uint]*model.Payment{},
		methods:   map[uint]model.PaymentMethod{},
		coupons:   map[uint]model.Coupon{},
		users:     map[uint]*model.User{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) GetShowtime(_ context.Context, id uint) (*model.Showtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.showtimes[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "showtime not found")
	}
	return &st, nil
}

func (m *memStore) ListScreenSeats(_ context.Context, screenID uint, includeDeleted bool) ([]model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Seat, 0)
	for _, s := range m.seats {
		if s.ScreenID == screenID && (includeDeleted || !s.IsDeleted) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) activeSeats(showtimeID uint) map[uint]bool {
	held := map[uint]bool{}
	for _, b := range m.bookings {
		for _, bs := range b.Seats {
			if bs.ShowtimeID == showtimeID && bs.Active {
				held[bs.SeatID] = true
			}
		}
	}
	return held
}

func (m *memStore) ActiveSeatIDs(_ context.Context, showtimeID uint) ([]uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uint, 0)
	for id := range m.activeSeats(showtimeID) {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) DeactivateEndedShowtimes(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, st := range m.showtimes {
		if st.IsActive && !st.EndTime.After(now) {
			st.IsActive = false
			m.showtimes[id] = st
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateBooking(_ context.Context, b *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	held := m.activeSeats(b.ShowtimeID)
	for _, bs := range b.Seats {
		if held[bs.SeatID] {
			return apperror.New(apperror.KindSeatConflict, constants.SEATS_ALREADY_BOOKED)
		}
	}
	b.ID = m.id()
	b.CreatedAt = m.now()
	for i := range b.Seats {
		b.Seats[i].ID = m.id()
		b.Seats[i].BookingID = b.ID
		b.Seats[i].Active = true
	}
	stored := *b
	stored.Seats = append([]model.BookingSeat(nil), b.Seats...)
	m.bookings[b.ID] = &stored
	return nil
}

func (m *memStore) loadBooking(id uint) (*model.Booking, error) {
	stored, ok := m.bookings[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "booking not found")
	}
	b := *stored
	b.Seats = make([]model.BookingSeat, 0, len(stored.Seats))
	for _, bs := range stored.Seats {
		bs.Seat = m.seats[bs.SeatID]
		b.Seats = append(b.Seats, bs)
	}
	b.Showtime = m.showtimes[b.ShowtimeID]
	b.Payment = nil
	if b.PaymentID != nil {
		if p, ok := m.payments[*b.PaymentID]; ok {
			cp := *p
			b.Payment = &cp
		}
	}
	if b.UserID != nil {
		uid := *b.UserID
		b.UserID = &uid
	}
	return &b, nil
}

func (m *memStore) saveBooking(b *model.Booking) {
	stored := m.bookings[b.ID]
	seats := append([]model.BookingSeat(nil), stored.Seats...)
	if b.Status == constants.BOOKING_CANCELLED {
		for i := range seats {
			seats[i].Active = false
		}
	}
	if b.Payment != nil {
		if p, ok := m.payments[b.Payment.ID]; ok {
			p.Status = b.Payment.Status
		}
	}
	next := *b
	next.Seats = seats
	next.Showtime = model.Showtime{}
	next.Payment = nil
	m.bookings[b.ID] = &next
}

func (m *memStore) GetBooking(_ context.Context, id uint) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadBooking(id)
}

func (m *memStore) UpdateBooking(_ context.Context, id uint, update func(b *model.Booking) error) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.loadBooking(id)
	if err != nil {
		return nil, err
	}
	if err := update(b); err != nil {
		return nil, err
	}
	m.saveBooking(b)
	return m.loadBooking(id)
}

func (m *memStore) ListStaleBookings(_ context.Context, before time.Time) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Booking, 0)
	for _, b := range m.bookings {
		if b.Status == constants.BOOKING_PENDING && b.CreatedAt.Before(before) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memStore) GetPaymentMethod(_ context.Context, id uint) (*model.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.methods[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "payment method not found")
	}
	return &pm, nil
}

func (m *memStore) AttachPayment(_ context.Context, bookingID uint, prepare func(b *model.Booking) (*model.Payment, error)) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	p, err := prepare(b)
	if err != nil {
		return nil, err
	}
	if b.Payment != nil && b.Payment.Status == constants.PAYMENT_PENDING {
		m.payments[b.Payment.ID].Status = constants.PAYMENT_CANCELLED
	}
	p.ID = m.id()
	p.CreatedAt = m.now()
	stored := *p
	m.payments[p.ID] = &stored

	paymentID := p.ID
	b.PaymentID = &paymentID
	b.Payment = nil
	m.saveBooking(b)
	return p, nil
}

func (m *memStore) UpdatePayment(_ context.Context, id uint, update func(p *model.Payment) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.payments[id]
	if !ok {
		return apperror.New(apperror.KindNotFound, "payment not found")
	}
	p := *stored
	if err := update(&p); err != nil {
		return err
	}
	m.payments[id] = &p
	return nil
}

func (m *memStore) ReconcilePayment(_ context.Context, transactionID string, apply func(p *model.Payment, b *model.Booking) (int, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stored *model.Payment
	for _, p := range m.payments {
		if p.TransactionID == transactionID {
			stored = p
		}
	}
	if stored == nil {
		return apperror.New(apperror.KindNotFound, "payment %s not found", transactionID)
	}
	b, err := m.loadBooking(stored.BookingID)
	if err != nil {
		return err
	}
	p := *stored
	points, err := apply(&p, b)
	if err != nil {
		return err
	}
	b.Payment = nil
	m.saveBooking(b)
	m.payments[p.ID] = &p
	if points > 0 && b.UserID != nil {
		if u, ok := m.users[*b.UserID]; ok {
			u.Points += points
		}
	}
	return nil
}

func (m *memStore) ListStalePayments(_ context.Context, before time.Time) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Payment, 0)
	for _, p := range m.payments {
		if p.Status == constants.PAYMENT_PENDING && p.CreatedAt.Before(before) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) ConsumeCoupon(_ context.Context, bookingID, userID uint, code string, apply func(b *model.Booking, coupon *model.Coupon) error) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := m.loadBooking(bookingID)
	if err != nil {
		return nil, err
	}
	idx := -1
	var coupon *model.Coupon
	for i, h := range m.held {
		c := m.coupons[h.CouponID]
		if h.UserID == userID && c.Code == code && c.IsActive {
			idx = i
			coupon = &c
			break
		}
	}
	if err := apply(b, coupon); err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, apperror.New(apperror.KindNotFound, "coupon not held")
	}
	m.saveBooking(b)
	m.held = append(m.held[:idx], m.held[idx+1:]...)
	return m.loadBooking(bookingID)
}

func (m *memStore) ExchangeCoupon(_ context.Context, userID uint, code string) (*model.UserCoupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var coupon *model.Coupon
	for _, c := range m.coupons {
		if c.Code == code && c.IsActive {
			c := c
			coupon = &c
		}
	}
	if coupon == nil {
		return nil, apperror.New(apperror.KindNotFound, "coupon not found")
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	if u.Points < coupon.ExchangePoint {
		return nil, apperror.New(apperror.KindInvalidState, "not enough points")
	}
	u.Points -= coupon.ExchangePoint
	held := model.UserCoupon{DTO: model.DTO{ID: m.id()}, UserID: userID, CouponID: coupon.ID, Coupon: *coupon}
	m.held = append(m.held, held)
	return &held, nil
}

func (m *memStore) FindTicketPrices(_ context.Context, q PriceQuery, _ model.Pagination) ([]model.TicketPrice, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.TicketPrice, 0)
	for _, p := range m.prices {
		if !p.IsActive || p.MovieType != q.MovieType || p.DayType != q.DayType {
			continue
		}
		if q.SeatType != "" && p.SeatType != q.SeatType {
			continue
		}
		if !p.Covers(q.Clock) {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.New(apperror.KindInvalidInput, constants.EMAIL_EXISTS)
		}
	}
	user.ID = m.id()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.New(apperror.KindNotFound, "user not found")
}

func (m *memStore) GetUser(_ context.Context, id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.New(apperror.KindNotFound, "user not found")
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) points(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[userID].Points
}

func (m *memStore) payment(id uint) model.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.payments[id]
}

func (m *memStore) heldCount(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.held {
		if h.UserID == userID {
			n++
		}
	}
	return n
}

// memLocker mimics SET NX with per-seat keys.
type memLocker struct {
	mu    sync.Mutex
	held  map[string]string
	count int
}

func newMemLocker() *memLocker { return &memLocker{held: map[string]string{}} }

func (l *memLocker) AcquireSeatLocks(_ context.Context, showtimeID uint, seatIDs []uint, _ time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	token := fmt.Sprintf("tok-%d", l.count)
	for _, id := range seatIDs {
		if _, taken := l.held[lockKey(showtimeID, id)]; taken {
			return "", false, nil
		}
	}
	for _, id := range seatIDs {
		l.held[lockKey(showtimeID, id)] = token
	}
	return token, true, nil
}

func (l *memLocker) ReleaseSeatLocks(_ context.Context, showtimeID uint, seatIDs []uint, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range seatIDs {
		key := lockKey(showtimeID, id)
		if l.held[key] == token {
			delete(l.held, key)
		}
	}
	return nil
}

func lockKey(showtimeID, seatID uint) string {
	return fmt.Sprintf("%d:%d", showtimeID, seatID)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.SeatEvent
}

func (n *recordingNotifier) PublishSeatEvent(_ context.Context, event model.SeatEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) last() (model.SeatEvent, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return model.SeatEvent{}, false
	}
	return n.events[len(n.events)-1], true
}
