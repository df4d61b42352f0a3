package constants

// Roles
const (
	ROLE_USER  = "USER"
	ROLE_ADMIN = "ADMIN"
)

// Booking status
const (
	BOOKING_PENDING   = "PENDING"
	BOOKING_CONFIRMED = "CONFIRMED"
	BOOKING_CANCELLED = "CANCELLED"
	BOOKING_COMPLETED = "COMPLETED"
)

// Payment status
const (
	PAYMENT_PENDING   = "PENDING"
	PAYMENT_COMPLETED = "COMPLETED"
	PAYMENT_FAILED    = "FAILED"
	PAYMENT_CANCELLED = "CANCELLED"
)

// Seat types
const (
	SEAT_STANDARD = "STANDARD"
	SEAT_VIP      = "VIP"
	SEAT_SWEETBOX = "SWEETBOX"
)

const (
	SEAT_AVAILABLE = "AVAILABLE"
	SEAT_BOOKED    = "BOOKED"
)

// Movie types
const (
	MOVIE_2D   = "2D"
	MOVIE_3D   = "3D"
	MOVIE_IMAX = "IMAX"
	MOVIE_4DX  = "4DX"
)

const (
	DAY_WEEKDAY = "WEEKDAY"
	DAY_WEEKEND = "WEEKEND"
)

const (
	DISCOUNT_PERCENT = "PERCENT"
	DISCOUNT_FLAT    = "FLAT"
)

// Payment method names, matched case-insensitively by the gateway registry.
const (
	METHOD_VNPAY = "VNPAY"
	METHOD_MOMO  = "MOMO"
)

// Response messages
const (
	ERROR_INTERNAL_ERROR     = "Internal server error"
	ERROR_INPUT              = "Invalid input"
	DATA_INPUT_IS_NOT_NUMBER = "Input is not a number"
	MISSING_TOKEN            = "Missing token"
	INVALID_TOKEN            = "Invalid token"
	NOT_ADMIN                = "Admin permission required"
	INVALID_PASSWORD         = "Email or password is incorrect"
	EMAIL_EXISTS             = "Email already registered"
	CAN_NOT_HASH_PASSWORD    = "Cannot hash password"
	SEATS_ALREADY_BOOKED     = "some seats already booked"
	NO_TICKET_PRICE          = "no ticket price for window"
)
