package service

import (
	"context"
	"log/slog"

	"trike/internal/domain"
)

// NotificationSink delivers push notifications to customers and drivers.
// Delivery is best-effort: implementations log failures and never
// propagate them into the booking flow.
type NotificationSink interface {
	NotifyNewBooking(ctx context.Context, driverID string, booking *domain.Booking)
	NotifyDriverArrived(ctx context.Context, customerID string, booking *domain.Booking)
	NotifyBookingCancelled(ctx context.Context, recipientID string, booking *domain.Booking, reason string)
}

// RatingSink receives the rating-entry stub created when a trip
// completes. The rating UI itself lives outside this service.
type RatingSink interface {
	RatingOpened(ctx context.Context, booking *domain.Booking)
}

// LogNotificationService is a NotificationSink that records deliveries in
// the structured log. Real push delivery (FCM or similar) plugs in behind
// the same interface.
type LogNotificationService struct {
	logger *slog.Logger
}

// NewLogNotificationService creates a new LogNotificationService.
func NewLogNotificationService(logger *slog.Logger) *LogNotificationService {
	return &LogNotificationService{logger: logger}
}

// NotifyNewBooking tells a driver they have been assigned a booking.
func (s *LogNotificationService) NotifyNewBooking(ctx context.Context, driverID string, booking *domain.Booking) {
	s.logger.InfoContext(ctx, "notify new booking",
		"recipient", driverID,
		"booking_id", booking.ID,
		"pickup", booking.PickupText,
		"fare", booking.Fare,
	)
}

// NotifyDriverArrived tells a customer their driver is at the pickup point.
func (s *LogNotificationService) NotifyDriverArrived(ctx context.Context, customerID string, booking *domain.Booking) {
	s.logger.InfoContext(ctx, "notify driver arrived",
		"recipient", customerID,
		"booking_id", booking.ID,
		"verification_code", booking.VerificationCode,
	)
}

// NotifyBookingCancelled tells the affected party a booking was cancelled.
func (s *LogNotificationService) NotifyBookingCancelled(ctx context.Context, recipientID string, booking *domain.Booking, reason string) {
	if recipientID == "" {
		return
	}
	s.logger.InfoContext(ctx, "notify booking cancelled",
		"recipient", recipientID,
		"booking_id", booking.ID,
		"reason", reason,
	)
}

// LogRatingSink records rating-entry creation in the structured log.
type LogRatingSink struct {
	logger *slog.Logger
}

// NewLogRatingSink creates a new LogRatingSink.
func NewLogRatingSink(logger *slog.Logger) *LogRatingSink {
	return &LogRatingSink{logger: logger}
}

// RatingOpened logs that a completed trip is ready to be rated.
func (s *LogRatingSink) RatingOpened(ctx context.Context, booking *domain.Booking) {
	s.logger.InfoContext(ctx, "rating entry opened",
		"booking_id", booking.ID,
		"customer_id", booking.CustomerID,
		"driver_id", booking.DriverID,
	)
}

var (
	_ NotificationSink = (*LogNotificationService)(nil)
	_ RatingSink       = (*LogRatingSink)(nil)
)
