package tests

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"trike/internal/domain"
	"trike/internal/repository"
)

// testLogger returns a logger that discards output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
// UpdateStatusCAS carries the real compare-and-set semantics so race
// tests exercise the same commit rules as the SQL implementation.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Counters for verification
	CreateCallCount int32
	CASCallCount    int32
	CASConflicts    int32

	// Error injection
	CreateError error
	GetError    error
	CASError    error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking seeds a booking into the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[booking.ID] = booking
}

// GetBooking returns the stored booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.bookings[id]
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
	return nil
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, b := range m.bookings {
		if b.CustomerID == customerID && !b.Status.Terminal() {
			copy := *b
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockBookingRepository) ListPendingUnassigned(ctx context.Context) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Booking
	for _, b := range m.bookings {
		if b.Status == domain.BookingStatusPending && b.DriverID == "" {
			copy := *b
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) List(ctx context.Context) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		copy := *b
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MockBookingRepository) UpdateStatusCAS(ctx context.Context, id string, expected, next domain.BookingStatus, changes repository.BookingChanges) error {
	atomic.AddInt32(&m.CASCallCount, 1)
	if m.CASError != nil {
		return m.CASError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if booking.Status != expected {
		atomic.AddInt32(&m.CASConflicts, 1)
		return repository.ErrStaleState
	}
	booking.Status = next
	if changes.ClearAssignment {
		booking.DriverID = ""
		booking.VehicleID = ""
	}
	if changes.DriverID != nil {
		booking.DriverID = *changes.DriverID
	}
	if changes.VehicleID != nil {
		booking.VehicleID = *changes.VehicleID
	}
	if changes.ArrivedAtPickup != nil {
		booking.ArrivedAtPickup = *changes.ArrivedAtPickup
	}
	if changes.ArrivedAt != nil {
		booking.ArrivedAt = *changes.ArrivedAt
	}
	if changes.NoShow != nil {
		booking.NoShow = *changes.NoShow
	}
	if changes.NoShowAt != nil {
		booking.NoShowAt = *changes.NoShowAt
	}
	if changes.CancelledAt != nil {
		booking.CancelledAt = *changes.CancelledAt
	}
	if changes.CancelledBy != nil {
		booking.CancelledBy = *changes.CancelledBy
	}
	if changes.CancelReason != nil {
		booking.CancelReason = *changes.CancelReason
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK QUEUE REPOSITORY
// ──────────────────────────────────────────────

// MockQueueRepository is a mock implementation of QueueRepository backed
// by a position-ordered slice.
type MockQueueRepository struct {
	mu      sync.Mutex
	entries []*domain.QueueEntry

	// Counters for verification
	JoinCallCount         int32
	DequeueCallCount      int32
	RequeueFrontCallCount int32

	// Error injection
	JoinError    error
	DequeueError error
	RequeueError error
}

// NewMockQueueRepository creates a new mock queue repository.
func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{}
}

func (m *MockQueueRepository) Join(ctx context.Context, entry *domain.QueueEntry) error {
	atomic.AddInt32(&m.JoinCallCount, 1)
	if m.JoinError != nil {
		return m.JoinError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.DriverID == entry.DriverID {
			return repository.ErrDuplicate
		}
	}
	var max int64
	for _, e := range m.entries {
		if e.Position > max {
			max = e.Position
		}
	}
	entry.Position = max + 1
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockQueueRepository) Leave(ctx context.Context, driverID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.DriverID == driverID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *MockQueueRepository) PeekFirst(ctx context.Context) (*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	head := m.head()
	if head == nil {
		return nil, nil
	}
	copy := *head
	return &copy, nil
}

func (m *MockQueueRepository) DequeueFirst(ctx context.Context) (*domain.QueueEntry, error) {
	atomic.AddInt32(&m.DequeueCallCount, 1)
	if m.DequeueError != nil {
		return nil, m.DequeueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	head := m.head()
	if head == nil {
		return nil, nil
	}
	for i, e := range m.entries {
		if e.DriverID == head.DriverID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	copy := *head
	return &copy, nil
}

func (m *MockQueueRepository) RequeueFront(ctx context.Context, entry *domain.QueueEntry) error {
	atomic.AddInt32(&m.RequeueFrontCallCount, 1)
	if m.RequeueError != nil {
		return m.RequeueError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	min := int64(1)
	for _, e := range m.entries {
		if e.Position < min {
			min = e.Position
		}
	}
	entry.Position = min - 1
	copy := *entry
	m.entries = append(m.entries, &copy)
	return nil
}

func (m *MockQueueRepository) IsMember(ctx context.Context, driverID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.DriverID == driverID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockQueueRepository) Snapshot(ctx context.Context) ([]*domain.QueueEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.QueueEntry, 0, len(m.entries))
	for _, e := range m.entries {
		copy := *e
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})
	return result, nil
}

// head returns the lowest-position entry. Caller holds the lock.
func (m *MockQueueRepository) head() *domain.QueueEntry {
	var head *domain.QueueEntry
	for _, e := range m.entries {
		if head == nil || e.Position < head.Position {
			head = e
		}
	}
	return head
}

// ──────────────────────────────────────────────
// MOCK CONTRIBUTION REPOSITORY
// ──────────────────────────────────────────────

// MockContributionRepository is a mock implementation of
// ContributionRepository.
type MockContributionRepository struct {
	mu            sync.RWMutex
	contributions []*domain.Contribution

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
	ListError   error
}

// NewMockContributionRepository creates a new mock contribution repository.
func NewMockContributionRepository() *MockContributionRepository {
	return &MockContributionRepository{}
}

// AddContribution seeds a ledger entry.
func (m *MockContributionRepository) AddContribution(c *domain.Contribution) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions = append(m.contributions, c)
}

func (m *MockContributionRepository) Create(ctx context.Context, contribution *domain.Contribution) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *contribution
	m.contributions = append(m.contributions, &copy)
	return nil
}

func (m *MockContributionRepository) ListByDriver(ctx context.Context, driverID string, since time.Time) ([]*domain.Contribution, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Contribution
	for _, c := range m.contributions {
		if c.DriverID != driverID {
			continue
		}
		if !since.IsZero() && c.PaidAt.Before(since) {
			continue
		}
		copy := *c
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].PaidAt.After(result[j].PaidAt)
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	UpdateStatusError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) GetAll(ctx context.Context) ([]*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		copy := *d
		result = append(result, &copy)
	}
	return result, nil
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id string, status domain.DriverStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.Status = status
	return nil
}

func (m *MockDriverRepository) UpdateVehicle(ctx context.Context, id string, vehicleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	driver, ok := m.drivers[id]
	if !ok {
		return repository.ErrNotFound
	}
	driver.VehicleID = vehicleID
	return nil
}

// ──────────────────────────────────────────────
// MOCK FARE CONFIG REPOSITORY
// ──────────────────────────────────────────────

// MockFareConfigRepository is a mock implementation of
// FareConfigRepository.
type MockFareConfigRepository struct {
	mu      sync.RWMutex
	configs map[domain.TripType]*domain.TariffConfig
	changes []*domain.FareChange

	// Error injection
	GetError    error
	UpsertError error
}

// NewMockFareConfigRepository creates a new mock fare config repository.
func NewMockFareConfigRepository() *MockFareConfigRepository {
	return &MockFareConfigRepository{
		configs: make(map[domain.TripType]*domain.TariffConfig),
	}
}

func (m *MockFareConfigRepository) GetConfig(ctx context.Context, tier domain.TripType) (*domain.TariffConfig, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	config, ok := m.configs[tier]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *config
	return &copy, nil
}

func (m *MockFareConfigRepository) UpsertConfig(ctx context.Context, config *domain.TariffConfig) error {
	if m.UpsertError != nil {
		return m.UpsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *config
	m.configs[config.Tier] = &copy
	return nil
}

func (m *MockFareConfigRepository) AppendChange(ctx context.Context, change *domain.FareChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *change
	m.changes = append(m.changes, &copy)
	return nil
}

func (m *MockFareConfigRepository) ListChanges(ctx context.Context, tier domain.TripType) ([]*domain.FareChange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.FareChange
	for _, c := range m.changes {
		if c.Tier == tier {
			copy := *c
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ChangedAt.After(result[j].ChangedAt)
	})
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK AUDIT REPOSITORY
// ──────────────────────────────────────────────

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu      sync.RWMutex
	records []*domain.AuditRecord

	// Counters for verification
	AppendCallCount int32

	// Error injection
	AppendError error
}

// NewMockAuditRepository creates a new mock audit repository.
func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

// Records returns all stored records for test assertions.
func (m *MockAuditRepository) Records() []*domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.AuditRecord, len(m.records))
	copy(result, m.records)
	return result
}

func (m *MockAuditRepository) Append(ctx context.Context, record *domain.AuditRecord) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	if m.AppendError != nil {
		return m.AppendError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *record
	m.records = append(m.records, &stored)
	return nil
}

func (m *MockAuditRepository) List(ctx context.Context, module string, limit int) ([]*domain.AuditRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if module != "" && r.Module != module {
			continue
		}
		stored := *r
		result = append(result, &stored)
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK QUEUE LOCK
// ──────────────────────────────────────────────

// MockQueueLock is an in-process QueueLockInterface with real
// mutual-exclusion semantics: a second Acquire before Release fails.
type MockQueueLock struct {
	held int32

	// Counters for verification
	AcquireCallCount int32

	// Error injection
	AcquireError error
}

// NewMockQueueLock creates a new mock queue lock.
func NewMockQueueLock() *MockQueueLock {
	return &MockQueueLock{}
}

func (m *MockQueueLock) Acquire(ctx context.Context, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	return atomic.CompareAndSwapInt32(&m.held, 0, 1), nil
}

func (m *MockQueueLock) Release(ctx context.Context) error {
	atomic.StoreInt32(&m.held, 0)
	return nil
}

// ──────────────────────────────────────────────
// MOCK PUBLISHER
// ──────────────────────────────────────────────

// MockPublisher records published booking and queue events.
type MockPublisher struct {
	mu       sync.Mutex
	Bookings []*domain.Booking
	Queues   [][]*domain.QueueEntry
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishBooking(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.Bookings = append(m.Bookings, &copy)
	return nil
}

func (m *MockPublisher) PublishQueue(ctx context.Context, entries []*domain.QueueEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queues = append(m.Queues, entries)
	return nil
}

// PublishedStatuses returns the status sequence seen on the booking
// stream, for test assertions.
func (m *MockPublisher) PublishedStatuses() []domain.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make([]domain.BookingStatus, 0, len(m.Bookings))
	for _, b := range m.Bookings {
		statuses = append(statuses, b.Status)
	}
	return statuses
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION SINKS
// ──────────────────────────────────────────────

// MockNotifier records notification deliveries.
type MockNotifier struct {
	mu            sync.Mutex
	NewBookings   []string // driver IDs notified of an assignment
	Arrivals      []string // customer IDs notified of driver arrival
	Cancellations []string // recipient IDs notified of a cancel
	CancelReasons []string
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyNewBooking(ctx context.Context, driverID string, booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewBookings = append(m.NewBookings, driverID)
}

func (m *MockNotifier) NotifyDriverArrived(ctx context.Context, customerID string, booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Arrivals = append(m.Arrivals, customerID)
}

func (m *MockNotifier) NotifyBookingCancelled(ctx context.Context, recipientID string, booking *domain.Booking, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cancellations = append(m.Cancellations, recipientID)
	m.CancelReasons = append(m.CancelReasons, reason)
}

// MockRatingSink records opened rating stubs.
type MockRatingSink struct {
	mu     sync.Mutex
	Opened []string // booking IDs
}

// NewMockRatingSink creates a new mock rating sink.
func NewMockRatingSink() *MockRatingSink {
	return &MockRatingSink{}
}

func (m *MockRatingSink) RatingOpened(ctx context.Context, booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Opened = append(m.Opened, booking.ID)
}

// OpenedCount returns the number of rating stubs opened.
func (m *MockRatingSink) OpenedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Opened)
}

// ──────────────────────────────────────────────
// MOCK TIMEOUT SCHEDULER
// ──────────────────────────────────────────────

// MockScheduler captures scheduled timeouts so tests can fire them
// deterministically instead of waiting on wall-clock timers.
type MockScheduler struct {
	mu    sync.Mutex
	fires map[string]func()

	// Counters for verification
	ScheduleCallCount int32
	CancelCallCount   int32
}

// NewMockScheduler creates a new mock scheduler.
func NewMockScheduler() *MockScheduler {
	return &MockScheduler{fires: make(map[string]func())}
}

func (m *MockScheduler) Schedule(bookingID string, delay time.Duration, fire func()) {
	atomic.AddInt32(&m.ScheduleCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fires[bookingID] = fire
}

func (m *MockScheduler) Cancel(bookingID string) {
	atomic.AddInt32(&m.CancelCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fires, bookingID)
}

// Callback returns the registered timeout callback without consuming
// it, so tests can invoke it from several goroutines at once.
func (m *MockScheduler) Callback(bookingID string) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fires[bookingID]
}

// Fire runs the captured timeout callback for a booking, if any.
func (m *MockScheduler) Fire(bookingID string) {
	m.mu.Lock()
	fire := m.fires[bookingID]
	delete(m.fires, bookingID)
	m.mu.Unlock()
	if fire != nil {
		fire()
	}
}

// Pending reports whether a timer is still registered for the booking.
func (m *MockScheduler) Pending(bookingID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.fires[bookingID]
	return ok
}

// ──────────────────────────────────────────────
// MOCK SUMMARY CACHE
// ──────────────────────────────────────────────

// MockSummaryCache is an in-memory contribution summary cache.
type MockSummaryCache struct {
	mu        sync.Mutex
	summaries map[string]*domain.ContributionSummary

	// Counters for verification
	HitCount        int32
	InvalidateCount int32
}

// NewMockSummaryCache creates a new mock summary cache.
func NewMockSummaryCache() *MockSummaryCache {
	return &MockSummaryCache{summaries: make(map[string]*domain.ContributionSummary)}
}

func (m *MockSummaryCache) Get(ctx context.Context, driverID string) (*domain.ContributionSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary, ok := m.summaries[driverID]
	if !ok {
		return nil, nil
	}
	atomic.AddInt32(&m.HitCount, 1)
	copy := *summary
	return &copy, nil
}

func (m *MockSummaryCache) Set(ctx context.Context, summary *domain.ContributionSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *summary
	m.summaries[summary.DriverID] = &stored
	return nil
}

func (m *MockSummaryCache) Invalidate(ctx context.Context, driverID string) error {
	atomic.AddInt32(&m.InvalidateCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.summaries, driverID)
	return nil
}
