package dao

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// testDB is shared by the integration tests below. It stays nil unless
// DAO_INTEGRATION is set, in which case TestMain boots a throwaway
// Postgres container.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	if os.Getenv("DAO_INTEGRATION") == "" {
		os.Exit(m.Run())
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=vybr_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}
	resource.Expire(300)

	dsn := fmt.Sprintf(
		"host=localhost port=%s user=postgres password=postgres dbname=vybr_test sslmode=disable",
		resource.GetPort("5432/tcp"))

	if err = pool.Retry(func() error {
		db, openErr := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if openErr != nil {
			return openErr
		}

		testDB = db
		return InitTables(db)
	}); err != nil {
		log.Fatalf("could not connect to postgres: %v", err)
	}

	code := m.Run()

	if err = pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres container: %v", err)
	}

	os.Exit(code)
}

func requireTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if testDB == nil {
		t.Skip("set DAO_INTEGRATION=1 to run database integration tests")
	}

	return testDB
}

func TestUserDAO_InsertAndFind(t *testing.T) {
	db := requireTestDB(t)
	userDAO := NewUserDAO(db)
	ctx := context.Background()

	created, err := userDAO.Insert(ctx, User{
		Email:    "dao-insert@example.com",
		Password: "hashed",
		Name:     "Ana",
		Country:  "Singapore",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	found, err := userDAO.FindByEmail(ctx, "dao-insert@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = userDAO.Insert(ctx, User{
		Email:    "dao-insert@example.com",
		Password: "hashed",
		Name:     "Ana Again",
	})
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestBookingDAO_InsertGuarded(t *testing.T) {
	db := requireTestDB(t)
	bookingDAO := NewBookingDAO(db)
	ctx := context.Background()

	const eventID = 9001
	limit := 3

	first, err := bookingDAO.InsertGuarded(ctx, Booking{
		EventID:  eventID,
		UserID:   1,
		Quantity: 2,
		Status:   "CONFIRMED",
	}, &limit)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	// Two more would pass the caller's stale read but not the guarded
	// re-check inside the transaction.
	_, err = bookingDAO.InsertGuarded(ctx, Booking{
		EventID:  eventID,
		UserID:   2,
		Quantity: 2,
		Status:   "CONFIRMED",
	}, &limit)
	assert.ErrorIs(t, err, ErrNoCapacity)

	// The same user booking the same event again hits the unique index.
	_, err = bookingDAO.InsertGuarded(ctx, Booking{
		EventID:  eventID,
		UserID:   1,
		Quantity: 1,
		Status:   "CONFIRMED",
	}, &limit)
	assert.ErrorIs(t, err, ErrBookingExists)

	sum, err := bookingDAO.SumConfirmedQuantity(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, sum)
}

func TestPaymentAttemptDAO_TransitionIsFirstWins(t *testing.T) {
	db := requireTestDB(t)
	attemptDAO := NewPaymentAttemptDAO(db)
	ctx := context.Background()

	_, err := attemptDAO.Insert(ctx, PaymentAttempt{
		EventID:  9002,
		UserID:   1,
		Quantity: 1,
		Currency: "USD",
		State:    "AWAITING_PAYMENT_METHOD",
		Context:  "REDIRECT",
		IntentID: "pi_transition_test",
	})
	require.NoError(t, err)

	won, err := attemptDAO.Transition(ctx, "pi_transition_test",
		"AWAITING_PAYMENT_METHOD", "CONFIRMING", "")
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMING", won.State)

	// A second claim on the same from-state loses.
	_, err = attemptDAO.Transition(ctx, "pi_transition_test",
		"AWAITING_PAYMENT_METHOD", "CONFIRMING", "")
	assert.ErrorIs(t, err, ErrAttemptFinalized)

	// An unknown intent is reported as such, not as finalized.
	_, err = attemptDAO.Transition(ctx, "pi_does_not_exist",
		"AWAITING_PAYMENT_METHOD", "CONFIRMING", "")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestReservationDAO_MissingStoredFunction(t *testing.T) {
	db := requireTestDB(t)
	reservationDAO := NewReservationDAO(db)
	ctx := context.Background()

	// The test database has no get_or_create_daily_reservation_event
	// function installed, which must surface as the dedicated sentinel.
	_, err := reservationDAO.GetOrCreateDailyEvent(ctx, 1, time.Now().AddDate(0, 0, 1), "SGD")
	assert.ErrorIs(t, err, ErrDailyEventFunctionMissing)
}
