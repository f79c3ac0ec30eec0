package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	cerrors "github.com/phasezero/catalog/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "CATALOG_SVC_SKIP_INTEGRATION_TESTS"

// ProductStoreSuite is a test suite for the PostgreSQL ProductStore implementation.
type ProductStoreSuite struct {
	suite.Suite                             // Embedding testify's suite for structured testing
	pgContainer *postgres.PostgresContainer // PostgreSQL container for integration tests
	dbPool      *pgxpool.Pool               // PostgreSQL connection pool for integration tests
	store       ProductStore
	logger      *slog.Logger    // Logger for the test suite
	ctx         context.Context // Context for the test suite, used for cancellation and timeouts
}

// SetupSuite initializes the test suite by setting up a PostgreSQL container.
func (s *ProductStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	dbName := "catalog"
	dbUser := "user"
	dbPassword := "password"

	// 1. Start a PostgreSQL container with the specified configuration. Wait for the container to be ready.
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPassword),
		// Wait for a specific log message indicating the database service is ready.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		// Ensure the container is ready to accept connections on the default PostgreSQL port.
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	// 2. Get the connection string from the container
	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	// 3. create a new pgxpool instance using the connection string
	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgxpool")

	// 3.1 Ping the database to ensure the connection is established
	for i := range 10 {
		s.logger.Info("Pinging PostgreSQL database", "attempt", i+1)
		err = s.dbPool.Ping(s.ctx)
		if err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	// 4. Database migration
	wd, _ := os.Getwd()
	migrationsPath := filepath.Join(wd, "..", "..", "migrations")
	sourceURL := "file://" + migrationsPath
	m, err := migrate.New(sourceURL, connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}
	s.logger.Info("Migrations applied for integration tests")

	s.store = NewPgStore(s.dbPool)
	s.logger.Info("Initialization complete for ProductStoreSuite")
}

// TearDownSuite cleans up resources after all tests in the suite have run.
func (s *ProductStoreSuite) TearDownSuite() {
	s.logger.Info("Tearing down suite...")
	if s.dbPool != nil {
		s.dbPool.Close()
		s.logger.Info("DB pool closed.")
	}
	if s.pgContainer != nil {
		s.logger.Info("Terminating PostgreSQL container...")
		err := s.pgContainer.Terminate(s.ctx)
		if err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		} else {
			s.logger.Info("PostgreSQL container terminated.")
		}
	}
}

// SetupTest prepares the database for each test by truncating the products table.
func (s *ProductStoreSuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE products CASCADE")
	require.NoError(s.T(), err, "Failed to truncate products table")
}

func (s *ProductStoreSuite) createProduct(partNumber, partName, category, price string, stock int32) *Product {
	created, err := s.store.Create(s.ctx, &Product{
		PartNumber: partNumber,
		PartName:   partName,
		Category:   category,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	})
	require.NoError(s.T(), err, "Failed to create product")
	return created
}

func (s *ProductStoreSuite) TestCreate_AssignsIdentityAndTimestamps() {
	created := s.createProduct("PN-1001", "hydraulic filter", "Filters", "99.99", 100)

	assert.NotEmpty(s.T(), created.ID)
	assert.False(s.T(), created.CreatedAt.IsZero())
	assert.False(s.T(), created.UpdatedAt.IsZero())
	assert.Equal(s.T(), "PN-1001", created.PartNumber)
	assert.True(s.T(), created.Price.Equal(decimal.RequireFromString("99.99")))
}

func (s *ProductStoreSuite) TestCreate_RejectsDuplicatePartNumber() {
	s.createProduct("ABC-1", "brake pads", "Brakes", "79.99", 50)

	// No existence pre-check: the unique index must reject the insert.
	_, err := s.store.Create(s.ctx, &Product{
		PartNumber: "ABC-1",
		PartName:   "brake pads",
		Category:   "Brakes",
		Price:      decimal.RequireFromString("79.99"),
		Stock:      50,
	})
	assert.ErrorIs(s.T(), err, cerrors.ErrDuplicatePartNumber)

	_, total, err := s.store.FindAll(s.ctx, PageSpec{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), total)
}

func (s *ProductStoreSuite) TestExistsAndFindByPartNumber() {
	s.createProduct("PN-1001", "hydraulic filter", "Filters", "99.99", 100)

	exists, err := s.store.ExistsByPartNumber(s.ctx, "PN-1001")
	require.NoError(s.T(), err)
	assert.True(s.T(), exists)

	exists, err = s.store.ExistsByPartNumber(s.ctx, "PN-9999")
	require.NoError(s.T(), err)
	assert.False(s.T(), exists)

	found, err := s.store.FindByPartNumber(s.ctx, "PN-1001")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "hydraulic filter", found.PartName)

	_, err = s.store.FindByPartNumber(s.ctx, "PN-9999")
	assert.ErrorIs(s.T(), err, cerrors.ErrProductNotFound)
}

func (s *ProductStoreSuite) TestFindAll_PaginationAndDefaultSort() {
	for i := 1; i <= 25; i++ {
		s.createProduct(fmt.Sprintf("PN-%04d", i), "air filter", "Filters", "24.99", 5)
	}

	first, total, err := s.store.FindAll(s.ctx, PageSpec{Page: 0})
	require.NoError(s.T(), err)
	assert.Len(s.T(), first, 20)
	assert.Equal(s.T(), int64(25), total)

	second, total, err := s.store.FindAll(s.ctx, PageSpec{Page: 1})
	require.NoError(s.T(), err)
	assert.Len(s.T(), second, 5)
	assert.Equal(s.T(), int64(25), total, "total must be stable across pages")

	// Default order is newest first.
	require.NotEmpty(s.T(), first)
	assert.False(s.T(), first[0].CreatedAt.Before(first[len(first)-1].CreatedAt))
}

func (s *ProductStoreSuite) TestFindAll_SortByPriceAscending() {
	s.createProduct("PN-1", "engine oil", "Lubricants", "29.99", 10)
	s.createProduct("PN-2", "spark plug", "Ignition", "12.99", 10)

	list, _, err := s.store.FindAll(s.ctx, PageSpec{Sort: SortByPrice})
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 2)
	assert.Equal(s.T(), "PN-2", list[0].PartNumber)
}

func (s *ProductStoreSuite) TestFindByNameContains_CaseInsensitive() {
	s.createProduct("PN-1001", "hydraulic filter", "Filters", "99.99", 100)
	s.createProduct("PN-1002", "engine oil", "Lubricants", "29.99", 200)

	matches, err := s.store.FindByNameContains(s.ctx, "FILTER")
	require.NoError(s.T(), err)
	require.Len(s.T(), matches, 1)
	assert.Equal(s.T(), "PN-1001", matches[0].PartNumber)

	matches, err = s.store.FindByNameContains(s.ctx, "gasket")
	require.NoError(s.T(), err)
	assert.Empty(s.T(), matches)
}

func (s *ProductStoreSuite) TestFindByCategory() {
	s.createProduct("PN-1001", "hydraulic filter", "Filters", "99.99", 100)
	s.createProduct("PN-1004", "air filter", "Filters", "24.99", 150)
	s.createProduct("PN-1002", "engine oil", "Lubricants", "29.99", 200)

	matches, err := s.store.FindByCategory(s.ctx, "Filters")
	require.NoError(s.T(), err)
	assert.Len(s.T(), matches, 2)
}

func (s *ProductStoreSuite) TestFindAllOrderByPriceAsc() {
	s.createProduct("PN-1", "engine oil", "Lubricants", "29.99", 10)
	s.createProduct("PN-2", "spark plug", "Ignition", "12.99", 10)
	s.createProduct("PN-3", "hydraulic filter", "Filters", "99.99", 10)

	list, err := s.store.FindAllOrderByPriceAsc(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 3)
	for i := 1; i < len(list); i++ {
		assert.True(s.T(), list[i-1].Price.LessThanOrEqual(list[i].Price),
			"prices must be non-decreasing")
	}
}

func (s *ProductStoreSuite) TestSumPriceTimesStock() {
	sum, err := s.store.SumPriceTimesStock(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), sum.IsZero(), "empty catalog sums to zero")

	s.createProduct("PN-1", "engine oil", "Lubricants", "10.00", 3)
	s.createProduct("PN-2", "spark plug", "Ignition", "5.50", 2)

	sum, err = s.store.SumPriceTimesStock(s.ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "41.00", sum.StringFixed(2))
}

// TestProductStoreSuite runs the suite unless integration tests are disabled.
func TestProductStoreSuite(t *testing.T) {
	if os.Getenv(skipIntegrationTests) != "" {
		t.Skipf("Skipping integration tests because %s is set", skipIntegrationTests)
	}
	suite.Run(t, new(ProductStoreSuite))
}
