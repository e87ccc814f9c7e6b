package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	handler "github.com/vncsmyrnk/patients/internal/adapters/handler/http"
	redislimit "github.com/vncsmyrnk/patients/internal/adapters/ratelimit/redis"
	repo "github.com/vncsmyrnk/patients/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/patients/internal/adapters/security/password"
	"github.com/vncsmyrnk/patients/internal/adapters/token"
	"github.com/vncsmyrnk/patients/internal/config"
	"github.com/vncsmyrnk/patients/internal/core/ports"
	"github.com/vncsmyrnk/patients/internal/core/services"
)

const loginRateLimit = 5

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	dbName := "testdb"
	user := "user"
	pass := "password"

	pgContainer, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(user),
		postgres.WithPassword(pass),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupRedisContainer(ctx context.Context) (testcontainers.Container, string, error) {
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to start redis container: %w", err)
	}

	addr, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		return nil, "", err
	}

	return redisContainer, addr, nil
}

type TestApp struct {
	DB             *sql.DB
	Server         *httptest.Server
	Client         *http.Client
	UserSvc        ports.UserService
	PatientRepo    ports.PatientRepository
	Redis          *redis.Client
	DBContainer    testcontainers.Container
	RedisContainer testcontainers.Container
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)
	redisContainer, redisAddr, err := setupRedisContainer(ctx)
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)

	_, err = repo.Migrate(ctx, db)
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	require.NoError(t, rdb.Ping(ctx).Err())

	opts := config.TokenOptions{Secret: "test-secret", Algorithm: "HS256", DefaultTTL: 30 * time.Minute}
	issuer, err := token.NewIssuer(opts)
	require.NoError(t, err)
	verifier, err := token.NewVerifier(opts)
	require.NoError(t, err)
	hasher, err := password.NewHasher(bcrypt.MinCost, 0)
	require.NoError(t, err)

	log, _ := logtest.NewNullLogger()

	userRepo := repo.NewUserRepository(db)
	patientRepo := repo.NewPatientRepository(db)

	authSvc := services.NewAuthService(userRepo, hasher, issuer, verifier, opts.DefaultTTL, log).
		WithLoginRateLimit(services.LoginRateLimit{
			Limiter: redislimit.NewLimiter(rdb, ""),
			Limit:   loginRateLimit,
			Window:  time.Minute,
		})
	patientSvc := services.NewPatientService(patientRepo)
	userSvc := services.NewUserService(userRepo, hasher)

	router := handler.NewHandler(
		authSvc,
		handler.NewAuthHandler(authSvc, log),
		handler.NewPatientHandler(patientSvc, log),
		handler.NewUserHandler(),
		log,
	)

	server := httptest.NewServer(router)

	return &TestApp{
		DB:             db,
		Server:         server,
		Client:         server.Client(),
		UserSvc:        userSvc,
		PatientRepo:    patientRepo,
		Redis:          rdb,
		DBContainer:    dbContainer,
		RedisContainer: redisContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	app.Redis.Close()
	for _, c := range []testcontainers.Container{app.DBContainer, app.RedisContainer} {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}
}
