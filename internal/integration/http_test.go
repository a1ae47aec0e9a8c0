package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/storefront-go/storefront/internal/cart"
	"github.com/storefront-go/storefront/internal/catalog"
	"github.com/storefront-go/storefront/internal/db"
	"github.com/storefront-go/storefront/internal/events"
	"github.com/storefront-go/storefront/internal/httpapi"
	"github.com/storefront-go/storefront/internal/order"
)

// TestStorefrontHTTP runs the whole stack against real Postgres and
// RabbitMQ: product creation, cart merge semantics, checkout, and the
// order.created message on the wire.
func TestStorefrontHTTP(t *testing.T) {
	skipUnlessIntegration(t)
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	pgC, dbURL := startPostgres(ctx, t)
	defer terminateContainer(t, pgC)

	rabbitC, rabbitURL := startRabbitMQ(ctx, t)
	defer terminateContainer(t, rabbitC)

	logger := log.New(io.Discard, "", log.LstdFlags)
	require.NoError(t, db.RunMigrations(dbURL, logger))

	app := startStorefront(ctx, t, dbURL, rabbitURL)
	defer app.stop()

	client := &http.Client{Timeout: 5 * time.Second}

	// create a product
	var product catalog.Product
	resp := doJSON(ctx, t, client, http.MethodPost, app.baseURL+"/products",
		`{"name":"Coffee","description":"beans","price":"9.99","category":"grocery","stock":5}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &product)
	require.NotZero(t, product.ID)

	// first add creates the line, second merges into it
	addBody := fmt.Sprintf(`{"productId":%d,"quantity":1}`, product.ID)
	resp = doJSON(ctx, t, client, http.MethodPost, app.baseURL+"/cart/alice", addBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	resp = doJSON(ctx, t, client, http.MethodPost, app.baseURL+"/cart/alice", addBody)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var lines []cart.Line
	resp = doJSON(ctx, t, client, http.MethodGet, app.baseURL+"/cart/alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &lines)
	require.Len(t, lines, 1)
	require.Equal(t, 2, lines[0].Quantity)

	// checkout
	orderBody := fmt.Sprintf(`{"userId":"alice","products":[{"product_id":%d,"quantity":2}]}`, product.ID)
	resp = doJSON(ctx, t, client, http.MethodPost, app.baseURL+"/orders", orderBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var placed struct {
		Message string      `json:"message"`
		Order   order.Order `json:"order"`
	}
	decodeBody(t, resp, &placed)
	require.Equal(t, "Order created", placed.Message)
	require.Equal(t, "19.98", placed.Order.Total.StringFixed(2))

	// cart emptied by the checkout
	resp = doJSON(ctx, t, client, http.MethodGet, app.baseURL+"/cart/alice", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines = nil
	decodeBody(t, resp, &lines)
	require.Empty(t, lines)

	// the committed order was announced
	ev := waitForOrderCreated(ctx, t, rabbitURL)
	require.Equal(t, events.EventTypeOrderCreated, ev.EventType)
	require.Equal(t, placed.Order.ID, ev.OrderID)
	require.Equal(t, "alice", ev.UserID)
	require.Len(t, ev.Items, 1)
	require.Equal(t, product.ID, ev.Items[0].ProductID)
}

type storefrontApp struct {
	baseURL string
	stop    func()
}

func startStorefront(ctx context.Context, t *testing.T, dbURL, rabbitURL string) *storefrontApp {
	t.Helper()

	pool, err := db.NewPool(ctx, dbURL)
	require.NoError(t, err)

	conn, err := amqp.Dial(rabbitURL)
	require.NoError(t, err)

	publisher, err := events.NewPublisher(conn)
	require.NoError(t, err)

	logger := log.New(io.Discard, "", log.LstdFlags)
	catalogRepo := catalog.NewPostgresRepository(pool)
	cartRepo := cart.NewPostgresRepository(pool)
	orderRepo := order.NewPostgresRepository(pool, catalogRepo, cartRepo)

	router := httpapi.NewRouter(httpapi.Deps{
		Catalog: catalogRepo,
		Carts:   cartRepo,
		Orders:  order.NewService(orderRepo, publisher, logger),
		Logger:  logger,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return &storefrontApp{
		baseURL: fmt.Sprintf("http://%s", ln.Addr().String()),
		stop: func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = server.Shutdown(shutdownCtx)
			_ = publisher.Close()
			_ = conn.Close()
			pool.Close()

			select {
			case err := <-errCh:
				t.Logf("server error: %v", err)
			default:
			}
		},
	}
}

func startPostgres(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16",
		Env:          map[string]string{"POSTGRES_PASSWORD": "postgres", "POSTGRES_USER": "postgres", "POSTGRES_DB": "storefront"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/storefront?sslmode=disable", host, mappedPort.Port())
	return container, dsn
}

func startRabbitMQ(ctx context.Context, t *testing.T) (testcontainers.Container, string) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "rabbitmq:3-management",
		ExposedPorts: []string{"5672/tcp", "15672/tcp"},
		WaitingFor:   wait.ForListeningPort("5672/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mappedPort, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return container, fmt.Sprintf("amqp://guest:guest@%s:%s/", host, mappedPort.Port())
}

func terminateContainer(t *testing.T, c testcontainers.Container) {
	t.Helper()
	terminateCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, c.Terminate(terminateCtx))
}

func doJSON(ctx context.Context, t *testing.T, client *http.Client, method, url, body string) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func waitForOrderCreated(ctx context.Context, t *testing.T, rabbitURL string) events.OrderCreated {
	t.Helper()

	conn, err := amqp.Dial(rabbitURL)
	require.NoError(t, err)
	defer conn.Close()

	ch, err := conn.Channel()
	require.NoError(t, err)
	defer ch.Close()

	deliveries, err := ch.Consume(events.OrderCreatedQueue, "", true, false, false, false, nil)
	require.NoError(t, err)

	select {
	case d := <-deliveries:
		var ev events.OrderCreated
		require.NoError(t, json.Unmarshal(d.Body, &ev))
		return ev
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for order.created")
	case <-ctx.Done():
		t.Fatalf("context cancelled waiting for order.created: %v", ctx.Err())
	}
	return events.OrderCreated{}
}
