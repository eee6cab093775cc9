package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type observation struct {
	method, route string
	status        int
}

type observerSpy struct{ got []observation }

func (o *observerSpy) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.got = append(o.got, observation{method, route, status})
}

func TestRequestLogger_ObservaRutaRegistradaYStatus(t *testing.T) {
	spy := &observerSpy{}
	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop(), spy))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("no")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/abc-123", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, spy.got, 1)
	assert.Equal(t, observation{http.MethodGet, "/items/:id", http.StatusNotFound}, spy.got[0],
		"se etiqueta con la ruta, no con el path concreto")
}

func TestRequestLogger_ErrorDelHandlerPasaPorErrorHandler(t *testing.T) {
	spy := &observerSpy{}
	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop(), spy))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "tetera")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	require.Len(t, spy.got, 1)
	assert.Equal(t, fiber.StatusTeapot, spy.got[0].status)
}
