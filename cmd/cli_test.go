package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CLITestSuite struct {
	suite.Suite
	fs afero.Fs
}

// 2024-06-03 星期一
var cliMonday = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

func (suite *CLITestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
	suite.T().Setenv("STORAGE_DRIVER", "file")
	suite.T().Setenv("STORAGE_DIR", "/data")
	suite.T().Setenv("LOG_LEVEL", "error")
	suite.T().Setenv("CATALOG_FILE", "")
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (suite *CLITestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer
	app := newCLI(&out,
		withAppOptions(appcontext.WithFs(suite.fs), appcontext.WithStdout(io.Discard)),
		withClock(func() time.Time { return cliMonday }),
	)
	err := app.Run(append([]string{"storefront"}, args...))
	return out.String(), err
}

func (suite *CLITestSuite) TestMenu() {
	out, err := suite.run("menu", "--category", "fries", "--sort", "price-low")
	suite.Require().NoError(err)
	suite.Contains(out, "Classic French Fries")
	suite.NotContains(out, "Margherita Pizza")

	_, err = suite.run("menu", "--sort", "cheapest")
	suite.Error(err)
}

func (suite *CLITestSuite) TestSpecials() {
	out, err := suite.run("specials")
	suite.Require().NoError(err)
	suite.Contains(out, "Monday special: burger")
	suite.Contains(out, "8.99")

	out, err = suite.run("specials", "--date", "2024-06-09")
	suite.Require().NoError(err)
	suite.Contains(out, "Sunday special: dessert")
}

func (suite *CLITestSuite) TestCartPersistsAcrossRuns() {
	_, err := suite.run("cart", "add", "--special", "5")
	suite.Require().NoError(err)
	out, err := suite.run("cart", "add", "--special", "5")
	suite.Require().NoError(err)
	suite.Contains(out, "17.98")

	out, err = suite.run("cart", "show")
	suite.Require().NoError(err)
	suite.Contains(out, "Classic Cheeseburger")
	suite.Contains(out, "23.23")

	out, err = suite.run("cart", "remove", "5")
	suite.Require().NoError(err)
	suite.Contains(out, "8.99")

	out, err = suite.run("cart", "clear")
	suite.Require().NoError(err)
	suite.Contains(out, "cart cleared")

	out, err = suite.run("cart", "show")
	suite.Require().NoError(err)
	suite.Contains(out, "cart is empty")
}

func (suite *CLITestSuite) TestCheckoutAndOrders() {
	_, err := suite.run("checkout", "--payment", "paypal")
	suite.Error(err)

	_, err = suite.run("cart", "add", "13")
	suite.Require().NoError(err)
	out, err := suite.run("checkout", "--payment", "credit", "--card", "4000-1234-5678-9010")
	suite.Require().NoError(err)
	suite.Contains(out, "placed")

	id := regexp.MustCompile(`order (\S+) placed`).FindStringSubmatch(out)
	suite.Require().Len(id, 2)

	out, err = suite.run("orders", "list")
	suite.Require().NoError(err)
	suite.Contains(out, id[1])
	suite.Contains(out, "Credit Card (9010)")

	out, err = suite.run("orders", "show", id[1])
	suite.Require().NoError(err)
	suite.Contains(out, "Classic Cola")

	out, err = suite.run("cart", "show")
	suite.Require().NoError(err)
	suite.Contains(out, "cart is empty")

	_, err = suite.run("orders", "clear")
	suite.Require().NoError(err)
	out, err = suite.run("orders", "list")
	suite.Require().NoError(err)
	suite.Contains(out, "no orders yet")
}

func (suite *CLITestSuite) TestBadItemID() {
	_, err := suite.run("cart", "add", "pizza")
	suite.Error(err)
	_, err = suite.run("cart", "add", "404")
	suite.Error(err)
}

func (suite *CLITestSuite) TestReset() {
	_, err := suite.run("cart", "add", "1")
	suite.Require().NoError(err)
	out, err := suite.run("reset")
	suite.Require().NoError(err)
	suite.Contains(out, "storage reset")

	exists, err := afero.Exists(suite.fs, "/data/cart.json")
	suite.Require().NoError(err)
	suite.False(exists)
}

func TestRenderOrdersEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, renderOrders(&out, nil))
	assert.Equal(t, "no orders yet\n", out.String())
}

func TestNewHTTPServer(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SERVER_PORT", "9191")
	cf, err := config.NewLoader("").Load()
	require.NoError(t, err)

	app, err := appcontext.NewApplicationContext(context.Background(), cf, appcontext.WithStdout(io.Discard))
	require.NoError(t, err)
	defer app.Shutdown(context.Background())

	srv := newHTTPServer(app, &cmdEnv{now: func() time.Time { return cliMonday }})
	assert.Equal(t, ":9191", srv.Addr)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/specials", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"burger"`)
}
