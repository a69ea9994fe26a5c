package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	mock_storage "github.com/RoyceAzure/lab/storefront/internal/infra/storage/mock"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
)

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return c
}

type CartServiceTestSuite struct {
	suite.Suite
	catalog     *catalog.Catalog
	store       *storage.MemoryStorage
	cartService *CartService
}

func (suite *CartServiceTestSuite) SetupSuite() {
	suite.catalog = defaultCatalog(suite.T())
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.store = storage.NewMemoryStorage()
	suite.cartService = NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger())
	suite.Require().NoError(suite.cartService.Load(context.Background()))
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func (suite *CartServiceTestSuite) assertMoney(want string, got decimal.Decimal) {
	suite.T().Helper()
	suite.True(money(want).Equal(got), "want %s, got %s", want, got)
}

func (suite *CartServiceTestSuite) TestAddRemoveScenario() {
	ctx := context.Background()
	s := suite.cartService

	suite.Require().NoError(s.AddToCart(ctx, 5, false))
	suite.Equal(1, s.Quantity(5))
	suite.assertMoney("9.99", s.UnitPrices()[5])
	suite.assertMoney("9.99", s.TotalPrice())

	suite.Require().NoError(s.AddToCart(ctx, 5, true))
	suite.Equal(2, s.Quantity(5))
	suite.assertMoney("8.99", s.UnitPrices()[5])
	suite.assertMoney("17.98", s.TotalPrice())

	suite.Require().NoError(s.RemoveFromCart(ctx, 5))
	suite.Equal(1, s.Quantity(5))
	suite.assertMoney("8.99", s.TotalPrice())

	suite.Require().NoError(s.RemoveFromCart(ctx, 5))
	suite.Equal(0, s.TotalItems())
	_, ok := s.Quantities()[5]
	suite.False(ok)
	_, ok = s.UnitPrice(5)
	suite.False(ok)
}

func (suite *CartServiceTestSuite) TestQuantityNeverNegative() {
	ctx := context.Background()
	s := suite.cartService

	ops := []bool{true, true, false, false, false, true, false, false, false}
	for _, add := range ops {
		if add {
			suite.Require().NoError(s.AddToCart(ctx, 9, false))
		} else {
			suite.Require().NoError(s.RemoveFromCart(ctx, 9))
		}
		q, ok := s.Quantities()[9]
		if ok {
			suite.Greater(q, 0)
		}
		suite.GreaterOrEqual(s.Quantity(9), 0)
	}
	suite.NotContains(s.Quantities(), 9)
	suite.NotContains(s.UnitPrices(), 9)
}

func (suite *CartServiceTestSuite) TestPriceLastWriteWins() {
	ctx := context.Background()
	s := suite.cartService

	suite.Require().NoError(s.AddToCart(ctx, 5, true))
	suite.Require().NoError(s.AddToCart(ctx, 5, false))

	p, ok := s.UnitPrice(5)
	suite.Require().True(ok)
	suite.assertMoney("9.99", p)
	suite.assertMoney("19.98", s.TotalPrice())
}

func (suite *CartServiceTestSuite) TestPriceFirstAddPolicy() {
	ctx := context.Background()
	s := NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger(), WithPricePolicy(PriceFirstAdd))

	suite.Require().NoError(s.AddToCart(ctx, 5, true))
	suite.Require().NoError(s.AddToCart(ctx, 5, false))

	p, ok := s.UnitPrice(5)
	suite.Require().True(ok)
	suite.assertMoney("8.99", p)
	suite.assertMoney("17.98", s.TotalPrice())

	// 整行移除後重新加入會重新記錄單價
	suite.Require().NoError(s.RemoveFromCart(ctx, 5))
	suite.Require().NoError(s.RemoveFromCart(ctx, 5))
	suite.Require().NoError(s.AddToCart(ctx, 5, false))
	p, _ = s.UnitPrice(5)
	suite.assertMoney("9.99", p)
}

func (suite *CartServiceTestSuite) TestTotalPriceMatchesLines() {
	ctx := context.Background()
	s := suite.cartService

	suite.Require().NoError(s.AddToCart(ctx, 1, false))
	suite.Require().NoError(s.AddToCart(ctx, 1, false))
	suite.Require().NoError(s.AddToCart(ctx, 13, true))
	suite.Require().NoError(s.AddToCart(ctx, 22, false))

	sum := decimal.Zero
	for id, qty := range s.Quantities() {
		sum = sum.Add(s.UnitPrices()[id].Mul(decimal.NewFromInt(int64(qty))))
	}
	suite.True(sum.Equal(s.TotalPrice()))
	suite.Equal(4, s.TotalItems())

	lines := s.Lines()
	suite.Require().Len(lines, 3)
	suite.Equal([]int{1, 13, 22}, []int{lines[0].ItemID, lines[1].ItemID, lines[2].ItemID})
	suite.Equal("Margherita Pizza", lines[0].Name)
	suite.assertMoney("25.98", lines[0].LineTotal)
	suite.False(lines[0].Discounted)
	suite.True(lines[1].Discounted)
	suite.assertMoney("2.69", lines[1].UnitPrice)
	suite.assertMoney("2.99", lines[1].BasePrice)
}

func (suite *CartServiceTestSuite) TestAddSpecialOnlyOnSpecialDay() {
	ctx := context.Background()
	monday := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	suite.Require().NoError(suite.cartService.AddSpecial(ctx, 5, monday))
	p, _ := suite.cartService.UnitPrice(5)
	suite.assertMoney("8.99", p)

	suite.Require().NoError(suite.cartService.AddSpecial(ctx, 6, tuesday))
	p, _ = suite.cartService.UnitPrice(6)
	suite.assertMoney("12.99", p)

	suite.ErrorIs(suite.cartService.AddSpecial(ctx, 404, monday), ErrUnknownItem)
}

func (suite *CartServiceTestSuite) TestUnknownItemIsReported() {
	ctx := context.Background()
	err := suite.cartService.AddToCart(ctx, 999, false)

	suite.ErrorIs(err, ErrUnknownItem)
	suite.Equal(ReasonUnknownItem, ReasonOf(err))
	suite.Equal(0, suite.cartService.TotalItems())
	_, getErr := suite.store.Get(ctx, snapshot.CartKey)
	suite.ErrorIs(getErr, storage.ErrKeyNotFound)
}

func (suite *CartServiceTestSuite) TestRemoveAbsentIsNoop() {
	ctx := context.Background()
	suite.NoError(suite.cartService.RemoveFromCart(ctx, 5))
	_, err := suite.store.Get(ctx, snapshot.CartKey)
	suite.ErrorIs(err, storage.ErrKeyNotFound)
}

func (suite *CartServiceTestSuite) TestClearCart() {
	ctx := context.Background()
	s := suite.cartService
	suite.Require().NoError(s.AddToCart(ctx, 2, false))
	suite.Require().NoError(s.AddToCart(ctx, 17, true))

	suite.Require().NoError(s.ClearCart(ctx))
	suite.Equal(0, s.TotalItems())
	suite.True(s.TotalPrice().IsZero())

	raw, err := suite.store.Get(ctx, snapshot.CartKey)
	suite.Require().NoError(err)
	suite.Equal("{}", raw)
	raw, err = suite.store.Get(ctx, snapshot.CartPricesKey)
	suite.Require().NoError(err)
	suite.Equal("{}", raw)

	// 再清一次結果相同
	suite.Require().NoError(s.ClearCart(ctx))
	suite.Equal(0, s.TotalItems())
}

func (suite *CartServiceTestSuite) TestReloadRestoresState() {
	ctx := context.Background()
	s := suite.cartService
	suite.Require().NoError(s.AddToCart(ctx, 5, true))
	suite.Require().NoError(s.AddToCart(ctx, 5, true))
	suite.Require().NoError(s.AddToCart(ctx, 18, false))

	reloaded := NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger())
	suite.Require().NoError(reloaded.Load(ctx))

	suite.Equal(s.Quantities(), reloaded.Quantities())
	want, got := s.UnitPrices(), reloaded.UnitPrices()
	suite.Require().Len(got, len(want))
	for id, p := range want {
		suite.True(p.Equal(got[id]), "item %d", id)
	}
	suite.True(s.TotalPrice().Equal(reloaded.TotalPrice()))
}

func (suite *CartServiceTestSuite) TestLoadCorruptFallsBackToEmpty() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, snapshot.CartKey, "{not json"))
	suite.Require().NoError(suite.store.Set(ctx, snapshot.CartPricesKey, "[]"))

	s := NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger())
	err := s.Load(ctx)
	suite.ErrorIs(err, ErrCorruptSnapshot)
	suite.Equal(ReasonCorruptSnapshot, ReasonOf(err))
	suite.Equal(0, s.TotalItems())

	// 之後的操作照常運作並覆蓋壞掉的快照
	suite.Require().NoError(s.AddToCart(ctx, 3, false))
	raw, err := suite.store.Get(ctx, snapshot.CartKey)
	suite.Require().NoError(err)
	suite.JSONEq(`{"3":1}`, raw)
}

func (suite *CartServiceTestSuite) TestLoadCorruptQuantitiesDropsOrphanPrices() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, snapshot.CartKey, "{bad"))
	suite.Require().NoError(suite.store.Set(ctx, snapshot.CartPricesKey, `{"5":8.99}`))

	s := NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger())
	suite.ErrorIs(s.Load(ctx), ErrCorruptSnapshot)
	suite.Empty(s.UnitPrices())

	suite.Require().NoError(s.AddToCart(ctx, 1, false))
	raw, err := suite.store.Get(ctx, snapshot.CartPricesKey)
	suite.Require().NoError(err)
	suite.JSONEq(`{"1":12.99}`, raw)
}

func (suite *CartServiceTestSuite) TestSnapshotIsCopy() {
	ctx := context.Background()
	suite.Require().NoError(suite.cartService.AddToCart(ctx, 4, false))

	q := suite.cartService.Quantities()
	q[4] = 100
	q[7] = 1
	suite.Equal(1, suite.cartService.Quantity(4))
	suite.Equal(1, suite.cartService.TotalItems())
}

func (suite *CartServiceTestSuite) TestConcurrentAdds() {
	ctx := context.Background()
	s := suite.cartService

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		id := i%4 + 1
		g.Go(func() error {
			return s.AddToCart(ctx, id, false)
		})
	}
	suite.Require().NoError(g.Wait())
	suite.Equal(50, s.TotalItems())

	reloaded := NewCartService(suite.catalog, snapshot.NewCartRepo(suite.store), nopLogger())
	suite.Require().NoError(reloaded.Load(ctx))
	suite.Equal(s.Quantities(), reloaded.Quantities())
}

func TestCartServicePersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_storage.NewMockStorage(ctrl)
	s := NewCartService(defaultCatalog(t), snapshot.NewCartRepo(store), nopLogger())
	boom := errors.New("quota exceeded")

	store.EXPECT().Set(gomock.Any(), snapshot.CartKey, gomock.Any()).Return(boom)

	err := s.AddToCart(context.Background(), 5, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, ReasonPersistFailed, ReasonOf(err))
	// 記憶體狀態仍以最新操作為準
	assert.Equal(t, 1, s.TotalItems())
}

func TestCartServiceLoadStorageFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_storage.NewMockStorage(ctrl)
	s := NewCartService(defaultCatalog(t), snapshot.NewCartRepo(store), nopLogger())

	store.EXPECT().Get(gomock.Any(), gomock.Any()).Return("", errors.New("io error")).Times(2)

	err := s.Load(context.Background())
	assert.Equal(t, ReasonLoadFailed, ReasonOf(err))
	assert.Equal(t, 0, s.TotalItems())
}

func TestIsValidPricePolicy(t *testing.T) {
	assert.True(t, IsValidPricePolicy("last-write"))
	assert.True(t, IsValidPricePolicy("first-add"))
	assert.False(t, IsValidPricePolicy("sticky"))
}
