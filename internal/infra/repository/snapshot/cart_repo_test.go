package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	mock_storage "github.com/RoyceAzure/lab/storefront/internal/infra/storage/mock"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type CartRepoTestSuite struct {
	suite.Suite
	store    *storage.MemoryStorage
	cartRepo *CartRepo
}

func (suite *CartRepoTestSuite) SetupTest() {
	suite.store = storage.NewMemoryStorage()
	suite.cartRepo = NewCartRepo(suite.store)
}

func TestCartRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CartRepoTestSuite))
}

func (suite *CartRepoTestSuite) TestLoadEmpty() {
	snap, err := suite.cartRepo.Load(context.Background())
	suite.Require().NoError(err)
	suite.NotNil(snap.Quantities)
	suite.NotNil(snap.UnitPrices)
	suite.True(snap.IsEmpty())
}

func (suite *CartRepoTestSuite) TestSaveAndLoad() {
	ctx := context.Background()
	snap := model.NewCartSnapshot()
	snap.Quantities[5] = 2
	snap.UnitPrices[5] = decimal.RequireFromString("8.99")
	snap.Quantities[12] = 1
	snap.UnitPrices[12] = decimal.RequireFromString("5.99")

	suite.Require().NoError(suite.cartRepo.Save(ctx, snap))

	raw, err := suite.store.Get(ctx, CartKey)
	suite.Require().NoError(err)
	suite.JSONEq(`{"5":2,"12":1}`, raw)

	raw, err = suite.store.Get(ctx, CartPricesKey)
	suite.Require().NoError(err)
	suite.JSONEq(`{"5":8.99,"12":5.99}`, raw)

	got, err := suite.cartRepo.Load(ctx)
	suite.Require().NoError(err)
	suite.Equal(snap.Quantities, got.Quantities)
	suite.Require().Len(got.UnitPrices, 2)
	for id, p := range snap.UnitPrices {
		suite.True(p.Equal(got.UnitPrices[id]), "price of %d", id)
	}
}

func (suite *CartRepoTestSuite) TestLoadReadsFrontendFormat() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, CartKey, `{"1":3}`))
	suite.Require().NoError(suite.store.Set(ctx, CartPricesKey, `{"1":11.69}`))

	got, err := suite.cartRepo.Load(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[int]int{1: 3}, got.Quantities)
	suite.Equal("11.69", got.UnitPrices[1].StringFixed(2))
}

func (suite *CartRepoTestSuite) TestCorruptKeysLoadIndependently() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, CartKey, `{"1":2}`))
	suite.Require().NoError(suite.store.Set(ctx, CartPricesKey, `{"1":`))

	got, err := suite.cartRepo.Load(ctx)
	suite.ErrorIs(err, ErrCorruptSnapshot)
	suite.Equal(map[int]int{1: 2}, got.Quantities)
	suite.Empty(got.UnitPrices)
}

func (suite *CartRepoTestSuite) TestLoadDropsPricesWithoutQuantity() {
	ctx := context.Background()
	suite.Require().NoError(suite.store.Set(ctx, CartKey, `{"1":`))
	suite.Require().NoError(suite.store.Set(ctx, CartPricesKey, `{"1":2.5}`))

	got, err := suite.cartRepo.Load(ctx)
	suite.ErrorIs(err, ErrCorruptSnapshot)
	suite.Empty(got.Quantities)
	suite.Empty(got.UnitPrices)

	suite.Require().NoError(suite.store.Set(ctx, CartKey, `{"2":1}`))
	suite.Require().NoError(suite.store.Set(ctx, CartPricesKey, `{"2":4.99,"7":3.5}`))

	got, err = suite.cartRepo.Load(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[int]int{2: 1}, got.Quantities)
	suite.Len(got.UnitPrices, 1)
	suite.True(got.UnitPrices[2].Equal(decimal.RequireFromString("4.99")))
}

func (suite *CartRepoTestSuite) TestSaveEmptyWritesEmptyObjects() {
	ctx := context.Background()
	suite.Require().NoError(suite.cartRepo.Save(ctx, model.NewCartSnapshot()))

	raw, err := suite.store.Get(ctx, CartKey)
	suite.Require().NoError(err)
	suite.Equal("{}", raw)
	raw, err = suite.store.Get(ctx, CartPricesKey)
	suite.Require().NoError(err)
	suite.Equal("{}", raw)
}

func TestDecodeQuantitiesRejectsInvalid(t *testing.T) {
	testCases := map[string]string{
		"not json":        `nope`,
		"array":           `[1,2]`,
		"non integer key": `{"abc":1}`,
		"zero id":         `{"0":1}`,
		"zero quantity":   `{"3":0}`,
		"negative":        `{"3":-1}`,
		"float quantity":  `{"3":1.5}`,
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeQuantities(raw)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestDecodePricesRejectsInvalid(t *testing.T) {
	testCases := map[string]string{
		"not json":       `{`,
		"text price":     `{"3":"cheap"}`,
		"negative price": `{"3":-1.00}`,
		"bad key":        `{"x":1.00}`,
	}
	for name, raw := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePrices(raw)
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestCartRepoStorageErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mock_storage.NewMockStorage(ctrl)
	repo := NewCartRepo(store)
	boom := errors.New("disk full")

	t.Run("load", func(t *testing.T) {
		store.EXPECT().Get(gomock.Any(), CartKey).Return("", boom)
		store.EXPECT().Get(gomock.Any(), CartPricesKey).Return("", storage.ErrKeyNotFound)

		snap, err := repo.Load(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrCorruptSnapshot)
		assert.True(t, snap.IsEmpty())
	})

	t.Run("save stops at first failure", func(t *testing.T) {
		store.EXPECT().Set(gomock.Any(), CartKey, "{}").Return(boom)

		err := repo.Save(context.Background(), model.NewCartSnapshot())
		require.ErrorIs(t, err, boom)
	})
}
