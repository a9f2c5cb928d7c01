package product

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/eltech/store-backend/internal/domain/user"
	"github.com/eltech/store-backend/internal/infrastructure/database/dbtest"
	"github.com/eltech/store-backend/internal/pkg/apperr"
	"github.com/eltech/store-backend/internal/pkg/logging"
	"github.com/eltech/store-backend/internal/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	products []uint
}

func (r *recordingNotifier) NotifyRestock(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, p.ID)
	return nil
}

func (r *recordingNotifier) calls() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint(nil), r.products...)
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *recordingNotifier) {
	t.Helper()
	db := dbtest.New(t, &user.User{}, &Category{}, &Product{}, &ProductImage{},
		&ProductFeature{}, &Rating{}, &Review{}, &WeeklyDeal{})
	n := &recordingNotifier{}
	return NewService(db, n, logging.Discard()), db, n
}

func seedCategory(t *testing.T, s *Service, name string) *Category {
	t.Helper()
	c, err := s.CreateCategory(context.Background(), &CategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

func seedProduct(t *testing.T, s *Service, categoryID uint, name string, price string, stock int) *Product {
	t.Helper()
	p, err := s.CreateProduct(context.Background(), &ProductCreateRequest{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return p
}

func seedUser(t *testing.T, db *gorm.DB, email string) *user.User {
	t.Helper()
	u := &user.User{Email: email, FirstName: "Ada", LastName: "Byron", IsActive: true}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestCreateProduct(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")

	p, err := s.CreateProduct(ctx, &ProductCreateRequest{
		Name:       "  Pixel  ",
		Price:      decimal.RequireFromString("499.999"),
		Stock:      3,
		CategoryID: cat.ID,
		Features:   []string{"OLED", " ", "5G"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pixel", p.Name)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("500")))
	require.Len(t, p.Features, 2)
	assert.Equal(t, "OLED", p.Features[0].Feature)
	require.NotNil(t, p.Category)
	assert.Equal(t, "Phones", p.Category.Name)

	t.Run("unknown category", func(t *testing.T) {
		_, err := s.CreateProduct(ctx, &ProductCreateRequest{Name: "x", Price: decimal.NewFromInt(1), CategoryID: 999})
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := s.CreateProduct(ctx, &ProductCreateRequest{Name: "x", Price: decimal.NewFromInt(-1), CategoryID: cat.ID})
		assert.ErrorIs(t, err, ErrNegativePrice)
		assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))
	})

	t.Run("sale above price", func(t *testing.T) {
		_, err := s.CreateProduct(ctx, &ProductCreateRequest{
			Name: "x", Price: decimal.NewFromInt(10), SaleAmount: decimal.NewFromInt(11), CategoryID: cat.ID,
		})
		assert.ErrorIs(t, err, ErrInvalidSale)
	})

	t.Run("negative stock", func(t *testing.T) {
		_, err := s.CreateProduct(ctx, &ProductCreateRequest{Name: "x", Price: decimal.NewFromInt(1), Stock: -1, CategoryID: cat.ID})
		assert.ErrorIs(t, err, ErrNegativeStock)
	})
}

func TestListProducts(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	phones := seedCategory(t, s, "Phones")
	laptops := seedCategory(t, s, "Laptops")

	seedProduct(t, s, phones.ID, "Pixel", "499", 3)
	galaxy := seedProduct(t, s, phones.ID, "Galaxy", "599", 0)
	seedProduct(t, s, laptops.ID, "ThinkPad", "1299", 1)
	require.NoError(t, db.Model(&Product{}).Where("id = ?", galaxy.ID).Update("view_count", 50).Error)

	hot := true
	_, err := s.UpdateProduct(ctx, galaxy.ID, &ProductUpdateRequest{IsHot: &hot})
	require.NoError(t, err)

	t.Run("by category", func(t *testing.T) {
		items, meta, err := s.ListProducts(ctx, &ProductListRequest{CategoryID: phones.ID})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.EqualValues(t, 2, meta.Total)
	})

	t.Run("search is case insensitive", func(t *testing.T) {
		items, _, err := s.ListProducts(ctx, &ProductListRequest{Search: "THINK"})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "ThinkPad", items[0].Name)
	})

	t.Run("flag filter", func(t *testing.T) {
		items, _, err := s.ListProducts(ctx, &ProductListRequest{IsHot: &hot})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, galaxy.ID, items[0].ID)
	})

	t.Run("popular first", func(t *testing.T) {
		items, _, err := s.ListProducts(ctx, &ProductListRequest{IsPopular: true})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, galaxy.ID, items[0].ID)
	})

	t.Run("pagination", func(t *testing.T) {
		items, meta, err := s.ListProducts(ctx, &ProductListRequest{Params: pagination.Params{Page: 2, Limit: 2}})
		require.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, 2, meta.TotalPages)
	})
}

func TestGetProductCountsViewsAndAggregatesRatings(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Audio")
	p := seedProduct(t, s, cat.ID, "Headphones", "99.90", 5)
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	_, err := s.RateProduct(ctx, alice.ID, p.ID, 5)
	require.NoError(t, err)
	_, err = s.RateProduct(ctx, bob.ID, p.ID, 4)
	require.NoError(t, err)

	detail, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, detail.ViewCount)
	assert.InDelta(t, 4.5, detail.AverageRating, 0.001)
	assert.EqualValues(t, 2, detail.RatingCount)

	detail, err = s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, detail.ViewCount)

	_, err = s.GetProduct(ctx, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRateProductReplacesEarlierRating(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Audio")
	p := seedProduct(t, s, cat.ID, "Speaker", "49", 2)
	alice := seedUser(t, db, "alice@example.com")

	_, err := s.RateProduct(ctx, alice.ID, p.ID, 2)
	require.NoError(t, err)
	r, err := s.RateProduct(ctx, alice.ID, p.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)

	var count int64
	require.NoError(t, db.Model(&Rating{}).Where("product_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	_, err = s.RateProduct(ctx, alice.ID, p.ID, 6)
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = s.RateProduct(ctx, alice.ID, 9999, 3)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReviews(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Audio")
	p := seedProduct(t, s, cat.ID, "Speaker", "49", 2)
	alice := seedUser(t, db, "alice@example.com")
	bob := seedUser(t, db, "bob@example.com")

	review, err := s.CreateReview(ctx, alice.ID, p.ID, &ReviewRequest{Content: " Great bass "})
	require.NoError(t, err)
	assert.Equal(t, "Great bass", review.Content)
	require.NotNil(t, review.Author)
	assert.Equal(t, "Ada", review.Author.FirstName)

	_, err = s.CreateReview(ctx, alice.ID, p.ID, &ReviewRequest{Content: "   "})
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))

	_, err = s.UpdateReview(ctx, bob.ID, p.ID, review.ID, &ReviewRequest{Content: "mine now"})
	assert.ErrorIs(t, err, ErrNotReviewOwner)
	assert.Equal(t, apperr.ErrForbidden, apperr.KindOf(err))

	updated, err := s.UpdateReview(ctx, alice.ID, p.ID, review.ID, &ReviewRequest{Content: "Good bass"})
	require.NoError(t, err)
	assert.Equal(t, "Good bass", updated.Content)
	require.NotNil(t, updated.Author)
	assert.Equal(t, alice.ID, updated.Author.ID)

	reviews, meta, err := s.ListReviews(ctx, p.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.EqualValues(t, 1, meta.Total)
	assert.Equal(t, "Good bass", reviews[0].Content)

	var users int64
	require.NoError(t, db.Model(&user.User{}).Count(&users).Error)
	assert.EqualValues(t, 2, users, "editing a review leaves accounts alone")

	assert.ErrorIs(t, s.DeleteReview(ctx, bob.ID, p.ID, review.ID), ErrNotReviewOwner)
	require.NoError(t, s.DeleteReview(ctx, alice.ID, p.ID, review.ID))
	assert.ErrorIs(t, s.DeleteReview(ctx, alice.ID, p.ID, review.ID), ErrReviewNotFound)
}

func TestUpdateStockNotifiesOnRestockOnly(t *testing.T) {
	s, _, n := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")
	p := seedProduct(t, s, cat.ID, "Pixel", "499", 0)

	_, err := s.UpdateStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint{p.ID}, n.calls())

	_, err = s.UpdateStock(ctx, p.ID, 8)
	require.NoError(t, err)
	assert.Len(t, n.calls(), 1, "positive to positive must not notify")

	_, err = s.UpdateStock(ctx, p.ID, -1)
	assert.ErrorIs(t, err, ErrNegativeStock)

	_, err = s.UpdateStock(ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateProductValidatesSaleAgainstStoredPrice(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")
	p := seedProduct(t, s, cat.ID, "Pixel", "100", 1)

	sale := decimal.NewFromInt(150)
	_, err := s.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{SaleAmount: &sale})
	assert.ErrorIs(t, err, ErrInvalidSale)

	sale = decimal.NewFromInt(80)
	onSale := true
	updated, err := s.UpdateProduct(ctx, p.ID, &ProductUpdateRequest{SaleAmount: &sale, IsOnSale: &onSale})
	require.NoError(t, err)
	assert.True(t, updated.IsOnSale)
	assert.True(t, updated.SaleAmount.Equal(sale))
}

func TestImagesAndFeatures(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")
	p := seedProduct(t, s, cat.ID, "Pixel", "499", 1)

	img, err := s.AddImage(ctx, p.ID, "uploads/products/a.png")
	require.NoError(t, err)
	_, err = s.AddImage(ctx, p.ID, "uploads/products/b.png")
	require.NoError(t, err)

	items, _, err := s.ListProducts(ctx, &ProductListRequest{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "uploads/products/a.png", items[0].Image)

	path, err := s.DeleteImage(ctx, p.ID, img.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/products/a.png", path)
	_, err = s.DeleteImage(ctx, p.ID, img.ID)
	assert.ErrorIs(t, err, ErrImageNotFound)

	f, err := s.AddFeature(ctx, p.ID, "Waterproof")
	require.NoError(t, err)
	_, err = s.AddFeature(ctx, p.ID, " ")
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))
	require.NoError(t, s.DeleteFeature(ctx, p.ID, f.ID))
	assert.ErrorIs(t, s.DeleteFeature(ctx, p.ID, f.ID), ErrFeatureNotFound)
}

func TestDeleteProductReturnsImagePaths(t *testing.T) {
	s, db, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")
	p := seedProduct(t, s, cat.ID, "Pixel", "499", 1)
	_, err := s.AddImage(ctx, p.ID, "uploads/products/a.png")
	require.NoError(t, err)
	alice := seedUser(t, db, "alice@example.com")
	_, err = s.RateProduct(ctx, alice.ID, p.ID, 3)
	require.NoError(t, err)

	paths, err := s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uploads/products/a.png"}, paths)

	var ratings int64
	require.NoError(t, db.Model(&Rating{}).Count(&ratings).Error)
	assert.Zero(t, ratings)

	_, err = s.DeleteProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategories(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	phones := seedCategory(t, s, "Phones")
	seedCategory(t, s, "Audio")

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Audio", list[0].Name)

	renamed, err := s.UpdateCategory(ctx, phones.ID, &CategoryRequest{Name: "Smartphones"})
	require.NoError(t, err)
	assert.Equal(t, "Smartphones", renamed.Name)

	_, prev, err := s.SetCategoryImage(ctx, phones.ID, "uploads/categories/new.png")
	require.NoError(t, err)
	assert.Empty(t, prev)

	p := seedProduct(t, s, phones.ID, "Pixel", "499", 1)
	_, err = s.DeleteCategory(ctx, phones.ID)
	assert.ErrorIs(t, err, ErrCategoryInUse)

	_, err = s.DeleteProduct(ctx, p.ID)
	require.NoError(t, err)
	deleted, err := s.DeleteCategory(ctx, phones.ID)
	require.NoError(t, err)
	assert.Equal(t, "uploads/categories/new.png", deleted.Image)

	_, err = s.GetCategory(ctx, phones.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestWeeklyDeal(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := s.GetWeeklyDeal(ctx)
	assert.ErrorIs(t, err, ErrNoWeeklyDeal)

	cat := seedCategory(t, s, "Phones")
	p := seedProduct(t, s, cat.ID, "Pixel", "499", 1)
	q := seedProduct(t, s, cat.ID, "Galaxy", "599", 1)

	_, err = s.CreateWeeklyDeal(ctx, &WeeklyDealRequest{ProductID: p.ID, DealTime: "2030-01-10 12:00"})
	require.NoError(t, err)
	older, err := s.CreateWeeklyDeal(ctx, &WeeklyDealRequest{ProductID: q.ID, DealTime: "2030-01-01"})
	require.NoError(t, err)
	assert.Equal(t, q.ID, older.ProductID)

	deal, err := s.GetWeeklyDeal(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, deal.ProductID)
	assert.Equal(t, time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC), deal.DealTime.UTC())

	_, err = s.CreateWeeklyDeal(ctx, &WeeklyDealRequest{ProductID: p.ID, DealTime: "next week"})
	assert.Equal(t, apperr.ErrInvalid, apperr.KindOf(err))
}

func TestExportProducts(t *testing.T) {
	s, _, _ := newTestService(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "Phones")
	seedProduct(t, s, cat.ID, "Pixel", "499.5", 2)

	var buf bytes.Buffer
	require.NoError(t, s.ExportProducts(ctx, &buf))

	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	sheet := file.Sheets[0]
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "Pixel", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "Phones", sheet.Rows[1].Cells[2].String())
	assert.Equal(t, "499.50", sheet.Rows[1].Cells[3].String())
}
