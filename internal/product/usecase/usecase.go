package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pricing"
	"github.com/fekuna/omnipos-order-service/internal/product"
	"github.com/fekuna/omnipos-order-service/internal/product/dto"
	"github.com/fekuna/omnipos-order-service/pkg/cache"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	indexName = "products"
	cacheTTL  = 5 * time.Minute
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"name": { "type": "text" },
			"category_id": { "type": "keyword" },
			"price": { "type": "scaled_float", "scaling_factor": 100 },
			"effective_price": { "type": "scaled_float", "scaling_factor": 100 },
			"in_stock": { "type": "boolean" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	tx     *database.TxManager
	cache  product.Cache
	es     product.SearchIndex
	logger logger.ZapLogger
}

// NewProductUseCase builds the catalog usecase. cache and es may be nil.
func NewProductUseCase(repo product.Repository, tx *database.TxManager, cache product.Cache, es product.SearchIndex, log logger.ZapLogger) product.UseCase {
	uc := &productUseCase{
		repo:   repo,
		tx:     tx,
		cache:  cache,
		es:     es,
		logger: log,
	}
	if es != nil {
		if err := es.CreateIndex(context.Background(), indexName, indexMapping); err != nil {
			log.Warn("failed to ensure product index", zap.Error(err))
		}
	}
	return uc
}

type productDocument struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CategoryID     string    `json:"category_id"`
	Price          string    `json:"price"`
	EffectivePrice string    `json:"effective_price"`
	InStock        bool      `json:"in_stock"`
	CreatedAt      time.Time `json:"created_at"`
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	var p *model.Product
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = uc.create(ctx, input, "")
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, p)
	return p, nil
}

func (uc *productUseCase) ImportProducts(ctx context.Context, inputs []*dto.CreateProductInput) ([]model.Product, error) {
	if len(inputs) == 0 {
		return nil, apperror.Validation("products", "at least one product is required")
	}

	created := make([]model.Product, 0, len(inputs))
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		verr := apperror.NewValidation()
		for i, input := range inputs {
			p, err := uc.create(ctx, input, fmt.Sprintf("products[%d].", i))
			var ve *apperror.ValidationError
			if errors.As(err, &ve) {
				for _, is := range ve.Issues {
					verr.Add(is)
				}
				continue
			}
			if err != nil {
				return err
			}
			created = append(created, *p)
		}
		return verr.OrNil()
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		uc.afterWrite(ctx, &created[i])
	}
	uc.logger.Info("products imported", zap.Int("count", len(created)))
	return created, nil
}

// create is the only path that inserts products.
func (uc *productUseCase) create(ctx context.Context, input *dto.CreateProductInput, fieldPrefix string) (*model.Product, error) {
	p, err := model.NewProduct(strings.TrimSpace(input.Name), input.CategoryID, input.Price, input.DiscountPrice, input.Stock)
	if err != nil {
		return nil, productValidation(fieldPrefix, err)
	}
	if err := uc.requireCategory(ctx, fieldPrefix, p.CategoryID); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	key := "products:item:" + id
	if uc.cache != nil {
		var cached model.Product
		if err := uc.cache.GetJSON(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			uc.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.setCache(ctx, key, p)
	return p, nil
}

type cachedList struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.generateCacheKey(filters)
	if err == nil && uc.cache != nil {
		var cached cachedList
		if err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached.Products, cached.Count, nil
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		products, count, err := uc.search(ctx, filters)
		if err == nil {
			return products, count, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheKey != "" {
		uc.setCache(ctx, cacheKey, cachedList{Products: products, Count: count})
	}
	return products, count, nil
}

// search resolves matching ids in the index and reloads the rows so prices and stock
// are current.
func (uc *productUseCase) search(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	must := []map[string]interface{}{
		{"match": map[string]interface{}{"name": map[string]interface{}{"query": f.SearchQuery, "fuzziness": "AUTO"}}},
	}
	if f.CategoryID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"category_id": f.CategoryID}})
	}
	if f.InStockOnly {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"in_stock": true}})
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}},
	}
	if f.PageSize > 0 {
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	rows, err := uc.repo.FindByIDs(ctx, ids, database.LockNone)
	if err != nil {
		return nil, 0, err
	}

	byID := make(map[string]model.Product, len(rows))
	for _, p := range rows {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, res.Hits.Total.Value, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	var p *model.Product
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		p, err = uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			return productValidation("", model.ErrMissingName)
		}
		if input.CategoryID == "" {
			return productValidation("", model.ErrMissingCategoryID)
		}
		if input.CategoryID != p.CategoryID {
			if err := uc.requireCategory(ctx, "", input.CategoryID); err != nil {
				return err
			}
		}
		if err := p.SetPricing(input.Price, input.DiscountPrice); err != nil {
			return productValidation("", err)
		}

		p.Name = name
		p.CategoryID = input.CategoryID
		p.UpdatedAt = time.Now().UTC()
		return uc.repo.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.afterWrite(ctx, p)
	return p, nil
}

// DeleteProduct refuses products that orders refer to; their rows back the price snapshots.
func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := uc.repo.FindByIDs(ctx, []string{id}, database.LockUpdate)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return apperror.NotFound("product", id)
		}
		referenced, err := uc.repo.ReferencedByOrders(ctx, id)
		if err != nil {
			return err
		}
		if referenced {
			return apperror.Referenced("product", id)
		}
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.invalidateProductCache(ctx)
	if uc.es != nil {
		if err := uc.es.Delete(ctx, indexName, id); err != nil {
			uc.logger.Error("failed to delete product from ES", zap.String("product_id", id), zap.Error(err))
		}
	}
	return nil
}

func (uc *productUseCase) requireCategory(ctx context.Context, fieldPrefix, categoryID string) error {
	ok, err := uc.repo.CategoryExists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Validation(fieldPrefix+"category_id", "category does not exist")
	}
	return nil
}

// afterWrite refreshes derived read models. Failures are logged only.
func (uc *productUseCase) afterWrite(ctx context.Context, p *model.Product) {
	uc.invalidateProductCache(ctx)
	uc.syncToElastic(ctx, p)
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	doc := productDocument{
		ID:             p.ID,
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		Price:          p.Price.StringFixed(2),
		EffectivePrice: pricing.EffectivePrice(p).StringFixed(2),
		InStock:        p.Stock > 0,
		CreatedAt:      p.CreatedAt,
	}
	if err := uc.es.Index(ctx, indexName, p.ID, doc); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) setCache(ctx context.Context, key string, v interface{}) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.SetJSON(ctx, key, v, cacheTTL); err != nil {
		uc.logger.Warn("product cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.DeleteByPattern(ctx, "products:*"); err != nil {
		uc.logger.Warn("product cache invalidation failed", zap.Error(err))
	}
}

func productValidation(fieldPrefix string, err error) error {
	field := "product"
	switch {
	case errors.Is(err, model.ErrNonPositivePrice):
		field = "price"
	case errors.Is(err, model.ErrNegativeDiscount), errors.Is(err, model.ErrDiscountNotLower):
		field = "discount_price"
	case errors.Is(err, model.ErrNegativeStock):
		field = "stock"
	case errors.Is(err, model.ErrMissingName):
		field = "name"
	case errors.Is(err, model.ErrMissingCategoryID):
		field = "category_id"
	}
	return apperror.Validation(fieldPrefix+field, err.Error())
}
