package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/category"
	"github.com/fekuna/omnipos-order-service/internal/category/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	tx     *database.TxManager
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, tx *database.TxManager, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		tx:     tx,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name", "name is required")
	}
	parentID := normalizeParent(input.ParentID)

	now := time.Now().UTC()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID: parentID,
		Name:     name,
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if parentID != nil {
			if _, err := uc.repo.FindByID(ctx, *parentID); err != nil {
				return parentError(err)
			}
		}
		return uc.repo.Create(ctx, cat)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("category created", zap.String("category_id", cat.ID))
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return uc.repo.FindByID(ctx, id)
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

// GetCategoryTree returns the root categories with their descendants nested under Children.
func (uc *categoryUseCase) GetCategoryTree(ctx context.Context) ([]model.Category, error) {
	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return nil, err
	}
	return buildTree(all), nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name", "name is required")
	}
	parentID := normalizeParent(input.ParentID)

	var cat *model.Category
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if parentID != nil {
			if err := uc.repo.LockTree(ctx); err != nil {
				return err
			}
		}

		var err error
		cat, err = uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}

		if parentID != nil {
			if _, err := uc.repo.FindByID(ctx, *parentID); err != nil {
				return parentError(err)
			}
			subtree, err := uc.repo.SubtreeIDs(ctx, cat.ID)
			if err != nil {
				return err
			}
			if slices.Contains(subtree, *parentID) {
				return apperror.Validation("parent_id", "a category cannot be moved under itself or one of its descendants")
			}
		}

		cat.Name = name
		cat.ParentID = parentID
		cat.UpdatedAt = time.Now().UTC()
		return uc.repo.Update(ctx, cat)
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes the category and its subtree. Categories holding products that
// orders refer to are kept so that order history stays intact.
func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.LockTree(ctx); err != nil {
			return err
		}
		ids, err := uc.repo.SubtreeIDs(ctx, id)
		if err != nil {
			return err
		}
		ordered, err := uc.repo.CountOrderedProducts(ctx, ids)
		if err != nil {
			return err
		}
		if ordered > 0 {
			return apperror.Referenced("category", id)
		}
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

// PriceSummary averages the list price of every product in the category's subtree.
func (uc *categoryUseCase) PriceSummary(ctx context.Context, id string) (*model.CategoryPriceSummary, error) {
	ids, err := uc.repo.SubtreeIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	prices, err := uc.repo.ListPrices(ctx, ids)
	if err != nil {
		return nil, err
	}

	summary := &model.CategoryPriceSummary{
		CategoryID:       id,
		AveragePrice:     decimal.Zero,
		ProductsCount:    len(prices),
		SubcategoryCount: len(ids) - 1,
	}
	if len(prices) > 0 {
		summary.AveragePrice = decimal.Avg(prices[0], prices[1:]...).Round(2)
	}
	return summary, nil
}

func normalizeParent(parentID *string) *string {
	if parentID == nil || *parentID == "" {
		return nil
	}
	p := *parentID
	return &p
}

func parentError(err error) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.Validation("parent_id", "parent category does not exist")
	}
	return err
}

func buildTree(all []model.Category) []model.Category {
	children := make(map[string][]model.Category)
	var roots []model.Category
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var attach func(c model.Category) model.Category
	attach = func(c model.Category) model.Category {
		for _, child := range children[c.ID] {
			c.Children = append(c.Children, attach(child))
		}
		return c
	}

	tree := make([]model.Category, 0, len(roots))
	for _, r := range roots {
		tree = append(tree, attach(r))
	}
	return tree
}
