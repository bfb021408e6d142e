package service

import (
	"strings"

	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

// ProductInput 创建/更新商品输入
type ProductInput struct {
	CategoryID  uint
	Slug        string
	Name        string
	Brand       string
	Description string
	PriceAmount models.Money
	Stock       int
	Images      []string
	IsActive    *bool
	SortOrder   int
}

func (s *ProductService) validateInput(input *ProductInput) error {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" || input.CategoryID == 0 {
		return ErrProductInvalid
	}
	if input.PriceAmount.Decimal.LessThanOrEqual(decimal.Zero) {
		return ErrProductInvalid
	}
	if input.Stock < 0 {
		return ErrProductInvalid
	}
	return nil
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID uint, brand, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Brand:        brand,
		Search:       search,
		OnlyActive:   true,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情
func (s *ProductService) GetPublicBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(slug)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// Get 获取商品详情
func (s *ProductService) Get(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input ProductInput) (*models.Product, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugTaken
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		CategoryID:  input.CategoryID,
		Slug:        input.Slug,
		Name:        input.Name,
		Brand:       strings.TrimSpace(input.Brand),
		Description: input.Description,
		PriceAmount: input.PriceAmount,
		Stock:       input.Stock,
		Images:      input.Images,
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Update 更新商品
func (s *ProductService) Update(id uint, input ProductInput) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugTaken
	}

	existing.CategoryID = input.CategoryID
	existing.Slug = input.Slug
	existing.Name = input.Name
	existing.Brand = strings.TrimSpace(input.Brand)
	existing.Description = input.Description
	existing.PriceAmount = input.PriceAmount
	existing.Stock = input.Stock
	existing.Images = input.Images
	existing.SortOrder = input.SortOrder
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}
	return s.repo.Delete(id)
}
