package service

import (
	"strings"

	"github.com/voltmart/voltmart-api/internal/models"
	"github.com/voltmart/voltmart-api/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo        repository.CategoryRepository
	productRepo repository.ProductRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryService {
	return &CategoryService{repo: repo, productRepo: productRepo}
}

// CategoryInput 创建/更新分类输入
type CategoryInput struct {
	Slug      string
	Name      string
	SortOrder int
}

func (s *CategoryService) validateInput(input *CategoryInput) error {
	input.Slug = strings.ToLower(strings.TrimSpace(input.Slug))
	input.Name = strings.TrimSpace(input.Name)
	if input.Slug == "" || input.Name == "" {
		return ErrCategoryInvalid
	}
	return nil
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.List()
}

// Get 获取分类详情
func (s *CategoryService) Get(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(input CategoryInput) (*models.Category, error) {
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, 0)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategorySlugTaken
	}
	category := &models.Category{
		Slug:      input.Slug,
		Name:      input.Name,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id uint, input CategoryInput) (*models.Category, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrCategoryNotFound
	}
	if err := s.validateInput(&input); err != nil {
		return nil, err
	}
	count, err := s.repo.CountBySlug(input.Slug, id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategorySlugTaken
	}
	existing.Slug = input.Slug
	existing.Name = input.Name
	existing.SortOrder = input.SortOrder
	if err := s.repo.Update(existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Delete 删除分类
// 仍挂有商品的分类不允许删除。
func (s *CategoryService) Delete(id uint) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrCategoryNotFound
	}
	count, err := s.productRepo.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}
