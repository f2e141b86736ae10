package repository

import (
	"context"

	"packtrail/internal/cache"
	"packtrail/internal/models"

	"gorm.io/gorm"
)

// ContentRepository defines persistence operations for site content:
// articles, changelogs and bug reports.
type ContentRepository interface {
	ListArticles(ctx context.Context) ([]models.Article, error)
	CreateArticle(ctx context.Context, article *models.Article) error
	ListChangelogs(ctx context.Context) ([]models.Changelog, error)
	CreateChangelog(ctx context.Context, changelog *models.Changelog) error
	CreateBugReport(ctx context.Context, report *models.BugReport) error
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository returns a new ContentRepository implementation.
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) ListArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	err := cache.Aside(ctx, cache.ArticlesKey, &articles, cache.ContentTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Order("created_at DESC").
			Find(&articles).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (r *contentRepository) CreateArticle(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateContent(ctx)
	return nil
}

func (r *contentRepository) ListChangelogs(ctx context.Context) ([]models.Changelog, error) {
	var changelogs []models.Changelog
	err := cache.Aside(ctx, cache.ChangelogsKey, &changelogs, cache.ContentTTL, func() error {
		if err := readDB(r.db).WithContext(ctx).
			Order("created_at DESC").
			Find(&changelogs).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return changelogs, nil
}

func (r *contentRepository) CreateChangelog(ctx context.Context, changelog *models.Changelog) error {
	if err := r.db.WithContext(ctx).Create(changelog).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateContent(ctx)
	return nil
}

func (r *contentRepository) CreateBugReport(ctx context.Context, report *models.BugReport) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
