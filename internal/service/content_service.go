package service

import (
	"context"

	"packtrail/internal/models"
	"packtrail/internal/repository"
	"packtrail/internal/validation"
)

// ContentService handles the site content: articles, changelogs, and bug
// reports. Write access control happens at the API layer; this service only
// validates shape.
type ContentService struct {
	contentRepo repository.ContentRepository
}

// NewContentService returns a new ContentService.
func NewContentService(contentRepo repository.ContentRepository) *ContentService {
	return &ContentService{contentRepo: contentRepo}
}

// ListArticles returns all articles, newest first.
func (s *ContentService) ListArticles(ctx context.Context) ([]models.Article, error) {
	return s.contentRepo.ListArticles(ctx)
}

// ListChangelogs returns all changelog entries, newest first.
func (s *ContentService) ListChangelogs(ctx context.Context) ([]models.Changelog, error) {
	return s.contentRepo.ListChangelogs(ctx)
}

// AddArticle publishes an article authored by the given user.
func (s *ContentService) AddArticle(ctx context.Context, userID uint, title, body, imageURL string) (*models.Article, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if body == "" {
		return nil, models.NewValidationError("Body cannot be empty")
	}
	article := &models.Article{UserID: userID, Title: title, Body: body, ImageURL: imageURL}
	if err := s.contentRepo.CreateArticle(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

// AddChangelog publishes a changelog entry.
func (s *ContentService) AddChangelog(ctx context.Context, userID uint, title, body string) (*models.Changelog, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if body == "" {
		return nil, models.NewValidationError("Body cannot be empty")
	}
	changelog := &models.Changelog{UserID: userID, Title: title, Body: body}
	if err := s.contentRepo.CreateChangelog(ctx, changelog); err != nil {
		return nil, err
	}
	return changelog, nil
}

// AddBugReport records a bug report from any signed-in user.
func (s *ContentService) AddBugReport(ctx context.Context, userID uint, title, description string) (*models.BugReport, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if description == "" {
		return nil, models.NewValidationError("Description cannot be empty")
	}
	report := &models.BugReport{UserID: userID, Title: title, Description: description}
	if err := s.contentRepo.CreateBugReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
