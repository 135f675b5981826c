package services

import (
	"errors"
	"sort"
	"time"

	"storefront-service/apperrors"
	"storefront-service/filestore"
	"storefront-service/models"
)

// ContentService serves the editorial content kept in JSON files.
type ContentService struct {
	testimonials *filestore.Collection[models.Testimonial]
	videos       *filestore.Collection[models.Video]
	menu         *filestore.Collection[models.MenuItem]
	now          func() time.Time
}

func NewContentService(dir string) *ContentService {
	return &ContentService{
		testimonials: filestore.NewCollection(dir, "testimonials",
			func(t models.Testimonial) string { return t.ID },
			func(t models.Testimonial, id string) models.Testimonial { t.ID = id; return t }),
		videos: filestore.NewCollection(dir, "videos",
			func(v models.Video) string { return v.ID },
			func(v models.Video, id string) models.Video { v.ID = id; return v }),
		menu: filestore.NewCollection(dir, "menu",
			func(m models.MenuItem) string { return m.ID },
			func(m models.MenuItem, id string) models.MenuItem { m.ID = id; return m }),
		now: time.Now,
	}
}

func contentErr(err error, what string) error {
	if errors.Is(err, filestore.ErrNotFound) {
		return apperrors.NotFound(what + " not found")
	}
	return apperrors.Internal("Failed to access "+what+" store", err)
}

// testimonials

func (s *ContentService) ListTestimonials() ([]models.Testimonial, error) {
	items, err := s.testimonials.List()
	if err != nil {
		return nil, contentErr(err, "Testimonial")
	}
	return items, nil
}

func (s *ContentService) CreateTestimonial(t models.Testimonial) (models.Testimonial, error) {
	t.CreatedAt = s.now()
	t, err := s.testimonials.Create(t)
	if err != nil {
		return t, contentErr(err, "Testimonial")
	}
	return t, nil
}

func (s *ContentService) UpdateTestimonial(id string, t models.Testimonial) (models.Testimonial, error) {
	old, err := s.testimonials.Get(id)
	if err != nil {
		return t, contentErr(err, "Testimonial")
	}
	t.CreatedAt = old.CreatedAt
	if t, err = s.testimonials.Update(id, t); err != nil {
		return t, contentErr(err, "Testimonial")
	}
	return t, nil
}

func (s *ContentService) DeleteTestimonial(id string) error {
	if err := s.testimonials.Delete(id); err != nil {
		return contentErr(err, "Testimonial")
	}
	return nil
}

// videos

func (s *ContentService) ListVideos() ([]models.Video, error) {
	items, err := s.videos.List()
	if err != nil {
		return nil, contentErr(err, "Video")
	}
	return items, nil
}

func (s *ContentService) CreateVideo(v models.Video) (models.Video, error) {
	v.CreatedAt = s.now()
	v, err := s.videos.Create(v)
	if err != nil {
		return v, contentErr(err, "Video")
	}
	return v, nil
}

func (s *ContentService) UpdateVideo(id string, v models.Video) (models.Video, error) {
	old, err := s.videos.Get(id)
	if err != nil {
		return v, contentErr(err, "Video")
	}
	v.CreatedAt = old.CreatedAt
	if v, err = s.videos.Update(id, v); err != nil {
		return v, contentErr(err, "Video")
	}
	return v, nil
}

func (s *ContentService) DeleteVideo(id string) error {
	if err := s.videos.Delete(id); err != nil {
		return contentErr(err, "Video")
	}
	return nil
}

// menu

// ListMenu returns top-level menu items ordered by position.
func (s *ContentService) ListMenu() ([]models.MenuItem, error) {
	items, err := s.menu.List()
	if err != nil {
		return nil, contentErr(err, "Menu item")
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (s *ContentService) CreateMenuItem(m models.MenuItem) (models.MenuItem, error) {
	m.CreatedAt = s.now()
	m, err := s.menu.Create(m)
	if err != nil {
		return m, contentErr(err, "Menu item")
	}
	return m, nil
}

func (s *ContentService) UpdateMenuItem(id string, m models.MenuItem) (models.MenuItem, error) {
	old, err := s.menu.Get(id)
	if err != nil {
		return m, contentErr(err, "Menu item")
	}
	m.CreatedAt = old.CreatedAt
	if m, err = s.menu.Update(id, m); err != nil {
		return m, contentErr(err, "Menu item")
	}
	return m, nil
}

func (s *ContentService) DeleteMenuItem(id string) error {
	if err := s.menu.Delete(id); err != nil {
		return contentErr(err, "Menu item")
	}
	return nil
}
