package models

import "time"

// Content types below are stored as JSON files rather than database tables.

type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" binding:"required"`
	Location  string    `json:"location,omitempty"`
	Message   string    `json:"message" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Video struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" binding:"required"`
	URL       string    `json:"url" binding:"required,url"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type MenuItem struct {
	ID        string     `json:"id"`
	Label     string     `json:"label" binding:"required"`
	Href      string     `json:"href" binding:"required"`
	Position  int        `json:"position"`
	Children  []MenuItem `json:"children,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
