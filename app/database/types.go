package database

import (
	"time"
)

type Feed struct {
	Name          string // Configuration feed identifier derived from filename
	FeedURL       string
	Kind          string
	LastFetchedAt *time.Time
	LastError     string
	ItemCount     int // articles kept by the last fetch
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Newsletter struct {
	Date         string
	HTML         string
	ArticleCount int
	CreatedAt    time.Time
}
