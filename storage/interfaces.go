package storage

import "any-democrat/models"

// FeedWriter is the interface any feed export backend must satisfy.
type FeedWriter interface {
	WriteFeed(feed *models.Feed) error
}
