// Package models contains the document types held in the dashboard's
// collections. Timestamps are milliseconds since epoch, matching the
// wire format of the backing document store.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Collection keys understood by the snapshot source and write sink.
const (
	CollectionVideos    = "videos"
	CollectionPlaylists = "playlists"
	CollectionChannels  = "channels"
	CollectionNiches    = "niches"
	CollectionSettings  = "settings"
	CollectionOrderings = "orderings"
)

// Record is implemented by every document type kept in a record store.
type Record interface {
	RecordID() string
	CreatedMillis() int64
}

// VideoNote is a timestamped annotation owned by its parent Video.
// Notes are only ever written as part of a whole-video update, so
// concurrent edits resolve last-writer-wins at the video granularity.
type VideoNote struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"userId"`
}

// Video is a saved video on the dashboard, either imported from a
// channel feed or created by hand (IsCustom).
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Video struct {
	ID              string      `json:"id"`
	ChannelID       string      `json:"channelId"`
	Title           string      `json:"title"`
	ChannelTitle    string      `json:"channelTitle"`
	Category        string      `json:"category"`
	ThumbnailURL    string      `json:"thumbnailUrl"`
	ViewCount       int64       `json:"viewCount"`
	LikeCount       int64       `json:"likeCount"`
	DurationSeconds int64       `json:"durationSeconds"`
	PublishedAt     int64       `json:"publishedAt"`
	IsCustom        bool        `json:"isCustom"`
	Notes           []VideoNote `json:"notes,omitempty"`
	CreatedAt       int64       `json:"createdAt"`
	UpdatedAt       int64       `json:"updatedAt,omitempty"`
}

func (v Video) RecordID() string     { return v.ID }
func (v Video) CreatedMillis() int64 { return v.CreatedAt }

// Playlist groups videos by id. The ids are weak references: they are
// resolved against the video store at read time and scrubbed by the
// dashboard when a video is deleted.
type Playlist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	VideoIDs    []string `json:"videoIds"`
	CoverImage  string   `json:"coverImage,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt,omitempty"`
}

func (p Playlist) RecordID() string     { return p.ID }
func (p Playlist) CreatedMillis() int64 { return p.CreatedAt }

// Contains reports whether the playlist references the given video id.
func (p Playlist) Contains(videoID string) bool {
	for _, id := range p.VideoIDs {
		if id == videoID {
			return true
		}
	}
	return false
}

// Channel is a tracked YouTube channel shown on the trends view.
type Channel struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	AvatarURL       string `json:"avatarUrl,omitempty"`
	SubscriberCount int64  `json:"subscriberCount"`
	VideoCount      int64  `json:"videoCount"`
	CreatedAt       int64  `json:"createdAt"`
	UpdatedAt       int64  `json:"updatedAt,omitempty"`
}

func (c Channel) RecordID() string     { return c.ID }
func (c Channel) CreatedMillis() int64 { return c.CreatedAt }

// Niche is an analytics bucket on the trends view grouping channels
// around a topic.
type Niche struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ChannelIDs []string `json:"channelIds"`
	AvgViews   int64    `json:"avgViews"`
	GrowthRate float64  `json:"growthRate"`
	CreatedAt  int64    `json:"createdAt"`
	UpdatedAt  int64    `json:"updatedAt,omitempty"`
}

func (n Niche) RecordID() string     { return n.ID }
func (n Niche) CreatedMillis() int64 { return n.CreatedAt }

// Ordering is the persisted manual order of one view, stored as a
// document keyed by the view it orders. The id list may reference
// records that no longer exist and may omit records that do; the order
// resolver compensates for both.
type Ordering struct {
	ID        string   `json:"id"`
	IDs       []string `json:"ids"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt,omitempty"`
}

func (o Ordering) RecordID() string     { return o.ID }
func (o Ordering) CreatedMillis() int64 { return o.CreatedAt }

// Settings is the per-user settings document.
type Settings struct {
	ID                   string `json:"id"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	EmailDigest          bool   `json:"emailDigest"`
	Theme                string `json:"theme"`
	DefaultSort          string `json:"defaultSort"`
	CreatedAt            int64  `json:"createdAt"`
	UpdatedAt            int64  `json:"updatedAt,omitempty"`
}

func (s Settings) RecordID() string     { return s.ID }
func (s Settings) CreatedMillis() int64 { return s.CreatedAt }

// NowMillis returns the current time in the document timestamp format.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// NewVideo creates a custom video with a generated id.
func NewVideo(title, channelTitle string) Video {
	now := NowMillis()
	return Video{
		ID:           uuid.NewString(),
		Title:        title,
		ChannelTitle: channelTitle,
		IsCustom:     true,
		CreatedAt:    now,
	}
}

// NewPlaylist creates an empty playlist with a generated id.
func NewPlaylist(name string) Playlist {
	return Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		VideoIDs:  []string{},
		CreatedAt: NowMillis(),
	}
}

// NewNote creates a note owned by the given user.
func NewNote(text string, userID string) VideoNote {
	return VideoNote{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: NowMillis(),
		UserID:    userID,
	}
}
