package service

import (
	"github.com/viewdeck/video-dashboard-go/internal/models"
	"github.com/viewdeck/video-dashboard-go/internal/view"
)

// Field schemas and sort keys for each entity view. The views share
// one pipeline implementation and differ only in this configuration.

func videoSchema() view.Schema[models.Video] {
	return view.Schema[models.Video]{
		"title":   {Kind: view.FieldText, Text: func(v models.Video) string { return v.Title }},
		"channel": {Kind: view.FieldText, Text: func(v models.Video) string { return v.ChannelTitle }},
		"search": {Kind: view.FieldText, Text: func(v models.Video) string {
			return v.Title + " " + v.ChannelTitle
		}},
		"views":     {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(v.ViewCount) }},
		"likes":     {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(v.LikeCount) }},
		"duration":  {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(v.DurationSeconds) }},
		"published": {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(v.PublishedAt) }},
		"created":   {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(v.CreatedAt) }},
		"updated":   {Kind: view.FieldNumber, Number: func(v models.Video) float64 { return float64(updatedOr(v.UpdatedAt, v.CreatedAt)) }},
		"category":  {Kind: view.FieldKeyword, Keywords: func(v models.Video) []string { return []string{v.Category} }},
	}
}

func videoSortKeys() view.SortKeys[models.Video] {
	return view.SortKeys[models.Video]{
		view.SortViews:   {Number: func(v models.Video) float64 { return float64(v.ViewCount) }},
		view.SortCreated: {Number: func(v models.Video) float64 { return float64(v.CreatedAt) }},
		view.SortUpdated: {Number: func(v models.Video) float64 { return float64(updatedOr(v.UpdatedAt, v.CreatedAt)) }},
		view.SortTitle:   {Text: func(v models.Video) string { return v.Title }},
	}
}

func playlistSchema() view.Schema[models.Playlist] {
	return view.Schema[models.Playlist]{
		"name":    {Kind: view.FieldText, Text: func(p models.Playlist) string { return p.Name }},
		"search":  {Kind: view.FieldText, Text: func(p models.Playlist) string { return p.Name + " " + p.Description }},
		"size":    {Kind: view.FieldNumber, Number: func(p models.Playlist) float64 { return float64(len(p.VideoIDs)) }},
		"created": {Kind: view.FieldNumber, Number: func(p models.Playlist) float64 { return float64(p.CreatedAt) }},
		"updated": {Kind: view.FieldNumber, Number: func(p models.Playlist) float64 { return float64(updatedOr(p.UpdatedAt, p.CreatedAt)) }},
	}
}

func playlistSortKeys() view.SortKeys[models.Playlist] {
	return view.SortKeys[models.Playlist]{
		view.SortCreated: {Number: func(p models.Playlist) float64 { return float64(p.CreatedAt) }},
		view.SortUpdated: {Number: func(p models.Playlist) float64 { return float64(updatedOr(p.UpdatedAt, p.CreatedAt)) }},
		view.SortTitle:   {Text: func(p models.Playlist) string { return p.Name }},
	}
}

func nicheSchema() view.Schema[models.Niche] {
	return view.Schema[models.Niche]{
		"name":     {Kind: view.FieldText, Text: func(n models.Niche) string { return n.Name }},
		"search":   {Kind: view.FieldText, Text: func(n models.Niche) string { return n.Name }},
		"views":    {Kind: view.FieldNumber, Number: func(n models.Niche) float64 { return float64(n.AvgViews) }},
		"growth":   {Kind: view.FieldNumber, Number: func(n models.Niche) float64 { return n.GrowthRate }},
		"channels": {Kind: view.FieldKeyword, Keywords: func(n models.Niche) []string { return n.ChannelIDs }},
		"created":  {Kind: view.FieldNumber, Number: func(n models.Niche) float64 { return float64(n.CreatedAt) }},
		"updated":  {Kind: view.FieldNumber, Number: func(n models.Niche) float64 { return float64(updatedOr(n.UpdatedAt, n.CreatedAt)) }},
	}
}

func nicheSortKeys() view.SortKeys[models.Niche] {
	return view.SortKeys[models.Niche]{
		view.SortViews:   {Number: func(n models.Niche) float64 { return float64(n.AvgViews) }},
		view.SortCreated: {Number: func(n models.Niche) float64 { return float64(n.CreatedAt) }},
		view.SortUpdated: {Number: func(n models.Niche) float64 { return float64(updatedOr(n.UpdatedAt, n.CreatedAt)) }},
		view.SortTitle:   {Text: func(n models.Niche) string { return n.Name }},
	}
}

func channelSchema() view.Schema[models.Channel] {
	return view.Schema[models.Channel]{
		"title":       {Kind: view.FieldText, Text: func(c models.Channel) string { return c.Title }},
		"search":      {Kind: view.FieldText, Text: func(c models.Channel) string { return c.Title }},
		"subscribers": {Kind: view.FieldNumber, Number: func(c models.Channel) float64 { return float64(c.SubscriberCount) }},
		"videos":      {Kind: view.FieldNumber, Number: func(c models.Channel) float64 { return float64(c.VideoCount) }},
		"created":     {Kind: view.FieldNumber, Number: func(c models.Channel) float64 { return float64(c.CreatedAt) }},
	}
}

func channelSortKeys() view.SortKeys[models.Channel] {
	return view.SortKeys[models.Channel]{
		view.SortViews:   {Number: func(c models.Channel) float64 { return float64(c.SubscriberCount) }},
		view.SortCreated: {Number: func(c models.Channel) float64 { return float64(c.CreatedAt) }},
		view.SortTitle:   {Text: func(c models.Channel) string { return c.Title }},
	}
}

func updatedOr(updated, created int64) int64 {
	if updated != 0 {
		return updated
	}
	return created
}
