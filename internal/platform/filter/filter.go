// Package filter holds the list filter fields shared by every aggregate repository.
package filter

import (
	"math"
	"time"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxOffset bounds the rows a page may skip; pages beyond it are clamped.
	MaxOffset = math.MaxInt32
)

// Base enumerates the filters common to all list/count queries. Zero values mean "no constraint".
type Base struct {
	ID             string
	IDs            []string
	OrganizationID string
	OwnerID        string
	Search         string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
	UpdatedFrom    *time.Time
	UpdatedTo      *time.Time
	Page           int
	PageSize       int
}

// Normalize fills page defaults and clamps PageSize to maxPageSize (MaxPageSize when maxPageSize <= 0).
func (b Base) Normalize(maxPageSize int) Base {
	if maxPageSize <= 0 {
		maxPageSize = MaxPageSize
	}
	if b.Page < 1 {
		b.Page = DefaultPage
	}
	if b.PageSize < 1 {
		b.PageSize = DefaultPageSize
	}
	if b.PageSize > maxPageSize {
		b.PageSize = maxPageSize
	}
	if maxPage := MaxOffset/b.PageSize + 1; b.Page > maxPage {
		b.Page = maxPage
	}
	return b
}

// Limit is the page size, defaulted.
func (b Base) Limit() int {
	if b.PageSize < 1 {
		return DefaultPageSize
	}
	return b.PageSize
}

// Offset is the number of rows to skip for the requested page, capped at MaxOffset.
func (b Base) Offset() int {
	if b.Page < 1 {
		return 0
	}
	if b.Page-1 > MaxOffset/b.Limit() {
		return MaxOffset
	}
	return (b.Page - 1) * b.Limit()
}

// MatchesIDs reports whether id passes the ID and IDs constraints.
func (b Base) MatchesIDs(id string) bool {
	if b.ID != "" && b.ID != id {
		return false
	}
	if len(b.IDs) == 0 {
		return true
	}
	for _, v := range b.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// MatchesCreated reports whether t lies within [CreatedFrom, CreatedTo].
func (b Base) MatchesCreated(t time.Time) bool {
	return within(t, b.CreatedFrom, b.CreatedTo)
}

// MatchesUpdated reports whether t lies within [UpdatedFrom, UpdatedTo].
func (b Base) MatchesUpdated(t time.Time) bool {
	return within(t, b.UpdatedFrom, b.UpdatedTo)
}

func within(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// Page returns the slice of items selected by b's page and page size.
func Page[T any](items []T, b Base) []T {
	off := b.Offset()
	if off < 0 || off >= len(items) {
		return []T{}
	}
	end := off + b.Limit()
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}
