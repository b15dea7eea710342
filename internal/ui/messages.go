// Package ui provides the Bubble Tea TUI for CineScope.
package ui

import (
	"github.com/abelbrown/cinescope/internal/query"
	"github.com/abelbrown/cinescope/internal/trending"
)

// debounceTick fires when typing may have settled. Only the tick carrying
// the latest id triggers a fetch.
type debounceTick struct {
	id uint64
}

// MoviesFetched carries a finished fetch. Result.Seq identifies the
// generation so superseded results can be dropped.
type MoviesFetched struct {
	Result query.Result
}

// SearchRecorded is sent when a trending write finishes.
type SearchRecorded struct {
	Entry trending.Entry
	Err   error
}

// TrendingLoaded is sent when the leaderboard has been read.
type TrendingLoaded struct {
	Entries []trending.Entry
	Err     error
}
