// Package feed implements the per-tab paginated poll cache and the
// cross-view synchronization that keeps every cached copy of a poll in step.
package feed

import (
	"fmt"
	"strconv"
	"strings"

	"votecast/internal/gateway"
)

// Tab identifies one independently paginated, cached poll listing.
type Tab string

// TabMain is the main feed listing.
const TabMain Tab = "main"

// StorageTab returns the tab for one of the current user's saved listings
// (voted, liked, bookmarked).
func StorageTab(kind gateway.StorageKind) Tab {
	return Tab("storage:" + string(kind))
}

// UserTab returns the tab for a user's post listing. The current user's
// my-page is UserTab of their own ID.
func UserTab(userID uint) Tab {
	return Tab(fmt.Sprintf("user:%d", userID))
}

// VoteTab returns the single-item tab backing a poll detail view.
func VoteTab(voteID uint) Tab {
	return Tab(fmt.Sprintf("vote:%d", voteID))
}

// Kind returns the tab's kind prefix: main, storage, user or vote.
func (t Tab) Kind() string {
	if i := strings.IndexByte(string(t), ':'); i >= 0 {
		return string(t[:i])
	}
	return string(t)
}

// subjectID parses the numeric suffix of user: and vote: tabs.
func (t Tab) subjectID() (uint, bool) {
	i := strings.IndexByte(string(t), ':')
	if i < 0 {
		return 0, false
	}
	id, err := strconv.ParseUint(string(t[i+1:]), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// storageKind parses the storage kind suffix of storage: tabs.
func (t Tab) storageKind() (gateway.StorageKind, bool) {
	rest, ok := strings.CutPrefix(string(t), "storage:")
	if !ok {
		return "", false
	}
	kind := gateway.StorageKind(rest)
	switch kind {
	case gateway.StorageVoted, gateway.StorageLiked, gateway.StorageBookmarked:
		return kind, true
	}
	return "", false
}
