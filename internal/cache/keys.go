package cache

import (
	"context"
	"fmt"
	"time"
)

// Keys exist only for reads that actually populate them: user rows, the
// public shared-bag tree, the explore listing and the content collections.
const (
	UserKeyPrefix      = "user:%d"
	SharedBagKeyPrefix = "shared:bag:%d"
	ExploreKey         = "explore:bags"
	ArticlesKey        = "content:articles"
	ChangelogsKey      = "content:changelogs"
)

const (
	UserTTL    = 5 * time.Minute
	SharedTTL  = 2 * time.Minute
	ExploreTTL = 1 * time.Minute
	ContentTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func SharedBagKey(bagID uint) string {
	return fmt.Sprintf(SharedBagKeyPrefix, bagID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client == nil {
		return
	}
	for _, key := range keys {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateBag drops the shared view of a bag along with the explore
// listing, which embeds bag rows.
func InvalidateBag(ctx context.Context, bagID uint) {
	Invalidate(ctx, SharedBagKey(bagID), ExploreKey)
}

func InvalidateContent(ctx context.Context) {
	Invalidate(ctx, ArticlesKey, ChangelogsKey)
}
