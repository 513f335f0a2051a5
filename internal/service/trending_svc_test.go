package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

func TestEngagementPoints(t *testing.T) {
	tests := []struct {
		name string
		item model.ContentItem
		want float64
	}{
		{"no engagement", model.ContentItem{}, 0},
		{"likes only", model.ContentItem{Likes: 10}, 15.0},
		{"reshares weigh double", model.ContentItem{Reshares: 5}, 10.0},
		{"saves match likes", model.ContentItem{Saves: 4}, 6.0},
		{"comments weigh one", model.ContentItem{Comments: 7}, 7.0},
		{
			// 3*2 + 10*1.5 + 2*1.5 + 4*1 = 28
			"all counters",
			model.ContentItem{Likes: 10, Saves: 2, Comments: 4, Reshares: 3},
			28.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EngagementPoints(tt.item); !almostEqual(got, tt.want, 0.001) {
				t.Errorf("EngagementPoints = %.2f, want %.2f", got, tt.want)
			}
		})
	}
}

func TestTrendingScore(t *testing.T) {
	// 15 points at 1h → 15/sqrt(3) ≈ 8.66
	if got := TrendingScore(15, 1); !almostEqual(got, 8.6603, 0.001) {
		t.Errorf("score at 1h = %.4f, want ~8.6603", got)
	}

	// 60 points at 48h → 60/sqrt(50) ≈ 8.4853
	if got := TrendingScore(60, 48); !almostEqual(got, 8.4853, 0.001) {
		t.Errorf("score at 48h = %.4f, want ~8.4853", got)
	}
}

func TestTrendingScore_DecaysOverTime(t *testing.T) {
	prev := TrendingScore(100, 0)
	for hours := 1.0; hours <= 720; hours *= 2 {
		got := TrendingScore(100, hours)
		if got >= prev {
			t.Fatalf("score did not decay: %.4f at %.0fh >= %.4f earlier", got, hours, prev)
		}
		prev = got
	}
}

func TestTrendingScore_NegativeHoursClamped(t *testing.T) {
	// Future-dated items score as if posted right now, never higher.
	atZero := TrendingScore(20, 0)
	if got := TrendingScore(20, -5); got != atZero {
		t.Errorf("negative hours = %.4f, want %.4f (clamped to zero)", got, atZero)
	}
}

func rankWindow(now time.Time) time.Time {
	return now.AddDate(0, 0, -30)
}

func TestRank_FreshItemBeatsStaleItem(t *testing.T) {
	now := time.Now().UTC()

	// A: 10 likes, 1 hour old → 15/sqrt(3) ≈ 8.66
	// B: 40 likes, 48 hours old → 60/sqrt(50) ≈ 8.49
	// Despite 4x the likes, B loses to the fresher A.
	candidates := []model.ContentItem{
		{ItemID: "item-b", Likes: 40, CreatedAt: now.Add(-48 * time.Hour)},
		{ItemID: "item-a", Likes: 10, CreatedAt: now.Add(-1 * time.Hour)},
	}

	feed := Rank(candidates, rankWindow(now), now, 10)
	if len(feed) != 2 {
		t.Fatalf("len(feed) = %d, want 2", len(feed))
	}
	if feed[0].ItemID != "item-a" {
		t.Errorf("feed[0] = %s, want item-a", feed[0].ItemID)
	}
	if feed[0].TrendingScore == nil || feed[1].TrendingScore == nil {
		t.Fatal("ranked items must carry a trending score")
	}
	if !almostEqual(*feed[0].TrendingScore, 8.6603, 0.001) {
		t.Errorf("item-a score = %.4f, want ~8.6603", *feed[0].TrendingScore)
	}
	if !almostEqual(*feed[1].TrendingScore, 8.4853, 0.001) {
		t.Errorf("item-b score = %.4f, want ~8.4853", *feed[1].TrendingScore)
	}
}

func TestRank_DropsItemsOutsideWindow(t *testing.T) {
	now := time.Now().UTC()

	// A 31-day-old item is outside the window no matter how much
	// engagement it carries; the pool may still contain it.
	candidates := []model.ContentItem{
		{ItemID: "ancient", Likes: 100000, CreatedAt: now.AddDate(0, 0, -31)},
		{ItemID: "recent", Likes: 2, CreatedAt: now.Add(-2 * time.Hour)},
	}

	feed := Rank(candidates, rankWindow(now), now, 10)
	if len(feed) != 1 {
		t.Fatalf("len(feed) = %d, want 1", len(feed))
	}
	if feed[0].ItemID != "recent" {
		t.Errorf("feed[0] = %s, want recent", feed[0].ItemID)
	}
}

func TestRank_TiesBrokenByRecency(t *testing.T) {
	now := time.Now().UTC()

	// Zero engagement scores exactly 0 regardless of age, forcing an
	// exact score tie that only recency can break.
	candidates := []model.ContentItem{
		{ItemID: "older", CreatedAt: now.Add(-10 * time.Hour)},
		{ItemID: "newer", CreatedAt: now.Add(-1 * time.Hour)},
	}

	feed := Rank(candidates, rankWindow(now), now, 10)
	if len(feed) != 2 {
		t.Fatalf("len(feed) = %d, want 2", len(feed))
	}
	if feed[0].ItemID != "newer" {
		t.Errorf("feed[0] = %s, want newer", feed[0].ItemID)
	}
}

func TestRank_EmptyPool(t *testing.T) {
	now := time.Now()
	feed := Rank(nil, rankWindow(now), now, 10)
	if feed == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(feed) != 0 {
		t.Errorf("len(feed) = %d, want 0", len(feed))
	}
}

func TestRank_LimitTruncates(t *testing.T) {
	now := time.Now().UTC()
	candidates := make([]model.ContentItem, 50)
	for i := range candidates {
		candidates[i] = model.ContentItem{
			ItemID:    "item",
			Likes:     i,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		}
	}

	feed := Rank(candidates, rankWindow(now), now, 7)
	if len(feed) != 7 {
		t.Errorf("len(feed) = %d, want 7", len(feed))
	}
}

func TestRank_NilTagsSerializeAsEmptyList(t *testing.T) {
	now := time.Now().UTC()
	feed := Rank([]model.ContentItem{{ItemID: "x", CreatedAt: now}}, rankWindow(now), now, 1)
	if feed[0].Tags == nil {
		t.Error("nil tags should surface as an empty slice")
	}
}

func TestRank_ZeroScoreStillSerializes(t *testing.T) {
	now := time.Now().UTC()
	feed := Rank([]model.ContentItem{{ItemID: "quiet", CreatedAt: now}}, rankWindow(now), now, 1)

	if feed[0].TrendingScore == nil || *feed[0].TrendingScore != 0 {
		t.Fatalf("trendingScore = %v, want explicit 0", feed[0].TrendingScore)
	}

	body, err := json.Marshal(feed[0])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"trendingScore":0`) {
		t.Errorf("zero score dropped from response body: %s", body)
	}
}

type fakeCandidateRepo struct {
	items []model.ContentItem
	err   error

	gotWindowStart time.Time
	gotLimit       int
}

func (f *fakeCandidateRepo) CandidatesSince(_ context.Context, windowStart time.Time, limit int) ([]model.ContentItem, error) {
	f.gotWindowStart = windowStart
	f.gotLimit = limit
	return f.items, f.err
}

func TestGetTrending_InvalidLimit(t *testing.T) {
	svc := NewTrendingService(&fakeCandidateRepo{}, nil, 100, 30)

	for _, limit := range []int{0, -1, -20} {
		_, err := svc.GetTrending(context.Background(), limit)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("limit %d: err = %v, want ErrValidation", limit, err)
		}
	}
}

func TestGetTrending_WindowAndPool(t *testing.T) {
	repo := &fakeCandidateRepo{}
	svc := NewTrendingService(repo, nil, 100, 30)

	before := time.Now().UTC().AddDate(0, 0, -30).Add(-time.Second)
	if _, err := svc.GetTrending(context.Background(), 20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := time.Now().UTC().AddDate(0, 0, -30).Add(time.Second)

	if repo.gotLimit != 100 {
		t.Errorf("pool limit = %d, want 100", repo.gotLimit)
	}
	if repo.gotWindowStart.Before(before) || repo.gotWindowStart.After(after) {
		t.Errorf("window start %v not ~30 days ago", repo.gotWindowStart)
	}
}

func TestGetTrending_StoreErrorDegradesToEmptyFeed(t *testing.T) {
	storeErr := apperr.ErrTransientStore
	svc := NewTrendingService(&fakeCandidateRepo{err: storeErr}, nil, 100, 30)

	feed, err := svc.GetTrending(context.Background(), 20)
	if !errors.Is(err, storeErr) {
		t.Errorf("err = %v, want ErrTransientStore", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Errorf("feed = %v, want empty non-nil slice", feed)
	}
}
