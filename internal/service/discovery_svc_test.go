package service

import (
	"context"
	"errors"
	"testing"

	"github.com/OmeoneChain/omeonechain-sub009/internal/apperr"
	"github.com/OmeoneChain/omeonechain-sub009/internal/model"
)

func TestTagsContainAll(t *testing.T) {
	tests := []struct {
		name     string
		itemTags []string
		wanted   []string
		want     bool
	}{
		{"superset matches", []string{"a", "b", "c"}, []string{"a", "b"}, true},
		{"partial overlap fails", []string{"a", "b", "c"}, []string{"a", "d"}, false},
		{"exact match", []string{"a", "b"}, []string{"a", "b"}, true},
		{"empty wanted matches everything", []string{"a"}, nil, true},
		{"empty wanted matches untagged", nil, []string{}, true},
		{"untagged item fails any filter", nil, []string{"a"}, false},
		{"single missing tag", []string{"go", "db"}, []string{"rust"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagsContainAll(tt.itemTags, tt.wanted); got != tt.want {
				t.Errorf("TagsContainAll(%v, %v) = %v, want %v", tt.itemTags, tt.wanted, got, tt.want)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []int
	}{
		{"first page", 0, 2, []int{1, 2}},
		{"middle page", 2, 2, []int{3, 4}},
		{"short last page", 4, 2, []int{5}},
		{"offset at end", 5, 2, []int{}},
		{"offset past end", 100, 2, []int{}},
		{"limit covers all", 0, 50, []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(items, tt.offset, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHasMore(t *testing.T) {
	tests := []struct {
		total, offset, limit int
		want                 bool
	}{
		{10, 0, 5, true},
		{10, 5, 5, false},
		{10, 0, 10, false},
		{10, 8, 5, false},
		{11, 5, 5, true},
		{0, 0, 20, false},
	}

	for _, tt := range tests {
		if got := HasMore(tt.total, tt.offset, tt.limit); got != tt.want {
			t.Errorf("HasMore(%d, %d, %d) = %v, want %v", tt.total, tt.offset, tt.limit, got, tt.want)
		}
	}
}

type fakeSearchRepo struct {
	items []model.ContentItem
	err   error
}

func (f *fakeSearchRepo) SearchCorpus(context.Context, model.SearchFilters) ([]model.ContentItem, error) {
	return f.items, f.err
}

type fakeGraph struct {
	// distance per author id
	direct  map[string]int
	network map[string]int
	calls   int
}

func (f *fakeGraph) Distance(_ context.Context, _, authorID string) (int, int, error) {
	f.calls++
	return f.direct[authorID], f.network[authorID], nil
}

func newTestDiscovery(repo SearchCorpusRepo, graph SocialGraph) *DiscoveryService {
	return NewDiscoveryService(repo, NewTrustService(graph, nil, nil))
}

func TestSearch_ValidatesBeforeQuerying(t *testing.T) {
	svc := newTestDiscovery(&fakeSearchRepo{err: errors.New("must not be reached")}, nil)

	tests := []struct {
		name    string
		viewer  string
		filters model.SearchFilters
	}{
		{"zero limit", "", model.SearchFilters{Limit: 0}},
		{"negative limit", "", model.SearchFilters{Limit: -5}},
		{"negative offset", "", model.SearchFilters{Limit: 20, Offset: -1}},
		{"minTrust without viewer", "", model.SearchFilters{Limit: 20, HasMinTrust: true, MinTrustScore: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Search(context.Background(), tt.viewer, tt.filters)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestSearch_TagContainment(t *testing.T) {
	repo := &fakeSearchRepo{items: []model.ContentItem{
		{ItemID: "1", Tags: []string{"restaurants", "tokyo", "ramen"}},
		{ItemID: "2", Tags: []string{"restaurants", "osaka"}},
		{ItemID: "3", Tags: []string{"tokyo"}},
	}}
	svc := newTestDiscovery(repo, nil)

	resp, err := svc.Search(context.Background(), "", model.SearchFilters{
		Tags:  []string{"restaurants", "tokyo"},
		Limit: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Fatalf("total = %d, want 1", resp.TotalCount)
	}
	if resp.Items[0].ItemID != "1" {
		t.Errorf("matched item = %s, want 1", resp.Items[0].ItemID)
	}
	if resp.HasMore {
		t.Error("hasMore = true, want false")
	}
}

func TestSearch_MinTrustIsViewerRelative(t *testing.T) {
	repo := &fakeSearchRepo{items: []model.ContentItem{
		{ItemID: "by-friend", AuthorID: "friend"},
		{ItemID: "by-stranger", AuthorID: "stranger"},
	}}
	// 8 direct endorsements → 8*0.75/12*10 = 5.0 for "friend"; the
	// stranger has no social path at all.
	graph := &fakeGraph{direct: map[string]int{"friend": 8}, network: map[string]int{}}
	svc := newTestDiscovery(repo, graph)

	resp, err := svc.Search(context.Background(), "viewer-1", model.SearchFilters{
		HasMinTrust:   true,
		MinTrustScore: 4.0,
		Limit:         20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.TotalCount != 1 {
		t.Fatalf("total = %d, want 1", resp.TotalCount)
	}
	if resp.Items[0].ItemID != "by-friend" {
		t.Errorf("matched item = %s, want by-friend", resp.Items[0].ItemID)
	}
	if resp.Items[0].TrustScore == nil {
		t.Fatal("trustScore missing from trust-filtered result")
	}
	if !almostEqual(*resp.Items[0].TrustScore, 5.0, 0.001) {
		t.Errorf("trustScore = %.4f, want 5.0", *resp.Items[0].TrustScore)
	}
}

func TestSearch_TrustLookupMemoizedPerAuthor(t *testing.T) {
	repo := &fakeSearchRepo{items: []model.ContentItem{
		{ItemID: "1", AuthorID: "prolific"},
		{ItemID: "2", AuthorID: "prolific"},
		{ItemID: "3", AuthorID: "prolific"},
	}}
	graph := &fakeGraph{direct: map[string]int{"prolific": 10}}
	svc := newTestDiscovery(repo, graph)

	_, err := svc.Search(context.Background(), "viewer-1", model.SearchFilters{
		HasMinTrust: true,
		Limit:       20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if graph.calls != 1 {
		t.Errorf("graph lookups = %d, want 1 per distinct author", graph.calls)
	}
}

func TestSearch_Pagination(t *testing.T) {
	items := make([]model.ContentItem, 25)
	for i := range items {
		items[i] = model.ContentItem{ItemID: "item"}
	}
	svc := newTestDiscovery(&fakeSearchRepo{items: items}, nil)

	resp, err := svc.Search(context.Background(), "", model.SearchFilters{Offset: 20, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 5 {
		t.Errorf("page size = %d, want 5", len(resp.Items))
	}
	if resp.TotalCount != 25 {
		t.Errorf("total = %d, want 25", resp.TotalCount)
	}
	if resp.HasMore {
		t.Error("hasMore = true on last page, want false")
	}
}

func TestSearch_StoreErrorDegradesToEmptySet(t *testing.T) {
	svc := newTestDiscovery(&fakeSearchRepo{err: apperr.ErrTransientStore}, nil)

	resp, err := svc.Search(context.Background(), "", model.SearchFilters{Limit: 20})
	if !errors.Is(err, apperr.ErrTransientStore) {
		t.Errorf("err = %v, want ErrTransientStore", err)
	}
	if resp == nil || len(resp.Items) != 0 {
		t.Errorf("resp = %+v, want empty item set", resp)
	}
}
