package deals

import (
	"strings"
	"testing"
)

func TestListParamsNormalized(t *testing.T) {
	cases := []struct {
		name string
		in   ListParams
		want ListParams
	}{
		{
			name: "all sentinel dropped",
			in:   ListParams{Industry: "all", RewardType: "all"},
			want: ListParams{},
		},
		{
			name: "all sentinel is case-insensitive",
			in:   ListParams{Industry: "All", RewardType: "ALL"},
			want: ListParams{},
		},
		{
			name: "whitespace trimmed",
			in:   ListParams{Search: "  pizza  ", Industry: " Food "},
			want: ListParams{Search: "pizza", Industry: "Food"},
		},
		{
			name: "reward type lowercased",
			in:   ListParams{RewardType: "Commission"},
			want: ListParams{RewardType: "commission"},
		},
		{
			name: "empty stays empty",
			in:   ListParams{},
			want: ListParams{},
		},
		{
			name: "real values pass through",
			in:   ListParams{Search: "deal", Industry: "Retail", RewardType: "no_reward"},
			want: ListParams{Search: "deal", Industry: "Retail", RewardType: "no_reward"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.normalized(); got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestCommissionAmountQuery(t *testing.T) {
	t.Run("create path omits the id exclusion", func(t *testing.T) {
		query, args := commissionAmountQuery("biz-1", 10, "")
		if strings.Contains(query, "$4") {
			t.Errorf("query binds a fourth parameter for an empty excludeID: %s", query)
		}
		if strings.Contains(query, "id<>") {
			t.Errorf("query excludes an id that was never given: %s", query)
		}
		if len(args) != 3 {
			t.Fatalf("got %d args, want 3", len(args))
		}
	})

	t.Run("update path excludes the deal itself", func(t *testing.T) {
		query, args := commissionAmountQuery("biz-1", 10, "deal-1")
		if !strings.Contains(query, "id<>$4") {
			t.Errorf("query is missing the id exclusion: %s", query)
		}
		if len(args) != 4 {
			t.Fatalf("got %d args, want 4", len(args))
		}
		if args[3] != "deal-1" {
			t.Errorf("got excludeID arg %v, want deal-1", args[3])
		}
	})
}
