package deals

import (
	"errors"
	"testing"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestValidateRewardShape(t *testing.T) {
	cases := []struct {
		name  string
		draft Draft
		want  error
	}{
		{
			name:  "valid commission",
			draft: Draft{RewardType: RewardCommission, CustomerIncentive: f(10)},
			want:  nil,
		},
		{
			name:  "valid no_reward",
			draft: Draft{RewardType: RewardNone, NoRewardReason: s("big_discount")},
			want:  nil,
		},
		{
			name:  "commission without incentive",
			draft: Draft{RewardType: RewardCommission},
			want:  ErrMissingIncentive,
		},
		{
			name:  "commission with zero incentive",
			draft: Draft{RewardType: RewardCommission, CustomerIncentive: f(0)},
			want:  ErrNegativeIncentive,
		},
		{
			name:  "commission with negative incentive",
			draft: Draft{RewardType: RewardCommission, CustomerIncentive: f(-5)},
			want:  ErrNegativeIncentive,
		},
		{
			name: "commission with stray reason",
			draft: Draft{
				RewardType:        RewardCommission,
				CustomerIncentive: f(10),
				NoRewardReason:    s("exclusive"),
			},
			want: ErrConflictingReward,
		},
		{
			name:  "no_reward without reason",
			draft: Draft{RewardType: RewardNone},
			want:  ErrMissingNoRewardWhy,
		},
		{
			name:  "no_reward with empty reason",
			draft: Draft{RewardType: RewardNone, NoRewardReason: s("")},
			want:  ErrMissingNoRewardWhy,
		},
		{
			name:  "no_reward with unknown reason",
			draft: Draft{RewardType: RewardNone, NoRewardReason: s("because")},
			want:  ErrUnknownNoRewardWhy,
		},
		{
			name: "no_reward with stray incentive",
			draft: Draft{
				RewardType:     RewardNone,
				NoRewardReason: s("high_demand"),
				CustomerIncentive: f(5),
			},
			want: ErrConflictingReward,
		},
		{
			name:  "unknown reward type",
			draft: Draft{RewardType: "points"},
			want:  ErrInvalidRewardType,
		},
		{
			name:  "empty reward type",
			draft: Draft{},
			want:  ErrInvalidRewardType,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.ValidateRewardShape()
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestKnownNoRewardReasons(t *testing.T) {
	for _, reason := range []string{"big_discount", "exclusive", "high_demand"} {
		draft := Draft{RewardType: RewardNone, NoRewardReason: s(reason)}
		if err := draft.ValidateRewardShape(); err != nil {
			t.Errorf("reason %q rejected: %v", reason, err)
		}
	}
}
