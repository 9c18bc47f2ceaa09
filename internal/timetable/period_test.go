package timetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriods(t *testing.T) {
	t.Parallel()
	tables := DefaultTables()
	tests := []struct {
		token string
		want  []PeriodRange
	}{
		{"第一节~第二节", []PeriodRange{{1, 2}}},
		{"第九节~十二节", []PeriodRange{{9, 12}}},
		{"第1节~第4节", []PeriodRange{{1, 4}}},
		{"第三节 ~ 第四节", []PeriodRange{{3, 4}}},
		{"第五节", []PeriodRange{{5, 5}}},
		{"上午", nil},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tables.ParsePeriods(tt.token))
		})
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()
	tables := DefaultTables()
	tests := []struct {
		name      string
		pr        PeriodRange
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{"Merged 1-2", PeriodRange{1, 2}, "08:00", "09:30", true},
		{"Merged 3-4", PeriodRange{3, 4}, "09:40", "11:10", true},
		{"Merged 5-6", PeriodRange{5, 6}, "12:40", "14:10", true},
		{"Merged 7-8", PeriodRange{7, 8}, "14:20", "15:50", true},
		{"Merged 9-12", PeriodRange{9, 12}, "17:00", "20:10", true},
		{"Fallback 1-4", PeriodRange{1, 4}, "08:00", "11:10", true},
		{"Fallback 2-3", PeriodRange{2, 3}, "08:55", "10:25", true},
		{"Fallback 9-10", PeriodRange{9, 10}, "17:00", "18:40", true},
		{"Single period", PeriodRange{11, 11}, "18:50", "19:35", true},
		{"Out of range", PeriodRange{12, 13}, "", "", false},
		{"Zero", PeriodRange{0, 2}, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, ok := tables.Resolve(tt.pr)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantStart, s.Start.String())
			assert.Equal(t, tt.wantEnd, s.End.String())
		})
	}
}

func TestResolve_MatchesTables(t *testing.T) {
	t.Parallel()
	tables := DefaultTables()
	for first := 1; first <= 12; first++ {
		for last := first; last <= 12; last++ {
			pr := PeriodRange{first, last}
			got, ok := tables.Resolve(pr)
			require.True(t, ok, pr.Key())

			if merged, isMerged := mergedTimes[pr.Key()]; isMerged {
				assert.Equal(t, merged, got, pr.Key())
				continue
			}
			assert.Equal(t, periodTimes[first].Start, got.Start, pr.Key())
			assert.Equal(t, periodTimes[last].End, got.End, pr.Key())
		}
	}
}

func TestResolveToken(t *testing.T) {
	t.Parallel()
	tables := DefaultTables()
	tests := []struct {
		name        string
		token       string
		wantSpan    string
		wantPeriods *PeriodRange
		wantReason  string
	}{
		{"Period range", "第一节~第二节", "08:00-09:30", &PeriodRange{1, 2}, ""},
		{"Explicit clock", "08:00~09:30", "08:00-09:30", nil, ""},
		{"Explicit short hour", "8:05~9:00", "08:05-09:00", nil, ""},
		{"Explicit reversed", "10:00~09:00", "", nil, DropInvalidClock},
		{"Explicit invalid hour", "25:00~26:00", "", nil, DropInvalidClock},
		{"No period", "全天节", "", nil, DropNoPeriod},
		{"Beyond table", "第十三节~第十四节", "", nil, DropPeriodOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, periods, reason := tables.ResolveToken(tt.token)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantPeriods, periods)
			if tt.wantReason == "" {
				assert.Equal(t, tt.wantSpan, s.Start.String()+"-"+s.End.String())
			}
		})
	}
}
