package core

import (
	"testing"
	"time"
)

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name  string
		start Date
		end   Date
		want  int
	}{
		{"exact months", NewDate(2026, time.January, 15), NewDate(2026, time.April, 15), 3},
		{"trailing partial month rounds up", NewDate(2026, time.January, 15), NewDate(2026, time.February, 20), 2},
		{"end day before start day", NewDate(2025, time.January, 31), NewDate(2025, time.March, 1), 2},
		{"same day", NewDate(2026, time.May, 10), NewDate(2026, time.May, 10), 1},
		{"end before start floors at one", NewDate(2026, time.May, 10), NewDate(2026, time.April, 10), 1},
		{"across year boundary", NewDate(2025, time.November, 1), NewDate(2026, time.February, 1), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("MonthsBetween = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAmountPerPeriod(t *testing.T) {
	if got := AmountPerPeriod(Money{Cents: 120000}, 12); got.Cents != 10000 {
		t.Errorf("1200/12 = %d cents, want 10000", got.Cents)
	}
	if got := AmountPerPeriod(Money{Cents: 120000}, 0); got.Cents != 120000 {
		t.Errorf("zero periods should floor at 1, got %d cents", got.Cents)
	}
}

func TestPercentOfIncome(t *testing.T) {
	if got := PercentOfIncome(Money{Cents: 10000}, Money{Cents: 0}); got != 0 {
		t.Errorf("no income percent = %v, want 0", got)
	}
	if got := PercentOfIncome(Money{Cents: 30000}, Money{Cents: 100000}); got != 30 {
		t.Errorf("percent = %v, want 30", got)
	}
	if got := PercentOfIncome(Money{Cents: 10000}, Money{Cents: 30000}); got != 33.33 {
		t.Errorf("percent = %v, want 33.33", got)
	}
}

func TestProgress(t *testing.T) {
	goal := Caixinha{Target: Money{Cents: 100000}, Saved: Money{Cents: 25000}}
	if got := Progress(goal); got != 25 {
		t.Errorf("progress = %v, want 25", got)
	}

	goal.Saved = Money{Cents: 150000}
	if got := Progress(goal); got != 100 {
		t.Errorf("progress should clamp at 100, got %v", got)
	}

	if got := Progress(Caixinha{}); got != 0 {
		t.Errorf("zero-target progress = %v, want 0", got)
	}
}

func TestProjectedCompletion(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	start := NewDate(2026, time.January, 1)

	t.Run("already funded projects to today", func(t *testing.T) {
		goal := Caixinha{
			Target:    Money{Cents: 10000},
			Saved:     Money{Cents: 10000},
			StartDate: start,
			Frequency: FrequencyMonthly,
		}
		if got := ProjectedCompletion(goal, today); !got.Equal(DateOf(today).Time) {
			t.Errorf("projection = %v, want today", got)
		}
	})

	t.Run("monthly cadence", func(t *testing.T) {
		goal := Caixinha{
			Target:    Money{Cents: 120000},
			Saved:     Money{Cents: 0},
			StartDate: start,
			PerPeriod: Money{Cents: 10000},
			Frequency: FrequencyMonthly,
		}
		// 12 periods from January 1st.
		want := NewDate(2027, time.January, 1)
		if got := ProjectedCompletion(goal, today); !got.Equal(want.Time) {
			t.Errorf("projection = %v, want %v", got, want)
		}
	})

	t.Run("weekly cadence advances by seven days", func(t *testing.T) {
		goal := Caixinha{
			Target:    Money{Cents: 30000},
			Saved:     Money{Cents: 0},
			StartDate: start,
			PerPeriod: Money{Cents: 10000},
			Frequency: FrequencyWeekly,
		}
		want := NewDate(2026, time.January, 22)
		if got := ProjectedCompletion(goal, today); !got.Equal(want.Time) {
			t.Errorf("projection = %v, want %v", got, want)
		}
	})

	t.Run("remaining rounds periods up", func(t *testing.T) {
		goal := Caixinha{
			Target:    Money{Cents: 25000},
			Saved:     Money{Cents: 0},
			StartDate: start,
			PerPeriod: Money{Cents: 10000},
			Frequency: FrequencyDaily,
		}
		// ceil(250/100) = 3 days
		want := NewDate(2026, time.January, 4)
		if got := ProjectedCompletion(goal, today); !got.Equal(want.Time) {
			t.Errorf("projection = %v, want %v", got, want)
		}
	})

	t.Run("missing per-period falls back to the plan split", func(t *testing.T) {
		goal := Caixinha{
			Target:    Money{Cents: 120000},
			Saved:     Money{Cents: 0},
			StartDate: start,
			Months:    12,
			Frequency: FrequencyMonthly,
		}
		want := NewDate(2027, time.January, 1)
		if got := ProjectedCompletion(goal, today); !got.Equal(want.Time) {
			t.Errorf("projection = %v, want %v", got, want)
		}
	})
}

func TestSuggestContribution(t *testing.T) {
	goal := Caixinha{
		Target:       Money{Cents: 120000},
		StartDate:    NewDate(2026, time.January, 1),
		DeadlineMode: DeadlineByMonths,
		Months:       12,
		Frequency:    FrequencyMonthly,
	}

	got := SuggestContribution(goal, Money{Cents: 100000})
	if got.PerPeriod.Cents != 10000 {
		t.Errorf("PerPeriod = %d, want 10000", got.PerPeriod.Cents)
	}
	if got.PercentOfIncome != 10 {
		t.Errorf("PercentOfIncome = %v, want 10", got.PercentOfIncome)
	}
	if got.Periods != 12 {
		t.Errorf("Periods = %d, want 12", got.Periods)
	}
	if got.Weekly.Cents != 2500 {
		t.Errorf("Weekly = %d, want 2500", got.Weekly.Cents)
	}
	if got.Daily.Cents != 333 {
		t.Errorf("Daily = %d, want 333", got.Daily.Cents)
	}
	if got.HighCommitment {
		t.Error("10%% of income should not be flagged as high commitment")
	}

	// Same goal against a small income crosses the 30% line.
	tight := SuggestContribution(goal, Money{Cents: 30000})
	if !tight.HighCommitment {
		t.Error("33.33%% of income should be flagged as high commitment")
	}
}

func TestCaixinhaValidate(t *testing.T) {
	valid := Caixinha{
		Name:         "Viagem",
		Target:       Money{Cents: 500000},
		StartDate:    NewDate(2026, time.January, 1),
		DeadlineMode: DeadlineByMonths,
		Months:       10,
		Frequency:    FrequencyMonthly,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal rejected: %v", err)
	}

	var bad Caixinha
	err := bad.Validate()
	if err == nil {
		t.Fatal("empty goal should fail validation")
	}
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(ve.Problems) < 3 {
		t.Errorf("expected multiple problems, got %v", ve.Problems)
	}

	endBeforeStart := valid
	endBeforeStart.DeadlineMode = DeadlineByDate
	end := NewDate(2025, time.December, 1)
	endBeforeStart.EndDate = &end
	if err := endBeforeStart.Validate(); err == nil {
		t.Error("end date before start date should fail validation")
	}
}

func TestScanNotifications(t *testing.T) {
	goals := []Caixinha{
		{ID: "a", Name: "Meta batida", Target: Money{Cents: 100}, Saved: Money{Cents: 100}, Status: StatusActive},
		{ID: "b", Name: "Pesada", Target: Money{Cents: 100000}, SuggestedPercent: 45, Status: StatusActive},
		{ID: "c", Name: "Pesada pausada", Target: Money{Cents: 100000}, SuggestedPercent: 45, Status: StatusPaused},
		{ID: "d", Name: "Já concluída", Target: Money{Cents: 100}, Saved: Money{Cents: 100}, Status: StatusCompleted},
	}

	out := ScanNotifications(goals)
	if len(out) != 2 {
		t.Fatalf("expected 2 notifications, got %d: %v", len(out), out)
	}
	if out[0].Type != NotificationSuccess || out[0].CaixinhaID != "a" {
		t.Errorf("first notification = %+v, want success for goal a", out[0])
	}
	if out[1].Type != NotificationWarning || out[1].CaixinhaID != "b" {
		t.Errorf("second notification = %+v, want warning for goal b", out[1])
	}
}
