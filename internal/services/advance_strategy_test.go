package services

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name      string
		from      core.Date
		frequency core.Frequency
		want      core.Date
	}{
		{"daily", core.NewDate(2024, 1, 15), core.Daily, core.NewDate(2024, 1, 16)},
		{"daily crosses year", core.NewDate(2023, 12, 31), core.Daily, core.NewDate(2024, 1, 1)},
		{"weekly", core.NewDate(2024, 2, 26), core.Weekly, core.NewDate(2024, 3, 4)},
		{"monthly same day", core.NewDate(2024, 1, 15), core.Monthly, core.NewDate(2024, 2, 15)},
		{"monthly clamps leap february", core.NewDate(2024, 1, 31), core.Monthly, core.NewDate(2024, 2, 29)},
		{"monthly clamps common february", core.NewDate(2023, 1, 31), core.Monthly, core.NewDate(2023, 2, 28)},
		{"monthly clamps to thirty", core.NewDate(2024, 3, 31), core.Monthly, core.NewDate(2024, 4, 30)},
		{"monthly december rolls year", core.NewDate(2024, 12, 15), core.Monthly, core.NewDate(2025, 1, 15)},
		{"yearly", core.NewDate(2024, 6, 1), core.Yearly, core.NewDate(2025, 6, 1)},
		{"yearly leap day to common year", core.NewDate(2024, 2, 29), core.Yearly, core.NewDate(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Advance(tt.from, tt.frequency)
			if err != nil {
				t.Fatalf("Advance() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Advance(%s, %s) = %s, want %s", tt.from, tt.frequency, got, tt.want)
			}
		})
	}
}

func TestAdvance_MonthlyClampCompounds(t *testing.T) {
	tests := []struct {
		name  string
		start core.Date
		want  []core.Date
	}{
		{
			name:  "common year",
			start: core.NewDate(2023, 1, 31),
			want:  []core.Date{core.NewDate(2023, 2, 28), core.NewDate(2023, 3, 28), core.NewDate(2023, 4, 28)},
		},
		{
			name:  "leap year",
			start: core.NewDate(2024, 1, 31),
			want:  []core.Date{core.NewDate(2024, 2, 29), core.NewDate(2024, 3, 29), core.NewDate(2024, 4, 29)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.start
			for i, w := range tt.want {
				var err error
				d, err = Advance(d, core.Monthly)
				if err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				if !d.Equal(w) {
					t.Errorf("step %d = %s, want %s", i, d, w)
				}
			}
		})
	}
}

func TestAdvance_AlwaysMovesForward(t *testing.T) {
	start := core.NewDate(2023, 1, 1)
	for _, f := range []core.Frequency{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		for i := 0; i < 800; i++ {
			d := start.AddDays(i)
			got, err := Advance(d, f)
			if err != nil {
				t.Fatalf("%s %s: %v", f, d, err)
			}
			if !got.After(d) {
				t.Fatalf("Advance(%s, %s) = %s, not after input", d, f, got)
			}
		}
	}
}

func TestAdvance_InvalidFrequency(t *testing.T) {
	d := core.NewDate(2024, 1, 15)
	got, err := Advance(d, core.Frequency("fortnightly"))
	if !errors.Is(err, core.ErrInvalidFrequency) {
		t.Fatalf("expected ErrInvalidFrequency, got %v", err)
	}
	if !got.Equal(d) {
		t.Errorf("date changed on error: %s", got)
	}
}

type everyOtherDay struct{}

func (everyOtherDay) Next(d core.Date) core.Date { return d.AddDays(2) }

func TestRegisterAdvancer(t *testing.T) {
	custom := core.Frequency("biday")
	RegisterAdvancer(custom, everyOtherDay{})
	t.Cleanup(func() { delete(advanceStrategies, custom) })

	got, err := Advance(core.NewDate(2024, 1, 1), custom)
	if err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if want := core.NewDate(2024, 1, 3); !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}
