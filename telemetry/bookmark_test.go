package telemetry

import (
	"testing"
)

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FirstMeal(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(WindowStats{WindowEndTick: 600, Ants: 31}); hasBookmark(got, BookmarkFirstMeal) {
		t.Error("first_meal without any meal")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 1200, Ants: 31, MealsStarted: 2}); !hasBookmark(got, BookmarkFirstMeal) {
		t.Error("expected first_meal bookmark")
	}
	if got := bd.Check(WindowStats{WindowEndTick: 1800, Ants: 31, MealsStarted: 5}); hasBookmark(got, BookmarkFirstMeal) {
		t.Error("first_meal should fire once")
	}
}

func TestBookmarkDetector_ForageBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Ants: 31, Eaten: 0.3})
	}

	got := bd.Check(WindowStats{WindowEndTick: 3000, Ants: 31, Eaten: 1.2})
	if !hasBookmark(got, BookmarkForageBreakthrough) {
		t.Error("expected forage_breakthrough bookmark")
	}
}

func TestBookmarkDetector_ColonyCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Ants: 31, Queens: 1})
	}

	got := bd.Check(WindowStats{WindowEndTick: 2400, Ants: 15, Queens: 1})
	if !hasBookmark(got, BookmarkColonyCrash) {
		t.Error("expected colony_crash bookmark")
	}

	// Peak resets to the crash level
	got = bd.Check(WindowStats{WindowEndTick: 3000, Ants: 14, Queens: 1})
	if hasBookmark(got, BookmarkColonyCrash) {
		t.Error("colony_crash should not repeat for a small further drop")
	}
}

func TestBookmarkDetector_QueenLost(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bd.Check(WindowStats{WindowEndTick: 600, Ants: 31, Queens: 1})
	got := bd.Check(WindowStats{WindowEndTick: 1200, Ants: 30, Queens: 0})
	if !hasBookmark(got, BookmarkQueenLost) {
		t.Error("expected queen_lost bookmark")
	}
	got = bd.Check(WindowStats{WindowEndTick: 1800, Ants: 30, Queens: 0})
	if hasBookmark(got, BookmarkQueenLost) {
		t.Error("queen_lost should fire once")
	}
}

func TestBookmarkDetector_FoodExhausted(t *testing.T) {
	tests := []struct {
		name  string
		foods []int
		want  []bool
	}{
		{"fires once while empty", []int{3, 0, 0}, []bool{false, true, false}},
		{"re-arms when food returns", []int{0, 1, 0}, []bool{true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(10)
			for i, n := range tt.foods {
				got := hasBookmark(bd.Check(WindowStats{WindowEndTick: int32(i * 600), Ants: 31, FoodCount: n}), BookmarkFoodExhausted)
				if got != tt.want[i] {
					t.Errorf("window %d: food_exhausted = %v, want %v", i, got, tt.want[i])
				}
			}
		})
	}
}
