package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstMeal          BookmarkType = "first_meal"
	BookmarkForageBreakthrough BookmarkType = "forage_breakthrough"
	BookmarkColonyCrash        BookmarkType = "colony_crash"
	BookmarkQueenLost          BookmarkType = "queen_lost"
	BookmarkFoodExhausted      BookmarkType = "food_exhausted"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches the window stream for moments worth revisiting.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	fedOnce      bool // first_meal fires once per run
	recentPeak   int  // peak ant count since the last crash
	hadQueen     bool
	foodGoneSeen bool // food_exhausted fires again only after food reappears
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3 // minimum for the rolling consumption average
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkFirstMeal,
		bd.checkForageBreakthrough,
		bd.checkColonyCrash,
		bd.checkQueenLost,
		bd.checkFoodExhausted,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.Ants > bd.recentPeak {
		bd.recentPeak = stats.Ants
	}
	if stats.Queens > 0 {
		bd.hadQueen = true
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkFirstMeal(stats WindowStats) *Bookmark {
	if bd.fedOnce || stats.MealsStarted == 0 {
		return nil
	}
	bd.fedOnce = true
	return &Bookmark{
		Type:        BookmarkFirstMeal,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("First %d meal(s) started with %d known food", stats.MealsStarted, stats.KnownFood),
	}
}

func (bd *BookmarkDetector) checkForageBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.Eaten
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.Eaten > avg*2.0 && stats.Eaten >= 0.5 {
		return &Bookmark{
			Type:        BookmarkForageBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Consumption %.2f is %.1fx average (%.2f)", stats.Eaten, stats.Eaten/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkColonyCrash(stats WindowStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Ants)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Ants <= bd.recentPeak-3 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Ants
		return &Bookmark{
			Type:        BookmarkColonyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Colony dropped %.0f%% from %d to %d ants", drop*100, oldPeak, stats.Ants),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkQueenLost(stats WindowStats) *Bookmark {
	if !bd.hadQueen || stats.Queens > 0 {
		return nil
	}
	bd.hadQueen = false
	return &Bookmark{
		Type:        BookmarkQueenLost,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Last queen died, %d workers remain", stats.Ants),
	}
}

func (bd *BookmarkDetector) checkFoodExhausted(stats WindowStats) *Bookmark {
	if stats.FoodCount > 0 {
		bd.foodGoneSeen = false
		return nil
	}
	if bd.foodGoneSeen {
		return nil
	}
	bd.foodGoneSeen = true
	return &Bookmark{
		Type:        BookmarkFoodExhausted,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No food left, %d ants alive", stats.Ants),
	}
}
