package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkSheepExtinct  BookmarkType = "sheep_extinct"
	BookmarkWolvesExtinct BookmarkType = "wolves_extinct"
	BookmarkSheepCrash    BookmarkType = "sheep_crash"
	BookmarkWolfRecovery  BookmarkType = "wolf_recovery"
	BookmarkStablePasture BookmarkType = "stable_pasture"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int64        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments in the population history.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	sawSheep, sheepExtinct   bool
	sawWolves, wolvesExtinct bool

	recentWolfMin   int // minimum wolf count since the last recovery
	recentSheepPeak int // peak sheep count since the last crash
	stableWindows   int // consecutive windows with steady populations
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable pasture detection
	}
	return &BookmarkDetector{
		history:       make([]WindowStats, historySize),
		historySize:   historySize,
		recentWolfMin: -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, b...)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkSheepCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkWolfRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePasture(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	bd.sawSheep = bd.sawSheep || stats.Sheep > 0
	bd.sawWolves = bd.sawWolves || stats.Wolves > 0
	if bd.recentWolfMin < 0 || stats.Wolves < bd.recentWolfMin {
		bd.recentWolfMin = stats.Wolves
	}
	if stats.Sheep > bd.recentSheepPeak {
		bd.recentSheepPeak = stats.Sheep
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

// recent returns up to n of the latest windows, oldest first.
func (bd *BookmarkDetector) recent(n int) []WindowStats {
	count := bd.historyIdx
	if bd.historyFull {
		count = bd.historySize
	}
	n = min(n, count)

	out := make([]WindowStats, 0, n)
	for i := n; i > 0; i-- {
		idx := (bd.historyIdx - i + bd.historySize) % bd.historySize
		out = append(out, bd.history[idx])
	}
	return out
}

// checkExtinction fires once per kind, the first window it reaches zero
// after having been seen alive.
func (bd *BookmarkDetector) checkExtinction(stats WindowStats) []Bookmark {
	var out []Bookmark
	if !bd.sheepExtinct && stats.Sheep == 0 && bd.sawSheep {
		bd.sheepExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkSheepExtinct,
			Tick:        stats.WindowEndTick,
			Description: "Last sheep gone",
		})
	}
	if !bd.wolvesExtinct && stats.Wolves == 0 && bd.sawWolves {
		bd.wolvesExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkWolvesExtinct,
			Tick:        stats.WindowEndTick,
			Description: "Last wolf gone",
		})
	}
	return out
}

func (bd *BookmarkDetector) checkSheepCrash(stats WindowStats) *Bookmark {
	if bd.recentSheepPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Sheep)/float64(bd.recentSheepPeak)
	if drop > 0.30 && stats.Sheep < bd.recentSheepPeak-10 {
		oldPeak := bd.recentSheepPeak
		bd.recentSheepPeak = stats.Sheep

		return &Bookmark{
			Type:        BookmarkSheepCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Sheep crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Sheep),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkWolfRecovery(stats WindowStats) *Bookmark {
	if bd.recentWolfMin <= 0 || bd.recentWolfMin > 3 {
		return nil
	}

	if stats.Wolves >= bd.recentWolfMin*3 && stats.Wolves >= 6 {
		oldMin := bd.recentWolfMin
		bd.recentWolfMin = stats.Wolves

		return &Bookmark{
			Type:        BookmarkWolfRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Wolves recovered from %d to %d", oldMin, stats.Wolves),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePasture(stats WindowStats) *Bookmark {
	if stats.Sheep < 10 || stats.Wolves < 3 {
		bd.stableWindows = 0
		return nil
	}

	history := bd.recent(4)
	if len(history) < 4 {
		return nil
	}

	// Squared coefficient of variation below 0.04 means CV < 20%.
	if cv2(history, func(s WindowStats) int { return s.Sheep }) < 0.04 &&
		cv2(history, func(s WindowStats) int { return s.Wolves }) < 0.04 {
		bd.stableWindows++
	} else {
		bd.stableWindows = 0
	}

	if bd.stableWindows == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePasture,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable pasture with %d sheep, %d wolves over 5+ windows", stats.Sheep, stats.Wolves),
		}
	}
	return nil
}

func cv2(history []WindowStats, count func(WindowStats) int) float64 {
	var sum float64
	for _, h := range history {
		sum += float64(count(h))
	}
	mean := sum / float64(len(history))
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, h := range history {
		d := float64(count(h)) - mean
		variance += d * d
	}
	variance /= float64(len(history))
	return variance / (mean * mean)
}
