package systems

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/skyview/engine/core"
)

// LoadingTextFormat is the overlay text shown while assets load.
const LoadingTextFormat = "Loading... %d%%"

// OverlayController is the part of the loading overlay driven by load progress.
type OverlayController interface {
	SetLoadingText(text string)
	Hide()
}

// LoadCounter tracks how many of the expected assets have arrived.
type LoadCounter struct {
	Total  int
	Loaded int
}

/**
 * @brief Counts finished loads and reports them on the loading overlay.
 * Only the goroutine running the frame loop may call its methods.
 */
type ProgressSystem struct {
	counter  LoadCounter
	overlay  OverlayController
	hideSeen bool
}

func NewProgressSystem(total int, overlay OverlayController) (*ProgressSystem, error) {
	if total < 0 {
		return nil, fmt.Errorf("progress system expects a non negative asset count, got %d: %w", total, core.ErrInvalidConfig)
	}
	return &ProgressSystem{
		counter: LoadCounter{Total: total},
		overlay: overlay,
	}, nil
}

// Expect adds one asset to the total. Call it when the load is issued.
func (ps *ProgressSystem) Expect(name string) {
	ps.counter.Total++
	core.LogDebug("Expecting asset '%s' (%d total).", name, ps.counter.Total)
}

func (ps *ProgressSystem) Counter() LoadCounter {
	return ps.counter
}

// Complete reports whether every expected asset was counted.
func (ps *ProgressSystem) Complete() bool {
	return ps.counter.Loaded == ps.counter.Total
}

// HideRequested reports whether the overlay was asked to hide.
func (ps *ProgressSystem) HideRequested() bool {
	return ps.hideSeen
}

/**
 * @brief Counts one finished asset and refreshes the overlay text.
 * When checksCompletion is set and every asset has arrived the overlay
 * is asked to hide. Assets without the flag never hide it, even when
 * they arrive last.
 */
func (ps *ProgressSystem) OnAssetLoaded(name string, checksCompletion bool) {
	if ps.counter.Loaded >= ps.counter.Total {
		core.LogWarn("Asset '%s' finished after all %d expected assets were counted.", name, ps.counter.Total)
		return
	}
	ps.counter.Loaded++
	core.LogDebug("Asset '%s' loaded (%d/%d).", name, ps.counter.Loaded, ps.counter.Total)
	ps.UpdateProgress(ps.counter.Loaded, ps.counter.Total)

	if checksCompletion && ps.Complete() {
		ps.HideOverlay()
	}
}

// OnAssetFailed logs err. The counter is left alone so the overlay stays up.
func (ps *ProgressSystem) OnAssetFailed(name string, id uuid.UUID, err error) {
	core.LogError("Failed to load asset '%s' (request %s): %s", name, id, err)
}

/**
 * @brief Writes floor(loaded/total*100) to the overlay text. Does nothing when total is 0.
 */
func (ps *ProgressSystem) UpdateProgress(loaded, total int) {
	if total == 0 {
		return
	}
	if ps.overlay == nil {
		return
	}
	ps.overlay.SetLoadingText(fmt.Sprintf(LoadingTextFormat, ProgressPercent(loaded, total)))
}

// HideOverlay starts the overlay disappear transition.
func (ps *ProgressSystem) HideOverlay() {
	ps.hideSeen = true
	if ps.overlay != nil {
		ps.overlay.Hide()
	}
}

// ProgressPercent returns floor(loaded/total*100), or 0 when total is 0.
func ProgressPercent(loaded, total int) int {
	if total == 0 {
		return 0
	}
	return (loaded * 100) / total
}
