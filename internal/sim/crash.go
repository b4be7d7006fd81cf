package sim

// CrashTime returns the time of the first sample whose damage has reached
// the threshold, scanning in time order. The second return is false when no
// sample qualifies within the trajectory's horizon.
//
// The comparison is y >= threshold, the complement of the model's growth
// gate (y < threshold), so gate and detector agree at exact equality.
//
// Detection scans the fixed sample grid, not the solver's internal steps, so
// the reported time is accurate only to one sampling interval
// ([Trajectory.Interval]). This is a deliberate approximation matching the
// reference behavior, not a root-find of the true crossing.
func CrashTime(tr *Trajectory, threshold float64) (float64, bool) {
	for i, y := range tr.Damage {
		if y >= threshold {
			return tr.Times[i], true
		}
	}
	return 0, false
}
