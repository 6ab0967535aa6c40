package deconfliction

import (
	"github.com/picogrid/uav-deconfliction/pkg/models"
)

// TemporalOverlap reports whether two mission windows overlap. Windows that
// only touch at an endpoint do not overlap. The test is symmetric.
func TemporalOverlap(a, b *models.Mission) bool {
	aStart, aEnd := a.TimeRange()
	bStart, bEnd := b.TimeRange()
	return aEnd.After(bStart) && aStart.Before(bEnd)
}

// OverlapWindow returns the intersection of two mission windows. It is only
// meaningful when TemporalOverlap is true.
func OverlapWindow(a, b *models.Mission) models.TimeWindow {
	aStart, aEnd := a.TimeRange()
	bStart, bEnd := b.TimeRange()

	w := models.TimeWindow{Start: aStart, End: aEnd}
	if bStart.After(w.Start) {
		w.Start = bStart
	}
	if bEnd.Before(w.End) {
		w.End = bEnd
	}
	return w
}

// SpatialConflicts compares every waypoint of primary with every waypoint of
// peer and returns one record per pair closer than buffer. Waypoints are not
// aligned by time. Each record is located at the primary's waypoint.
func SpatialConflicts(primary, peer *models.Mission, buffer float64, graded bool) []models.ConflictRecord {
	var records []models.ConflictRecord
	peerPoints := peer.Trajectory()

	for _, p := range primary.Trajectory() {
		for _, q := range peerPoints {
			d := p.DistanceTo(q)
			if d >= buffer {
				continue
			}
			sev := models.SeverityHigh
			if graded {
				sev = gradeSeverity(d, buffer)
			}
			records = append(records, models.ConflictRecord{
				PeerMissionID: peer.ID(),
				Location:      p,
				Kind:          models.ConflictSpatial,
				Severity:      sev,
				Distance:      d,
			})
		}
	}
	return records
}

// gradeSeverity maps a separation to a severity tier by thirds of the buffer
func gradeSeverity(distance, buffer float64) models.Severity {
	switch {
	case distance < buffer/3:
		return models.SeverityHigh
	case distance < 2*buffer/3:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}
