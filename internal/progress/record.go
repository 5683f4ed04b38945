package progress

// Record is the per-(enrollment, item) progress state. Percent is a
// monotonic ratchet: once persisted it never regresses. Seen is sticky and
// additionally survives re-enrollment through the student-scoped seen store.
type Record struct {
	EnrollmentID string  `json:"enrollment_id"`
	ItemID       string  `json:"item_id"`
	Percent      float64 `json:"percent"`
	Completed    bool    `json:"completed"`
	Seen         bool    `json:"seen"`
	CompletedAt  int64   `json:"completed_at,omitempty"` // unix seconds, stamped once
	UpdatedAt    int64   `json:"updated_at"`
}

// merge reconciles the two record sources plus the sticky seen flag for one
// item. A seen item collapses to fully complete regardless of either
// percent; otherwise the higher percent wins and seen is derived from the
// required threshold.
func merge(local, remote Record, studentSeen bool, required float64) Record {
	out := remote
	if local.Percent > out.Percent {
		out.Percent = local.Percent
	}
	if studentSeen && out.Percent < 100 {
		out.Percent = 100
	}
	out.Completed = remote.Completed || local.Completed || studentSeen
	out.Seen = remote.Seen || local.Seen || studentSeen || out.Percent >= required
	if local.CompletedAt != 0 && (out.CompletedAt == 0 || local.CompletedAt < out.CompletedAt) {
		out.CompletedAt = local.CompletedAt
	}
	if local.UpdatedAt > out.UpdatedAt {
		out.UpdatedAt = local.UpdatedAt
	}
	return out
}
