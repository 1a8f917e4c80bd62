package domain

import "time"

// SoftDelete is embedded by entities that are flagged inactive instead of removed.
// IsDeletedTimestamp is non-nil exactly when IsDeleted is true.
type SoftDelete struct {
	IsDeleted          bool       `json:"isDeleted" gorm:"not null;default:false;index"`
	IsDeletedTimestamp *time.Time `json:"isDeletedTimestamp"`
}

// MarkDeleted flags the entity deleted at now. It reports false when it already was,
// leaving the original timestamp in place.
func (s *SoftDelete) MarkDeleted(now time.Time) bool {
	if s.IsDeleted {
		return false
	}
	s.IsDeleted = true
	s.IsDeletedTimestamp = &now
	return true
}

// Restore clears the deletion flag and timestamp. It reports false when there was nothing to restore.
func (s *SoftDelete) Restore() bool {
	if !s.IsDeleted && s.IsDeletedTimestamp == nil {
		return false
	}
	s.IsDeleted = false
	s.IsDeletedTimestamp = nil
	return true
}
