package actionlog

import (
	"encoding/json"
	"time"

	"github.com/nuclibook/nuclibook/internal/domain/action"
	"github.com/nuclibook/nuclibook/internal/domain/staff"
)

// ActionLog maps to the action_log table. When is stored as epoch
// milliseconds in when_ms. Entries are written once and never updated.
type ActionLog struct {
	ID           int          `db:"id" json:"id"`
	When         time.Time    `db:"when_ms" json:"when"`
	StaffID      int          `db:"staff_id" json:"staff_id"`
	Staff        *staff.Staff `db:"-" json:"staff,omitempty"`
	ActionID     action.Code  `db:"action_id" json:"action_id"`
	AssociatedID *int         `db:"associated_id" json:"associated_id,omitempty"`
	Note         *string      `db:"note" json:"note,omitempty"`
}

// ActionName is the symbolic name of ActionID, or its number if unknown.
func (l ActionLog) ActionName() string {
	return l.ActionID.String()
}

// MarshalJSON adds the action name next to the numeric action_id.
func (l ActionLog) MarshalJSON() ([]byte, error) {
	type entry ActionLog
	return json.Marshal(struct {
		entry
		Action string `json:"action"`
	}{entry(l), l.ActionName()})
}
