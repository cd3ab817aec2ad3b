package types

// TimeLayout is the fixed timestamp format used in JSON payloads and
// realtime events.
const TimeLayout = "2006-01-02 15:04:05"

// Admission response action tokens, consumed by the gate firmware.
const (
	ActionAllowEntry = "allow_entry"
	ActionDenyEntry  = "deny_entry"
	ActionAllowExit  = "allow_exit"
	ActionDenyExit   = "deny_exit"
	ActionPaymentDue = "payment_due"
)

type RFIDRequest struct {
	UID string `json:"uid"`
}

type AdmissionResponse struct {
	Status string `json:"status"` // "ok" | "denied"
	Action string `json:"action"`
	Plate  string `json:"plate,omitempty"`
	UID    string `json:"uid,omitempty"`
	Fee    *int64 `json:"fee,omitempty"`
}

// SessionRecord is the JSON shape of one ledger row as returned by /history.
type SessionRecord struct {
	ID        int64  `json:"id"`
	Plate     string `json:"plate"`
	RFIDUID   string `json:"rfid_uid,omitempty"`
	EntryTime string `json:"entry_time"`
	ExitTime  string `json:"exit_time,omitempty"`
	Fee       *int64 `json:"fee,omitempty"`
	ImagePath string `json:"image_path"`
	Status    string `json:"status"`
}
