package domain

// InquiryStatus represents an immutable inquiry status value object
type InquiryStatus struct {
	value string
}

// Valid inquiry status values
const (
	inquiryStatusPending   = "pending"
	inquiryStatusQuoted    = "quoted"
	inquiryStatusAccepted  = "accepted"
	inquiryStatusRejected  = "rejected"
	inquiryStatusExpired   = "expired"
	inquiryStatusWithdrawn = "withdrawn"
)

// Predefined InquiryStatus instances
var (
	InquiryStatusPending   = InquiryStatus{value: inquiryStatusPending}
	InquiryStatusQuoted    = InquiryStatus{value: inquiryStatusQuoted}
	InquiryStatusAccepted  = InquiryStatus{value: inquiryStatusAccepted}
	InquiryStatusRejected  = InquiryStatus{value: inquiryStatusRejected}
	InquiryStatusExpired   = InquiryStatus{value: inquiryStatusExpired}
	InquiryStatusWithdrawn = InquiryStatus{value: inquiryStatusWithdrawn}
)

// inquiryTransitions encodes the legal different-state moves
var inquiryTransitions = map[string][]string{
	inquiryStatusPending:   {inquiryStatusQuoted, inquiryStatusRejected, inquiryStatusWithdrawn},
	inquiryStatusQuoted:    {inquiryStatusAccepted, inquiryStatusRejected, inquiryStatusExpired, inquiryStatusWithdrawn},
	inquiryStatusAccepted:  {}, // Terminal state
	inquiryStatusRejected:  {}, // Terminal state
	inquiryStatusExpired:   {}, // Terminal state
	inquiryStatusWithdrawn: {}, // Terminal state
}

// NewInquiryStatus creates a new InquiryStatus value object with validation
func NewInquiryStatus(s string) (InquiryStatus, error) {
	switch s {
	case inquiryStatusPending, inquiryStatusQuoted, inquiryStatusAccepted,
		inquiryStatusRejected, inquiryStatusExpired, inquiryStatusWithdrawn:
		return InquiryStatus{value: s}, nil
	default:
		return InquiryStatus{}, NewValidationError("status", "invalid inquiry status value: "+s)
	}
}

// MustNewInquiryStatus creates an InquiryStatus or panics if invalid (use for constants only)
func MustNewInquiryStatus(s string) InquiryStatus {
	status, err := NewInquiryStatus(s)
	if err != nil {
		panic(err)
	}
	return status
}

// String returns the string representation of the status
func (s InquiryStatus) String() string {
	return s.value
}

// Equals checks if two statuses are equal
func (s InquiryStatus) Equals(other InquiryStatus) bool {
	return s.value == other.value
}

// IsPending returns true if the status is pending
func (s InquiryStatus) IsPending() bool {
	return s.value == inquiryStatusPending
}

// IsQuoted returns true if the status is quoted
func (s InquiryStatus) IsQuoted() bool {
	return s.value == inquiryStatusQuoted
}

// IsAccepted returns true if the status is accepted
func (s InquiryStatus) IsAccepted() bool {
	return s.value == inquiryStatusAccepted
}

// IsRejected returns true if the status is rejected
func (s InquiryStatus) IsRejected() bool {
	return s.value == inquiryStatusRejected
}

// IsExpired returns true if the status is expired
func (s InquiryStatus) IsExpired() bool {
	return s.value == inquiryStatusExpired
}

// IsWithdrawn returns true if the status is withdrawn
func (s InquiryStatus) IsWithdrawn() bool {
	return s.value == inquiryStatusWithdrawn
}

// IsTerminal returns true if the status has no outgoing transitions
func (s InquiryStatus) IsTerminal() bool {
	return len(inquiryTransitions[s.value]) == 0
}

// CanBeQuoted returns true if a quote may be added in this status
func (s InquiryStatus) CanBeQuoted() bool {
	return s.CanTransitionTo(InquiryStatusQuoted)
}

// CanBeAccepted returns true if the inquiry can be accepted
func (s InquiryStatus) CanBeAccepted() bool {
	return s.CanTransitionTo(InquiryStatusAccepted)
}

// CanBeRejected returns true if the inquiry can be rejected
func (s InquiryStatus) CanBeRejected() bool {
	return s.CanTransitionTo(InquiryStatusRejected)
}

// CanBeWithdrawn returns true if the inquiry can be withdrawn
func (s InquiryStatus) CanBeWithdrawn() bool {
	return s.CanTransitionTo(InquiryStatusWithdrawn)
}

// CanExpire returns true if the inquiry can expire
func (s InquiryStatus) CanExpire() bool {
	return s.CanTransitionTo(InquiryStatusExpired)
}

// CanTransitionTo checks if this status can transition to another status
func (s InquiryStatus) CanTransitionTo(target InquiryStatus) bool {
	allowedTargets, exists := inquiryTransitions[s.value]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if target.value == allowed {
			return true
		}
	}

	return false
}

// MarshalText implements encoding.TextMarshaler for JSON/BSON serialization
func (s InquiryStatus) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON/BSON deserialization
func (s *InquiryStatus) UnmarshalText(text []byte) error {
	status, err := NewInquiryStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
