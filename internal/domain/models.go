package domain

import "time"

// Enumerations
const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleServer  UserRole = "server" // "Phục vụ"

	TaskPhoto   TaskType = "photo"
	TaskBoolean TaskType = "boolean"
	TaskOpinion TaskType = "opinion"

	ShiftMorning   ShiftKey = "sang"
	ShiftAfternoon ShiftKey = "chieu"
	ShiftEvening   ShiftKey = "toi"

	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"

	MethodCash       PaymentMethod = "cash"
	MethodShopeeFood PaymentMethod = "shopeeFood"
	MethodGrabFood   PaymentMethod = "grabFood"
	MethodBank       PaymentMethod = "bankTransfer"
	MethodVietQR     PaymentMethod = "techcombankVietQrPro"
)

type UserRole string
type TaskType string
type ShiftKey string
type PaymentStatus string
type PaymentMethod string

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Role         UserRole
	PasswordHash *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// Task is one checklist entry inside a shift template section.
type Task struct {
	ID   string
	Text string
	Type TaskType
	Area string
}

type TaskSection struct {
	Title string // Đầu ca / Trong ca / Cuối ca
	Tasks []Task
}

// ShiftTemplate is the static checklist definition for a named shift,
// together with the shift's canonical time frame (minutes from midnight).
type ShiftTemplate struct {
	Key        ShiftKey
	Name       string // Ca sáng, Ca chiều, Ca tối
	FrameStart int
	FrameEnd   int
	Sections   []TaskSection
}

// CompletionRecord is one execution of one task by one staff member.
// Timestamp is a zero-padded "HH:mm" wall-clock string.
type CompletionRecord struct {
	Timestamp string
	Photos    []string
	Value     *bool
	Opinion   string
}

// ShiftReport is a single staff member's submission for one shift-date.
// Immutable once created, except owner deletion.
type ShiftReport struct {
	ID             string
	UserID         int64
	StaffName      string
	ShiftKey       ShiftKey
	Date           time.Time
	CompletedTasks map[string][]CompletionRecord
	Issues         string
	SubmittedAt    time.Time
}

// ScheduleShift is one row of the published weekly work schedule.
type ScheduleShift struct {
	ID       int64
	UserID   int64
	UserName string
	Date     time.Time
	Label    string // e.g. "Ca sáng 6h-12h"
	Start    int    // minutes from midnight
	End      int
}

type AttendanceRecord struct {
	Date          time.Time
	ShiftLabel    string
	ExpectedHours float64
	WorkedHours   float64
	HourlyRate    int64
}

type AbsentShift struct {
	Date       time.Time
	ShiftLabel string
}

// ViolationRecord carries the per-user penalty costs of one incident.
// A user's cost counts as settled when the violation is waived, the user
// has filed a penalty submission, or penalty photos were attached.
type ViolationRecord struct {
	ID                 string
	Title              string
	Date               time.Time
	UserCosts          map[int64]int64
	IsPenaltyWaived    bool
	PenaltySubmissions []PenaltySubmission
	PenaltyPhotos      []string
	CreatedAt          time.Time
}

type PenaltySubmission struct {
	UserID      int64
	SubmittedAt time.Time
	Note        string
}

// SalaryRecord is one staff member's payroll line for one "YYYY-MM" month.
// The take-home figure is derived on read, never stored.
type SalaryRecord struct {
	ID                   int64
	UserID               int64
	UserName             string
	UserRole             UserRole
	Month                string
	TotalSalary          int64
	TotalExpectedHours   float64
	TotalWorkingHours    float64
	AverageHourlyRate    int64
	SalaryAdvance        int64
	Bonus                int64
	TotalUnpaidPenalties int64
	PaymentStatus        PaymentStatus
	ActualPaidAmount     *int64
	PaidAt               *time.Time
	AttendanceRecords    []AttendanceRecord
	AbsentShifts         []AbsentShift
	ViolationRecords     []ViolationRecord
	UpdatedAt            time.Time
}

// RevenueStats is one submitted end-of-day revenue snapshot. Multiple
// snapshots may exist for the same date; the latest CreatedAt wins.
type RevenueStats struct {
	ID              int64
	Date            time.Time
	NetRevenue      int64
	RevenueByMethod RevenueByMethod
	CreatedAt       time.Time
	CreatedBy       string
}

type RevenueByMethod struct {
	Cash         int64
	ShopeeFood   int64
	GrabFood     int64
	BankTransfer int64
	VietQR       int64
}

// Total sums all payment-method figures.
func (r RevenueByMethod) Total() int64 {
	return r.Cash + r.ShopeeFood + r.GrabFood + r.BankTransfer + r.VietQR
}

type ExpenseItem struct {
	Category    string // "other_cost" keeps its own name; everything else is materials
	Name        string
	Description string
	Amount      int64
}

type ExpenseSlip struct {
	ID            string
	Date          time.Time
	Items         []ExpenseItem
	TotalAmount   int64
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
	CreatedBy     string
	DeletedAt     *time.Time
}

// BallotEvent is the lottery-style participation feature.
type BallotEvent struct {
	ID           int64
	Title        string
	OpensAt      time.Time
	ClosesAt     time.Time
	WinnerUserID *int64
	CreatedAt    time.Time
}

type BallotEntry struct {
	EventID  int64
	UserID   int64
	UserName string
	JoinedAt time.Time
}

type Notification struct {
	ID        int64
	UserID    *int64
	Title     string
	Message   string
	CreatedAt time.Time
	ReadAt    *time.Time
}

const (
	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
)

type ActivityLogType string

// ActivityLog is the audit trail for sensitive actions: payout
// confirmations, report deletions, schedule publishes.
type ActivityLog struct {
	ID       int64
	Title    string
	Message  string
	Actor    string
	Type     ActivityLogType
	LoggedAt time.Time
}
