package api

import "time"

// Activity is one entry of the dashboard's recent activity feed.
type Activity struct {
	Action      string    `json:"action"`
	UserName    string    `json:"user_name"`
	CreatedDate time.Time `json:"created_date"`
}

// Dashboard holds the admin overview counters.
type Dashboard struct {
	TotalUsers        int        `json:"total_users"`
	UsersToday        int        `json:"users_today"`
	TotalListings     int        `json:"total_listings"`
	ActiveListings    int        `json:"active_listings"`
	PendingModeration int        `json:"pending_moderation"`
	OpenReports       int        `json:"open_reports"`
	RecentActivities  []Activity `json:"recent_activities"`
}

// ModerationItem is a listing awaiting or past moderation.
type ModerationItem struct {
	ID                  int64     `json:"moderation_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	UserName            string    `json:"user_name"`
	SubmittedDate       time.Time `json:"submitted_date"`
	Priority            string    `json:"priority"`
	Status              string    `json:"status"`
	AutoModerationScore int       `json:"auto_moderation_score,omitempty"`
	RejectionReason     string    `json:"rejection_reason,omitempty"`
}

// Moderation statuses.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Report is a user complaint about content.
type Report struct {
	ID              int64      `json:"report_id"`
	Reason          string     `json:"report_reason"`
	ReporterName    string     `json:"reporter_name"`
	Description     string     `json:"description"`
	ContentType     string     `json:"content_type"`
	ContentTitle    string     `json:"content_title"`
	ContentAuthor   string     `json:"content_author"`
	Status          string     `json:"status"`
	CreatedDate     time.Time  `json:"created_date"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	ResolvedDate    *time.Time `json:"resolved_date,omitempty"`
	ResolvedByName  string     `json:"resolved_by_name,omitempty"`
}

// Report statuses.
const (
	ReportOpen      = "open"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

// Transaction is one payment-ledger entry.
type Transaction struct {
	ID            int64     `json:"transaction_id"`
	Type          string    `json:"transaction_type"`
	Amount        float64   `json:"amount"`
	CurrencyCode  string    `json:"currency_code"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	PaymentMethod string    `json:"payment_method"`
	CreatedDate   time.Time `json:"created_date"`
}

// Refundable reports whether a refund may be requested.
func (t Transaction) Refundable() bool {
	return t.Type == "payment" && t.Status == "completed"
}

// Credit reports whether the amount is added to the user's balance.
func (t Transaction) Credit() bool {
	return t.Type == "refund" || t.Type == "bonus"
}

// TransactionStats summarises a transaction list.
type TransactionStats struct {
	Total       int
	Completed   int
	Pending     int
	Failed      int
	TotalAmount float64
}

// Summarize counts transactions by status and totals completed payments.
func Summarize(txs []Transaction) TransactionStats {
	var s TransactionStats
	for _, t := range txs {
		s.Total++
		switch t.Status {
		case "completed":
			s.Completed++
			if t.Type == "payment" {
				s.TotalAmount += t.Amount
			}
		case "pending":
			s.Pending++
		case "failed":
			s.Failed++
		}
	}
	return s
}

// Ticket is a support request.
type Ticket struct {
	ID          string    `json:"ticket_id"`
	Subject     string    `json:"subject"`
	Status      string    `json:"status"`
	CategoryID  string    `json:"category_id,omitempty"`
	Priority    string    `json:"priority,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedDate time.Time `json:"created_date"`
}
