package api

import (
	"fmt"
	"net/url"
)

// Backend paths.
const (
	PathRegister       = "/api/auth/register"
	PathVerifyPhone    = "/api/auth/verify-phone"
	PathSendPhoneCode  = "/api/auth/send-verification-code"
	PathSendEmailCode  = "/api/auth/send-email-verification"
	PathResetPassword  = "/api/auth/reset-password"
	PathSupportTickets = "/api/support/tickets"
	PathCarAttributes  = "/api/cars/attributes"
	PathPayments       = "/api/payments"
	PathTransactions   = "/api/payments/transactions"
	PathDashboard      = "/api/admin/dashboard"
	PathModeration     = "/api/admin/moderation"
	PathReports        = "/api/admin/reports"
)

// ModerationListPath lists moderation items with status.
func ModerationListPath(status string) string {
	return withStatus(PathModeration, status)
}

// ModerationItemPath is where an approve/reject decision is posted.
func ModerationItemPath(id int64) string {
	return fmt.Sprintf("%s/%d", PathModeration, id)
}

// ReportListPath lists reports with status.
func ReportListPath(status string) string {
	return withStatus(PathReports, status)
}

// ReportResolvePath is where a report resolution is posted.
func ReportResolvePath(id int64) string {
	return fmt.Sprintf("%s/%d/resolve", PathReports, id)
}

// RefundPath requests a refund of a transaction.
func RefundPath(id int64) string {
	return fmt.Sprintf("%s/%d/refund", PathTransactions, id)
}

// SupportTicketPath is the screen route for a created ticket.
func SupportTicketPath(id string) string {
	return "/support/tickets/" + url.PathEscape(id)
}

func withStatus(base, status string) string {
	if status == "" {
		return base
	}
	return base + "?status=" + url.QueryEscape(status)
}
