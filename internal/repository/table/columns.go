// Package table maps the four spreadsheet tabs of the inventory workbook to
// domain models. Columns are located by header text, so sheets may reorder
// columns or carry extra ones; extra columns survive a rewrite untouched.
package table

// Default tab names of the inventory workbook.
const (
	DefaultFormSheet      = "Form Responses"
	DefaultGearSheet      = "gear_inventory"
	DefaultCheckoutSheet  = "checkout_log"
	DefaultDashboardSheet = "dashboard"
)

// Form Responses columns.
const (
	ColTimestamp       = "Timestamp"
	ColTransactionType = "Transaction Type"
	ColEquipment       = "Equipment Serial Number"
	ColUserID          = "Soldier User ID"
	ColUserName        = "Soldier Name"
	ColEventDate       = "Checkout/Check-In Date"
	ColEventDueDate    = "Due Date (CHECK-OUT only)"
	ColCondition       = "Equipment Condition"
	ColNotes           = "Notes"
)

// gear_inventory columns.
const (
	ColSerialNumber = "Serial Number"
	ColItemName     = "Item Name"
	ColCategory     = "Category"
	ColLocation     = "Shop Location"
	ColStatus       = "Status"
	ColCurrentUser  = "Current User"
	ColDueDate      = "Due Date"
)

// checkout_log columns. Serial Number, Item Name, Due Date and Status are shared
// with gear_inventory.
const (
	ColTransactionID = "Transaction ID"
	ColLogUserName   = "User Name"
	ColCheckOutDate  = "Check-Out Date"
	ColCheckInDate   = "Check-In Date"
)

// dashboard columns.
const (
	ColMetric      = "Metric"
	ColValue       = "Value"
	ColLastUpdated = "Last Updated"
)

// Canonical headers used when a tab is empty.
var (
	FormHeader      = []string{ColTimestamp, ColTransactionType, ColEquipment, ColUserID, ColUserName, ColEventDate, ColEventDueDate, ColCondition, ColNotes}
	GearHeader      = []string{ColSerialNumber, ColItemName, ColCategory, ColLocation, ColStatus, ColCurrentUser, ColDueDate}
	CheckoutHeader  = []string{ColTransactionID, ColSerialNumber, ColItemName, ColLogUserName, ColCheckOutDate, ColDueDate, ColCheckInDate, ColStatus}
	DashboardHeader = []string{ColMetric, ColValue, ColLastUpdated}
)

// Sheets names the tabs of one workbook.
type Sheets struct {
	Form      string
	Gear      string
	Checkout  string
	Dashboard string
}

// DefaultSheets returns the tab names used by the original workbook.
func DefaultSheets() Sheets {
	return Sheets{
		Form:      DefaultFormSheet,
		Gear:      DefaultGearSheet,
		Checkout:  DefaultCheckoutSheet,
		Dashboard: DefaultDashboardSheet,
	}
}

// WithDefaults fills blank tab names.
func (s Sheets) WithDefaults() Sheets {
	d := DefaultSheets()
	if s.Form == "" {
		s.Form = d.Form
	}
	if s.Gear == "" {
		s.Gear = d.Gear
	}
	if s.Checkout == "" {
		s.Checkout = d.Checkout
	}
	if s.Dashboard == "" {
		s.Dashboard = d.Dashboard
	}
	return s
}
