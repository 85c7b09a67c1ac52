package entities

import (
	"time"

	"github.com/google/uuid"
)

// AmountExactness constrains which payment amounts a biller accepts
type AmountExactness string

const (
	AmountExact     AmountExactness = "EXACT"
	AmountAny       AmountExactness = "ANY"
	AmountExactUp   AmountExactness = "EXACT_UP"
	AmountExactDown AmountExactness = "EXACT_DOWN"
)

// BillerParam is one entry of a biller's declared input schema
type BillerParam struct {
	ParamName string `json:"paramName"`
	DataType  string `json:"dataType"`
	Optional  bool   `json:"optional"`
	MinLength int    `json:"minLength"`
	MaxLength int    `json:"maxLength"`
	Regex     string `json:"regex,omitempty"`
}

// Biller is an upstream-registered payee with its input schema
type Biller struct {
	BillerID        string          `json:"billerId"`
	Name            string          `json:"name"`
	CategoryName    string          `json:"categoryName"`
	AmountExactness AmountExactness `json:"amountExactness"`
	FetchRequired   bool            `json:"fetchRequired"`
	Params          []BillerParam   `json:"params"`
}

// BillCategory is a biller grouping ("Electricity", "Mobile Prepaid", ...)
type BillCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BillSnapshot is the fetched bill as captured into a payment session.
// AdditionalInfo keeps the vendor's loosely-structured extras because the
// minimum-due amount hides in there under several spellings.
type BillSnapshot struct {
	AmountPaise    int64             `json:"amountPaise"`
	DueDate        string            `json:"dueDate"`
	ConsumerName   string            `json:"consumerName"`
	ReqID          string            `json:"reqId"`
	AdditionalInfo map[string]string `json:"additionalInfo,omitempty"`
}

// AmountOption is the user's choice at the amount-selection stage
type AmountOption string

const (
	AmountOptionFull    AmountOption = "full"
	AmountOptionMinimum AmountOption = "minimum"
	AmountOptionCustom  AmountOption = "custom"
)

// PaymentStage is the current stage of a payment session
type PaymentStage string

const (
	StageBill    PaymentStage = "bill"
	StageAmount  PaymentStage = "amount"
	StageConfirm PaymentStage = "confirm"
	StageSuccess PaymentStage = "success"
	StageFailed  PaymentStage = "failed"
)

// PaymentSession is the per-attempt state machine for a bill payment. It
// lives in Redis with a short TTL; a chargeable pay call is only reachable
// after the amount and charge have been confirmed against the wallet.
type PaymentSession struct {
	SessionID string    `json:"sessionId"`
	PartnerID uuid.UUID `json:"partnerId"`

	Stage   PaymentStage `json:"stage"`
	Prepaid bool         `json:"prepaid"`

	BillerID        string            `json:"billerId"`
	BillerName      string            `json:"billerName"`
	CategoryName    string            `json:"categoryName"`
	AmountExactness AmountExactness   `json:"amountExactness"`
	Params          map[string]string `json:"params"`

	Bill *BillSnapshot `json:"bill,omitempty"`

	// NoBillDue marks the soft success-without-payment outcome.
	NoBillDue     bool   `json:"noBillDue,omitempty"`
	VendorMessage string `json:"vendorMessage,omitempty"`

	SelectedOption AmountOption `json:"selectedOption,omitempty"`
	AmountPaise    int64        `json:"amountPaise,omitempty"`
	ChargePaise    int64        `json:"chargePaise,omitempty"`

	TransactionID string `json:"transactionId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TotalPaise is the full wallet deduction for the selected amount
func (s *PaymentSession) TotalPaise() int64 {
	return s.AmountPaise + s.ChargePaise
}

// DeductionBreakdown is what the confirm stage shows before the pay call
type DeductionBreakdown struct {
	AmountPaise int64  `json:"amountPaise"`
	ChargePaise int64  `json:"chargePaise"`
	TotalPaise  int64  `json:"totalPaise"`
	Amount      string `json:"amount"`
	Charge      string `json:"charge"`
	Total       string `json:"total"`
}

// ComplaintInput registers a complaint against a transaction with the vendor
type ComplaintInput struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Description   string `json:"description" binding:"required"`
	Disposition   string `json:"disposition,omitempty"`
}
