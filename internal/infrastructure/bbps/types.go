package bbps

import "strings"

// Wire shapes of the aggregator API. The vendor is loose about where data
// lives, several fields exist in more than one spot across billers.

// Category is one entry of the category listing
type Category struct {
	ID   string `json:"categoryId"`
	Name string `json:"categoryName"`
}

// ParamInfo is the vendor's declaration of one biller input field. Lengths
// arrive as strings on the wire.
type ParamInfo struct {
	ParamName string `json:"paramName"`
	DataType  string `json:"dataType"`
	Optional  string `json:"optional"`
	MinLength string `json:"minLength"`
	MaxLength string `json:"maxLength"`
	Regex     string `json:"regEx"`
}

// Biller is one entry of the biller listing for a category
type Biller struct {
	BillerID        string      `json:"billerId"`
	BillerName      string      `json:"billerName"`
	CategoryName    string      `json:"billerCategory"`
	AmountExactness string      `json:"amountExactness"`
	FetchRequired   string      `json:"fetchRequirement"`
	ParamInfo       []ParamInfo `json:"paramInfo"`
}

// InfoEntry is a name/value pair inside an additional-info block
type InfoEntry struct {
	InfoName  string `json:"infoName"`
	InfoValue string `json:"infoValue"`
}

// AdditionalInfo wraps the vendor's info list
type AdditionalInfo struct {
	Info []InfoEntry `json:"info"`
}

// BillerResponse is the nested bill body some billers return
type BillerResponse struct {
	Amount         string         `json:"amount"`
	DueDate        string         `json:"dueDate"`
	CustomerName   string         `json:"customerName"`
	AdditionalInfo AdditionalInfo `json:"additionalInfo"`
}

// FetchBillResponse is the bill-fetch reply. The minimum-due amount and
// other extras can appear under additionalInfo.info,
// billerResponse.additionalInfo.info or a bare top-level info list,
// depending on the biller. All three are unioned when read.
type FetchBillResponse struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	ReqID          string         `json:"reqId"`
	Amount         string         `json:"amount"`
	DueDate        string         `json:"dueDate"`
	CustomerName   string         `json:"customerName"`
	AdditionalInfo AdditionalInfo `json:"additionalInfo"`
	BillerResponse BillerResponse `json:"billerResponse"`
	Info           []InfoEntry    `json:"info"`
}

// AllInfoEntries unions every known additional-info location. The vendor is
// inconsistent across billers, so none of the spots can be trusted alone.
func (r *FetchBillResponse) AllInfoEntries() []InfoEntry {
	var entries []InfoEntry
	entries = append(entries, r.AdditionalInfo.Info...)
	entries = append(entries, r.BillerResponse.AdditionalInfo.Info...)
	entries = append(entries, r.Info...)
	return entries
}

// InfoValue finds the first info entry whose name matches any of the given
// spellings, case-insensitively.
func (r *FetchBillResponse) InfoValue(names ...string) (string, bool) {
	for _, entry := range r.AllInfoEntries() {
		got := strings.ToLower(strings.TrimSpace(entry.InfoName))
		for _, want := range names {
			if got == strings.ToLower(want) {
				return strings.TrimSpace(entry.InfoValue), true
			}
		}
	}
	return "", false
}

// PayRequest is the bill-pay call body
type PayRequest struct {
	BillerID string            `json:"billerId"`
	Params   map[string]string `json:"inputParams"`
	// Amount is in paise, as a decimal string per the vendor contract.
	Amount string `json:"amount"`
	ReqID  string `json:"reqId"`
	Tpin   string `json:"tpin,omitempty"`
}

// PayResponse is the bill-pay reply
type PayResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TxnID   string `json:"txnRefId"`
}

// StatusResponse is the transaction-status reply
type StatusResponse struct {
	Status    string `json:"status"`
	TxnStatus string `json:"txnStatus"`
	Message   string `json:"message"`
	TxnID     string `json:"txnRefId"`
}

// ComplaintRequest registers a complaint against a transaction
type ComplaintRequest struct {
	TxnID       string `json:"txnRefId"`
	Description string `json:"complaintDesc"`
	Disposition string `json:"complaintDisposition,omitempty"`
}

// ComplaintResponse is the complaint-registration reply
type ComplaintResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	ComplaintID string `json:"complaintId"`
}
