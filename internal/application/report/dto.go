package report

import (
	"github.com/dyehouse/backend/internal/domain/shared/valueobject"
)

// DateLayout is the wire format of statement dates
const DateLayout = "2006-01-02"

// LedgerEntryResponse is one statement line on the wire
type LedgerEntryResponse struct {
	Date           string  `json:"date"`
	EntryType      string  `json:"entry_type"`
	DocumentID     string  `json:"document_id"`
	Reference      string  `json:"reference"`
	Description    string  `json:"description"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	RunningBalance float64 `json:"running_balance"`
}

// LedgerResponse is a customer statement with amounts as numbers
type LedgerResponse struct {
	CustomerID     string                `json:"customer_id"`
	CustomerName   string                `json:"customer_name"`
	From           string                `json:"from,omitempty"`
	To             string                `json:"to,omitempty"`
	OpeningBalance float64               `json:"opening_balance"`
	TotalDebit     float64               `json:"total_debit"`
	TotalCredit    float64               `json:"total_credit"`
	ClosingBalance float64               `json:"closing_balance"`
	Entries        []LedgerEntryResponse `json:"entries"`
}

// ToLedgerResponse renders amounts rounded to 2 places
func ToLedgerResponse(l *Ledger) LedgerResponse {
	resp := LedgerResponse{
		CustomerID:     l.CustomerID.String(),
		CustomerName:   l.CustomerName,
		OpeningBalance: valueobject.AmountFloat(l.OpeningBalance),
		TotalDebit:     valueobject.AmountFloat(l.TotalDebit),
		TotalCredit:    valueobject.AmountFloat(l.TotalCredit),
		ClosingBalance: valueobject.AmountFloat(l.ClosingBalance),
		Entries:        make([]LedgerEntryResponse, len(l.Entries)),
	}
	if l.From != nil {
		resp.From = l.From.Format(DateLayout)
	}
	if l.To != nil {
		resp.To = l.To.Format(DateLayout)
	}
	for i, e := range l.Entries {
		resp.Entries[i] = LedgerEntryResponse{
			Date:           e.Date.Format(DateLayout),
			EntryType:      string(e.EntryType),
			DocumentID:     e.DocumentID.String(),
			Reference:      e.Reference,
			Description:    e.Description,
			Debit:          valueobject.AmountFloat(e.Debit),
			Credit:         valueobject.AmountFloat(e.Credit),
			RunningBalance: valueobject.AmountFloat(e.RunningBalance),
		}
	}
	return resp
}
