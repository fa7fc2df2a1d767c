// Package report builds read-only customer statements from invoices and
// payments.
package report

import (
	"sort"
	"time"

	"github.com/dyehouse/backend/internal/domain/invoicing"
	"github.com/dyehouse/backend/internal/domain/settlement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryType tells invoices (debits) from payments (credits)
type LedgerEntryType string

const (
	LedgerEntryInvoice LedgerEntryType = "INVOICE"
	LedgerEntryPayment LedgerEntryType = "PAYMENT"
)

// LedgerEntry is one line of a customer statement
type LedgerEntry struct {
	Date           time.Time
	EntryType      LedgerEntryType
	DocumentID     uuid.UUID
	Reference      string
	Description    string
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	RunningBalance decimal.Decimal
}

// Ledger is a customer statement for a date range
type Ledger struct {
	CustomerID     uuid.UUID
	CustomerName   string
	From           *time.Time
	To             *time.Time
	OpeningBalance decimal.Decimal
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
	ClosingBalance decimal.Decimal
	Entries        []LedgerEntry
}

// BuildLedger orders invoices and payments by date and carries a running
// balance from opening. On the same date invoices come before payments, and
// documents of one kind keep the order they were loaded in.
func BuildLedger(opening decimal.Decimal, invoices []invoicing.SalesInvoice, payments []settlement.CustomerPayment) Ledger {
	entries := make([]LedgerEntry, 0, len(invoices)+len(payments))
	for i := range invoices {
		inv := &invoices[i]
		entries = append(entries, LedgerEntry{
			Date:        inv.InvoiceDate,
			EntryType:   LedgerEntryInvoice,
			DocumentID:  inv.ID,
			Reference:   inv.InvoiceNumber,
			Description: "Sales invoice",
			Debit:       inv.Totals().Total,
			Credit:      decimal.Zero,
		})
	}
	for i := range payments {
		p := &payments[i]
		ref := p.ReferenceNo
		if ref == "" {
			ref = p.ID.String()[:8]
		}
		entries = append(entries, LedgerEntry{
			Date:        p.PaymentDate,
			EntryType:   LedgerEntryPayment,
			DocumentID:  p.ID,
			Reference:   ref,
			Description: "Payment received (" + p.PaymentType.String() + ")",
			Debit:       decimal.Zero,
			Credit:      p.TotalAmount,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.EntryType != b.EntryType && a.EntryType == LedgerEntryInvoice
	})

	ledger := Ledger{
		OpeningBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		Entries:        entries,
	}
	balance := opening
	for i := range entries {
		balance = balance.Add(entries[i].Debit).Sub(entries[i].Credit)
		entries[i].RunningBalance = balance
		ledger.TotalDebit = ledger.TotalDebit.Add(entries[i].Debit)
		ledger.TotalCredit = ledger.TotalCredit.Add(entries[i].Credit)
	}
	ledger.ClosingBalance = balance
	return ledger
}

// openingBalance nets everything dated before the statement range
func openingBalance(invoices []invoicing.SalesInvoice, payments []settlement.CustomerPayment) decimal.Decimal {
	balance := decimal.Zero
	for i := range invoices {
		balance = balance.Add(invoices[i].Totals().Total)
	}
	for i := range payments {
		balance = balance.Sub(payments[i].TotalAmount)
	}
	return balance
}
