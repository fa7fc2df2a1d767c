// Package models contains the GORM persistence models. Domain aggregates
// carry no ORM tags; each model maps to one table and converts to and from
// its aggregate with ToDomain / ...FromDomain.
//
// Invoices store a snapshot of their derived totals (taxable value, tax,
// total, balance) so listings and the outstanding-invoice query can filter
// and sort in SQL. The snapshot is rewritten on every save and never read
// back into the aggregate; totals are recomputed on load.
package models
