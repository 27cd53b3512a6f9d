package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"on_stock", "reserve", "issued", "maintenance", "retired"} {
		parsed, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), parsed)
	}

	for _, s := range []string{"", "lost", "ON_STOCK", "reserved"} {
		_, err := ParseStatus(s)
		assert.Error(t, err, s)
	}
}

func TestStatusSuffix(t *testing.T) {
	assert.Equal(t, "STK", StatusOnStock.Suffix())
	assert.Equal(t, "RSV", StatusReserve.Suffix())
	assert.Equal(t, "ISS", StatusIssued.Suffix())
	assert.Equal(t, "MNT", StatusMaintenance.Suffix())
	assert.Equal(t, "RET", StatusRetired.Suffix())
	assert.Equal(t, "UNK", Status("bogus").Suffix())
}

func TestAppendAuditPreservesOrder(t *testing.T) {
	var rec AccessoryRecord
	rec.AppendAudit("maria", "create", "first")
	rec.AppendAudit("carlos", "adjust", "second")

	require.Len(t, rec.AuditTrail, 2)
	assert.Equal(t, "first", rec.AuditTrail[0].Description)
	assert.Equal(t, "second", rec.AuditTrail[1].Description)
	assert.False(t, rec.AuditTrail[0].Timestamp.After(rec.AuditTrail[1].Timestamp))
}

func TestBorrowerOrNA(t *testing.T) {
	var rec AccessoryRecord
	assert.Equal(t, "N/A", rec.BorrowerOrNA())

	empty := ""
	rec.Borrower = &empty
	assert.Equal(t, "N/A", rec.BorrowerOrNA())

	name := "Alice"
	rec.Borrower = &name
	assert.Equal(t, "Alice", rec.BorrowerOrNA())
}

func TestIsDerived(t *testing.T) {
	var rec AccessoryRecord
	assert.False(t, rec.IsDerived())
	id := rec.ID
	rec.LineageID = &id
	assert.True(t, rec.IsDerived())
}
