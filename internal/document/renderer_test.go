package document_test

import (
	"bytes"
	"testing"
	"time"

	"woms/internal/document"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVoucherProducesPDF(t *testing.T) {
	renderer := document.NewFPDFRenderer()

	pdf, err := renderer.RenderVoucher(document.VoucherData{
		RVNumber:    "RV-1001",
		RequestedBy: "alice",
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Items: []document.ItemLine{
			{Name: "Hard Hat", Quantity: 10, Unit: "pcs"},
			{Name: "Copper Wire", Quantity: 3, Unit: "rolls"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
	assert.Greater(t, len(pdf), 500)
}

func TestRenderVoucherHandlesManyItems(t *testing.T) {
	renderer := document.NewFPDFRenderer()

	items := make([]document.ItemLine, 25)
	for i := range items {
		items[i] = document.ItemLine{Name: "Bolt", Quantity: i + 1, Unit: "pcs"}
	}
	pdf, err := renderer.RenderVoucher(document.VoucherData{
		RVNumber:    "RV-1002",
		RequestedBy: "alice",
		Date:        time.Now(),
		Items:       items,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderPurchaseOrderProducesPDF(t *testing.T) {
	renderer := document.NewFPDFRenderer()

	pdf, err := renderer.RenderPurchaseOrder(document.POData{
		PONumber: "PO-abc-20260314-def",
		RVNumber: "RV-abc-20260314-def",
		Supplier: "ACME Hardware",
		Address:  "123 Main St",
		Date:     "2026-03-14",
		Items: []document.POItemLine{
			{Unit: "pcs", Description: "Hard Hat", Quantity: "10", UnitPrice: "25.00", TotalPrice: "250.00"},
		},
		Discount:     "0.00",
		GrandTotal:   "250.00",
		AuthorizedBy: "frank",
		Remarks:      "rush order",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestRenderPurchaseOrderEmptyForm(t *testing.T) {
	renderer := document.NewFPDFRenderer()

	// A freshly created draft has no fields filled in yet; previewing it
	// must still produce a document.
	pdf, err := renderer.RenderPurchaseOrder(document.POData{
		PONumber: "PO-empty",
		RVNumber: "RV-empty",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}
