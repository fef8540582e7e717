package document

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

const (
	letterWidth  = 612.0
	letterHeight = 792.0
	a4Width      = 595.28
	a4Height     = 841.89

	orgName    = "QUEZON I ELECTRIC COOPERATIVE, INC."
	orgAddress = "Brgy. Poctol, Pitogo, Quezon"
)

// FPDFRenderer draws requisition vouchers and purchase orders. The layouts
// (letter-size voucher with a 10-row item grid and signatory block, A4 PO
// with priced line table) are fixed; callers only supply data.
type FPDFRenderer struct{}

func NewFPDFRenderer() *FPDFRenderer { return &FPDFRenderer{} }

func (r *FPDFRenderer) RenderVoucher(data VoucherData) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(180, 50, orgName)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(235, 65, orgAddress)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.Text(234, 100, "REQUISITION VOUCHER")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(200, 0, 0)
	pdf.Text(letterWidth-160, 100, "No. "+data.RVNumber)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(letterWidth-160, 130, "Date: "+data.Date.Format("January 02, 2006"))

	pdf.Text(50, 165, "Request Approval to procure the following materials/supplies for:")

	// Item grid: header row plus ten lines, blank rows padded out.
	const (
		tableTop  = 200.0
		rowHeight = 18.0
	)
	colWidths := []float64{60, 250, 80, 130}
	headers := []string{"ITEM", "ARTICLE", "QUANTITY", "REMARKS"}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetXY(50, tableTop)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 10)
	for row := 0; row < 10; row++ {
		pdf.SetXY(50, tableTop+rowHeight*float64(row+1))
		if row < len(data.Items) {
			item := data.Items[row]
			pdf.CellFormat(colWidths[0], rowHeight, fmt.Sprintf("%d", row+1), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colWidths[1], rowHeight, item.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(colWidths[2], rowHeight, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(colWidths[3], rowHeight, item.Unit, "1", 0, "L", false, 0, "")
			continue
		}
		for _, w := range colWidths {
			pdf.CellFormat(w, rowHeight, "", "1", 0, "L", false, 0, "")
		}
	}

	// Signatory block
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(60, 400, "Requested by:")
	pdf.Text(60, 415, data.RequestedBy)
	pdf.Line(60, 420, 200, 420)

	pdf.Text(230, 400, "Evaluated by:")
	pdf.Line(230, 420, 390, 420)

	pdf.Text(420, 400, "Recommending Approval:")
	pdf.Line(420, 420, 560, 420)

	pdf.Text(420, 440, "Approved by:")
	pdf.Line(420, 460, 560, 460)

	pdf.Text(420, 480, "General Manager")
	pdf.Line(420, 500, 560, 500)

	return output(pdf)
}

func (r *FPDFRenderer) RenderPurchaseOrder(data POData) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Text(50, 50, orgName)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(50, 65, orgAddress)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Text(50, 90, "PURCHASE ORDER")
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(400, 90, "No: "+data.PONumber)
	pdf.Text(50, 110, "Supplier: "+data.Supplier)
	pdf.Text(50, 125, "Address: "+data.Address)
	pdf.Text(400, 110, "R.V. No.: "+data.RVNumber)
	pdf.Text(400, 125, "Date: "+data.Date)

	const (
		tableTop  = 150.0
		rowHeight = 18.0
	)
	colWidths := []float64{30, 40, 180, 60, 80, 80}
	headers := []string{"Item", "Unit", "Description", "Quantity", "Unit Price", "Total Price"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(211, 211, 211)
	pdf.SetXY(50, tableTop)
	for i, h := range headers {
		pdf.CellFormat(colWidths[i], rowHeight, h, "1", 0, "C", true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 9)
	y := tableTop + rowHeight
	for i, item := range data.Items {
		pdf.SetXY(50, y)
		pdf.CellFormat(colWidths[0], rowHeight, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[1], rowHeight, item.Unit, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], rowHeight, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[3], rowHeight, item.Quantity, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[4], rowHeight, item.UnitPrice, "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[5], rowHeight, item.TotalPrice, "1", 0, "R", false, 0, "")
		y += rowHeight
	}
	if data.Discount != "" {
		pdf.SetXY(50, y)
		pdf.CellFormat(colWidths[0]+colWidths[1], rowHeight, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[2], rowHeight, "Discount", "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[3]+colWidths[4], rowHeight, "", "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[5], rowHeight, "-"+data.Discount, "1", 0, "R", false, 0, "")
		y += rowHeight
	}
	pdf.SetXY(50, y)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2]+colWidths[3], rowHeight, "", "1", 0, "L", false, 0, "")
	pdf.CellFormat(colWidths[4], rowHeight, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[5], rowHeight, data.GrandTotal, "1", 0, "R", false, 0, "")
	y += rowHeight

	if data.Remarks != "" {
		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(50, y+25, "Remarks: "+data.Remarks)
	}

	// Footer
	pdf.SetFont("Helvetica", "", 10)
	pdf.Text(50, a4Height-100, "Order Issued and Authorized:")
	pdf.Text(60, a4Height-85, "QUEZELCO I Cooperative")
	authorized := data.AuthorizedBy
	if authorized == "" {
		authorized = "__________________"
	}
	pdf.Text(60, a4Height-70, "By: "+authorized)
	pdf.Text(300, a4Height-100, "Order Received and Accepted:")
	pdf.Text(310, a4Height-70, "By: __________________")

	return output(pdf)
}

func output(pdf *fpdf.Fpdf) ([]byte, error) {
	if pdf.Err() {
		return nil, pdf.Error()
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
