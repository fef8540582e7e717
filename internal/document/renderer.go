package document

import "time"

// ItemLine is one row of the requisition voucher table.
type ItemLine struct {
	Name     string
	Quantity int
	Unit     string
}

// VoucherData is everything the renderer needs to draw a requisition
// voucher. Derived from the voucher's item snapshot, never from the live
// request.
type VoucherData struct {
	RVNumber    string
	RequestedBy string
	Items       []ItemLine
	Date        time.Time
}

// POItemLine is one priced row of a purchase order.
type POItemLine struct {
	Unit        string
	Description string
	Quantity    string
	UnitPrice   string
	TotalPrice  string
}

// POData is the free-text form data of a purchase order. Nothing here is
// validated for numeric consistency; it is rendered as supplied.
type POData struct {
	PONumber     string
	RVNumber     string
	Supplier     string
	Address      string
	Date         string
	Items        []POItemLine
	Discount     string
	GrandTotal   string
	AuthorizedBy string
	Remarks      string
}

// Renderer turns structured form data into PDF bytes.
type Renderer interface {
	RenderVoucher(data VoucherData) ([]byte, error)
	RenderPurchaseOrder(data POData) ([]byte, error)
}

// StampPosition fixes where a signature overlay lands on the page, in points
// from the bottom-left corner (the voucher layout's coordinate system).
type StampPosition struct {
	ImageX, ImageY float64
	TextX, TextY   float64
}

// Overlay coordinates of the two countersigning parties on the voucher.
var (
	BudgetStamp      = StampPosition{ImageX: 420, ImageY: 420, TextX: 420, TextY: 415}
	EngineeringStamp = StampPosition{ImageX: 440, ImageY: 380, TextX: 450, TextY: 360}
)

// Signer composites a signature image plus the signer's name onto an
// existing PDF, producing a new document.
type Signer interface {
	StampSignature(pdf []byte, signature []byte, signedBy string, pos StampPosition) ([]byte, error)
}
