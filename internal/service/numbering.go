package service

import (
	"fmt"
	"time"

	"woms/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// referenceAttempts bounds how many times a creation retries after losing a
// request reference to a concurrent same-year creation.
const referenceAttempts = 3

// nextRequestReference builds MRR-{year}-{0001} from the count of requests
// created in the current year. Runs inside the creating transaction; the
// unique index on request_reference rejects a concurrent duplicate and the
// caller retries on a fresh count.
func nextRequestReference(tx *gorm.DB, now time.Time) (string, error) {
	year := now.Year()
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(1, 0, 0)

	var count int64
	if err := tx.Model(&model.MaterialRestockRequest{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("MRR-%d-%04d", year, count+1), nil
}

// nextRVNumber allocates the next voucher number from the dedicated counter
// row. The guarded increment makes concurrent allocations strictly
// monotonic; the old "last voucher + 1" scheme could mint duplicates.
func nextRVNumber(tx *gorm.DB) (string, error) {
	res := tx.Model(&model.DocumentSequence{}).
		Where("name = ?", model.SequenceRVNumber).
		Update("value", gorm.Expr("value + 1"))
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		seq := model.DocumentSequence{Name: model.SequenceRVNumber, Value: model.RVNumberSeed + 1}
		if err := tx.Create(&seq).Error; err != nil {
			return "", err
		}
		return fmt.Sprintf("RV-%d", seq.Value), nil
	}

	var seq model.DocumentSequence
	if err := tx.First(&seq, "name = ?", model.SequenceRVNumber).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("RV-%d", seq.Value), nil
}

// draftPONumbers mints the PO number and its companion RV number for a new
// draft from the actor, the creation instant and the request.
func draftPONumbers(actorID uuid.UUID, now time.Time, requestID uuid.UUID) (poNumber, rvNumber string) {
	stamp := now.Format("20060102150405")
	actor := actorID.String()[:8]
	request := requestID.String()[:8]
	poNumber = fmt.Sprintf("PO-%s-%s-%s", actor, stamp, request)
	rvNumber = fmt.Sprintf("RV-%s-%s-%s", actor, stamp, request)
	return poNumber, rvNumber
}

// Persisted PDF naming conventions, preserved for compatibility with stored
// documents: vouchers {rv_number}.pdf, signed variants {rv_number}_signed.pdf,
// purchase orders {po_number}.pdf.
func voucherPDFKey(rvNumber string) string {
	return "requisition_vouchers/" + rvNumber + ".pdf"
}

func signedVoucherPDFKey(rvNumber string) string {
	return "requisition_vouchers/" + rvNumber + "_signed.pdf"
}

func purchaseOrderPDFKey(poNumber string) string {
	return "purchase_orders/" + poNumber + ".pdf"
}
