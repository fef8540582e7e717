package document

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// Signature stamp geometry on the voucher page, PDF points.
const (
	stampWidth = 100.0
	stampScale = 0.16
	textPoints = 10
)

// PDFCPUSigner stamps a signature image and the signer's name onto an
// existing PDF page at fixed coordinates, yielding a new document. The
// original bytes are never modified.
type PDFCPUSigner struct {
	conf *model.Configuration
}

func NewPDFCPUSigner() *PDFCPUSigner {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFCPUSigner{conf: conf}
}

func (s *PDFCPUSigner) StampSignature(pdf []byte, signature []byte, signedBy string, pos StampPosition) ([]byte, error) {
	imgDesc := fmt.Sprintf("pos:bl, off:%.0f %.0f, scale:%.2f abs, rot:0", pos.ImageX, pos.ImageY, stampScale)
	imgStamp, err := api.ImageWatermarkForReader(bytes.NewReader(signature), imgDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("signature image stamp: %w", err)
	}

	var withImage bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &withImage, nil, imgStamp, s.conf); err != nil {
		return nil, fmt.Errorf("apply signature image: %w", err)
	}

	textDesc := fmt.Sprintf("pos:bl, off:%.0f %.0f, scale:1 abs, rot:0, points:%d, fillcol:#000000", pos.TextX, pos.TextY, textPoints)
	textStamp, err := api.TextWatermark(signedBy, textDesc, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("signer name stamp: %w", err)
	}

	var signed bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(withImage.Bytes()), &signed, nil, textStamp, s.conf); err != nil {
		return nil, fmt.Errorf("apply signer name: %w", err)
	}

	return signed.Bytes(), nil
}
