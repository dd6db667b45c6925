// Package pdf renders form snapshots into the clinic and patient documents.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/almanova/preocupacional/internal/signature"
	"github.com/go-pdf/fpdf"
)

// Page geometry in millimetres (A4).
const (
	pageWidth     = 210.0
	pageHeight    = 297.0
	marginLeft    = 20.0
	marginTop     = 20.0
	marginBottom  = 17.0
	contentWidth  = pageWidth - 2*marginLeft
	labelWidth    = 60.0
	signatureW    = 80.0
	signatureH    = 40.0
	signaturePxW  = 640
	signaturePxH  = 320
	clinicName    = "Alma Nova Clinic"
	timestampForm = "02-01-2006 15:04:05"
)

var brand = [3]int{17, 94, 94}

// Options holds what both renderers share.
type Options struct {
	// Now stamps the footer. Defaults to time.Now.
	Now func() time.Time
	// Location formats every timestamp. Defaults to time.Local.
	Location *time.Location
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o Options) format(t time.Time) string {
	loc := o.Location
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timestampForm)
}

func (o Options) formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return o.format(time.UnixMilli(ms))
}

// document wraps fpdf with the cp1252 translator and the house style.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(title string) *document {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(marginLeft, marginTop, marginLeft)
	p.SetAutoPageBreak(true, marginBottom+5)
	p.SetTitle(title, true)
	p.SetCreator(clinicName, true)
	p.AliasNbPages("")
	return &document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
}

func (d *document) header(title string) {
	d.pdf.SetFont("Helvetica", "B", 18)
	d.pdf.SetTextColor(brand[0], brand[1], brand[2])
	d.pdf.CellFormat(0, 10, d.tr(title), "", 1, "C", false, 0, "")

	d.pdf.SetFont("Helvetica", "", 12)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 8, d.tr(clinicName), "", 1, "C", false, 0, "")
	d.pdf.Ln(5)

	y := d.pdf.GetY()
	d.pdf.SetDrawColor(brand[0], brand[1], brand[2])
	d.pdf.Line(marginLeft, y, pageWidth-marginLeft, y)
	d.pdf.Ln(8)
}

func (d *document) footer(text func(page int) string) {
	d.pdf.SetFooterFunc(func() {
		d.pdf.SetY(-marginBottom)
		d.pdf.SetFont("Helvetica", "", 8)
		d.pdf.SetTextColor(128, 128, 128)
		d.pdf.CellFormat(0, 8, d.tr(text(d.pdf.PageNo())), "", 0, "C", false, 0, "")
	})
}

// ensureSpace starts a new page when fewer than h millimetres remain.
func (d *document) ensureSpace(h float64) {
	if d.pdf.GetY()+h > pageHeight-marginBottom-5 {
		d.pdf.AddPage()
	}
}

func (d *document) sectionTitle(title string) {
	d.ensureSpace(30)
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.CellFormat(0, 8, d.tr(title), "", 1, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
}

func (d *document) text(style string, size float64, s string) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.MultiCell(contentWidth, 5.5, d.tr(s), "", "L", false)
}

func (d *document) row(label, value string) {
	d.ensureSpace(10)
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(labelWidth, 6, d.tr(label+":"), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(contentWidth-labelWidth, 6, d.tr(value), "", "L", false)
}

func (d *document) missing() {
	d.pdf.SetFont("Helvetica", "I", 10)
	d.pdf.SetTextColor(128, 128, 128)
	d.pdf.CellFormat(0, 6, d.tr("Sección no completada"), "", 1, "L", false, 0, "")
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.Ln(6)
}

// embedSignature embeds the signature PNG at the current position.
func (d *document) embedSignature(dataURL string) error {
	png, err := signature.NormalizeDataURL(dataURL, signaturePxW, signaturePxH)
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}
	d.ensureSpace(signatureH + 15)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader("firma", opts, bytes.NewReader(png))
	y := d.pdf.GetY()
	d.pdf.ImageOptions("firma", marginLeft, y, signatureW, signatureH, false, opts, 0, "")
	d.pdf.SetY(y + signatureH + 5)
	return nil
}

func (d *document) output() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
