package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"kalavedi/model"
)

const (
	clubName      = "BHAGATH SINGH KALAVEDHÍ VAZHAKKAD"
	affidavitText = "I hereby certify that the information given above is true and that I am working in accordance with the rules and regulations of the Kalavedi and that if my performance is not efficient I may be subject to disciplinary action by the Committee."

	maxImageBytes = 10 << 20

	coreFontFamily = "Helvetica"
	utf8FontFamily = "CertificateFont"
)

var statusColors = map[model.MemberStatus]string{
	model.StatusAccepted: "#4CAF50",
	model.StatusPending:  "#FFC107",
	model.StatusRejected: "#F44336",
	model.StatusBanned:   "#9C27B0",
}

// CertificateFileName is the download name for a member's certificate.
func CertificateFileName(m *model.Member) string {
	return m.FullName + "_BKV_Member_Certificate.pdf"
}

// CertificateRenderer lays out the one-page A4 member certificate.
type CertificateRenderer struct {
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
	// font is a TrueType font used for all text when set. Without it text
	// is limited to cp1252 and other characters print as "?".
	font []byte
}

func NewCertificateRenderer(logger *zap.Logger) *CertificateRenderer {
	return &CertificateRenderer{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		now:    time.Now,
	}
}

// LoadFont reads a UTF-8 TrueType font for certificate text, needed for
// names and addresses outside cp1252.
func (r *CertificateRenderer) LoadFont(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load certificate font: %w", err)
	}
	r.font = b
	return nil
}

// Render writes the certificate PDF for m to w. Images that cannot be
// loaded are replaced by a captioned placeholder box.
func (r *CertificateRenderer) Render(ctx context.Context, m *model.Member, w io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	family := coreFontFamily
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.font != nil {
		family = utf8FontFamily
		pdf.AddUTF8FontFromBytes(family, "", r.font)
		pdf.AddUTF8FontFromBytes(family, "B", r.font)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render certificate for %s: %w", m.MemberID, err)
		}
		tr = func(s string) string { return s }
	}
	pdf.AddPage()

	text := func(x, y float64, s, align string) {
		s = tr(s)
		switch align {
		case "C":
			x -= pdf.GetStringWidth(s) / 2
		case "R":
			x -= pdf.GetStringWidth(s)
		}
		pdf.Text(x, y, s)
	}
	heading := func(x, y, width float64, title string) {
		pdf.SetFillColor(240, 240, 240)
		pdf.Rect(x, y, width, 8, "F")
		pdf.SetFont(family, "B", 11)
		pdf.SetTextColor(0, 51, 102)
		text(x+width/2, y+6, title, "C")
		pdf.SetFont(family, "", 10)
		pdf.SetTextColor(0, 0, 0)
	}
	rows := func(y float64, pairs [][2]string) float64 {
		for _, p := range pairs {
			pdf.SetFont(family, "B", 10)
			text(20, y, p[0]+": ", "L")
			pdf.SetFont(family, "", 10)
			text(60, y, p[1], "L")
			y += 7
		}
		return y
	}

	// header
	pdf.SetFont(family, "B", 16)
	pdf.SetTextColor(220, 20, 20)
	text(105, 15, clubName, "C")
	pdf.SetFont(family, "", 8)
	pdf.SetTextColor(0, 0, 0)
	text(105, 20, "Vazhakkad, Thottakam P.O., Vaikom - 686 607", "C")
	text(105, 24, "Regi. No. K. 202/87", "C")
	pdf.SetFontSize(7)
	text(105, 28, "Affiliated by: Kerala Sangeetha Nataka Academy (Reg. No. 55/KTM/88),", "C")
	text(105, 32, "Nehru Yuva Kendra, Kerala State Youth Welfare Board.", "C")
	pdf.SetTextColor(0, 0, 255)
	text(105, 36, "E-mail: bhagathsinghkalavedi@gmail.com", "C")
	pdf.SetDrawColor(220, 20, 20)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, 40, 200, 40)

	pdf.SetFont(family, "B", 14)
	pdf.SetTextColor(0, 0, 0)
	text(105, 48, "MEMBER CERTIFICATE", "C")

	pdf.SetFont(family, "", 10)
	text(20, 55, "Member ID: "+orNA(m.MemberID), "L")
	cr, cg, cb := hexColor(statusColors[m.Status])
	pdf.SetTextColor(cr, cg, cb)
	text(190, 55, "Status: "+capitalize(string(m.Status)), "R")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Rect(10, 60, 190, 215, "D")

	r.image(ctx, pdf, "photo", m.PhotoURL, 150, 65, 40, 40, "Photo not available", family, tr)

	heading(20, 65, 120, "Personal Information")
	rows(80, [][2]string{
		{"Full Name", orNA(m.FullName)},
		{"Father's Name", orNA(m.FatherName)},
		{"Gender", orNA(m.Gender)},
		{"Age", orNA(m.Age)},
		{"Blood Group", orNA(m.BloodGroup)},
		{"Phone Number", orNA(m.PhoneNumber)},
		{"Email", orNA(m.Email)},
	})

	heading(20, 130, 170, "Address & Education")
	addressLines := pdf.SplitText(tr(orNA(m.Address)), 130)
	pdf.SetFont(family, "B", 10)
	text(20, 145, "Address: ", "L")
	pdf.SetFont(family, "", 10)
	for i, line := range addressLines {
		pdf.Text(60, 145+float64(i)*5, line)
	}
	eduY := 155 + float64(len(addressLines)-1)*5
	educationLines := pdf.SplitText(tr(orNA(m.Education)), 130)
	pdf.SetFont(family, "B", 10)
	text(20, eduY, "Education: ", "L")
	pdf.SetFont(family, "", 10)
	for i, line := range educationLines {
		pdf.Text(60, eduY+float64(i)*5, line)
	}

	y := eduY + 10 + float64(len(educationLines)-1)*5
	heading(20, y, 170, "Additional Information")
	y = rows(y+15, [][2]string{
		{"Occupation", orNA(m.Job)},
		{"Any Club Member", yesNo(m.IsClubMember)},
		{"Nominee Name", orNA(m.NomineeName)},
		{"Criminal Case", yesNo(m.HasCriminalCase)},
		{"Hobbies", orNA(m.Hobbies)},
	})

	y += 5
	heading(20, y, 170, "Member Declaration")
	y += 15
	declaration := pdf.SplitText(tr(affidavitText), 170)
	for i, line := range declaration {
		pdf.Text(20, y+float64(i)*5, line)
	}
	y += float64(len(declaration))*5 + 15

	if r.image(ctx, pdf, "signature", m.SignatureURL, 130, y-15, 50, 20, "Signature not available", family, tr) {
		pdf.SetFont(family, "", 10)
		text(155, y+10, "Signature", "C")
	}

	pdf.SetFont(family, "B", 9)
	text(40, y+10, "Committee Approval", "C")
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.3)
	pdf.Circle(40, y-5, 15, "D")
	pdf.SetFontSize(7)
	text(40, y-5, "Official Seal", "C")

	// footer
	pdf.SetDrawColor(220, 20, 20)
	pdf.SetLineWidth(0.5)
	pdf.Line(10, 280, 200, 280)
	pdf.SetFont(family, "", 8)
	text(20, 285, "Generated on: "+r.now().Format("02/01/2006"), "L")
	pdf.SetFont(family, "B", 8)
	text(105, 285, clubName, "C")
	pdf.SetFont(family, "", 8)
	text(190, 285, "Page 1 of 1", "R")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render certificate for %s: %w", m.MemberID, err)
	}
	return nil
}

// image draws src into the box, or a placeholder with caption when src is
// empty or unusable. It reports whether the image was drawn.
func (r *CertificateRenderer) image(ctx context.Context, pdf *fpdf.Fpdf, name, src string, x, y, w, h float64, caption, family string, tr func(string) string) bool {
	data, err := r.loadJPEG(ctx, src)
	if err == nil {
		pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "JPG"}, bytes.NewReader(data))
		pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: "JPG"}, 0, "")
		pdf.SetDrawColor(128, 128, 128)
		pdf.SetLineWidth(0.2)
		pdf.Rect(x, y, w, h, "D")
		return true
	}
	if src != "" {
		r.logger.Warn("certificate image unavailable", zap.String("image", name), zap.Error(err))
	}

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.2)
	pdf.Rect(x, y, w, h, "D")
	pdf.SetFont(family, "", 8)
	s := tr(caption)
	pdf.Text(x+w/2-pdf.GetStringWidth(s)/2, y+h/2, s)
	return false
}

// loadJPEG resolves a data URL, bare base64 or http(s) URL and re-encodes
// the image as JPEG so the PDF writer only ever sees valid input.
func (r *CertificateRenderer) loadJPEG(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, errors.New("no image")
	}

	var raw []byte
	switch {
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		b, err := r.fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		raw = b
	default:
		if i := strings.Index(src, ","); strings.HasPrefix(src, "data:") && i >= 0 {
			src = src[i+1:]
		}
		b, err := base64.StdEncoding.DecodeString(src)
		if err != nil {
			return nil, fmt.Errorf("decode base64 image: %w", err)
		}
		raw = b
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *CertificateRenderer) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func yesNo(s string) string {
	if strings.EqualFold(s, "yes") {
		return "Yes"
	}
	return "No"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// hexColor parses "#RRGGBB"; anything else is black.
func hexColor(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
