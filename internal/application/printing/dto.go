package printing

import "time"

// Format is an invoice output format
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat maps a query value onto a Format. Empty means HTML.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case "", FormatHTML:
		return FormatHTML, true
	case FormatPDF:
		return FormatPDF, true
	}
	return "", false
}

// RenderedInvoice is an invoice ready to be written to a response
type RenderedInvoice struct {
	InvoiceNumber string
	Format        Format
	ContentType   string
	Filename      string
	Content       []byte
}

// ArchivedInvoice points at a stored invoice PDF
type ArchivedInvoice struct {
	InvoiceNumber string    `json:"invoice_number"`
	StorageKey    string    `json:"storage_key"`
	DownloadURL   string    `json:"download_url"`
	ExpiresAt     time.Time `json:"expires_at"`
}
