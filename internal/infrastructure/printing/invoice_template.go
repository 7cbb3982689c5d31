package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/invoice.html
var templateFS embed.FS

// StoreInfo is the letterhead printed on invoices
type StoreInfo struct {
	Name    string
	Address string
	Phone   string
}

// InvoiceLine is one printed sale line
type InvoiceLine struct {
	MedicineName string
	BatchNumber  string
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
}

// InvoiceData is everything the invoice template binds to
type InvoiceData struct {
	Store           StoreInfo
	InvoiceNumber   string
	SaleDate        time.Time
	CustomerName    string
	CustomerContact string
	PaymentMethod   string
	Lines           []InvoiceLine
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	Tax             decimal.Decimal
	Total           decimal.Decimal
}

// InvoiceTemplate renders sale invoices with html/template
type InvoiceTemplate struct {
	tmpl *template.Template
}

// NewInvoiceTemplate parses the embedded invoice template
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice.html").
		Funcs(templateFuncs()).
		ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render executes the template and returns the HTML document
func (t *InvoiceTemplate) Render(data *InvoiceData) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render invoice: %w", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"title":          titleCase,
		"inc":            func(i int) int { return i + 1 },
	}
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// titleCase converts string to title case using proper Unicode handling
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
