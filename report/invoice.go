package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/sobitas/backoffice/internal/billing"
	"github.com/sobitas/backoffice/internal/notify"
	"github.com/sobitas/backoffice/internal/settings"
)

// SettingsReader resolves the company block printed on documents.
type SettingsReader interface {
	GetSettings(ctx context.Context) (settings.Settings, error)
}

// Renderer turns a sales document into a printable PDF via Gotenberg.
type Renderer struct {
	client   *Client
	settings SettingsReader
	tpl      *template.Template
}

func NewRenderer(client *Client, settings SettingsReader) (*Renderer, error) {
	tpl, err := template.New("document").Funcs(template.FuncMap{
		"amount": notify.FormatAmount,
	}).Parse(documentTemplate)
	if err != nil {
		return nil, fmt.Errorf("report: parse template: %w", err)
	}
	return &Renderer{client: client, settings: settings, tpl: tpl}, nil
}

// documentTitle is the printed French heading of each variant,
// matching the historical paper documents.
func documentTitle(t billing.DocType) string {
	switch t {
	case billing.DocTypeOrder:
		return "Commande"
	case billing.DocTypeDeliveryNote:
		return "Facture"
	case billing.DocTypeVatInvoice:
		return "Facture TVA"
	case billing.DocTypeReceipt:
		return "Ticket"
	case billing.DocTypeQuotation:
		return "Devis"
	}
	return string(t)
}

type documentView struct {
	Title    string
	Company  settings.Settings
	Doc      *billing.Document
	Customer string
	ShowVAT  bool
}

// RenderHTML builds the printable HTML for a document.
func (r *Renderer) RenderHTML(ctx context.Context, doc *billing.Document) (string, error) {
	company, err := r.settings.GetSettings(ctx)
	if err != nil {
		// Print with an empty company block rather than failing the
		// whole document.
		company = settings.Settings{}
	}
	customer := ""
	if doc.Customer != nil {
		customer = doc.Customer.FirstName + " " + doc.Customer.LastName
	}
	var buf bytes.Buffer
	err = r.tpl.Execute(&buf, documentView{
		Title:    documentTitle(doc.DocType),
		Company:  company,
		Doc:      doc,
		Customer: customer,
		ShowVAT:  billing.PolicyFor(doc.DocType).TaxedLines,
	})
	if err != nil {
		return "", fmt.Errorf("report: execute template: %w", err)
	}
	return buf.String(), nil
}

// RenderPDF renders the document HTML and converts it through Gotenberg.
func (r *Renderer) RenderPDF(ctx context.Context, doc *billing.Document) ([]byte, error) {
	html, err := r.RenderHTML(ctx, doc)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html)
}

const documentTemplate = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>{{.Title}} {{.Doc.Number}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 12px; margin: 40px; }
h1 { font-size: 18px; }
.header { display: flex; justify-content: space-between; margin-bottom: 30px; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th, td { border: 1px solid #444; padding: 6px 8px; text-align: left; }
th { background: #eee; }
.totals { margin-top: 20px; width: 40%; margin-left: auto; }
.totals td { border: none; padding: 3px 8px; }
.totals .grand td { font-weight: bold; border-top: 1px solid #444; }
</style>
</head>
<body>
<div class="header">
  <div>
    <h1>{{.Company.CompanyName}}</h1>
    <div>{{.Company.CompanyAddress}}</div>
    <div>{{.Company.CompanyPhone}}</div>
    {{if .Company.CompanyTaxID}}<div>MF: {{.Company.CompanyTaxID}}</div>{{end}}
  </div>
  <div>
    <h1>{{.Title}} N° {{.Doc.Number}}</h1>
    <div>Date: {{.Doc.CreatedAt.Format "02/01/2006"}}</div>
    {{if .Customer}}<div>Client: {{.Customer}}</div>{{end}}
  </div>
</div>
<table>
  <thead>
    <tr>
      <th>Désignation</th>
      <th>Qté</th>
      <th>P.U. HT</th>
      <th>Total HT</th>
      {{if .ShowVAT}}<th>TVA</th>{{end}}
    </tr>
  </thead>
  <tbody>
    {{range .Doc.Lines}}
    <tr>
      <td>{{.ProductName}}</td>
      <td>{{.Quantity}}</td>
      <td>{{amount .UnitPrice}}</td>
      <td>{{amount .TotalHT}}</td>
      {{if $.ShowVAT}}<td>{{amount .TVA}}</td>{{end}}
    </tr>
    {{end}}
  </tbody>
</table>
<table class="totals">
  <tr><td>Total HT</td><td>{{amount .Doc.TotalHT}}</td></tr>
  {{if .ShowVAT}}<tr><td>Total TVA</td><td>{{amount .Doc.TotalTVA}}</td></tr>{{end}}
  {{if .Doc.Discount}}<tr><td>Remise</td><td>{{amount .Doc.Discount}}</td></tr>{{end}}
  {{if .Doc.StampDuty}}<tr><td>Timbre</td><td>{{amount .Doc.StampDuty}}</td></tr>{{end}}
  {{if .Doc.ShippingFee}}<tr><td>Frais de livraison</td><td>{{amount .Doc.ShippingFee}}</td></tr>{{end}}
  <tr class="grand"><td>Total TTC</td><td>{{amount .Doc.TotalTTC}} TND</td></tr>
</table>
</body>
</html>`
