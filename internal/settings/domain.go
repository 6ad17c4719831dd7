package settings

// Settings mirrors the single shop-settings row: the global VAT percentage
// plus the company identity printed on documents.
type Settings struct {
	ID             int64   `json:"id"`
	TaxRate        float64 `json:"tax_rate"`
	CompanyName    string  `json:"company_name"`
	CompanyAddress string  `json:"company_address"`
	CompanyPhone   string  `json:"company_phone"`
	CompanyTaxID   string  `json:"company_tax_id"`
}

// MessageTemplates holds the configurable SMS bodies. Placeholders
// [nom], [prenom], [num_commande] and [etat] are substituted at send time.
type MessageTemplates struct {
	Welcome       string `json:"welcome"`
	OrderPlaced   string `json:"order_placed"`
	StatusChanged string `json:"status_changed"`
}

// DefaultTaxRate applies when no settings row exists.
const DefaultTaxRate = 19.0

// DefaultWelcomeMessage applies when no welcome template is configured.
const DefaultWelcomeMessage = "Cher(e) client(e), nous vous remercions de votre confiance et nous serons ravis de vous revoir dans notre boutique SOBITAS ou notre site Web Protein.tn"
