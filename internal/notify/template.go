package notify

import "strings"

// Placeholders recognised in stored message templates. Unknown
// placeholders are left untouched so operators can spot typos.
const (
	PlaceholderFirstName   = "[prenom]"
	PlaceholderLastName    = "[nom]"
	PlaceholderOrderNumber = "[num_commande]"
	PlaceholderStatus      = "[etat]"
)

// TemplateData carries the substitution values for a message template.
type TemplateData struct {
	FirstName   string
	LastName    string
	OrderNumber string
	Status      string
}

// RenderTemplate substitutes the known placeholders into a template.
func RenderTemplate(tpl string, data TemplateData) string {
	r := strings.NewReplacer(
		PlaceholderFirstName, data.FirstName,
		PlaceholderLastName, data.LastName,
		PlaceholderOrderNumber, data.OrderNumber,
		PlaceholderStatus, data.Status,
	)
	return r.Replace(tpl)
}
