package notify

import "strings"

// NormalizePhone rewrites a Tunisian phone number into the canonical
// 216XXXXXXXX form the SMS gateway expects. It strips a leading "+" or
// "00" international prefix and prepends the country code to bare
// 8-digit local numbers. It returns "" when the result is not a valid
// Tunisian number.
func NormalizePhone(raw string) string {
	phone := strings.TrimSpace(raw)
	phone = strings.ReplaceAll(phone, " ", "")
	if strings.HasPrefix(phone, "+") {
		phone = phone[1:]
	}
	if strings.HasPrefix(phone, "00") {
		phone = phone[2:]
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return ""
		}
	}
	if len(phone) == 8 {
		phone = "216" + phone
	}
	if len(phone) != 11 || !strings.HasPrefix(phone, "216") {
		return ""
	}
	return phone
}
