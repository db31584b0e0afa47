package services

import "strings"

// WhatsAppLink returns a wa.me chat link for a local phone number, replacing a
// leading 0 with the 62 country code. An empty number yields an empty link.
func WhatsAppLink(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "0") {
		phone = "62" + phone[1:]
	}
	return "https://wa.me/" + phone
}
