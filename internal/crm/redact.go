package crm

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// MaskEmail keeps the first character of the local part and the domain so
// log lines can be correlated without storing the full address.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		if email == "" {
			return ""
		}
		return "[EMAIL]"
	}
	return email[:1] + "***" + email[at:]
}

// ContactFingerprint returns a stable short hash of the contact email and
// phone for log correlation.
func ContactFingerprint(email, phone string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email)) + "|" + strings.TrimSpace(phone)))
	return fmt.Sprintf("%x", h[:6])
}
