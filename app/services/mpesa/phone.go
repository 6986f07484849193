package mpesa

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("phone number must be a Kenyan mobile number, e.g. 0712345678")

// NormalizePhone rewrites a Kenyan mobile number into 2547XXXXXXXX / 2541XXXXXXXX.
func NormalizePhone(raw string) (string, error) {
	s := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	s = strings.TrimPrefix(s, "+")

	switch {
	case len(s) == 12 && strings.HasPrefix(s, "254"):
	case len(s) == 10 && s[0] == '0':
		s = "254" + s[1:]
	case len(s) == 9:
		s = "254" + s
	default:
		return "", ErrInvalidPhone
	}

	if s[3] != '7' && s[3] != '1' {
		return "", ErrInvalidPhone
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}
	return s, nil
}
