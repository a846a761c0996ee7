package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const unknownTimezone = "Etc/Unknown"

var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// ParsedPhone is a phone number split into the parts stored on a user
type ParsedPhone struct {
	CountryCode         string
	ISOCode             string
	InternationalNumber string

	number *phonenumbers.PhoneNumber
}

// ParsePhoneNumber parses a number in international form. A leading "+" is
// added when missing. Every field must be derivable or ErrInvalidPhoneNumber
// is returned.
func ParsePhoneNumber(raw string) (*ParsedPhone, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrInvalidPhoneNumber
	}
	if !strings.HasPrefix(raw, "+") {
		raw = "+" + raw
	}

	num, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhoneNumber, err)
	}

	region := phonenumbers.GetRegionCodeForNumber(num)
	if region == "" || region == "ZZ" || num.GetCountryCode() == 0 {
		return nil, ErrInvalidPhoneNumber
	}

	international := phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
	if international == "" {
		return nil, ErrInvalidPhoneNumber
	}

	return &ParsedPhone{
		CountryCode:         strconv.Itoa(int(num.GetCountryCode())),
		ISOCode:             region,
		InternationalNumber: international,
		number:              num,
	}, nil
}

// Timezones returns the IANA timezones libphonenumber maps to the number's
// prefix, most specific first. The result is empty when none can be resolved.
func (p *ParsedPhone) Timezones() []string {
	if p == nil || p.number == nil {
		return nil
	}

	zones, err := phonenumbers.GetTimezonesForNumber(p.number)
	if err != nil {
		return nil
	}

	known := make([]string, 0, len(zones))
	for _, zone := range zones {
		if zone != "" && zone != unknownTimezone {
			known = append(known, zone)
		}
	}
	return known
}
