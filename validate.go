package leadsapi

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Matches local@domain.tld with no embedded whitespace. Deliberately
	// loose: the mailbox provider is the real authority on deliverability.
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// Formatting characters tolerated in mobile numbers.
	mobileFormatRE = regexp.MustCompile(`[\s\-()]`)

	mobileDigitsRE = regexp.MustCompile(`^\d{8,15}$`)
)

// ValidateCreateInput checks a candidate lead submission and returns a
// normalized copy: name, mobile and postcode trimmed, email trimmed and
// lower-cased. Checks run in order name, email, mobile, postcode, services
// and the first violated rule wins. The input is not mutated.
//
// The email format check runs on the raw string, so an otherwise well-formed
// email with leading or trailing whitespace is rejected. Known quirk, kept
// so existing clients see identical behavior.
func ValidateCreateInput(input CreateLeadInput) (CreateLeadInput, error) {
	if err := validateName(input.Name); err != nil {
		return CreateLeadInput{}, err
	}
	if !emailRE.MatchString(input.Email) {
		return CreateLeadInput{}, &ValidationError{Reason: "invalid email format"}
	}
	if err := validateMobile(input.Mobile); err != nil {
		return CreateLeadInput{}, err
	}
	if err := validatePostcode(input.Postcode); err != nil {
		return CreateLeadInput{}, err
	}
	if err := validateServices(input.Services); err != nil {
		return CreateLeadInput{}, err
	}

	return CreateLeadInput{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Mobile:   strings.TrimSpace(input.Mobile),
		Postcode: strings.TrimSpace(input.Postcode),
		Services: append([]ServiceType(nil), input.Services...),
	}, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return &ValidationError{Reason: "name is required"}
	}
	if len(trimmed) < 2 {
		return &ValidationError{Reason: "name must be at least 2 characters long"}
	}
	// Length limit applies to the raw value, matching the stored column.
	if len(name) > 100 {
		return &ValidationError{Reason: "name must be less than 100 characters"}
	}
	return nil
}

func validateMobile(mobile string) error {
	cleaned := mobileFormatRE.ReplaceAllString(mobile, "")
	if !mobileDigitsRE.MatchString(cleaned) {
		return &ValidationError{Reason: "invalid mobile number format"}
	}
	return nil
}

func validatePostcode(postcode string) error {
	trimmed := strings.TrimSpace(postcode)
	if trimmed == "" {
		return &ValidationError{Reason: "postcode is required"}
	}
	if len(trimmed) < 4 || len(trimmed) > 10 {
		return &ValidationError{Reason: "postcode must be between 4 and 10 characters"}
	}
	return nil
}

func validateServices(services []ServiceType) error {
	if len(services) == 0 {
		return &ValidationError{Reason: "at least one service must be selected"}
	}
	seen := make(map[ServiceType]bool, len(services))
	for _, s := range services {
		if seen[s] {
			return &ValidationError{Reason: "duplicate services are not allowed"}
		}
		seen[s] = true
		switch s {
		case ServiceDelivery, ServicePickup, ServicePayment:
		default:
			return &ValidationError{Reason: fmt.Sprintf("invalid service type: %s", s)}
		}
	}
	return nil
}
