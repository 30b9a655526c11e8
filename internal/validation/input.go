package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinDisplayNameLength    = 2
	MaxDisplayNameLength    = 100
	MinGigTitleLength       = 3
	MaxGigTitleLength       = 200
	MaxGigDescriptionLength = 5000
	MaxBidDescriptionLength = 2000
	MaxStatusNoteLength     = 500
	MaxTagLength            = 50
	MaxTagsCount            = 30
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	displayNameRegex = regexp.MustCompile(`^[\p{L}0-9\s\-_.,'!?()]+$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("Email is required")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("Email has an invalid format")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("Email local part must be 1 to 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("Email domain must be 1 to 255 characters")
	}

	if !emailLocalRegex.MatchString(localPart) || !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("Email has an invalid format")
	}
	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("Display name is required")
	}
	if err := ValidateLength("Display name", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("Display name contains invalid characters")
	}
	return nil
}

// ValidateGigTitle проверяет заголовок гига.
func ValidateGigTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("Title is required")
	}
	return ValidateLength("Title", title, MinGigTitleLength, MaxGigTitleLength)
}

func ValidateGigDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("Description is required")
	}
	return ValidateLength("Description", description, 0, MaxGigDescriptionLength)
}

func ValidateBidDescription(description string) error {
	description = strings.TrimSpace(description)
	if description == "" {
		return fmt.Errorf("Description is required")
	}
	return ValidateLength("Description", description, 0, MaxBidDescriptionLength)
}

// ValidateStatusNote проверяет необязательный комментарий к смене статуса.
func ValidateStatusNote(note string) error {
	return ValidateLength("Description", strings.TrimSpace(note), 0, MaxStatusNoteLength)
}

// ValidateTags проверяет списки ключевых слов и навыков.
func ValidateTags(fieldName string, tags []string) error {
	if len(tags) > MaxTagsCount {
		return fmt.Errorf("%s cannot contain more than %d items", fieldName, MaxTagsCount)
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return fmt.Errorf("%s cannot contain empty items", fieldName)
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("%s items must be at most %d characters", fieldName, MaxTagLength)
		}

		// дубликаты без учёта регистра
		lower := strings.ToLower(tag)
		if seen[lower] {
			return fmt.Errorf("%s item '%s' is duplicated", fieldName, tag)
		}
		seen[lower] = true
	}
	return nil
}
