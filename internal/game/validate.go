package game

import "strings"

const (
	MaxRoomNameLength   = 40
	MaxPlayerNameLength = 20
	MinAccessCodeLength = 4
	MaxAccessCodeLength = 12
	MaxCategoryLength   = 32
)

func ValidateRoomName(name string) (string, error) {
	return validateText("room name", name, MaxRoomNameLength)
}

// ValidatePlayerName allows an empty name; the user id stands in for it.
func ValidatePlayerName(name string) (string, error) {
	if normalizeText(name) == "" {
		return "", nil
	}
	return validateText("name", name, MaxPlayerNameLength)
}

func ValidateUserID(userID string) (string, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return "", Validationf("userId is required")
	}
	if len(trimmed) > 64 {
		return "", Validationf("userId must be 64 characters or fewer")
	}
	return trimmed, nil
}

func ValidateAccessCode(code string) (string, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) < MinAccessCodeLength || len(trimmed) > MaxAccessCodeLength {
		return "", Validationf("access code must be %d to %d characters", MinAccessCodeLength, MaxAccessCodeLength)
	}
	for _, r := range trimmed {
		if !isCodeRune(r) {
			return "", Validationf("access code contains unsupported characters")
		}
	}
	return trimmed, nil
}

func ValidateCategory(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > MaxCategoryLength {
		return "", Validationf("category must be %d characters or fewer", MaxCategoryLength)
	}
	for _, r := range trimmed {
		if !isCodeRune(r) && r != '-' && r != '_' {
			return "", Validationf("category contains unsupported characters")
		}
	}
	return trimmed, nil
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", Validationf("%s is required", label)
	}
	if len(trimmed) > maxLen {
		return "", Validationf("%s must be %d characters or fewer", label, maxLen)
	}
	if !isSafeText(trimmed) {
		return "", Validationf("%s contains unsupported characters", label)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isCodeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func isSafeText(text string) bool {
	for _, r := range text {
		if r > 127 {
			return false
		}
		if isCodeRune(r) {
			continue
		}
		switch r {
		case ' ', '-', '_', '\'', '"', '.', ',', '!', '?', ':', ';', '&', '(', ')', '/':
			continue
		default:
			return false
		}
	}
	return true
}
