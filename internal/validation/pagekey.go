package validation

import (
	"fmt"
	"regexp"
)

// PageKeyPattern определяет допустимый формат ключа страницы
// Латинские буквы, цифры и символы . _ ~ : / -
// Длина: 1-128 символов
var PageKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9._~:/-]{1,128}$`)

const (
	// MaxPageKeyLen максимальная длина ключа страницы
	MaxPageKeyLen = 128
)

// ValidatePageKey проверяет, что ключ страницы соответствует требованиям
func ValidatePageKey(key string) error {
	if key == "" {
		return fmt.Errorf("page key cannot be empty")
	}

	if len(key) > MaxPageKeyLen {
		return fmt.Errorf("page key must not exceed %d characters", MaxPageKeyLen)
	}

	if !PageKeyPattern.MatchString(key) {
		return fmt.Errorf("page key can only contain letters, numbers and . _ ~ : / -")
	}

	return nil
}
