package entities

import (
	"fmt"

	"golang.org/x/text/language"
)

// ValidateLanguage checks that code is a language-region tag such as "en-US"
func ValidateLanguage(code string) error {
	tag, err := language.Parse(code)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidLanguage, code, err)
	}
	if _, conf := tag.Region(); conf != language.Exact {
		return fmt.Errorf("%w: %q has no region", ErrInvalidLanguage, code)
	}
	return nil
}

// BaseLanguage returns the primary language subtag ("es-ES" -> "es").
// Codes that do not parse fall back to the text before the first '-'.
func BaseLanguage(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		for i := 0; i < len(code); i++ {
			if code[i] == '-' || code[i] == '_' {
				return code[:i]
			}
		}
		return code
	}
	base, _ := tag.Base()
	return base.String()
}
