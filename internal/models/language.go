package models

import (
	"errors"
	"strings"
)

// Language is a content language tag. Only KZ and RU are stored.
type Language string

const (
	LanguageKZ Language = "KZ"
	LanguageRU Language = "RU"
)

var ErrInvalidLanguage = errors.New("language must be KZ or RU")

// Languages lists every supported language in display order.
var Languages = []Language{LanguageKZ, LanguageRU}

// ParseLanguage normalizes a client supplied tag, so "kz", " KZ" and "Kz" are all accepted.
func ParseLanguage(raw string) (Language, error) {
	lang := Language(strings.ToUpper(strings.TrimSpace(raw)))
	if !lang.Valid() {
		return "", ErrInvalidLanguage
	}
	return lang, nil
}

func (l Language) Valid() bool {
	return l == LanguageKZ || l == LanguageRU
}

// Key is the lower-case form used as a JSON key (files.kz, hasFiles.ru).
func (l Language) Key() string {
	return strings.ToLower(string(l))
}

func (l Language) String() string {
	return string(l)
}
