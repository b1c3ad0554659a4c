package i18n

import "errors"

// ErrUnsupportedLocale is returned for a locale with no translations.
var ErrUnsupportedLocale = errors.New("unsupported locale")
