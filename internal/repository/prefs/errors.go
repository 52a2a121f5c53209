package prefs

import "errors"

var ErrNotFound = errors.New("prefs record not found")
