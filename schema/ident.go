package schema

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upperIdent and lowerIdent canonicalize table/column names for
// case-insensitive lookup and XML/property-name derivation.
var (
	upperIdent = cases.Upper(language.Und)
	lowerIdent = cases.Lower(language.Und)
)
