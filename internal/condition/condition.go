// Package condition normalizes free-text item condition grades to the eBay
// condition codes used for cache keys, pricing penalties, and Browse API
// search filters.
package condition

import "strings"

// Canonical eBay condition codes.
const (
	New                  = "NEW"
	NewOther             = "NEW_OTHER"
	NewWithDefects       = "NEW_WITH_DEFECTS"
	LikeNew              = "LIKE_NEW"
	CertifiedRefurbished = "CERTIFIED_REFURBISHED"
	ExcellentRefurbished = "EXCELLENT_REFURBISHED"
	VeryGoodRefurbished  = "VERY_GOOD_REFURBISHED"
	GoodRefurbished      = "GOOD_REFURBISHED"
	SellerRefurbished    = "SELLER_REFURBISHED"
	UsedExcellent        = "USED_EXCELLENT"
	UsedVeryGood         = "USED_VERY_GOOD"
	UsedGood             = "USED_GOOD"
	UsedAcceptable       = "USED_ACCEPTABLE"
	ForPartsOrNotWorking = "FOR_PARTS_OR_NOT_WORKING"
)

// mappings translates the grades that show up in intake spreadsheets to
// canonical codes. Keys are lowercase.
var mappings = map[string]string{
	// Primary intake grades
	"like new":   LikeNew,
	"very good":  UsedVeryGood,
	"good":       UsedGood,
	"acceptable": UsedAcceptable,
	"salvage":    ForPartsOrNotWorking,

	// Alternative spellings
	"likenew":   LikeNew,
	"like-new":  LikeNew,
	"verygood":  UsedVeryGood,
	"very-good": UsedVeryGood,
	"vgood":     UsedVeryGood,
	"v good":    UsedVeryGood,
	"vg":        UsedVeryGood,

	// New variants
	"new":       New,
	"brand new": New,
	"sealed":    New,
	"mint":      New,
	"unopened":  New,

	"open box":         NewOther,
	"new open box":     NewOther,
	"new other":        NewOther,
	"new without tags": NewOther,

	"new with defects": NewWithDefects,
	"new damaged":      NewWithDefects,
	"new imperfect":    NewWithDefects,

	// Refurbished
	"certified refurbished":    CertifiedRefurbished,
	"manufacturer refurbished": CertifiedRefurbished,
	"excellent refurbished":    ExcellentRefurbished,
	"very good refurbished":    VeryGoodRefurbished,
	"good refurbished":         GoodRefurbished,
	"seller refurbished":       SellerRefurbished,
	"refurbished":              SellerRefurbished,
	"renewed":                  SellerRefurbished,
	"restored":                 SellerRefurbished,

	// Used variants
	"used excellent": UsedExcellent,
	"used like new":  LikeNew,
	"excellent":      UsedExcellent,
	"near mint":      LikeNew,

	"used very good": UsedVeryGood,
	"light wear":     UsedVeryGood,

	"used good":     UsedGood,
	"moderate wear": UsedGood,
	"normal wear":   UsedGood,

	"used acceptable": UsedAcceptable,
	"fair":            UsedAcceptable,
	"heavy wear":      UsedAcceptable,
	"well used":       UsedAcceptable,

	// Parts / repair
	"for parts":   ForPartsOrNotWorking,
	"not working": ForPartsOrNotWorking,
	"broken":      ForPartsOrNotWorking,
	"parts only":  ForPartsOrNotWorking,
	"repair":      ForPartsOrNotWorking,
	"damaged":     ForPartsOrNotWorking,
	"scrap":       ForPartsOrNotWorking,
	"parts":       ForPartsOrNotWorking,
}

// browseIDs maps condition codes to eBay Browse API condition IDs.
var browseIDs = map[string]string{
	New:                  "1000",
	LikeNew:              "1500",
	NewOther:             "1750",
	NewWithDefects:       "2000",
	CertifiedRefurbished: "2000",
	ExcellentRefurbished: "2010",
	VeryGoodRefurbished:  "2020",
	GoodRefurbished:      "2030",
	SellerRefurbished:    "2500",
	UsedExcellent:        "3000",
	UsedVeryGood:         "4000",
	UsedGood:             "5000",
	UsedAcceptable:       "6000",
	ForPartsOrNotWorking: "7000",
}

// Normalize maps a free-text grade to its canonical condition code. Inputs
// that are already canonical (or unknown) pass through uppercased, so callers
// always key tables on a stable string.
func Normalize(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if code, ok := mappings[key]; ok {
		return code
	}
	return strings.ToUpper(key)
}

// BrowseID returns the Browse API condition ID for a normalized code, or ""
// when the code has no ID (search then omits the condition filter).
func BrowseID(code string) string {
	return browseIDs[code]
}
