package browse

import "strings"

// Price floors used to exclude accessories (cases, chargers, parts) from
// active-listing searches. First matching category wins, so the laptop check
// runs before the generic default.
const (
	minPriceLaptop  = 200.0
	minPriceConsole = 100.0
	minPriceTablet  = 80.0
	minPricePhone   = 75.0
	minPriceCamera  = 100.0
	minPriceDefault = 50.0
)

var (
	laptopBrands   = []string{"apple", "dell", "hp", "lenovo", "asus", "acer", "microsoft", "razer", "msi"}
	laptopKeywords = []string{"macbook", "laptop", "notebook", "chromebook", "surface", "thinkpad"}

	consoleBrands   = []string{"nintendo", "sony", "microsoft", "valve"}
	consoleKeywords = []string{"switch", "playstation", "ps4", "ps5", "xbox", "steam deck"}

	tabletKeywords = []string{"ipad", "tablet", "tab", "kindle"}

	phoneKeywords = []string{"iphone", "galaxy", "pixel", "phone"}

	cameraBrands   = []string{"canon", "nikon", "sony", "fujifilm", "panasonic", "olympus"}
	cameraKeywords = []string{"camera", "dslr", "mirrorless"}
)

// MinimumPrice classifies a product by brand/model keywords and returns the
// minimum price threshold for active-listing searches.
func MinimumPrice(brand, model string) float64 {
	b := strings.ToLower(brand)
	m := strings.ToLower(model)

	if containsExact(laptopBrands, b) || containsAny(m, laptopKeywords) {
		return minPriceLaptop
	}
	if containsExact(consoleBrands, b) || containsAny(m, consoleKeywords) {
		return minPriceConsole
	}
	if containsAny(m, tabletKeywords) {
		return minPriceTablet
	}
	if containsAny(m, phoneKeywords) {
		return minPricePhone
	}
	if containsExact(cameraBrands, b) || containsAny(m, cameraKeywords) {
		return minPriceCamera
	}
	return minPriceDefault
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
